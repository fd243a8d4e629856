package termui

import (
	"encoding/json"
	"path/filepath"
	"sort"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/gitcha"
	"github.com/sahilm/fuzzy"

	"github.com/glkgo/remglk/internal/glkapi"
)

// filePicker is the fuzzy-matching file-reference prompt shown when the
// runtime suspends on glk_fileref_create_by_prompt (§4.6). Grounded on
// glow's stash picker, which combines gitcha's recursive, gitignore-aware
// file listing with sahilm/fuzzy's scored matching.
type filePicker struct {
	candidates []string
	query      string
	matches    fuzzy.Matches
	cursor     int
	active     bool

	selectedStyle lipgloss.Style
	promptStyle   lipgloss.Style
}

func newFilePicker(root string) filePicker {
	fp := filePicker{
		selectedStyle: lipgloss.NewStyle().Bold(true),
		promptStyle:   lipgloss.NewStyle().Faint(true),
	}
	fp.scan(root)
	return fp
}

// scan walks root for candidate save/transcript files via gitcha, which
// honors .gitignore the way glow's stash directory listing does.
func (fp *filePicker) scan(root string) {
	ch, err := gitcha.FindFilesExcept(root, []string{"*"}, []string{".git"})
	var out []string
	if err == nil {
		for res := range ch {
			out = append(out, res.Path)
		}
	}
	sort.Strings(out)
	fp.candidates = out
	fp.match()
}

func (fp *filePicker) match() {
	if fp.query == "" {
		fp.matches = nil
		for _, c := range fp.candidates {
			fp.matches = append(fp.matches, fuzzy.Match{Str: c})
		}
		return
	}
	fp.matches = fuzzy.Find(fp.query, fp.candidates)
	fp.cursor = 0
}

func (fp filePicker) view(width int) string {
	var b []byte
	b = append(b, fp.promptStyle.Render("Select a file ("+fp.query+"):")...)
	b = append(b, '\n')
	max := len(fp.matches)
	if max > 10 {
		max = 10
	}
	for i := 0; i < max; i++ {
		line := filepath.Clean(fp.matches[i].Str)
		if i == fp.cursor {
			line = fp.selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b = append(b, []byte(line+"\n")...)
	}
	return string(b)
}

// handleKey updates picker state. It returns done=true with the chosen
// path on Enter, or with "" on Esc; while the user is still browsing it
// returns "", false.
func (fp *filePicker) handleKey(msg tea.KeyMsg) (path string, done bool) {
	switch msg.Type {
	case tea.KeyEnter:
		if fp.cursor < len(fp.matches) {
			return fp.matches[fp.cursor].Str, true
		}
		return fp.query, true
	case tea.KeyEsc:
		return "", true
	case tea.KeyUp:
		if fp.cursor > 0 {
			fp.cursor--
		}
	case tea.KeyDown:
		if fp.cursor < len(fp.matches)-1 {
			fp.cursor++
		}
	case tea.KeyBackspace:
		if n := len(fp.query); n > 0 {
			fp.query = fp.query[:n-1]
			fp.match()
		}
	case tea.KeyRunes, tea.KeySpace:
		fp.query += msg.String()
		fp.match()
	}
	return "", false
}

// specialResponseEvent builds the wire event a GlkOte display sends back
// after a fileref prompt resolves (§4.6's "specialresponse" shape).
func specialResponseEvent(gen uint32, filename string) *glkapi.InboundEvent {
	raw, _ := json.Marshal(filename)
	return &glkapi.InboundEvent{Gen: gen, Type: "specialresponse", Response: "fileref_prompt", Value2: raw}
}
