package glkapi

import (
	"strconv"
	"strings"
)

// Fileref is a path plus a binary/text flag derived from its usage.
// Grounded on §4.6.
type Fileref struct {
	registryEntry

	Path   string
	Binary bool
}

func (f *Fileref) entry() *registryEntry { return &f.registryEntry }

const replacementChar = '�'

var illegalFilenameChars = " \\/><:|?*"

// cleanFilename strips characters forbidden in a Glk-derived filename and
// truncates at the first '.', falling back to "null" if nothing survives.
// Grounded on §4.6's create_by_name rule.
func cleanFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r == replacementChar || strings.ContainsRune(illegalFilenameChars, r) {
			continue
		}
		if r == '.' {
			break
		}
		b.WriteRune(r)
	}
	out := b.String()
	if out == "" {
		out = "null"
	}
	return out
}

// createFilerefByName implements glk_fileref_create_by_name.
func (g *GlkApi) createFilerefByName(usage FileUsage, filename string, rock uint32) *Fileref {
	clean := cleanFilename(filename) + usage.Suffix()
	path := joinPath(g.directories.Working, clean)
	fr := &Fileref{Path: path, Binary: usage.Binary()}
	g.filerefs.Register(fr, rock)
	return fr
}

// createTempFileref implements glk_fileref_create_temp; all temp files
// created this way are deleted on exit.
func (g *GlkApi) createTempFileref(usage FileUsage, rock uint32) *Fileref {
	g.tempFileCounter++
	name := "remglktempfile-" + strconv.Itoa(g.tempFileCounter)
	path := joinPath(g.directories.Temp, name)
	fr := &Fileref{Path: path, Binary: usage.Binary()}
	g.filerefs.Register(fr, rock)
	g.tempFiles = append(g.tempFiles, path)
	return fr
}

// createFilerefFromFileref implements glk_fileref_create_from_fileref:
// copy the path, but recompute the binary flag from the new usage.
func (g *GlkApi) createFilerefFromFileref(usage FileUsage, old *Fileref, rock uint32) *Fileref {
	fr := &Fileref{Path: old.Path, Binary: usage.Binary()}
	g.filerefs.Register(fr, rock)
	return fr
}

func joinPath(dir, name string) string {
	if dir == "" {
		return name
	}
	return strings.TrimRight(dir, "/") + "/" + name
}
