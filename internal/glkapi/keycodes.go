package glkapi

// Keycode is a Glk special-key constant, or a plain Unicode codepoint below
// the special range for printable characters.
type Keycode uint32

// Special keycodes, grounded on remglk-rs's constants.rs keycode table.
const (
	KeycodeUnknown Keycode = 0xFFFFFFFF
	KeycodeLeft    Keycode = 0xFFFFFFFE
	KeycodeRight   Keycode = 0xFFFFFFFD
	KeycodeUp      Keycode = 0xFFFFFFFC
	KeycodeDown    Keycode = 0xFFFFFFFB
	KeycodeReturn  Keycode = 0xFFFFFFFA
	KeycodeDelete  Keycode = 0xFFFFFFF9
	KeycodeEscape  Keycode = 0xFFFFFFF8
	KeycodeTab     Keycode = 0xFFFFFFF7
	KeycodePageUp  Keycode = 0xFFFFFFF6
	KeycodePageDown Keycode = 0xFFFFFFF5
	KeycodeHome    Keycode = 0xFFFFFFF4
	KeycodeEnd     Keycode = 0xFFFFFFF3
	KeycodeFunc1   Keycode = 0xFFFFFFEF
	KeycodeFunc2   Keycode = 0xFFFFFFEE
	KeycodeFunc3   Keycode = 0xFFFFFFED
	KeycodeFunc4   Keycode = 0xFFFFFFEC
	KeycodeFunc5   Keycode = 0xFFFFFFEB
	KeycodeFunc6   Keycode = 0xFFFFFFEA
	KeycodeFunc7   Keycode = 0xFFFFFFE9
	KeycodeFunc8   Keycode = 0xFFFFFFE8
	KeycodeFunc9   Keycode = 0xFFFFFFE7
	KeycodeFunc10  Keycode = 0xFFFFFFE6
	KeycodeFunc11  Keycode = 0xFFFFFFE5
	KeycodeFunc12  Keycode = 0xFFFFFFE4
)

// namedKeys maps the GlkOte wire spelling of a non-printable key to its
// keycode, used to decode multi-character "value" fields on char events.
var namedKeys = map[string]Keycode{
	"left":     KeycodeLeft,
	"right":    KeycodeRight,
	"up":       KeycodeUp,
	"down":     KeycodeDown,
	"return":   KeycodeReturn,
	"delete":   KeycodeDelete,
	"escape":   KeycodeEscape,
	"tab":      KeycodeTab,
	"pageup":   KeycodePageUp,
	"pagedown": KeycodePageDown,
	"home":     KeycodeHome,
	"end":      KeycodeEnd,
	"func1":    KeycodeFunc1,
	"func2":    KeycodeFunc2,
	"func3":    KeycodeFunc3,
	"func4":    KeycodeFunc4,
	"func5":    KeycodeFunc5,
	"func6":    KeycodeFunc6,
	"func7":    KeycodeFunc7,
	"func8":    KeycodeFunc8,
	"func9":    KeycodeFunc9,
	"func10":   KeycodeFunc10,
	"func11":   KeycodeFunc11,
	"func12":   KeycodeFunc12,
}

// decodeCharValue interprets the "value" field of an inbound char event.
// Per Design Note (a): decode the first rune; if more than one rune is
// present, additionally try a named-key match and prefer it when found.
func decodeCharValue(value string) Keycode {
	runes := []rune(value)
	if len(runes) == 0 {
		return KeycodeUnknown
	}
	first := Keycode(runes[0])
	if len(runes) > 1 {
		if code, ok := namedKeys[value]; ok {
			return code
		}
	}
	return first
}
