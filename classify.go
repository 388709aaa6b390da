package keyvibes

// Category selects which sample pool of a pack a key press draws from.
type Category int

const (
	CategoryNormal Category = iota
	CategorySpace
	CategoryBackspace
	CategoryEnter
	CategoryModifier
	CategoryArrow
	CategoryFunction

	numCategories
)

// String returns the lowercase category name used as the file prefix inside
// a pack directory (e.g. "space" matches space_1.wav).
func (c Category) String() string {
	switch c {
	case CategoryNormal:
		return "normal"
	case CategorySpace:
		return "space"
	case CategoryBackspace:
		return "backspace"
	case CategoryEnter:
		return "enter"
	case CategoryModifier:
		return "modifier"
	case CategoryArrow:
		return "arrow"
	case CategoryFunction:
		return "function"
	default:
		return "unknown"
	}
}

// Categories returns every category in declaration order.
func Categories() []Category {
	out := make([]Category, 0, numCategories)
	for c := Category(0); c < numCategories; c++ {
		out = append(out, c)
	}
	return out
}

// ParseCategory resolves a category by its lowercase name.
func ParseCategory(name string) (Category, bool) {
	for c := Category(0); c < numCategories; c++ {
		if c.String() == name {
			return c, true
		}
	}
	return CategoryNormal, false
}

// Key identifies a pressed key. Printable keys are their own character
// ("a", "7"); named keys use the fixed lowercase names below. Left-hand
// modifiers use the bare name, right-hand variants carry an _r suffix.
type Key string

const (
	KeySpace      Key = "space"
	KeyEnter      Key = "enter"
	KeyBackspace  Key = "backspace"
	KeyTab        Key = "tab"
	KeyEscape     Key = "esc"
	KeyShift      Key = "shift"
	KeyShiftRight Key = "shift_r"
	KeyCtrl       Key = "ctrl"
	KeyCtrlRight  Key = "ctrl_r"
	KeyAlt        Key = "alt"
	KeyAltRight   Key = "alt_r"
	KeyCmd        Key = "cmd"
	KeyCmdRight   Key = "cmd_r"
	KeyCapsLock   Key = "caps_lock"
	KeyUp         Key = "up"
	KeyDown       Key = "down"
	KeyLeft       Key = "left"
	KeyRight      Key = "right"
	KeyHome       Key = "home"
	KeyEnd        Key = "end"
	KeyPageUp     Key = "page_up"
	KeyPageDown   Key = "page_down"
	KeyInsert     Key = "insert"
	KeyDelete     Key = "delete"
)

var modifierKeys = map[Key]struct{}{
	KeyShift: {}, KeyShiftRight: {},
	KeyCtrl: {}, KeyCtrlRight: {},
	KeyAlt: {}, KeyAltRight: {},
	KeyCmd: {}, KeyCmdRight: {},
	KeyCapsLock: {}, KeyTab: {}, KeyEscape: {},
}

var arrowKeys = map[Key]struct{}{
	KeyUp: {}, KeyDown: {}, KeyLeft: {}, KeyRight: {},
	KeyHome: {}, KeyEnd: {},
	KeyPageUp: {}, KeyPageDown: {},
	KeyInsert: {}, KeyDelete: {},
}

// ClassifyKey maps a key identifier to exactly one category. It is a total
// function: unrecognized named keys and all printable characters classify
// as CategoryNormal.
func ClassifyKey(k Key) Category {
	switch k {
	case KeySpace:
		return CategorySpace
	case KeyEnter:
		return CategoryEnter
	case KeyBackspace:
		return CategoryBackspace
	}
	if _, ok := modifierKeys[k]; ok {
		return CategoryModifier
	}
	if _, ok := arrowKeys[k]; ok {
		return CategoryArrow
	}
	if isFunctionKey(k) {
		return CategoryFunction
	}
	return CategoryNormal
}

// isFunctionKey reports whether k names a function key f1..f24. The bare
// character "f" is a normal key.
func isFunctionKey(k Key) bool {
	if len(k) < 2 || k[0] != 'f' {
		return false
	}
	n := 0
	for i := 1; i < len(k); i++ {
		c := k[i]
		if c < '0' || c > '9' {
			return false
		}
		n = n*10 + int(c-'0')
		if n > 24 {
			return false
		}
	}
	return n >= 1
}
