package app

// Key binding constants used in handleKey.
const (
	KeyQuit       = "q"
	KeyQuitUpper  = "Q"
	KeyCtrlC      = "ctrl+c"
	KeySpace      = " "
	KeyTab        = "tab"
	KeyEsc        = "esc"
	KeyEnter      = "enter"
	KeyUp         = "up"
	KeyDown       = "down"
	KeyLeft       = "left"
	KeyRight      = "right"
	KeyJ          = "j"
	KeyK          = "k"
	KeyWord       = "/"
	KeyTime       = "t"
	KeyReset      = "r"
	KeyEdit       = "e"
	KeyGoto       = "g"
	KeyOpen       = "o"
	KeyFormat     = "f"
	KeyExport     = "x"
	KeyTranscribe = "T"
)
