package components

import "github.com/charmbracelet/bubbles/key"

func binding(help, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(help, desc))
}

// Navigation and table keys shared by every list.
var (
	keyUp       = binding("↑/k", "up", "up", "k")
	keyDown     = binding("↓/j", "down", "down", "j")
	keyPageUp   = binding("pgup", "page up", "pgup", "ctrl+b")
	keyPageDown = binding("pgdn", "page down", "pgdown", "ctrl+f")
	keyHome     = binding("g", "top", "home", "g")
	keyEnd      = binding("G", "bottom", "end", "G")
	keyEnter    = binding("enter", "open", "enter")
	keyClose    = binding("esc", "close", "esc", "q")
	keySearch   = binding("/", "search", "/")
	keySortNext = binding("s", "sort next", "s")
	keySortPrev = binding("S", "sort prev", "S")
	keySortRev  = binding("o", "reverse", "o")
	keyRefresh  = binding("r", "refresh", "r")
)

// Global keys handled by the root component when nothing has focus.
var (
	keyQuit    = binding("q", "quit", "q", "ctrl+c")
	keyNextTab = binding("tab", "next tab", "tab")
	keyPrevTab = binding("shift+tab", "prev tab", "shift+tab")
	keyHelp    = binding("?", "help", "?")
	keySuspend = binding("ctrl+z", "suspend", "ctrl+z")
	keyTab     = binding("1-8", "switch tab", "1", "2", "3", "4", "5", "6", "7", "8")
)

// Tab specific keys.
var (
	keyLive         = binding("p", "pause/live", "p", " ")
	keyCapture      = binding("c", "capture", "c")
	keyTerminate    = binding("x", "terminate", "x", "delete")
	keyTerminateAll = binding("X", "terminate all", "X")
	keyCopy         = binding("y", "copy", "y")
	keyNext         = binding("n", "next", "n")
	keyPrev         = binding("N", "prev", "N")
	keyTest         = binding("t", "test", "t")
	keyGroupTest    = binding("T", "test group", "T")
	keySettings     = binding("e", "settings", "e")
	keyHealthCheck  = binding("h", "health check", "h")
	keyUpdate       = binding("u", "update", "u")
	keyLevel        = binding("l", "level", "l")
	keyToggle       = binding("d", "toggle disabled", "d")
	keySubmit       = binding("w", "submit", "w")
	keyMode         = binding("m", "mode", "m")
	keyReload       = binding("L", "reload config", "L")
	keyRestart      = binding("ctrl+r", "restart core", "ctrl+r")
	keyFlushFakeIP  = binding("F", "flush fake-ip", "F")
	keyFlushDNS     = binding("D", "flush dns", "D")
	keyUpdateGeo    = binding("U", "update geo", "U")
	keyConfirm      = binding("y", "confirm", "y", "enter")
	keyCancel       = binding("n", "cancel", "n", "esc", "q")
	keyNextField    = binding("tab", "next field", "tab", "down")
	keyPrevField    = binding("shift+tab", "prev field", "shift+tab", "up")
	keySave         = binding("enter", "save", "enter")
	keyCancelForm   = binding("esc", "cancel", "esc")
)

var tableKeys = []key.Binding{keyUp, keyDown, keySearch, keySortNext, keySortPrev, keySortRev}
