// Package terminal describes the terminal the dashboard draws on: the mode
// commands the automaton issues, the initial size and the colour
// capabilities.
package terminal

// Command is a terminal mode change requested by the automaton. The UI host
// drains them from a queue and applies them in order.
type Command int

const (
	EnterAltScreen Command = iota
	LeaveAltScreen
	EnableMouse
	DisableMouse
	// Quit ends the UI loop. It is always the last command of a shutdown.
	Quit
)

var commandNames = [...]string{
	EnterAltScreen: "enter_alt_screen",
	LeaveAltScreen: "leave_alt_screen",
	EnableMouse:    "enable_mouse",
	DisableMouse:   "disable_mouse",
	Quit:           "quit",
}

func (c Command) String() string {
	if c >= 0 && int(c) < len(commandNames) {
		return commandNames[c]
	}
	return "unknown"
}
