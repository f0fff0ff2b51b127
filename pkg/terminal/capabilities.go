package terminal

import (
	"errors"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// ErrNotTerminal is returned when interactive mode is requested without a
// terminal on stdin and stdout.
var ErrNotTerminal = errors.New("terminal: stdin and stdout must be a terminal")

// Capabilities summarises what the current terminal can do.
type Capabilities struct {
	Interactive bool
	Profile     termenv.Profile
	Size        Size
	SSH         bool
	Mux         bool
}

// Detect inspects stdin/stdout and the environment.
func Detect() Capabilities {
	interactive := isTTY(os.Stdin) && isTTY(os.Stdout)
	profile := termenv.Ascii
	if interactive {
		profile = termenv.NewOutput(os.Stdout).EnvColorProfile()
	}
	return Capabilities{
		Interactive: interactive,
		Profile:     profile,
		Size:        GetSize(),
		SSH:         os.Getenv("SSH_TTY") != "" || os.Getenv("SSH_CONNECTION") != "",
		Mux:         os.Getenv("TMUX") != "" || os.Getenv("STY") != "",
	}
}

// RequireInteractive returns ErrNotTerminal unless c is interactive.
func (c Capabilities) RequireInteractive() error {
	if !c.Interactive {
		return ErrNotTerminal
	}
	return nil
}

// ColorName is the profile name shown in the status bar and logs.
func (c Capabilities) ColorName() string {
	switch c.Profile {
	case termenv.TrueColor:
		return "truecolor"
	case termenv.ANSI256:
		return "ansi256"
	case termenv.ANSI:
		return "ansi"
	}
	return "ascii"
}

func isTTY(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
