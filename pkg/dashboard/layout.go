package dashboard

import "gitlab.com/tinyland/lab/chain-pulse/pkg/components"

// Fixed line budgets shared by the reducers, which size table viewports, and
// the screens, which draw around them.
const (
	// ChromeHeight is the tab bar, the status bar and the help line.
	ChromeHeight = 3
	// FrameHeight and FrameWidth are a rounded border plus horizontal padding.
	FrameHeight = 2
	FrameWidth  = 4

	SyncSummaryHeight        = 7
	EndorsementSummaryHeight = 2
	NextRightHeight          = 1
)

// Viewport is the space available to one table: columns are laid out in
// Width, and Rows excludes the header line.
type Viewport struct {
	Width int
	Rows  int
}

// Viewports sizes every table for a width x height terminal.
type Viewports struct {
	Peers        Viewport
	Endorsements Viewport
	Application  Viewport
	PeerStats    Viewport
	Operations   Viewport
}

// Layout computes the viewports for a width x height terminal.
func Layout(width, height int) Viewports {
	w := max(width-FrameWidth, 0)
	body := height - ChromeHeight
	table := FrameHeight + 1

	baking := max(body-NextRightHeight-2*table, 0)
	return Viewports{
		Peers:        Viewport{Width: w, Rows: max(body-(SyncSummaryHeight+FrameHeight)-table, 0)},
		Endorsements: Viewport{Width: w, Rows: max(body-EndorsementSummaryHeight-table, 0)},
		Application:  Viewport{Width: w, Rows: baking / 2},
		PeerStats:    Viewport{Width: w, Rows: baking - baking/2},
		Operations:   Viewport{Width: w, Rows: max(body-table, 0)},
	}
}

// navigable is the slice of ExtendedTable the UI reducer drives without
// knowing the row type.
type navigable interface {
	Headers() []string
	Next()
	Previous()
	SelectColumn(i int)
	CycleSort()
	SetWidth(width int)
	Rows() *components.TableState
}
