package app

import (
	"io"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"gitlab.com/tinyland/lab/chain-pulse/pkg/dashboard"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/hoststats"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/rpc"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/service"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/terminal"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/theme"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/tui"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/worker"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/wsfeed"
)

// DefaultTick is the polling tick when none is configured.
const DefaultTick = 250 * time.Millisecond

// Feeds are the channels the model waits on. A nil channel is never waited
// on.
type Feeds struct {
	RPC      <-chan rpc.Response
	Host     <-chan hoststats.Response
	WS       <-chan wsfeed.Batch
	Terminal *worker.Queue[terminal.Command]
}

// FeedsOf returns the channels of svc.
func FeedsOf(svc *service.Service) Feeds {
	return Feeds{
		RPC:      svc.RPC().Responses(),
		Host:     svc.Host().Responses(),
		WS:       svc.WS().C(),
		Terminal: svc.TerminalCommands(),
	}
}

// Options configures a Model.
type Options struct {
	Settings dashboard.Settings
	Tick     time.Duration
	Styles   theme.Styles
	// Zones enables mouse hit testing. Nil disables it.
	Zones  *zone.Manager
	Logger *slog.Logger
}

// Model is the bubbletea model. It owns no dashboard state: everything lives
// in the Store, which is only touched from Init, Update and View, all on the
// bubbletea event loop.
type Model struct {
	store    *dashboard.Store
	feeds    Feeds
	settings dashboard.Settings
	tick     time.Duration
	keys     KeyMap
	help     help.Model
	zones    *zone.Manager
	render   tui.Renderer
	logger   *slog.Logger
}

// New builds a Model driving store.
func New(store *dashboard.Store, feeds Feeds, opts Options) *Model {
	if opts.Tick <= 0 {
		opts.Tick = DefaultTick
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	h := help.New()
	h.Styles.ShortKey = opts.Styles.HelpKey
	h.Styles.ShortDesc = opts.Styles.HelpDesc
	h.Styles.FullKey = opts.Styles.HelpKey
	h.Styles.FullDesc = opts.Styles.HelpDesc

	return &Model{
		store:    store,
		feeds:    feeds,
		settings: opts.Settings,
		tick:     opts.Tick,
		keys:     DefaultKeyMap(),
		help:     h,
		zones:    opts.Zones,
		render:   tui.Renderer{Styles: opts.Styles, Zones: opts.Zones},
		logger:   opts.Logger,
	}
}

// Store returns the Store the model drives.
func (m *Model) Store() *dashboard.Store { return m.store }

// Init dispatches the Init action and starts the waiters and the tick.
func (m *Model) Init() tea.Cmd {
	m.dispatch(dashboard.Init{Settings: m.settings})
	return tea.Batch(
		m.terminalCmd(),
		m.waitRPC(),
		m.waitHost(),
		m.waitFeed(),
		TickCmd(m.tick),
	)
}

// Update turns msg into actions and collects the resulting commands.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		m.dispatch(dashboard.Resize{Width: msg.Width, Height: msg.Height})

	case tea.KeyMsg:
		m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)

	case RPCResponseEvent:
		m.dispatch(dashboard.FromRPC(msg.Response))
		if drain(m.feeds.RPC, func(resp rpc.Response) { m.dispatch(dashboard.FromRPC(resp)) }) {
			cmds = append(cmds, m.waitRPC())
		} else {
			m.logger.Warn("worker channel closed", "source", "rpc")
		}

	case HostSampleEvent:
		m.dispatch(dashboard.FromHost(msg.Response))
		if drain(m.feeds.Host, func(resp hoststats.Response) { m.dispatch(dashboard.FromHost(resp)) }) {
			cmds = append(cmds, m.waitHost())
		} else {
			m.logger.Warn("worker channel closed", "source", "host")
		}

	case FeedBatchEvent:
		m.dispatchFeed(msg.Batch)
		if drain(m.feeds.WS, m.dispatchFeed) {
			cmds = append(cmds, m.waitFeed())
		} else {
			m.logger.Warn("worker channel closed", "source", "ws")
		}

	case ChannelClosedEvent:
		m.logger.Warn("worker channel closed", "source", msg.Source)

	case TickEvent:
		m.dispatch(dashboard.Tick{})
		if !m.store.State().UI.Quitting {
			cmds = append(cmds, TickCmd(m.tick))
		}
	}

	cmds = append(cmds, m.terminalCmd())
	return m, tea.Batch(cmds...)
}

// View draws the committed state.
func (m *Model) View() string {
	s := m.store.State()
	short := m.help.ShortHelpView(m.keys.ShortHelp())
	var full string
	if s.UI.Help {
		full = m.help.FullHelpView(m.keys.FullHelp())
	}
	out := m.render.View(s, short, full)
	if m.zones != nil {
		out = m.zones.Scan(out)
	}
	return out
}

func (m *Model) dispatch(a dashboard.Action) {
	m.store.Dispatch(a)
}

func (m *Model) dispatchFeed(batch wsfeed.Batch) {
	for _, a := range dashboard.FromFeed(batch) {
		m.dispatch(a)
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		m.dispatch(dashboard.Quit{})
	case key.Matches(msg, k.Left):
		m.dispatch(dashboard.ColumnPrevious{})
	case key.Matches(msg, k.Right):
		m.dispatch(dashboard.ColumnNext{})
	case key.Matches(msg, k.Up):
		m.dispatch(dashboard.RowPrevious{})
	case key.Matches(msg, k.Down):
		m.dispatch(dashboard.RowNext{})
	case key.Matches(msg, k.Sort):
		m.dispatch(dashboard.CycleSort{})
	case key.Matches(msg, k.Delta):
		m.dispatch(dashboard.ToggleDelta{})
	case key.Matches(msg, k.Focus):
		m.dispatch(dashboard.SwitchFocus{})
	case key.Matches(msg, k.NextScreen):
		m.dispatch(dashboard.NextScreen{})
	case key.Matches(msg, k.Mouse):
		m.dispatch(dashboard.ToggleMouse{})
	case key.Matches(msg, k.Help):
		m.dispatch(dashboard.ToggleHelp{})
	default:
		for _, sk := range k.screenKeys() {
			if key.Matches(msg, sk.binding) {
				m.dispatch(dashboard.ChangeScreen{Screen: sk.screen})
				return
			}
		}
	}
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	if m.zones == nil {
		return
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.dispatch(dashboard.RowPrevious{})
		return
	case tea.MouseButtonWheelDown:
		m.dispatch(dashboard.RowNext{})
		return
	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress {
			return
		}
	default:
		return
	}

	for _, screen := range dashboard.Screens() {
		if m.hit(tui.TabZone(screen), msg) {
			m.dispatch(dashboard.ChangeScreen{Screen: screen})
			return
		}
	}

	s := m.store.State()
	for focus, table := range tui.Tables(s.UI.Screen) {
		for col := range tui.Headers(s, table) {
			if !m.hit(tui.HeaderZone(table, col), msg) {
				continue
			}
			if focus != s.UI.Focus {
				m.dispatch(dashboard.SwitchFocus{})
			}
			m.dispatch(dashboard.SelectColumn{Column: col})
			return
		}
	}
}

func (m *Model) hit(id string, msg tea.MouseMsg) bool {
	z := m.zones.Get(id)
	return z != nil && z.InBounds(msg)
}

func (m *Model) waitRPC() tea.Cmd {
	return waitFor("rpc", m.feeds.RPC, func(resp rpc.Response) tea.Msg {
		return RPCResponseEvent{Response: resp}
	})
}

func (m *Model) waitHost() tea.Cmd {
	return waitFor("host", m.feeds.Host, func(resp hoststats.Response) tea.Msg {
		return HostSampleEvent{Response: resp}
	})
}

func (m *Model) waitFeed() tea.Cmd {
	return waitFor("ws", m.feeds.WS, func(batch wsfeed.Batch) tea.Msg {
		return FeedBatchEvent{Batch: batch}
	})
}

// terminalCmd drains the terminal commands the Store queued and runs them
// in order.
func (m *Model) terminalCmd() tea.Cmd {
	if m.feeds.Terminal == nil {
		return nil
	}
	var cmds []tea.Cmd
	for _, c := range m.feeds.Terminal.Drain() {
		m.logger.Debug("terminal command", "command", c.String())
		if cmd := teaCommand(c); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	switch len(cmds) {
	case 0:
		return nil
	case 1:
		return cmds[0]
	}
	return tea.Sequence(cmds...)
}

func teaCommand(c terminal.Command) tea.Cmd {
	switch c {
	case terminal.EnterAltScreen:
		return tea.EnterAltScreen
	case terminal.LeaveAltScreen:
		return tea.ExitAltScreen
	case terminal.EnableMouse:
		return tea.EnableMouseCellMotion
	case terminal.DisableMouse:
		return tea.DisableMouse
	case terminal.Quit:
		return tea.Quit
	}
	return nil
}
