package dashboard

// Enabled is the Store's enabling condition. A false result makes the
// dispatch a no-op: no reducer or effect runs.
func Enabled(a Action, s *State) bool {
	switch a := a.(type) {
	case Init:
		return !s.UI.Initialized
	case Quit:
		return !s.UI.Quitting
	case Tick:
		return s.UI.Initialized && !s.UI.Quitting
	case Resize:
		return a.Width > 0 && a.Height > 0 && (a.Width != s.UI.Width || a.Height != s.UI.Height)
	case ChangeScreen:
		return a.Screen >= 0 && a.Screen < screenCount && a.Screen != s.UI.Screen
	case SelectColumn:
		table, _ := activeTable(s)
		return a.Column >= 0 && a.Column < len(table.Headers())
	case SwitchFocus:
		return focusCount(s.UI.Screen) > 1
	case RPCRequested:
		// One request in flight per target.
		return !s.RPC.Targets[a.Target].Pending
	case RequestFailed:
		st := s.RPC.Targets[a.Target]
		return st.Pending && st.PendingID == a.ID
	case CurrentHeadChanged:
		head := s.Sync.Head
		return a.Header.Hash != "" && a.Header.Hash != head.Hash && a.Header.Level >= head.Level
	case HostSampleRequested:
		return !s.Host.Pending
	}
	return true
}
