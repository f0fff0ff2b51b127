package dashboard

import (
	"io"
	"log/slog"

	"gitlab.com/tinyland/lab/chain-pulse/pkg/automaton"
)

// NewStore builds the dashboard Store over svc. Extra options, such as a
// clock or a recorder, are applied after the defaults.
func NewStore(svc Service, logger *slog.Logger, opts ...automaton.Option[State, Action]) *Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	base := []automaton.Option[State, Action]{
		automaton.WithReducers(Reducers()...),
		automaton.WithEffects(Effects(svc, logger)...),
		automaton.WithEnablingCondition[State, Action](Enabled),
		automaton.WithKind[State, Action](KindOf),
		automaton.WithLogger[State, Action](logger),
	}
	return automaton.New(NewState(), append(base, opts...)...)
}
