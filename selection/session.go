package selection

import (
	"fmt"
	"slices"
)

// State of a selection session.
type State int

const (
	Idle State = iota
	Selecting
	Confirming
	Committing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Selecting:
		return "selecting"
	case Confirming:
		return "confirming"
	case Committing:
		return "committing"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session is the multi-select workflow shared by the sell and buy-back
// flows: pick symbols from a candidate list, pass a confirmation gate, hand
// the batch off, and stay in Committing until the batch resolves so a second
// batch cannot be started while one is outstanding.
//
// The stable asset (the quote currency) is never selectable: it is excluded
// from the default selection and Toggle ignores it.
type Session struct {
	stable     string
	state      State
	candidates []string
	selected   map[string]bool
}

// NewSession creates an idle session. stableAsset is the quote currency
// symbol that must never appear in a committed batch.
func NewSession(stableAsset string) *Session {
	return &Session{stable: stableAsset}
}

func (s *Session) State() State { return s.state }

// Start enters Selecting over the given candidates. Everything except the
// stable asset starts selected.
func (s *Session) Start(candidates []string) error {
	if s.state != Idle {
		return fmt.Errorf("selection: cannot start while %s", s.state)
	}

	s.candidates = slices.Clone(candidates)
	s.selected = make(map[string]bool, len(candidates))
	for _, sym := range candidates {
		if sym == s.stable {
			continue
		}
		s.selected[sym] = true
	}
	s.state = Selecting
	return nil
}

// Toggle flips a candidate's membership. Toggling the stable asset is a
// no-op; toggling a non-candidate is an error.
func (s *Session) Toggle(symbol string) error {
	if s.state != Selecting {
		return fmt.Errorf("selection: cannot toggle while %s", s.state)
	}
	if symbol == s.stable {
		return nil
	}
	if !slices.Contains(s.candidates, symbol) {
		return fmt.Errorf("selection: %q is not a candidate", symbol)
	}

	s.selected[symbol] = !s.selected[symbol]
	return nil
}

// Selected returns the currently selected symbols in candidate order.
func (s *Session) Selected() []string {
	var out []string
	for _, sym := range s.candidates {
		if s.selected[sym] {
			out = append(out, sym)
		}
	}
	return out
}

// RequestConfirm moves to the confirmation gate. Requires a non-empty
// selection.
func (s *Session) RequestConfirm() error {
	if s.state != Selecting {
		return fmt.Errorf("selection: cannot confirm while %s", s.state)
	}
	if len(s.Selected()) == 0 {
		return fmt.Errorf("selection: nothing selected")
	}
	s.state = Confirming
	return nil
}

// Cancel abandons the session from Selecting or Confirming. Free: nothing
// has been submitted yet.
func (s *Session) Cancel() error {
	if s.state != Selecting && s.state != Confirming {
		return fmt.Errorf("selection: cannot cancel while %s", s.state)
	}
	s.reset()
	return nil
}

// Commit hands the selection to the caller and enters Committing. The
// returned slice is always a non-empty subset of the candidates passed to
// Start, in candidate order, with the stable asset excluded.
func (s *Session) Commit() ([]string, error) {
	if s.state != Confirming {
		return nil, fmt.Errorf("selection: cannot commit while %s", s.state)
	}
	s.state = Committing
	return s.Selected(), nil
}

// Finish returns to Idle once the committed batch has resolved. There is no
// cancelling a submitted batch; the caller must wait for the response before
// calling this.
func (s *Session) Finish() error {
	if s.state != Committing {
		return fmt.Errorf("selection: cannot finish while %s", s.state)
	}
	s.reset()
	return nil
}

func (s *Session) reset() {
	s.state = Idle
	s.candidates = nil
	s.selected = nil
}
