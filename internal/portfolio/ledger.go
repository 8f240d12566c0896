package portfolio

import (
	"sort"
	"sync"
)

// StateRecorder receives every state of a finished run.
type StateRecorder interface {
	Record(State) error
}

// Ledger keeps one equity curve per symbol in memory so a finished run can be replayed
// without reading the states file back.
type Ledger struct {
	mu     sync.Mutex
	curves map[string][]State
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{curves: make(map[string][]State)}
}

// Record appends state to the curve of its symbol. States must arrive in time order per symbol.
func (l *Ledger) Record(state State) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.curves[state.Symbol] = append(l.curves[state.Symbol], state)
	return nil
}

// Symbols lists the symbols with a recorded curve, sorted.
func (l *Ledger) Symbols() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.curves))
	for sym := range l.curves {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// Curve returns a copy of the recorded states of one symbol.
func (l *Ledger) Curve(symbol string) []State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]State(nil), l.curves[symbol]...)
}

// Reset drops every curve, typically before the next run.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	clear(l.curves)
}
