package live

import (
	"fmt"
	"sync"
	"time"

	"github.com/avaluos-co/service-quote/internal/domain/catalog"
)

// Command actions accepted from the client.
const (
	ActionSearch   = "search"
	ActionPrice    = "price"
	ActionCategory = "category"
	ActionType     = "type"
	ActionRemove   = "remove"
	ActionReset    = "reset"
)

// Command is one filter change sent by the client.
type Command struct {
	Action string `json:"action"`
	Value  string `json:"value,omitempty"`
	On     bool   `json:"on,omitempty"`
	Kind   string `json:"kind,omitempty"`
}

// Message is sent to the client after every recompute or rejected command.
type Message struct {
	Type   string          `json:"type"`
	Result *catalog.Result `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// Searcher evaluates a filter over the catalog.
type Searcher interface {
	Search(f catalog.Filter) catalog.Result
}

// SearchSession holds one client's filter. Typed text is applied after the
// debounce delay; every other change is applied at once.
type SearchSession struct {
	searcher  Searcher
	emit      func(Message)
	debouncer *Debouncer

	// publishMu orders recomputes so the last message reflects the latest filter.
	publishMu sync.Mutex

	mu     sync.Mutex
	filter catalog.Filter
	typed  string
	closed bool
}

// NewSearchSession creates a session that reports results through emit.
func NewSearchSession(searcher Searcher, delay time.Duration, emit func(Message)) *SearchSession {
	return &SearchSession{
		searcher:  searcher,
		emit:      emit,
		debouncer: NewDebouncer(delay),
	}
}

// Start emits the unfiltered catalog.
func (s *SearchSession) Start() {
	s.publish()
}

// Filter returns the applied filter.
func (s *SearchSession) Filter() catalog.Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// Handle applies cmd.
func (s *SearchSession) Handle(cmd Command) error {
	if cmd.Action == ActionSearch {
		s.mu.Lock()
		s.typed = cmd.Value
		s.mu.Unlock()
		s.debouncer.Trigger(s.applyTyped)
		return nil
	}

	s.mu.Lock()
	switch cmd.Action {
	case ActionPrice:
		s.filter.PriceRange = cmd.Value
	case ActionCategory:
		s.filter = s.filter.WithCategory(cmd.Value, cmd.On)
	case ActionType:
		s.filter = s.filter.WithType(cmd.Value, cmd.On)
	case ActionRemove:
		kind := catalog.FilterKind(cmd.Kind)
		s.filter = s.filter.Remove(kind, cmd.Value)
		if kind == catalog.FilterSearch {
			s.typed = ""
			s.debouncer.Cancel()
		}
	case ActionReset:
		s.filter = s.filter.Reset()
		s.typed = ""
		s.debouncer.Cancel()
	default:
		s.mu.Unlock()
		return fmt.Errorf("unknown action %q", cmd.Action)
	}
	s.mu.Unlock()

	s.publish()
	return nil
}

// Close stops the pending search.
func (s *SearchSession) Close() {
	s.debouncer.Stop()

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

func (s *SearchSession) applyTyped() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.filter.Search = s.typed
	s.mu.Unlock()

	s.publish()
}

// publish evaluates the filter as it is once this call holds publishMu.
func (s *SearchSession) publish() {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	res := s.searcher.Search(s.Filter())
	s.emit(Message{Type: "result", Result: &res})
}
