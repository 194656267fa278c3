// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Orchardsense

package pomona

import (
	"errors"
	"fmt"
	"sync"
)

// Sender is the outbound half of the transport collaborator. Send delivers
// one complete frame to the probe or reports a transport failure.
type Sender interface {
	Send(data []byte) error
}

// ErrFetchInProgress is returned by Start while a fetch is already awaiting
// a page. Only one fetch may be in flight per session.
var ErrFetchInProgress = errors.New("pomona: fetch already in progress")

// Session drives one multi-page saved-data retrieval.
//
// The session owns the accumulated record sequence exclusively: records are
// appended in arrival order, never reordered or deduplicated, and are reset
// only by a fresh Start. Callers feed inbound frames through HandleFrame and
// read progress through State, Records, Reason, and Err. All methods are safe
// for concurrent use; the transport reader and a display loop typically run
// on different goroutines.
type Session struct {
	mu      sync.Mutex
	sender  Sender
	state   State
	reason  Reason
	err     error
	records []Record
	nextID  int
}

// NewSession creates an idle session that sends commands through sender.
func NewSession(sender Sender) *Session {
	return &Session{sender: sender, state: StateIdle}
}

// Start begins a fresh fetch. Prior accumulated records are discarded, the
// start-fetch command is sent, and the session awaits the first page.
//
// Start from StateAwaitingPage returns ErrFetchInProgress without disturbing
// the in-flight fetch. Complete and Failed count as idle for this purpose.
// A failed send leaves the session in StateFailed.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateAwaitingPage {
		return ErrFetchInProgress
	}

	s.records = s.records[:0]
	s.nextID = 0
	s.reason = ReasonNone
	s.err = nil

	if err := s.sender.Send(StartFetchCommand()); err != nil {
		s.state = StateFailed
		s.err = fmt.Errorf("start fetch: %w", err)
		return s.err
	}
	s.state = StateAwaitingPage
	return nil
}

// HandleFrame feeds one inbound frame to the session.
//
// The frame is classified first; ignored frames and raw traffic are returned
// to the caller untouched and never affect the fetch. Data pages are decoded
// and drive the state machine: a non-final page appends its records and
// requests the next page, a final page appends and completes the transfer,
// and a truncated page or a failed next-page send fails the fetch while
// keeping the records accumulated so far. Data pages arriving while no fetch
// is awaiting one (including after an abort) are dropped.
func (s *Session) HandleFrame(frame []byte) (Classification, error) {
	c, err := Classify(frame)
	if c.Kind != FrameDataPage {
		return c, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAwaitingPage {
		// Stale page from an aborted or completed fetch.
		return c, nil
	}

	if err != nil {
		s.state = StateFailed
		s.err = err
		return c, err
	}

	page, err := DecodePage(frame)
	if err != nil {
		s.state = StateFailed
		s.err = err
		return c, err
	}

	for _, r := range page.Records {
		r.ID = s.nextID
		s.nextID++
		s.records = append(s.records, r)
	}

	if page.Done {
		s.state = StateComplete
		s.reason = page.Reason
		return c, nil
	}

	if err := s.sender.Send(NextPageCommand()); err != nil {
		s.state = StateFailed
		s.err = fmt.Errorf("request next page: %w", err)
		return c, s.err
	}
	return c, nil
}

// Disconnect signals that the transport dropped. A fetch awaiting a page
// fails and keeps its partial records; an idle or finished session is left
// untouched.
func (s *Session) Disconnect(cause error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAwaitingPage {
		return
	}
	s.state = StateFailed
	if cause == nil {
		cause = errors.New("transport disconnected")
	}
	s.err = fmt.Errorf("disconnected mid-fetch: %w", cause)
}

// State returns the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Reason returns how a complete transfer ended, ReasonNone otherwise.
func (s *Session) Reason() Reason {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reason
}

// Err returns the failure cause for a StateFailed session, nil otherwise.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Records returns a copy of the records accumulated so far, in arrival order.
func (s *Session) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Count returns the number of records accumulated so far.
func (s *Session) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
