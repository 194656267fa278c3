// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Orchardsense

package pomona

import (
	"bytes"
	"errors"
	"testing"
)

// fakeSender records outbound commands and can simulate transport failure
type fakeSender struct {
	sent    [][]byte
	sendErr error
}

func (f *fakeSender) Send(data []byte) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, append([]byte(nil), data...))
	return nil
}

// ============================================================
// Fetch Lifecycle Tests
// ============================================================

func TestSession_StartSendsFetchCommand(t *testing.T) {
	sender := &fakeSender{}
	s := NewSession(sender)

	if err := s.Start(); err != nil {
		t.Fatalf("start error: %v", err)
	}
	if s.State() != StateAwaitingPage {
		t.Errorf("expected AWAITING_PAGE, got %s", FormatState(s.State()))
	}
	if len(sender.sent) != 1 || !bytes.Equal(sender.sent[0], []byte{0xAE, 0x5A, 0x00, 0x00}) {
		t.Errorf("expected start-fetch command, got %v", sender.sent)
	}
}

func TestSession_StartWhileAwaitingRejected(t *testing.T) {
	sender := &fakeSender{}
	s := NewSession(sender)
	s.Start()

	if err := s.Start(); !errors.Is(err, ErrFetchInProgress) {
		t.Errorf("expected ErrFetchInProgress, got %v", err)
	}
	if len(sender.sent) != 1 {
		t.Errorf("second start must not emit a command, got %d sends", len(sender.sent))
	}
}

func TestSession_FullPageRequestsNext(t *testing.T) {
	// Concrete scenario: payload length 2150, 50 valid slots.
	sender := &fakeSender{}
	s := NewSession(sender)
	s.Start()

	if _, err := s.HandleFrame(buildPageOfSlots(FullPageRecords)); err != nil {
		t.Fatalf("handle error: %v", err)
	}
	if s.Count() != FullPageRecords {
		t.Errorf("expected %d records, got %d", FullPageRecords, s.Count())
	}
	if s.State() != StateAwaitingPage {
		t.Errorf("expected AWAITING_PAGE, got %s", FormatState(s.State()))
	}
	if len(sender.sent) != 2 || !bytes.Equal(sender.sent[1], []byte{0xAE, 0x5B, 0x00, 0x00}) {
		t.Errorf("expected next-page command, got %v", sender.sent)
	}
}

func TestSession_MultiPageOrderPreserved(t *testing.T) {
	sender := &fakeSender{}
	s := NewSession(sender)
	s.Start()

	s.HandleFrame(buildPageOfSlots(FullPageRecords))
	s.HandleFrame(buildPageOfSlots(FullPageRecords))
	s.HandleFrame(buildPageOfSlots(3))

	records := s.Records()
	if len(records) != 2*FullPageRecords+3 {
		t.Fatalf("expected %d records, got %d", 2*FullPageRecords+3, len(records))
	}
	for i, r := range records {
		if r.ID != i {
			t.Fatalf("record %d carries ID %d; IDs must be assigned in arrival order", i, r.ID)
		}
		if i < 2*FullPageRecords && int(r.TreeNo) != i%FullPageRecords {
			t.Fatalf("record %d out of order: treeNo=%d", i, r.TreeNo)
		}
	}
	if s.State() != StateComplete || s.Reason() != ReasonShortPage {
		t.Errorf("expected COMPLETE/SHORT_PAGE, got %s/%s",
			FormatState(s.State()), FormatReason(s.Reason()))
	}
}

func TestSession_CompletionReasons(t *testing.T) {
	sentinelPayload := append(testSlot(0), make([]byte, RecordSize)...)

	tests := []struct {
		name    string
		frame   []byte
		records int
		reason  Reason
	}{
		{"empty page", buildPageFrame(nil), 0, ReasonEmptyPage},
		{"terminator", buildPageFrame(sentinelPayload), 1, ReasonSentinel},
		{"short page", buildPageOfSlots(5), 5, ReasonShortPage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{}
			s := NewSession(sender)
			s.Start()

			if _, err := s.HandleFrame(tt.frame); err != nil {
				t.Fatalf("handle error: %v", err)
			}
			if s.State() != StateComplete {
				t.Errorf("expected COMPLETE, got %s", FormatState(s.State()))
			}
			if s.Reason() != tt.reason {
				t.Errorf("expected %s, got %s", FormatReason(tt.reason), FormatReason(s.Reason()))
			}
			if s.Count() != tt.records {
				t.Errorf("expected %d records, got %d", tt.records, s.Count())
			}
			if len(sender.sent) != 1 {
				t.Errorf("no command may follow a final page, got %d sends", len(sender.sent))
			}
		})
	}
}

// ============================================================
// Failure Path Tests
// ============================================================

func TestSession_StartSendFailure(t *testing.T) {
	sender := &fakeSender{sendErr: errors.New("port gone")}
	s := NewSession(sender)

	if err := s.Start(); err == nil {
		t.Fatal("expected start error")
	}
	if s.State() != StateFailed {
		t.Errorf("expected FAILED, got %s", FormatState(s.State()))
	}
}

func TestSession_NextPageSendFailureKeepsRecords(t *testing.T) {
	sender := &fakeSender{}
	s := NewSession(sender)
	s.Start()

	sender.sendErr = errors.New("write rejected")
	if _, err := s.HandleFrame(buildPageOfSlots(FullPageRecords)); err == nil {
		t.Fatal("expected error when the next-page send fails")
	}
	if s.State() != StateFailed {
		t.Errorf("expected FAILED, got %s", FormatState(s.State()))
	}
	if s.Count() != FullPageRecords {
		t.Errorf("partial results must survive a send failure, got %d records", s.Count())
	}
}

func TestSession_TruncatedPageFails(t *testing.T) {
	sender := &fakeSender{}
	s := NewSession(sender)
	s.Start()
	s.HandleFrame(buildPageOfSlots(FullPageRecords))

	frame := buildPageOfSlots(2)
	_, err := s.HandleFrame(frame[:len(frame)-1])
	if !errors.Is(err, ErrTruncatedPage) {
		t.Fatalf("expected ErrTruncatedPage, got %v", err)
	}
	if s.State() != StateFailed {
		t.Errorf("expected FAILED, got %s", FormatState(s.State()))
	}
	if s.Count() != FullPageRecords {
		t.Errorf("records from prior pages must be retained, got %d", s.Count())
	}
	if !errors.Is(s.Err(), ErrTruncatedPage) {
		t.Errorf("session error must surface the decode fault, got %v", s.Err())
	}
}

func TestSession_DisconnectMidFetch(t *testing.T) {
	// Concrete scenario: disconnect after one successful page of 50 records.
	sender := &fakeSender{}
	s := NewSession(sender)
	s.Start()
	s.HandleFrame(buildPageOfSlots(FullPageRecords))
	sentBefore := len(sender.sent)

	s.Disconnect(errors.New("link dropped"))

	if s.State() != StateFailed {
		t.Errorf("expected FAILED, got %s", FormatState(s.State()))
	}
	if s.Count() != FullPageRecords {
		t.Errorf("expected %d retained records, got %d", FullPageRecords, s.Count())
	}

	// A page from the aborted fetch must be dropped without a command.
	s.HandleFrame(buildPageOfSlots(FullPageRecords))
	if s.Count() != FullPageRecords {
		t.Error("stale pages must not append records after a disconnect")
	}
	if len(sender.sent) != sentBefore {
		t.Error("no further command may be emitted after a disconnect")
	}
}

func TestSession_DisconnectWhileIdleIgnored(t *testing.T) {
	s := NewSession(&fakeSender{})
	s.Disconnect(errors.New("link dropped"))
	if s.State() != StateIdle {
		t.Errorf("disconnect outside a fetch must not change state, got %s",
			FormatState(s.State()))
	}
}

// ============================================================
// Pass-Through and Restart Tests
// ============================================================

func TestSession_RawTrafficDoesNotDisturbFetch(t *testing.T) {
	sender := &fakeSender{}
	s := NewSession(sender)
	s.Start()

	c, err := s.HandleFrame([]byte("probe: battery low"))
	if err != nil {
		t.Fatalf("handle error: %v", err)
	}
	if c.Kind != FrameRaw {
		t.Errorf("expected FrameRaw, got %v", c.Kind)
	}
	if s.State() != StateAwaitingPage || s.Count() != 0 {
		t.Error("raw traffic must not affect the fetch")
	}
}

func TestSession_StalePageWhileIdleDropped(t *testing.T) {
	s := NewSession(&fakeSender{})
	s.HandleFrame(buildPageOfSlots(3))
	if s.Count() != 0 || s.State() != StateIdle {
		t.Error("data pages outside a fetch must be dropped")
	}
}

func TestSession_RestartResetsRecords(t *testing.T) {
	sender := &fakeSender{}
	s := NewSession(sender)
	s.Start()
	s.HandleFrame(buildPageOfSlots(5))
	if s.State() != StateComplete {
		t.Fatalf("expected COMPLETE, got %s", FormatState(s.State()))
	}

	if err := s.Start(); err != nil {
		t.Fatalf("restart error: %v", err)
	}
	if s.Count() != 0 {
		t.Errorf("restart must discard prior records, got %d", s.Count())
	}
	if s.Reason() != ReasonNone || s.Err() != nil {
		t.Error("restart must clear completion reason and error")
	}

	// Fresh IDs start from zero again.
	s.HandleFrame(buildPageOfSlots(2))
	if records := s.Records(); len(records) != 2 || records[0].ID != 0 {
		t.Errorf("expected fresh IDs from 0, got %+v", records)
	}
}
