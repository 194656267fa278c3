// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Orchardsense

package pomona

import (
	"errors"
	"strings"
	"testing"
)

// ============================================================
// Classifier Tests
// ============================================================

func TestClassify_ShortFramesIgnored(t *testing.T) {
	tests := []struct {
		name  string
		frame []byte
	}{
		{"empty", nil},
		{"single byte", []byte{FrameStart}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Classify(tt.frame)
			if err != nil {
				t.Fatalf("classify error: %v", err)
			}
			if c.Kind != FrameIgnored {
				t.Errorf("expected FrameIgnored, got %v", c.Kind)
			}
		})
	}
}

func TestClassify_DataPage(t *testing.T) {
	frame := buildPageOfSlots(2)
	c, err := Classify(frame)
	if err != nil {
		t.Fatalf("classify error: %v", err)
	}
	if c.Kind != FrameDataPage {
		t.Fatalf("expected FrameDataPage, got %v", c.Kind)
	}
	if len(c.Payload) != 2*RecordSize {
		t.Errorf("expected %d payload bytes, got %d", 2*RecordSize, len(c.Payload))
	}
}

func TestClassify_TruncatedDataPage(t *testing.T) {
	frame := buildPageOfSlots(1)
	_, err := Classify(frame[:HeaderSize+10])
	if !errors.Is(err, ErrTruncatedPage) {
		t.Errorf("expected ErrTruncatedPage, got %v", err)
	}

	// Header itself cut off
	_, err = Classify([]byte{FrameStart, OpSavedData, 0x2B})
	if !errors.Is(err, ErrTruncatedPage) {
		t.Errorf("expected ErrTruncatedPage for cut header, got %v", err)
	}
}

func TestClassify_RawTraffic(t *testing.T) {
	tests := []struct {
		name     string
		frame    []byte
		wantText string
	}{
		{"plain text", []byte("battery 87%"), "battery 87%"},
		{"wrong opcode", []byte{FrameStart, 0x01, 0x00, 0x00}, ""},
		{"no start marker", []byte{0x00, OpSavedData, 0x01}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Classify(tt.frame)
			if err != nil {
				t.Fatalf("classify error: %v", err)
			}
			if c.Kind != FrameRaw {
				t.Fatalf("expected FrameRaw, got %v", c.Kind)
			}
			if tt.wantText != "" && c.Text != tt.wantText {
				t.Errorf("text mismatch: expected %q, got %q", tt.wantText, c.Text)
			}
			if c.Hex == "" {
				t.Error("raw traffic must carry a hex representation")
			}
		})
	}
}

func TestClassify_RawTextSanitized(t *testing.T) {
	c, err := Classify([]byte{'o', 'k', 0xFF, 0x01, '\n'})
	if err != nil {
		t.Fatalf("classify error: %v", err)
	}
	if !strings.HasPrefix(c.Text, "ok") {
		t.Errorf("expected text to start with %q, got %q", "ok", c.Text)
	}
	if strings.ContainsRune(c.Text, 0x01) {
		t.Error("control characters must not survive text decoding")
	}
}

func TestFormatHex(t *testing.T) {
	hex := FormatHex([]byte{0xAE, 0xDA, 0x00})
	if hex != "AE DA 00" {
		t.Errorf("hex mismatch: expected %q, got %q", "AE DA 00", hex)
	}

	long := FormatHex(make([]byte, 17))
	if !strings.Contains(long, "\n") {
		t.Error("expected line break after 16 bytes")
	}
}
