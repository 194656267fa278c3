// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Orchardsense

package pomona

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrTruncatedPage is returned when a saved-data reply declares more payload
// bytes than the frame actually carries.
var ErrTruncatedPage = errors.New("pomona: saved-data frame shorter than declared payload length")

// Classification is the result of routing one inbound frame.
type Classification struct {
	Kind  FrameKind
	Frame []byte // the original frame bytes

	// Data pages only
	Payload []byte // declared payload, frame[HeaderSize:HeaderSize+length]

	// Raw traffic only
	Text string // best-effort UTF-8 decoding for display
	Hex  string // hexadecimal byte representation for display
}

// Classify routes an inbound frame without mutating any state.
//
// Frames shorter than two bytes are ignored. Frames opening with FrameStart
// and the saved-data opcode are data pages; Classify verifies the declared
// payload length fits inside the frame and returns ErrTruncatedPage when it
// does not. Everything else is raw traffic, exposed as text and hex for
// display, never as an error.
func Classify(frame []byte) (Classification, error) {
	if len(frame) < 2 {
		return Classification{Kind: FrameIgnored, Frame: frame}, nil
	}

	if frame[0] == FrameStart && frame[1] == OpSavedData {
		c := Classification{Kind: FrameDataPage, Frame: frame}
		if len(frame) < HeaderSize {
			return c, fmt.Errorf("%w: %d byte header", ErrTruncatedPage, len(frame))
		}
		payloadLen := int(binary.LittleEndian.Uint16(frame[2:4]))
		if len(frame) < HeaderSize+payloadLen {
			return c, fmt.Errorf("%w: declared %d bytes, frame carries %d",
				ErrTruncatedPage, payloadLen, len(frame)-HeaderSize)
		}
		c.Payload = frame[HeaderSize : HeaderSize+payloadLen]
		return c, nil
	}

	return Classification{
		Kind:  FrameRaw,
		Frame: frame,
		Text:  decodeText(frame),
		Hex:   FormatHex(frame),
	}, nil
}

// decodeText produces a printable best-effort text rendering of raw traffic.
// Invalid UTF-8 sequences and control characters are replaced so the result
// is always safe to display.
func decodeText(data []byte) string {
	var b strings.Builder
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			b.WriteRune('�')
		} else if r == '\n' || r == '\t' || r >= 0x20 {
			b.WriteRune(r)
		} else {
			b.WriteRune('.')
		}
		data = data[size:]
	}
	return b.String()
}
