// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Orchardsense

package pomona

import "errors"

// Command builder functions produce the outbound byte sequences the probe
// understands. The binary commands are fixed four-byte values with an empty
// payload; construction cannot fail.

// ErrEmptyText is returned by EncodeText for empty input.
var ErrEmptyText = errors.New("pomona: empty text")

// StartFetchCommand builds the command that begins a saved-data transfer
// at the first page.
func StartFetchCommand() []byte {
	return []byte{FrameStart, OpStartFetch, 0x00, 0x00}
}

// NextPageCommand builds the command that requests the next saved-data page.
func NextPageCommand() []byte {
	return []byte{FrameStart, OpNextPage, 0x00, 0x00}
}

// EncodeText encodes free-form operator text for transmission. The bytes are
// sent as-is with no framing; this path bypasses the structured protocol
// entirely.
func EncodeText(text string) ([]byte, error) {
	if text == "" {
		return nil, ErrEmptyText
	}
	return []byte(text), nil
}
