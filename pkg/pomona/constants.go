// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Orchardsense

// Package pomona implements the Pomona orchard-probe link protocol.
//
// Pomona probes store fruit measurement records on-device and hand them to a
// controller page by page over a serial or bridged link. This package provides
// frame classification, record/page decoding, command encoding, and the
// pagination session state machine. It does not manage the transport itself:
// callers feed it complete inbound frames and give it a Sender for outbound
// commands.
package pomona

// Protocol framing bytes
const (
	// FrameStart marks the first byte of every structured protocol frame.
	FrameStart = 0xAE

	// Reply opcodes (probe -> controller)
	OpSavedData = 0xDA // paginated saved-data reply

	// Command opcodes (controller -> probe)
	OpStartFetch = 0x5A // begin saved-data transfer at the first page
	OpNextPage   = 0x5B // request the next saved-data page
)

// Saved-data layout
const (
	// HeaderSize is the reply frame header: start byte, opcode, and a
	// little-endian uint16 payload length.
	HeaderSize = 4

	// RecordSize is the fixed width of one saved-data record slot in bytes.
	RecordSize = 43

	// FullPageRecords is the number of records a full page carries. A page
	// with fewer slots and no terminator is the last page of the transfer.
	// This governs only the end-of-transfer heuristic, never decoding.
	FullPageRecords = 50

	// YearEpoch is added to the single-byte year field of a record timestamp.
	YearEpoch = 2000
)

// State represents the pagination session state
type State int

// Session states
const (
	StateIdle State = iota
	StateAwaitingPage
	StateComplete
	StateFailed
)

// Reason records how a completed transfer ended
type Reason int

// Completion reasons
const (
	ReasonNone      Reason = iota
	ReasonEmptyPage        // zero-length payload, nothing left on the probe
	ReasonSentinel         // slot with category 0 terminated the page
	ReasonShortPage        // page carried fewer than FullPageRecords slots
)

// FrameKind classifies an inbound frame
type FrameKind int

// Frame classifications
const (
	FrameIgnored  FrameKind = iota // too short to carry an opcode
	FrameDataPage                  // saved-data reply, routed to the page decoder
	FrameRaw                       // unstructured text/byte traffic, passed through
)
