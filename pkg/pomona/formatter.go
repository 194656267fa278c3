// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Orchardsense

package pomona

import (
	"fmt"
	"strings"
)

// FormatRecord formats a record into a human-readable line.
func FormatRecord(r Record) string {
	results := make([]string, len(r.Results))
	for i, v := range r.Results {
		results[i] = fmt.Sprintf("%.2f", v)
	}
	return fmt.Sprintf("#%-4d %s  fruit=%-3d tree=%-5d defect=0x%04X temp=%.1f°C  [%s]",
		r.ID,
		r.Time.Format("2006-01-02 15:04:05"),
		r.Fruit, r.TreeNo, r.DefectCode, r.Temperature,
		strings.Join(results, ", "))
}

// FormatState returns the human-readable name for a session state.
func FormatState(s State) string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateAwaitingPage:
		return "AWAITING_PAGE"
	case StateComplete:
		return "COMPLETE"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// FormatReason returns the human-readable name for a completion reason.
func FormatReason(r Reason) string {
	switch r {
	case ReasonNone:
		return "NONE"
	case ReasonEmptyPage:
		return "EMPTY_PAGE"
	case ReasonSentinel:
		return "TERMINATOR"
	case ReasonShortPage:
		return "SHORT_PAGE"
	default:
		return "UNKNOWN"
	}
}

// FormatHex renders bytes as spaced uppercase hex, 16 bytes per line.
func FormatHex(data []byte) string {
	var b strings.Builder
	for i, v := range data {
		if i > 0 {
			if i%16 == 0 {
				b.WriteByte('\n')
			} else {
				b.WriteByte(' ')
			}
		}
		fmt.Fprintf(&b, "%02X", v)
	}
	return b.String()
}

// FormatClassification formats one classified inbound frame for the traffic
// log. Data pages show the declared payload size, raw traffic shows text and
// hex.
func FormatClassification(c Classification) string {
	switch c.Kind {
	case FrameDataPage:
		return fmt.Sprintf("DATA_PAGE payload=%d bytes (%d slots)",
			len(c.Payload), len(c.Payload)/RecordSize)
	case FrameRaw:
		return fmt.Sprintf("RAW %q\n  %s", c.Text, strings.ReplaceAll(c.Hex, "\n", "\n  "))
	default:
		return fmt.Sprintf("IGNORED (%d bytes)", len(c.Frame))
	}
}
