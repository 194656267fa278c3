// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Orchardsense

package pomona

import (
	"encoding/binary"
	"fmt"
)

// PageResult is the decoded contents of one saved-data reply frame.
type PageResult struct {
	Records []Record // in wire order, IDs unassigned
	Done    bool     // this page ends the transfer
	Reason  Reason   // how the transfer ended, ReasonNone while Done is false
}

// DecodePage decodes a complete saved-data reply frame into records.
//
// A declared payload length of zero is the clean empty end of a transfer.
// Otherwise the payload holds floor(length/RecordSize) candidate slots,
// decoded in order. A slot whose category byte is zero is a terminator: the
// records before it are returned and nothing past it is interpreted. A page
// without a terminator that carries fewer than FullPageRecords slots is also
// the last one. The two rules are independent; either alone ends the transfer.
//
// DecodePage never reads past the slot region. A frame shorter than its
// declared payload length is a transport-integrity violation and returns
// ErrTruncatedPage rather than a partial page.
func DecodePage(frame []byte) (PageResult, error) {
	if len(frame) < HeaderSize || frame[0] != FrameStart || frame[1] != OpSavedData {
		return PageResult{}, fmt.Errorf("pomona: not a saved-data frame")
	}

	payloadLen := int(binary.LittleEndian.Uint16(frame[2:4]))
	if len(frame) < HeaderSize+payloadLen {
		return PageResult{}, fmt.Errorf("%w: declared %d bytes, frame carries %d",
			ErrTruncatedPage, payloadLen, len(frame)-HeaderSize)
	}

	if payloadLen == 0 {
		return PageResult{Done: true, Reason: ReasonEmptyPage}, nil
	}

	numSlots := payloadLen / RecordSize
	result := PageResult{Records: make([]Record, 0, numSlots)}

	for i := 0; i < numSlots; i++ {
		slot := frame[HeaderSize+i*RecordSize : HeaderSize+(i+1)*RecordSize]
		if slot[offFruit] == 0 {
			result.Done = true
			result.Reason = ReasonSentinel
			return result, nil
		}
		result.Records = append(result.Records, decodeRecord(slot))
	}

	if numSlots < FullPageRecords {
		result.Done = true
		result.Reason = ReasonShortPage
	}
	return result, nil
}
