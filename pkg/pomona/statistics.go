// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Orchardsense

package pomona

import (
	"fmt"
	"time"
)

// Statistics tracks inbound traffic counters and rates for display.
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	TotalFrames   uint64
	DataPages     uint64
	RawFrames     uint64
	IgnoredFrames uint64
	Records       uint64
	DecodeErrors  uint64

	// Rates (calculated)
	FrameRate float64 // frames/sec
	ErrorRate float64 // errors/sec
}

// NewStatistics creates a new statistics tracker.
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// Update records one classified frame, the number of records it yielded, and
// any decode error it produced.
func (s *Statistics) Update(kind FrameKind, records int, decodeErr error) {
	s.TotalFrames++
	switch kind {
	case FrameDataPage:
		s.DataPages++
	case FrameRaw:
		s.RawFrames++
	default:
		s.IgnoredFrames++
	}
	s.Records += uint64(records)
	if decodeErr != nil {
		s.DecodeErrors++
	}
	s.LastUpdateTime = time.Now()
}

// CalculateRates calculates frame and error rates.
func (s *Statistics) CalculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed > 0 {
		s.FrameRate = float64(s.TotalFrames) / elapsed
		s.ErrorRate = float64(s.DecodeErrors) / elapsed
	}
}

// String returns a formatted statistics summary.
func (s *Statistics) String() string {
	s.CalculateRates()
	elapsed := time.Since(s.StartTime)

	result := fmt.Sprintf("=== Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Total Frames:    %8d\n", s.TotalFrames)
	result += fmt.Sprintf("Data Pages:      %8d\n", s.DataPages)
	result += fmt.Sprintf("Raw Frames:      %8d\n", s.RawFrames)
	if s.IgnoredFrames > 0 {
		result += fmt.Sprintf("Ignored Frames:  %8d\n", s.IgnoredFrames)
	}
	result += fmt.Sprintf("Records:         %8d\n", s.Records)
	if s.DecodeErrors > 0 {
		result += fmt.Sprintf("Decode Errors:   %8d\n", s.DecodeErrors)
	}
	result += fmt.Sprintf("Frame Rate:      %8.1f frames/sec\n", s.FrameRate)
	result += "================================\n"
	return result
}

// Reset resets all statistics counters.
func (s *Statistics) Reset() {
	now := time.Now()
	*s = Statistics{StartTime: now, LastUpdateTime: now}
}
