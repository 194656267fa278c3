// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Orchardsense

package pomona

import (
	"encoding/binary"
	"math"
	"time"
)

// Record is one decoded saved-data entry.
//
// ID is a controller-side sequence number assigned by the Session for display
// correlation only. It carries no protocol meaning and never participates in
// decoding or completion decisions.
type Record struct {
	ID          int        `json:"id" cbor:"0,keyasint"`
	Time        time.Time  `json:"time" cbor:"1,keyasint"`
	Fruit       uint8      `json:"fruit" cbor:"2,keyasint"`
	Temperature float32    `json:"temperature" cbor:"3,keyasint"`
	TreeNo      uint16     `json:"treeNo" cbor:"4,keyasint"`
	DefectCode  uint16     `json:"defectCode" cbor:"5,keyasint"`
	Results     [5]float32 `json:"results" cbor:"6,keyasint"`
}

// Record slot field offsets, relative to the slot start.
// Bytes not named here are reserved by the probe firmware.
const (
	offFruit   = 0 // u8, 0 = page terminator
	offYear    = 1 // u8, actual year = value + YearEpoch
	offMonth   = 2
	offDay     = 3
	offHour    = 4
	offMinute  = 5
	offSecond  = 6
	offTemp    = 7  // f32
	offTreeNo  = 15 // u16
	offDefect  = 21 // u16
	offResults = 23 // five consecutive f32
)

// decodeRecord decodes one RecordSize-byte slot. The caller guarantees
// len(slot) >= RecordSize and slot[offFruit] != 0.
func decodeRecord(slot []byte) Record {
	r := Record{
		Fruit: slot[offFruit],
		Time: time.Date(
			int(slot[offYear])+YearEpoch,
			time.Month(slot[offMonth]),
			int(slot[offDay]),
			int(slot[offHour]),
			int(slot[offMinute]),
			int(slot[offSecond]),
			0, time.UTC),
		Temperature: math.Float32frombits(binary.LittleEndian.Uint32(slot[offTemp:])),
		TreeNo:      binary.LittleEndian.Uint16(slot[offTreeNo:]),
		DefectCode:  binary.LittleEndian.Uint16(slot[offDefect:]),
	}
	for i := range r.Results {
		r.Results[i] = math.Float32frombits(binary.LittleEndian.Uint32(slot[offResults+4*i:]))
	}
	return r
}
