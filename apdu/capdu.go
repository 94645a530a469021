/***
    Copyright (c) 2016, Hector Sanjuan

    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU Lesser General Public License as published by
    the Free Software Foundation, either version 3 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU Lesser General Public License for more details.

    You should have received a copy of the GNU Lesser General Public License
    along with this program.  If not, see <http://www.gnu.org/licenses/>.
***/

// Package apdu implements bit-exact encoding of ISO/IEC 7816-4 command
// APDUs (all seven Lc/Le cases) and parsing of response APDUs into a
// payload plus status word.
package apdu

import "errors"

// CAPDU.INS relevant to the Type 4 Tag Specification.
const (
	INSSelect = byte(0xA4)
	INSRead   = byte(0xB0)
	INSUpdate = byte(0xD6)
)

// P1/P2 values used by the NDEF Tag Application select procedure.
const (
	P1SelectByID   = byte(0x00)
	P1SelectByName = byte(0x04)
	P2FirstNoData  = byte(0x0C) // first occurrence, no FCI/FCP/FMD returned
)

// MaxLc is the largest command data length the encoder accepts.
const MaxLc = 0xFFFF

// MaxLe is the largest expected-response length the encoder accepts;
// 0x10000 (65536) represents "as much as the card can send".
const MaxLe = 0x10000

// ErrEncodeTooLarge is returned by Encode when Lc or Le is out of range.
var ErrEncodeTooLarge = errors.New("apdu: Lc or Le out of range")

// Encode writes a command APDU into *buf, reusing its backing array
// across calls the way a single Tag's scratch buffer is reused for
// every outgoing command (see the scratch field of tag4.Tag). It selects one of the seven ISO/IEC 7816-4 encodings:
//
//	Case 1:  CLA INS P1 P2
//	Case 2s: .. LE                      (LE=0 means 256)
//	Case 3s: .. LC body
//	Case 4s: .. LC body LE
//	Case 2e: .. 00 LE_hi LE_lo          (both zero means 65536)
//	Case 3e: .. 00 LC_hi LC_lo body
//	Case 4e: .. 00 LC_hi LC_lo body LE_hi LE_lo
//
// data may be nil for an empty command body. le is the expected
// response length, 0..=0x10000 (0 means no data expected back).
//
// On success *buf holds exactly the encoded command and Encode returns
// nil. On failure (lc > 0xFFFF or le > 0x10000) *buf is truncated to
// zero length and ErrEncodeTooLarge is returned.
func Encode(buf *[]byte, cla, ins, p1, p2 byte, data []byte, le int) error {
	lc := len(data)
	if lc > MaxLc || le < 0 || le > MaxLe {
		*buf = (*buf)[:0]
		return ErrEncodeTooLarge
	}

	b := (*buf)[:0]
	b = append(b, cla, ins, p1, p2)

	if lc > 0 {
		if lc <= 0xFF {
			// Cases 3s and 4s.
			b = append(b, byte(lc))
		} else {
			// Cases 3e and 4e.
			b = append(b, 0, byte(lc>>8), byte(lc))
		}
		b = append(b, data...)
	}

	if le > 0 {
		if le <= 0x100 && lc <= 0xFF {
			// Cases 2s and 4s.
			if le == 0x100 {
				b = append(b, 0)
			} else {
				b = append(b, byte(le))
			}
		} else {
			// Cases 2e and 4e.
			if lc == 0 {
				// Case 2e needs a lone padding zero ahead of
				// the two-byte Le so it isn't mistaken for Lc.
				b = append(b, 0)
			}
			if le == MaxLe {
				b = append(b, 0, 0)
			} else {
				b = append(b, byte(le>>8), byte(le))
			}
		}
	}

	*buf = b
	return nil
}

// NDEFAID is the NDEF Tag Application identifier
// (NFCForum-TS-Type-4-Tag_2.0, Table 9).
var NDEFAID = []byte{0xD2, 0x76, 0x00, 0x00, 0x85, 0x01, 0x01}

// CCFileID is the well-known file identifier of the Capability
// Container (NFCForum-TS-Type-4-Tag_2.0).
const CCFileID = uint16(0xE103)
