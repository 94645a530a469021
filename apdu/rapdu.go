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

package apdu

import "fmt"

// SW is a response APDU status word. Real card responses always carry
// a 16-bit SW1/SW2 pair; SWIOError is a synthetic value outside that
// range reserved for transport-level failure and never appears on the
// wire.
type SW uint32

// Status words relevant to the Type 4 Tag Command Set.
const (
	SWSuccess      SW = 0x9000
	SWFileNotFound SW = 0x6A82 // "NDEF Tag Application" or file not found
	SWIOError      SW = 0x10000
)

// String renders the status word the way card traces usually print it.
func (sw SW) String() string {
	if sw == SWIOError {
		return "IO_ERR"
	}
	return fmt.Sprintf("%04X", uint32(sw))
}

// IsSuccess reports whether sw is 0x9000.
func (sw SW) IsSuccess() bool { return sw == SWSuccess }

// SplitResponse splits a raw response APDU into its status word and
// payload. Responses shorter than 2 bytes or longer than
// 0x10000 bytes cannot carry a valid trailer and are mapped to the
// synthetic SWIOError with no payload; every other response yields the
// big-endian SW1||SW2 trailer and the bytes preceding it.
func SplitResponse(resp []byte) (SW, []byte) {
	if len(resp) < 2 || len(resp) > 0x10000 {
		return SWIOError, nil
	}
	n := len(resp)
	sw := SW(resp[n-2])<<8 | SW(resp[n-1])
	return sw, resp[:n-2]
}
