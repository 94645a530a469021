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

// Package capabilitycontainer parses and validates the NFC Forum Type 4
// Tag Capability Container (NFCForum-TS-Type-4-Tag_2.0) stored
// at file E103h.
package capabilitycontainer

import (
	"errors"

	"github.com/moov-io/bertlv"
)

// CCID is the well-known file identifier of the Capability Container.
const CCID = uint16(0xE103)

// Len is the fixed size of the mandatory portion of the Capability
// Container that the init state machine reads in a single READ_BINARY.
const Len = 15

// CapabilityContainer is the parsed Capability Container File.
//
// Layout (NFCForum-TS-Type-4-Tag_2.0, Table 4, and the NDEF File
// Control TLV):
//
//	CCLEN(2) MappingVersion(1) MLe(2) MLc(2) T(1)=04 L(1)=06 FID(2)
//	MaxFileSize(2) ReadAccess(1) WriteAccess(1) [optional TLV blocks]
type CapabilityContainer struct {
	CCLEN             uint16
	MajorVersion      byte
	MinorVersion      byte
	MLe               uint16
	MLc               uint16
	FileControlType   byte // must be 0x04 (NDEF File Control TLV)
	FileControlLength byte // must be 0x06
	FileID            uint16
	MaxFileSize       uint16
	ReadAccess        byte // 0x00 means read access granted
	WriteAccess       byte
	Extra             []bertlv.TLV // any additional TLV blocks beyond the mandatory 15 bytes
}

// Errors returned by Validate, one per rejection rule.
var (
	ErrTooShort             = errors.New("capabilitycontainer: fewer than 15 bytes")
	ErrUnsupportedVersion   = errors.New("capabilitycontainer: unsupported mapping version")
	ErrMalformedControlTLV  = errors.New("capabilitycontainer: NDEF File Control TLV is not T=04 L=06")
	ErrReadAccessNotGranted = errors.New("capabilitycontainer: NDEF file read access not granted")
	ErrReservedFileID       = errors.New("capabilitycontainer: reserved or RFU file identifier")
	ErrMLeTooSmall          = errors.New("capabilitycontainer: MLe below the minimum 0x000F")
)

func be16(b []byte) uint16 { return uint16(b[0])<<8 | uint16(b[1]) }

func putBE16(b []byte, v uint16) { b[0] = byte(v >> 8); b[1] = byte(v) }

// Parse decodes the mandatory 15-byte Capability Container. If buf
// carries additional bytes beyond those 15 (the CCLEN field is not
// consulted), they are decoded as trailing
// BER-TLV blocks (proprietary file control information);
// a decode failure there is not fatal, since those blocks are never
// required by the Type 4 Tag Command Set — Extra is simply left empty.
func Parse(buf []byte) (*CapabilityContainer, error) {
	if len(buf) < Len {
		return nil, ErrTooShort
	}
	cc := &CapabilityContainer{
		CCLEN:             be16(buf[0:2]),
		MajorVersion:      buf[2] >> 4,
		MinorVersion:      buf[2] & 0x0F,
		MLe:               be16(buf[3:5]),
		MLc:               be16(buf[5:7]),
		FileControlType:   buf[7],
		FileControlLength: buf[8],
		FileID:            be16(buf[9:11]),
		MaxFileSize:       be16(buf[11:13]),
		ReadAccess:        buf[13],
		WriteAccess:       buf[14],
	}
	if len(buf) > Len {
		if tlvs, err := bertlv.Decode(buf[Len:]); err == nil {
			cc.Extra = tlvs
		}
	}
	return cc, nil
}

// Marshal renders the mandatory 15 bytes (plus any Extra TLV blocks)
// back into wire form. Used by the static software tag to build the CC
// it serves.
func (cc *CapabilityContainer) Marshal() []byte {
	buf := make([]byte, Len)
	putBE16(buf[0:2], cc.CCLEN)
	buf[2] = cc.MajorVersion<<4 | cc.MinorVersion
	putBE16(buf[3:5], cc.MLe)
	putBE16(buf[5:7], cc.MLc)
	buf[7] = cc.FileControlType
	buf[8] = cc.FileControlLength
	putBE16(buf[9:11], cc.FileID)
	putBE16(buf[11:13], cc.MaxFileSize)
	buf[13] = cc.ReadAccess
	buf[14] = cc.WriteAccess
	if len(cc.Extra) > 0 {
		if enc, err := bertlv.Encode(cc.Extra); err == nil {
			buf = append(buf, enc...)
		}
	}
	return buf
}

// Validate applies the acceptance rules: only MajorVersion 2 is
// accepted; the NDEF File Control TLV must be T=04 L=06; read access
// must be granted; FileID must fall in a non-reserved range; MLe must
// be at least 0x000F.
func (cc *CapabilityContainer) Validate() error {
	if cc.MajorVersion != 2 {
		return ErrUnsupportedVersion
	}
	if cc.FileControlType != 0x04 || cc.FileControlLength != 0x06 {
		return ErrMalformedControlTLV
	}
	if cc.ReadAccess != 0x00 {
		return ErrReadAccessNotGranted
	}
	if !validNDEFFileID(cc.FileID) {
		return ErrReservedFileID
	}
	if cc.MLe < 0x000F {
		return ErrMLeTooSmall
	}
	return nil
}

// validNDEFFileID implements the FID acceptance ranges: 0001h-E101h,
// E104h-3EFFh, 3F01h-3FFEh and 4000h-FFFEh are valid; 0000h, E102h,
// E103h, 3F00h, 3FFFh are reserved and FFFFh is RFU.
func validNDEFFileID(fid uint16) bool {
	switch {
	case fid == 0xE102 || fid == 0xE103 || fid == 0x3F00 || fid == 0x3FFF:
		return false
	case fid >= 0x0001 && fid <= 0xE101:
		return true
	case fid >= 0xE104 && fid <= 0x3EFF:
		return true
	case fid >= 0x3F01 && fid <= 0x3FFE:
		return true
	case fid >= 0x4000 && fid <= 0xFFFE:
		return true
	default:
		return false
	}
}
