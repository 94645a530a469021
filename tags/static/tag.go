// Package static implements an in-process software NFC Forum Type 4
// Tag: something that answers command APDUs the same way a real card
// would, without any radio hardware. Used by drivers/swtag to back a
// target.Target for tests and for the nfctype4-tool sim subcommand.
package static

import (
	"bytes"
	"encoding/binary"

	"github.com/nfc-tools/nfctype4core/apdu"
	"github.com/nfc-tools/nfctype4core/capabilitycontainer"
)

// DefaultNDEFFileID is the file identifier used for the NDEF file
// unless overridden.
const DefaultNDEFFileID = uint16(0xE104)

var ndefApplication = []byte{0xD2, 0x76, 0x00, 0x00, 0x85, 0x01, 0x01}

// Tag is a static software Type 4 tag: its NDEF content is fixed at
// construction time and every read returns the same bytes.
type Tag struct {
	hasNdefApp     bool
	memory         map[uint16][]byte
	selectedFileID uint16
}

// Option configures a Tag at construction time, primarily so tests can
// drive the init state machine's negative paths.
type Option func(*Tag)

// WithoutNdefApplication makes AID-select fail with 6A82, as if the
// card had no NDEF Tag Application at all.
func WithoutNdefApplication() Option {
	return func(t *Tag) { t.hasNdefApp = false }
}

// WithoutCC makes CC-select fail with 6A82.
func WithoutCC() Option {
	return func(t *Tag) { delete(t.memory, capabilitycontainer.CCID) }
}

// WithRawCC replaces the Capability Container's raw bytes outright,
// for scenarios exercising a malformed or truncated CC (too short,
// wrong TLV type, reserved FID, MLe too small).
func WithRawCC(raw []byte) Option {
	return func(t *Tag) { t.memory[capabilitycontainer.CCID] = append([]byte(nil), raw...) }
}

// WithNDEFMessage programs the NDEF file (default file ID) with the
// given already-marshaled NDEF message bytes.
func WithNDEFMessage(body []byte) Option {
	return func(t *Tag) {
		nlen := make([]byte, 2)
		binary.BigEndian.PutUint16(nlen, uint16(len(body)))
		t.memory[DefaultNDEFFileID] = append(nlen, body...)
	}
}

// New returns a Tag with a valid, minimal CC and an empty NDEF file
// (NLEN = 0000), then applies opts.
func New(opts ...Option) *Tag {
	t := &Tag{
		hasNdefApp: true,
		memory:     make(map[uint16][]byte),
	}
	cc := &capabilitycontainer.CapabilityContainer{
		CCLEN:             capabilitycontainer.Len,
		MajorVersion:      2,
		MinorVersion:      0,
		MLe:               0x003B,
		MLc:               0x0034,
		FileControlType:   0x04,
		FileControlLength: 0x06,
		FileID:            DefaultNDEFFileID,
		MaxFileSize:       0xFFFE,
		ReadAccess:        0x00,
		WriteAccess:       0x00,
	}
	t.memory[capabilitycontainer.CCID] = cc.Marshal()
	t.memory[DefaultNDEFFileID] = []byte{0x00, 0x00}

	for _, o := range opts {
		o(t)
	}
	return t
}

// Command decodes a command APDU and returns the raw response bytes
// (payload followed by the two-byte status word), mirroring exactly
// what a Transport would hand back from the wire.
func (t *Tag) Command(cmd []byte) []byte {
	cla, ins, p1, p2, data, le, err := apdu.Decode(cmd)
	_ = cla
	if err != nil {
		return sw(apdu.SWIOError)
	}
	switch ins {
	case apdu.INSSelect:
		return t.doSelect(p1, p2, data, le)
	case apdu.INSRead:
		return t.doRead(p1, p2, le)
	default:
		return sw(apdu.SWFileNotFound)
	}
}

func (t *Tag) doSelect(p1, p2 byte, data []byte, le int) []byte {
	switch {
	case p1 == apdu.P1SelectByName && p2 == 0x00:
		if !t.hasNdefApp || !bytes.Equal(data, ndefApplication) {
			return sw(apdu.SWFileNotFound)
		}
		return sw(apdu.SWSuccess)
	case p1 == apdu.P1SelectByID && p2 == apdu.P2FirstNoData:
		if len(data) != 2 {
			return sw(apdu.SWFileNotFound)
		}
		fid := uint16(data[0])<<8 | uint16(data[1])
		if _, ok := t.memory[fid]; !ok {
			return sw(apdu.SWFileNotFound)
		}
		t.selectedFileID = fid
		return sw(apdu.SWSuccess)
	default:
		return sw(apdu.SWFileNotFound)
	}
}

func (t *Tag) doRead(p1, p2 byte, le int) []byte {
	file, ok := t.memory[t.selectedFileID]
	if !ok {
		return sw(apdu.SWFileNotFound)
	}
	offset := int(p1)<<8 | int(p2)
	if offset > len(file) {
		return sw(apdu.SWFileNotFound)
	}
	end := offset + le
	if end > len(file) {
		end = len(file)
	}
	return append(append([]byte(nil), file[offset:end]...), byte(apdu.SWSuccess>>8), byte(apdu.SWSuccess))
}

func sw(s apdu.SW) []byte {
	return []byte{byte(s >> 8), byte(s)}
}
