// Package swtag provides an in-process target.Transport implementation
// backed by a software Type 4 tag (tags/static), with no radio
// hardware involved. It exists to let both this module's tests and
// the nfctype4-tool "sim" subcommand drive the init state machine
// against a scripted tag.
package swtag

import (
	"github.com/nfc-tools/nfctype4core/target"
	"github.com/nfc-tools/nfctype4core/tags/static"
)

// Commander is the minimal surface swtag needs from a software tag;
// tags/static.Tag satisfies it.
type Commander interface {
	Command(cmd []byte) []byte
}

// Driver implements target.Transport by calling straight into a
// Commander. Since there is no real I/O, every Transmit completes
// synchronously and reactivation always succeeds immediately.
type Driver struct {
	Tag Commander

	nextID uint32
}

// New wraps tag in a Driver and returns a ready-to-use Target with
// reactivation support.
func New(tag Commander) *target.Target {
	return target.NewTarget(target.TechA, target.ProtoISODEPA, true, &Driver{Tag: tag})
}

// Transmit immediately invokes onResponse with the tag's reply.
func (d *Driver) Transmit(data []byte, seq *target.Sequence, onResponse func(target.Status, []byte), onDestroy func()) uint32 {
	if d.Tag == nil {
		return 0
	}
	d.nextID++
	id := d.nextID

	resp := d.Tag.Command(data)
	if onResponse != nil {
		onResponse(target.StatusOK, resp)
	}
	if onDestroy != nil {
		onDestroy()
	}
	return id
}

// Cancel is a no-op: Transmit never leaves anything pending.
func (d *Driver) Cancel(id uint32) {}

// Reactivate always succeeds immediately; a software tag has no RF
// layer to re-initialize.
func (d *Driver) Reactivate(seq *target.Sequence, onComplete func(target.ReactivateStatus)) bool {
	if onComplete != nil {
		onComplete(target.ReactivateDone)
	}
	return true
}
