// Package tag4 drives a Target through the NFC Forum Type 4 Tag 2.0
// initialization dialogue: select the NDEF application, read and
// validate the Capability Container, select and read the NDEF file,
// and hand the accumulated bytes to the ndefrec parser.
//
// Every failure path — a negative status word, an I/O error, or a
// malformed Capability Container — is treated the same way: the tag
// is left with an empty NDEF record list and initialization still
// completes. A Type 4 card with no readable NDEF file is a perfectly
// usable tag for raw APDU pass-through.
package tag4

import (
	"io"
	"log"

	"github.com/nfc-tools/nfctype4core/apdu"
	"github.com/nfc-tools/nfctype4core/capabilitycontainer"
	"github.com/nfc-tools/nfctype4core/ndefrec"
	"github.com/nfc-tools/nfctype4core/target"
)

var logger = log.New(io.Discard, "tag4: ", log.LstdFlags)

// SetLogger replaces the package's diagnostic logger. Passing nil
// restores the default (discard) logger.
func SetLogger(l *log.Logger) {
	if l == nil {
		logger = log.New(io.Discard, "tag4: ", log.LstdFlags)
		return
	}
	logger = l
}

// IsoDepParams carries the activation parameters copied verbatim from
// the radio driver: historical bytes (T1) for technology A, or the
// higher-layer response (HLR) for technology B. Retained for the
// lifetime of the tag and exposed to higher layers, but never
// interpreted by this package.
type IsoDepParams struct {
	HistoricalBytes []byte
	HLR             []byte
}

// Tag is a Target plus its Type-4-specific state.
type Tag struct {
	Target *target.Target

	// MTU is the frame-size ceiling negotiated during activation
	// (FSC for Type 4A, FSD for Type 4B).
	MTU int

	// IsoDep holds the activation parameters copied from the driver.
	IsoDep IsoDepParams

	// NDEF is the parsed record list, populated at most once, at the
	// end of initialization. Empty until then, and empty forever if
	// the card has no readable NDEF file.
	NDEF []ndefrec.Record

	// Initialized is true once the init dialogue has run to
	// completion (successfully or not) and reactivation, if
	// attempted, did not time out.
	Initialized bool

	scratch   []byte
	initSeq   *target.Sequence
	read      *ndefRead
	destroyed bool
}

// New wraps an activated Target in Type-4 state and immediately
// begins the initialization dialogue. onDone, if
// non-nil, is invoked once Initialized settles.
func New(t *target.Target, mtu int, isoDep IsoDepParams, onDone func(*Tag)) *Tag {
	tag := &Tag{
		Target: t,
		MTU:    mtu,
		IsoDep: isoDep,
	}
	tag.beginInit(onDone)
	return tag
}

func (t *Tag) beginInit(onDone func(*Tag)) {
	if !t.Target.CanReactivate {
		// Precondition (1): without reactivation support the
		// dialogue is skipped entirely.
		t.Initialized = true
		if onDone != nil {
			onDone(t)
		}
		return
	}
	t.initSeq = t.Target.NewSequence()
	t.selectNdefApp(onDone)
}

// Destroy marks the tag destroyed, so that the response callback of
// any still-pending initialization Transmission is dropped, and
// releases init_read/init_seq, independently of whether
// initialization completed. It does not call Target.Cancel: the tag
// keeps no Transmission id to cancel. Safe to call more than once.
func (t *Tag) Destroy() {
	// A real Transport tracks outstanding ids internally; this core
	// only needs to make sure Submit's trampoline can no longer
	// observe this Tag once Destroy has run (see Submit's liveness
	// guard in submit.go).
	t.destroyed = true
	t.read = nil
	if t.initSeq != nil {
		t.initSeq.Release()
		t.initSeq = nil
	}
}
