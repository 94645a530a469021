package tag4

import (
	"github.com/nfc-tools/nfctype4core/apdu"
	"github.com/nfc-tools/nfctype4core/target"
)

// RespFunc receives the outcome of a Submit call. sw is apdu.SWIOError
// when the Transport reported a non-OK status or an implausibly short
// response.
type RespFunc func(tag *Tag, sw apdu.SW, payload []byte, user interface{})

// DestroyFunc runs exactly once after RespFunc, or in its place if the
// Transmission never reached a response (cancellation).
type DestroyFunc func(user interface{})

type isoDepTx struct {
	tag     *Tag
	resp    RespFunc
	destroy DestroyFunc
	user    interface{}
}

// Submit is the ISO-DEP Submitter: it encodes a command APDU
// into the tag's scratch buffer, dispatches it through the Target
// bound to seq, and on response splits off the status word before
// invoking resp. It is also the public pass-through entry point for
// higher layers issuing arbitrary 7816-4 APDUs — the only behavioural
// difference from internal use is that a nil tag is accepted and
// simply yields 0, rather than panicking.
func Submit(t *Tag, cla, ins, p1, p2 byte, data []byte, le int, seq *target.Sequence, resp RespFunc, destroy DestroyFunc, user interface{}) uint32 {
	if t == nil {
		return 0
	}
	if err := apdu.Encode(&t.scratch, cla, ins, p1, p2, data, le); err != nil {
		return 0
	}

	rec := &isoDepTx{tag: t, resp: resp, destroy: destroy, user: user}
	wire := append([]byte(nil), t.scratch...)

	id := t.Target.Transmit(wire, seq,
		func(status target.Status, payload []byte) {
			// A destroyed tag must never observe its response
			// callback; onDestroy still runs.
			if rec.tag.destroyed {
				return
			}
			if rec.resp == nil {
				return
			}
			if status == target.StatusOK && len(payload) >= 2 {
				sw, body := apdu.SplitResponse(payload)
				rec.resp(rec.tag, sw, body, rec.user)
			} else {
				rec.resp(rec.tag, apdu.SWIOError, nil, rec.user)
			}
		},
		func() {
			if rec.destroy != nil {
				rec.destroy(rec.user)
			}
		},
	)
	// Transmit returning 0 means the Transport never queued anything:
	// no callback will ever fire, so the destructor must not either.
	return id
}

// Submit is the (*Tag) convenience form of the package-level Submit,
// used throughout the init state machine.
func (t *Tag) Submit(cla, ins, p1, p2 byte, data []byte, le int, seq *target.Sequence, resp RespFunc, destroy DestroyFunc, user interface{}) uint32 {
	return Submit(t, cla, ins, p1, p2, data, le, seq, resp, destroy, user)
}
