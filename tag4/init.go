package tag4

import (
	"github.com/nfc-tools/nfctype4core/apdu"
	"github.com/nfc-tools/nfctype4core/capabilitycontainer"
	"github.com/nfc-tools/nfctype4core/ndefrec"
	"github.com/nfc-tools/nfctype4core/target"
)

// ndefRead is transient state for the NDEF-read pipeline,
// present only while ReadNdefBody is looping.
type ndefRead struct {
	fileID      uint16
	declaredLen int
	accum       []byte
	maxRead     int
}

func (t *Tag) selectNdefApp(onDone func(*Tag)) {
	id := t.Submit(0x00, apdu.INSSelect, apdu.P1SelectByName, 0x00, apdu.NDEFAID, 256, t.initSeq,
		func(tag *Tag, sw apdu.SW, payload []byte, _ interface{}) {
			if sw != apdu.SWSuccess {
				// Nothing on the card moved from its power-on state
				// yet, so there is nothing to reactivate away from.
				logger.Printf("NDEF application select failed: %v", sw)
				tag.finishWithoutReactivation(onDone)
				return
			}
			tag.selectCC(onDone)
		}, nil, nil)
	if id == 0 {
		t.finishWithoutReactivation(onDone)
	}
}

// finishWithoutReactivation is the terminal path reserved for the one
// step (application select) whose failure means the card's default
// application selection was never disturbed in the first place.
func (t *Tag) finishWithoutReactivation(onDone func(*Tag)) {
	if t.initSeq != nil {
		t.initSeq.Release()
		t.initSeq = nil
	}
	t.Initialized = true
	if onDone != nil {
		onDone(t)
	}
}

func (t *Tag) selectCC(onDone func(*Tag)) {
	fid := []byte{byte(capabilitycontainer.CCID >> 8), byte(capabilitycontainer.CCID)}
	id := t.Submit(0x00, apdu.INSSelect, apdu.P1SelectByID, apdu.P2FirstNoData, fid, 0, t.initSeq,
		func(tag *Tag, sw apdu.SW, payload []byte, _ interface{}) {
			if sw != apdu.SWSuccess {
				logger.Printf("CC select failed: %v", sw)
				tag.ndefReadDone(onDone)
				return
			}
			tag.readCC(onDone)
		}, nil, nil)
	if id == 0 {
		t.ndefReadDone(onDone)
	}
}

func (t *Tag) readCC(onDone func(*Tag)) {
	id := t.Submit(0x00, apdu.INSRead, 0x00, 0x00, nil, capabilitycontainer.Len, t.initSeq,
		func(tag *Tag, sw apdu.SW, payload []byte, _ interface{}) {
			if sw != apdu.SWSuccess || len(payload) < capabilitycontainer.Len {
				logger.Printf("CC read failed: %v (%d bytes)", sw, len(payload))
				tag.ndefReadDone(onDone)
				return
			}
			cc, err := capabilitycontainer.Parse(payload)
			if err != nil {
				logger.Printf("CC parse failed: %v", err)
				tag.ndefReadDone(onDone)
				return
			}
			if err := cc.Validate(); err != nil {
				logger.Printf("CC rejected: %v", err)
				tag.ndefReadDone(onDone)
				return
			}
			tag.selectNdefFile(cc, onDone)
		}, nil, nil)
	if id == 0 {
		t.ndefReadDone(onDone)
	}
}

func (t *Tag) selectNdefFile(cc *capabilitycontainer.CapabilityContainer, onDone func(*Tag)) {
	fid := []byte{byte(cc.FileID >> 8), byte(cc.FileID)}
	id := t.Submit(0x00, apdu.INSSelect, apdu.P1SelectByID, apdu.P2FirstNoData, fid, 0, t.initSeq,
		func(tag *Tag, sw apdu.SW, payload []byte, _ interface{}) {
			if sw != apdu.SWSuccess {
				logger.Printf("NDEF file select failed: %v", sw)
				tag.ndefReadDone(onDone)
				return
			}
			tag.readNdefLen(cc, onDone)
		}, nil, nil)
	if id == 0 {
		t.ndefReadDone(onDone)
	}
}

func (t *Tag) readNdefLen(cc *capabilitycontainer.CapabilityContainer, onDone func(*Tag)) {
	id := t.Submit(0x00, apdu.INSRead, 0x00, 0x00, nil, 2, t.initSeq,
		func(tag *Tag, sw apdu.SW, payload []byte, _ interface{}) {
			if sw != apdu.SWSuccess || len(payload) != 2 {
				logger.Printf("NDEF length read failed: %v (%d bytes)", sw, len(payload))
				tag.ndefReadDone(onDone)
				return
			}
			declared := int(payload[0])<<8 | int(payload[1])
			if declared == 0 {
				tag.ndefReadDone(onDone)
				return
			}
			tag.read = &ndefRead{
				fileID:      cc.FileID,
				declaredLen: declared,
				maxRead:     int(cc.MLe),
			}
			tag.readNdefBody(onDone)
		}, nil, nil)
	if id == 0 {
		t.ndefReadDone(onDone)
	}
}

func (t *Tag) readNdefBody(onDone func(*Tag)) {
	r := t.read
	remaining := r.declaredLen - len(r.accum)
	want := remaining
	if want > r.maxRead {
		want = r.maxRead
	}
	offset := 2 + len(r.accum)
	p1 := byte(offset >> 8)
	p2 := byte(offset)

	id := t.Submit(0x00, apdu.INSRead, p1, p2, nil, want, t.initSeq,
		func(tag *Tag, sw apdu.SW, payload []byte, _ interface{}) {
			if sw != apdu.SWSuccess || len(payload) == 0 {
				logger.Printf("NDEF body read failed: %v (%d bytes)", sw, len(payload))
				tag.read = nil
				tag.ndefReadDone(onDone)
				return
			}
			tag.read.accum = append(tag.read.accum, payload...)
			if len(tag.read.accum) < tag.read.declaredLen {
				tag.readNdefBody(onDone)
				return
			}
			tag.parseNdef(onDone)
		}, nil, nil)
	if id == 0 {
		t.read = nil
		t.ndefReadDone(onDone)
	}
}

func (t *Tag) parseNdef(onDone func(*Tag)) {
	records, err := ndefrec.Parse(t.read.accum)
	if err != nil {
		logger.Printf("NDEF parse failed: %v", err)
	} else {
		t.NDEF = records
	}
	t.read = nil
	t.ndefReadDone(onDone)
}

// ndefReadDone is the terminal phase every branch converges on except
// application-select failure: release the sequence so unrelated
// traffic can proceed, then reactivate.
func (t *Tag) ndefReadDone(onDone func(*Tag)) {
	seq := t.initSeq
	t.initSeq = nil
	if seq != nil {
		seq.Release()
	}
	if !t.Target.Reactivate(seq, func(status target.ReactivateStatus) {
		if status == target.ReactivateTimeout {
			// The target is about to be dropped; never mark it
			// initialized.
			return
		}
		t.Initialized = true
		if onDone != nil {
			onDone(t)
		}
	}) {
		t.Initialized = true
		if onDone != nil {
			onDone(t)
		}
	}
}
