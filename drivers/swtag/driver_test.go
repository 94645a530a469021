package swtag

import (
	"testing"

	"github.com/nfc-tools/nfctype4core/apdu"
	"github.com/nfc-tools/nfctype4core/target"
	"github.com/nfc-tools/nfctype4core/tags/static"
)

func TestDriverDeliversResponseSynchronously(t *testing.T) {
	tag := static.New()
	tgt := target.NewTarget(target.TechA, target.ProtoISODEPA, true, &Driver{Tag: tag})

	var buf []byte
	apdu.Encode(&buf, 0x00, apdu.INSSelect, apdu.P1SelectByName, 0x00,
		[]byte{0xD2, 0x76, 0x00, 0x00, 0x85, 0x01, 0x01}, 256)

	var gotStatus target.Status
	var gotPayload []byte
	destroyed := false

	id := tgt.Transmit(buf, nil, func(status target.Status, payload []byte) {
		gotStatus = status
		gotPayload = payload
	}, func() {
		destroyed = true
	})

	if id == 0 {
		t.Fatal("Transmit should return a non-zero id")
	}
	if gotStatus != target.StatusOK {
		t.Fatalf("status = %v, want OK", gotStatus)
	}
	sw, _ := apdu.SplitResponse(gotPayload)
	if sw != apdu.SWSuccess {
		t.Fatalf("SW = %v, want success", sw)
	}
	if !destroyed {
		t.Error("onDestroy should have run")
	}
}

func TestDriverTransmitWithoutTagFails(t *testing.T) {
	d := &Driver{}
	if id := d.Transmit(nil, nil, nil, nil); id != 0 {
		t.Fatal("Transmit with no Tag set should return 0")
	}
}

func TestDriverReactivateAlwaysSucceeds(t *testing.T) {
	d := &Driver{Tag: static.New()}
	var got target.ReactivateStatus
	ok := d.Reactivate(nil, func(s target.ReactivateStatus) { got = s })
	if !ok {
		t.Fatal("Reactivate should report true")
	}
	if got != target.ReactivateDone {
		t.Fatalf("status = %v, want DONE", got)
	}
}
