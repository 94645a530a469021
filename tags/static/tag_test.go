package static

import (
	"testing"

	"github.com/nfc-tools/nfctype4core/apdu"
	"github.com/nfc-tools/nfctype4core/capabilitycontainer"
)

func selectAID(tag *Tag) []byte {
	var buf []byte
	apdu.Encode(&buf, 0x00, apdu.INSSelect, apdu.P1SelectByName, 0x00, ndefApplication, 256)
	return tag.Command(buf)
}

func selectByID(tag *Tag, fid uint16) []byte {
	var buf []byte
	apdu.Encode(&buf, 0x00, apdu.INSSelect, apdu.P1SelectByID, apdu.P2FirstNoData,
		[]byte{byte(fid >> 8), byte(fid)}, 0)
	return tag.Command(buf)
}

func readBinary(tag *Tag, offset, le int) []byte {
	var buf []byte
	apdu.Encode(&buf, 0x00, apdu.INSRead, byte(offset>>8), byte(offset), nil, le)
	return tag.Command(buf)
}

func TestSelectNdefApplication(t *testing.T) {
	tag := New()
	resp := selectAID(tag)
	swv, _ := apdu.SplitResponse(resp)
	if swv != apdu.SWSuccess {
		t.Fatalf("SW = %v, want success", swv)
	}
}

func TestSelectNdefApplicationAbsent(t *testing.T) {
	tag := New(WithoutNdefApplication())
	resp := selectAID(tag)
	swv, _ := apdu.SplitResponse(resp)
	if swv != apdu.SWFileNotFound {
		t.Fatalf("SW = %v, want file-not-found", swv)
	}
}

func TestSelectAndReadCC(t *testing.T) {
	tag := New()
	resp := selectByID(tag, capabilitycontainer.CCID)
	swv, _ := apdu.SplitResponse(resp)
	if swv != apdu.SWSuccess {
		t.Fatalf("CC select SW = %v, want success", swv)
	}

	resp = readBinary(tag, 0, 15)
	swv, payload := apdu.SplitResponse(resp)
	if swv != apdu.SWSuccess {
		t.Fatalf("CC read SW = %v, want success", swv)
	}
	if len(payload) != 15 {
		t.Fatalf("CC payload length = %d, want 15", len(payload))
	}
}

func TestSelectCCAbsent(t *testing.T) {
	tag := New(WithoutCC())
	resp := selectByID(tag, capabilitycontainer.CCID)
	swv, _ := apdu.SplitResponse(resp)
	if swv != apdu.SWFileNotFound {
		t.Fatalf("SW = %v, want file-not-found", swv)
	}
}

func TestReadNdefFileEmpty(t *testing.T) {
	tag := New()
	selectByID(tag, DefaultNDEFFileID)

	resp := readBinary(tag, 0, 2)
	swv, payload := apdu.SplitResponse(resp)
	if swv != apdu.SWSuccess {
		t.Fatalf("SW = %v, want success", swv)
	}
	if payload[0] != 0 || payload[1] != 0 {
		t.Errorf("expected NLEN 0000, got % X", payload)
	}
}

func TestReadNdefFileWithMessage(t *testing.T) {
	body := []byte{0xD1, 0x01, 0xFF, 0x54}
	tag := New(WithNDEFMessage(body))
	selectByID(tag, DefaultNDEFFileID)

	resp := readBinary(tag, 0, 2)
	_, payload := apdu.SplitResponse(resp)
	nlen := int(payload[0])<<8 | int(payload[1])
	if nlen != len(body) {
		t.Fatalf("NLEN = %d, want %d", nlen, len(body))
	}
}

func TestRawCCOverride(t *testing.T) {
	truncated := []byte{0x00, 0x0F, 0x20, 0x00, 0x3B, 0x00, 0x34, 0x04, 0x06, 0xE1, 0x04, 0x00, 0x32, 0x00}
	tag := New(WithRawCC(truncated))
	selectByID(tag, capabilitycontainer.CCID)
	resp := readBinary(tag, 0, 15)
	_, payload := apdu.SplitResponse(resp)
	if len(payload) != len(truncated) {
		t.Fatalf("payload length = %d, want %d", len(payload), len(truncated))
	}
}
