package libnfc

import (
	"testing"

	"github.com/clausecker/nfc/v2"
)

// Open talks to real libnfc hardware, so it is exercised manually
// rather than in CI. These tests cover everything reachable without
// a reader attached: option application and the Transport methods
// that don't depend on an open device.

func TestWithDeviceIndex(t *testing.T) {
	d := &Driver{}
	WithDeviceIndex(2)(d)
	if d.deviceIndex != 2 {
		t.Fatalf("deviceIndex = %d, want 2", d.deviceIndex)
	}
}

func TestWithModulation(t *testing.T) {
	d := &Driver{}
	m := nfc.Modulation{Type: nfc.ISO14443b, BaudRate: nfc.Nbr106}
	WithModulation(m)(d)
	if d.modulation != m {
		t.Fatalf("modulation = %+v, want %+v", d.modulation, m)
	}
}

func TestDefaultModulationIsISO14443A212(t *testing.T) {
	d := &Driver{
		modulation: nfc.Modulation{Type: nfc.ISO14443a, BaudRate: nfc.Nbr212},
	}
	if d.modulation.Type != nfc.ISO14443a || d.modulation.BaudRate != nfc.Nbr212 {
		t.Fatalf("unexpected default modulation %+v", d.modulation)
	}
}

func TestCancelIsNoOp(t *testing.T) {
	d := &Driver{}
	d.Cancel(1) // must not panic on an empty Driver
}

func TestTransmitAssignsIncreasingIDs(t *testing.T) {
	d := &Driver{requests: make(chan txRequest, 4)}
	first := d.Transmit([]byte{0x00}, nil, nil, nil)
	second := d.Transmit([]byte{0x00}, nil, nil, nil)
	if first == 0 || second == 0 {
		t.Fatal("ids should be non-zero")
	}
	if second != first+1 {
		t.Fatalf("ids should increase by 1, got %d then %d", first, second)
	}
}
