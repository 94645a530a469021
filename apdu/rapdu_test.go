package apdu

import "testing"

func TestSplitResponse(t *testing.T) {
	cases := []struct {
		name    string
		resp    []byte
		wantSW  SW
		wantLen int
	}{
		{"success no data", []byte{0x90, 0x00}, SWSuccess, 0},
		{"success with data", []byte{0xD1, 0x01, 0xFF, 0x54, 0x90, 0x00}, SWSuccess, 4},
		{"file not found", []byte{0x6A, 0x82}, SWFileNotFound, 0},
		{"too short", []byte{0x90}, SWIOError, 0},
		{"empty", []byte{}, SWIOError, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			sw, payload := SplitResponse(c.resp)
			if sw != c.wantSW {
				t.Errorf("SW = %v, want %v", sw, c.wantSW)
			}
			if len(payload) != c.wantLen {
				t.Errorf("payload len = %d, want %d", len(payload), c.wantLen)
			}
		})
	}
}

func TestSplitResponseRoundTrip(t *testing.T) {
	payload := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	resp := append(append([]byte{}, payload...), 0x90, 0x00)
	sw, got := SplitResponse(resp)
	if !sw.IsSuccess() {
		t.Fatalf("expected success, got %v", sw)
	}
	for i := range payload {
		if got[i] != payload[i] {
			t.Fatalf("payload mismatch at %d: got %02X want %02X", i, got[i], payload[i])
		}
	}
}

func TestSplitResponseTooLong(t *testing.T) {
	resp := make([]byte, 0x10001)
	sw, payload := SplitResponse(resp)
	if sw != SWIOError || payload != nil {
		t.Errorf("expected IO_ERR for oversized response, got %v / %d bytes", sw, len(payload))
	}
}
