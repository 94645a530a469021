package apdu

import "errors"

// ErrDecodeTooShort is returned by Decode when buf has fewer than the
// 4 mandatory header bytes.
var ErrDecodeTooShort = errors.New("apdu: command APDU shorter than 4 bytes")

// Decode parses a command APDU produced by Encode back into its
// fields. It exists for the software tag responder (tags/static),
// which must recover CLA/INS/P1/P2/data/Le from the bytes a Transport
// hands it, the same way a real card's ISO-DEP layer would.
//
// The case detection follows ISO/IEC 7816-4: given the 4 header bytes,
// the remaining body length alone (plus its first up-to-3 bytes)
// identifies which of the seven cases was used.
func Decode(buf []byte) (cla, ins, p1, p2 byte, data []byte, le int, err error) {
	if len(buf) < 4 {
		return 0, 0, 0, 0, nil, 0, ErrDecodeTooShort
	}
	cla, ins, p1, p2 = buf[0], buf[1], buf[2], buf[3]
	body := buf[4:]
	n := len(body)

	var b1, b2, b3 byte
	if n > 0 {
		b1 = body[0]
	}
	if n > 1 {
		b2 = body[1]
	}
	if n > 2 {
		b3 = body[2]
	}

	switch {
	case n == 0:
		// Case 1.
	case n == 1:
		// Case 2s: B1 codes Le, 0 meaning 256.
		le = int(b1)
		if le == 0 {
			le = 256
		}
	case b1 != 0 && n == 1+int(b1):
		// Case 3s.
		data = body[1 : 1+int(b1)]
	case b1 != 0 && n == 2+int(b1):
		// Case 4s.
		data = body[1 : 1+int(b1)]
		leByte := body[1+int(b1)]
		le = int(leByte)
		if le == 0 {
			le = 256
		}
	case b1 == 0 && n == 3:
		// Case 2e: both zero means 65536.
		le = int(b2)<<8 | int(b3)
		if le == 0 {
			le = 0x10000
		}
	case b1 == 0 && (int(b2)<<8|int(b3)) != 0 && n == 3+(int(b2)<<8|int(b3)):
		// Case 3e.
		lc := int(b2)<<8 | int(b3)
		data = body[3 : 3+lc]
	case b1 == 0 && (int(b2)<<8|int(b3)) != 0 && n == 5+(int(b2)<<8|int(b3)):
		// Case 4e.
		lc := int(b2)<<8 | int(b3)
		data = body[3 : 3+lc]
		le = int(body[3+lc])<<8 | int(body[3+lc+1])
		if le == 0 {
			le = 0x10000
		}
	default:
		return 0, 0, 0, 0, nil, 0, errors.New("apdu: command APDU body does not match any known case")
	}
	return cla, ins, p1, p2, data, le, nil
}
