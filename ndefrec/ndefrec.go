// Package ndefrec turns an accumulated NDEF file body into a parsed
// message and classifies its records for callers that do not want to
// switch on TNF/Type themselves.
package ndefrec

import (
	"fmt"

	"github.com/hsanjuan/go-ndef"
	"github.com/hsanjuan/go-ndef/types/wkt/text"
	"github.com/hsanjuan/go-ndef/types/wkt/uri"
)

// Kind classifies a Record's payload for callers that only care about
// the well-known NFC Forum record types.
type Kind int

const (
	KindUnknown Kind = iota
	KindText
	KindURI
	KindSmartPoster
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindURI:
		return "uri"
	case KindSmartPoster:
		return "smartposter"
	default:
		return "unknown"
	}
}

// Record is a classified view of a single NDEF record.
type Record struct {
	Kind Kind
	// Text is populated when Kind == KindText.
	Text string
	Lang string
	// URI is populated when Kind == KindURI or KindSmartPoster (the
	// URI record embedded in the smart poster).
	URI string
	Raw *ndef.Record
}

// Parse unmarshals an NDEF message body (the bytes read from the NDEF
// file, with the 2-byte NLEN header already stripped) and classifies
// each record it contains.
func Parse(body []byte) ([]Record, error) {
	msg := new(ndef.Message)
	if _, err := msg.Unmarshal(body); err != nil {
		return nil, fmt.Errorf("ndefrec: unmarshal: %w", err)
	}
	recs := make([]Record, 0, len(msg.Records))
	for _, r := range msg.Records {
		recs = append(recs, classify(r))
	}
	return recs, nil
}

func classify(r *ndef.Record) Record {
	out := Record{Kind: KindUnknown, Raw: r}
	if r.TNF != ndef.NFCForumWellKnownType {
		return out
	}
	switch r.Type {
	case "T":
		if t, ok := r.Payload.(*text.Payload); ok {
			out.Kind = KindText
			out.Text = t.Text
			out.Lang = t.Language
		}
	case "U":
		if u, ok := r.Payload.(*uri.URI); ok {
			out.Kind = KindURI
			out.URI = u.URIField
		}
	case "Sp":
		out.Kind = KindSmartPoster
		out.URI = smartPosterURI(r)
	}
	return out
}

// smartPosterURI extracts the embedded URI record from a smart poster's
// payload, when the library exposes it as a nested NDEF message.
func smartPosterURI(r *ndef.Record) string {
	generic, ok := r.Payload.(interface{ Marshal() []byte })
	if !ok {
		return ""
	}
	inner := new(ndef.Message)
	if _, err := inner.Unmarshal(generic.Marshal()); err != nil {
		return ""
	}
	for _, ir := range inner.Records {
		if ir.TNF == ndef.NFCForumWellKnownType && ir.Type == "U" {
			if u, ok := ir.Payload.(*uri.URI); ok {
				return u.URIField
			}
		}
	}
	return ""
}
