package metadata

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// Sink receives every record the Walker produces.
type Sink interface {
	Emit(Record) error
}

// MultiSink passes each record to all of its sinks in order.
type MultiSink []Sink

func (m MultiSink) Emit(r Record) error {
	for _, s := range m {
		if err := s.Emit(r); err != nil {
			return err
		}
	}
	return nil
}

// Emitter writes one JSON object per record and line.
type Emitter struct {
	w io.Writer
}

func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{w: w}
}

func (e *Emitter) Emit(r Record) error {
	line, err := MarshalLine(r)
	if err != nil {
		return err
	}
	if _, err := e.w.Write(line); err != nil {
		return errors.Wrapf(err, "Failed to write record of talk %s", r.PretalxID)
	}
	return nil
}

// MarshalLine encodes r as a single newline terminated line. The layout is
// the one the upload tooling was written against: fixed key order, ", " and
// ": " as separators and everything outside of printable ASCII escaped.
func MarshalLine(r Record) ([]byte, error) {
	fields := []struct {
		key   string
		value string
	}{
		{"video_file", r.VideoFile},
		{"persons", r.Persons},
		{"pretalx_id", r.PretalxID},
		{"title", r.Title},
		{"description", r.Description},
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			buf.WriteString(", ")
		}
		value, err := json.MarshalNoEscape(f.value)
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to encode %s of talk %s", f.key, r.PretalxID)
		}
		fmt.Fprintf(&buf, "%q: ", f.key)
		buf.Write(value)
	}
	buf.WriteString("}\n")
	return escapeLine(buf.Bytes()), nil
}

var (
	escapedBackspace = []byte(`\u0008`)
	escapedFormFeed  = []byte(`\u000c`)
)

// escapeLine rewrites the encoder output to the escaping the upload tooling
// produces: \b and \f as short escapes and everything from 0x7f upwards as
// \uXXXX.
func escapeLine(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for len(b) > 0 {
		if b[0] == '\\' && len(b) > 1 {
			switch {
			case len(b) >= 6 && bytes.EqualFold(b[:6], escapedBackspace):
				out = append(out, `\b`...)
				b = b[6:]
			case len(b) >= 6 && bytes.EqualFold(b[:6], escapedFormFeed):
				out = append(out, `\f`...)
				b = b[6:]
			default:
				out = append(out, b[:2]...)
				b = b[2:]
			}
			continue
		}
		r, size := utf8.DecodeRune(b)
		switch {
		case r < 0x7f:
			out = append(out, b[0])
		case r > 0xffff:
			r1, r2 := utf16.EncodeRune(r)
			out = fmt.Appendf(out, `\u%04x\u%04x`, r1, r2)
		default:
			out = fmt.Appendf(out, `\u%04x`, r)
		}
		b = b[size:]
	}
	return out
}
