package metadata

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

const (
	lengthPrefixSize = 4

	// maxRecordSize bounds the declared record length. A frame claiming more
	// than this is corrupt rather than merely large.
	maxRecordSize = 1 << 20
)

var (
	// ErrIncompleteMetadata is returned when the metadata record is requested
	// before the framer has consumed the whole record.
	ErrIncompleteMetadata = errors.New("metadata record incomplete")
	// ErrMalformed is returned when the embedded record cannot be decoded.
	ErrMalformed = errors.New("malformed metadata record")
)

type framerState int

const (
	stateLength framerState = iota
	stateBody
	stateForward
)

// Framer is a streaming demultiplexer for a chunk's decrypted plaintext.
// It accumulates the 4-byte length prefix, then exactly the declared record
// bytes, and forwards every subsequent byte to the sink. Input may arrive in
// arbitrarily sized spans; no call boundary is assumed to align with the
// record boundary.
type Framer struct {
	sink   io.Writer
	state  framerState
	prefix []byte
	body   []byte
	need   int
}

// NewFramer creates a Framer forwarding the file-data phase to sink.
func NewFramer(sink io.Writer) *Framer {
	return &Framer{
		sink:   sink,
		prefix: make([]byte, 0, lengthPrefixSize),
	}
}

// Write implements io.Writer, advancing the length → body → forward automaton.
func (f *Framer) Write(p []byte) (int, error) {
	total := len(p)

	for len(p) > 0 {
		switch f.state {
		case stateLength:
			n := min(lengthPrefixSize-len(f.prefix), len(p))
			f.prefix = append(f.prefix, p[:n]...)
			p = p[n:]

			if len(f.prefix) < lengthPrefixSize {
				continue
			}

			f.need = int(binary.LittleEndian.Uint32(f.prefix))
			if f.need > maxRecordSize {
				return 0, fmt.Errorf("%w: declared length %d", ErrMalformed, f.need)
			}

			f.body = make([]byte, 0, f.need)
			f.state = stateBody

		case stateBody:
			n := min(f.need-len(f.body), len(p))
			f.body = append(f.body, p[:n]...)
			p = p[n:]

			if len(f.body) == f.need {
				f.state = stateForward
			}

		case stateForward:
			if _, err := f.sink.Write(p); err != nil {
				return 0, fmt.Errorf("forwarding file data: %w", err)
			}

			p = nil
		}
	}

	return total, nil
}

// Record decodes the embedded metadata record. It fails with
// ErrIncompleteMetadata until the framer has reached the forwarding state.
func (f *Framer) Record() (Record, error) {
	var rec Record

	if f.state != stateForward {
		return rec, ErrIncompleteMetadata
	}

	if err := json.Unmarshal(f.body, &rec); err != nil {
		return rec, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	return rec, nil
}
