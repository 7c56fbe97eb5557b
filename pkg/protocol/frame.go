package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// HeaderSize is the size of the big-endian length prefix of a frame.
const HeaderSize = 4

// initialPayloadSize caps the buffer reserved up front for a payload. The
// buffer grows with the bytes actually received.
const initialPayloadSize = 64 << 10

var (
	// ErrShortLength is returned when the stream ends before a complete
	// length prefix was read.
	ErrShortLength = errors.New("stream closed before frame length")
	// ErrShortPayload is returned when the stream ends before the payload
	// announced by the length prefix was read.
	ErrShortPayload = errors.New("stream closed before frame payload")
	// ErrMalformed is returned when a payload is not a known message.
	ErrMalformed = errors.New("malformed message payload")
	// ErrTooLarge is returned when an encoded message does not fit a 32-bit
	// length prefix.
	ErrTooLarge = errors.New("message exceeds frame size limit")
)

// DecodeError reports a frame that could not be turned into a Message.
type DecodeError struct {
	// Kind is one of ErrShortLength, ErrShortPayload or ErrMalformed.
	Kind error
	// Err is the underlying cause, if any.
	Err error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return "decode: " + e.Kind.Error()
	}
	return fmt.Sprintf("decode: %v: %v", e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is.
func (e *DecodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func malformed(err error) *DecodeError {
	return &DecodeError{Kind: ErrMalformed, Err: err}
}

// IsStreamIntact reports whether err left the underlying stream positioned
// on a frame boundary, i.e. a whole frame was consumed but its payload was
// not a valid message.
func IsStreamIntact(err error) bool {
	return errors.Is(err, ErrMalformed)
}

// AppendFrame appends the frame of msg (length prefix and payload) to dst.
func AppendFrame(dst []byte, msg Message) ([]byte, error) {
	payload, err := msg.Encode()
	if err != nil {
		return dst, err
	}
	if uint64(len(payload)) > math.MaxUint32 {
		return dst, fmt.Errorf("%w: %d bytes", ErrTooLarge, len(payload))
	}
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(payload)))
	return append(dst, payload...), nil
}

// WriteFrame writes msg to w as a single frame.
// The frame is assembled in memory and handed to w in one Write call.
func WriteFrame(w io.Writer, msg Message) error {
	frame, err := AppendFrame(nil, msg)
	if err != nil {
		return err
	}
	if _, err := w.Write(frame); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	return nil
}

// ReadFrame reads exactly one frame from r and decodes it. It either
// returns a whole message or a *DecodeError; no partial frame is exposed.
func ReadFrame(r io.Reader) (Message, error) {
	var header [HeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return Message{}, &DecodeError{Kind: ErrShortLength, Err: err}
	}

	length := int64(binary.BigEndian.Uint32(header[:]))
	payload := bytes.NewBuffer(make([]byte, 0, min(length, initialPayloadSize)))
	if _, err := io.CopyN(payload, r, length); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return Message{}, &DecodeError{Kind: ErrShortPayload, Err: err}
	}

	return Decode(payload.Bytes())
}
