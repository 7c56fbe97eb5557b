// Package protocol implements the chat wire format: a protobuf-encoded
// Message carried in a length-prefixed frame.
package protocol

import (
	"bytes"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// MessageType represents the kind of a message
type MessageType int

const (
	MessageTypeText MessageType = iota
	MessageTypeFile
	MessageTypeImage
)

// String returns the string representation of MessageType
func (mt MessageType) String() string {
	switch mt {
	case MessageTypeText:
		return "TEXT"
	case MessageTypeFile:
		return "FILE"
	case MessageTypeImage:
		return "IMAGE"
	default:
		return "UNKNOWN"
	}
}

// Field numbers of proto/message.proto.
const (
	fieldText  protowire.Number = 1
	fieldFile  protowire.Number = 2
	fieldImage protowire.Number = 3

	fieldFileName    protowire.Number = 1
	fieldFileContent protowire.Number = 2

	fieldImageContent protowire.Number = 1
)

// Message is a chat message. Type selects which of the other fields are
// meaningful: Text for MessageTypeText, Name and Content for
// MessageTypeFile, Content for MessageTypeImage.
type Message struct {
	Type    MessageType
	Text    string
	Name    string
	Content []byte
}

// NewText creates a text message
func NewText(body string) Message {
	return Message{Type: MessageTypeText, Text: body}
}

// NewFile creates a file message
func NewFile(name string, content []byte) Message {
	return Message{Type: MessageTypeFile, Name: name, Content: content}
}

// NewImage creates an image message
func NewImage(content []byte) Message {
	return Message{Type: MessageTypeImage, Content: content}
}

// Clone returns a deep copy of the message so that each recipient of a
// broadcast owns its payload.
func (m Message) Clone() Message {
	c := m
	if m.Content != nil {
		c.Content = bytes.Clone(m.Content)
	}
	return c
}

// Equal reports whether two messages carry the same kind and payload.
// A nil and an empty Content are equal.
func (m Message) Equal(other Message) bool {
	if m.Type != other.Type {
		return false
	}
	switch m.Type {
	case MessageTypeText:
		return m.Text == other.Text
	case MessageTypeFile:
		return m.Name == other.Name && bytes.Equal(m.Content, other.Content)
	case MessageTypeImage:
		return bytes.Equal(m.Content, other.Content)
	default:
		return false
	}
}

// String returns a short description suitable for logs. Payloads are not
// included.
func (m Message) String() string {
	switch m.Type {
	case MessageTypeText:
		return fmt.Sprintf("%s(%d bytes)", m.Type, len(m.Text))
	case MessageTypeFile:
		return fmt.Sprintf("%s(%q, %d bytes)", m.Type, m.Name, len(m.Content))
	default:
		return fmt.Sprintf("%s(%d bytes)", m.Type, len(m.Content))
	}
}

// Encode encodes the message into bytes using the protobuf wire format
func (m Message) Encode() ([]byte, error) {
	var b []byte
	switch m.Type {
	case MessageTypeText:
		b = protowire.AppendTag(b, fieldText, protowire.BytesType)
		b = protowire.AppendString(b, m.Text)
	case MessageTypeFile:
		var inner []byte
		inner = protowire.AppendTag(inner, fieldFileName, protowire.BytesType)
		inner = protowire.AppendString(inner, m.Name)
		inner = protowire.AppendTag(inner, fieldFileContent, protowire.BytesType)
		inner = protowire.AppendBytes(inner, m.Content)
		b = protowire.AppendTag(b, fieldFile, protowire.BytesType)
		b = protowire.AppendBytes(b, inner)
	case MessageTypeImage:
		var inner []byte
		inner = protowire.AppendTag(inner, fieldImageContent, protowire.BytesType)
		inner = protowire.AppendBytes(inner, m.Content)
		b = protowire.AppendTag(b, fieldImage, protowire.BytesType)
		b = protowire.AppendBytes(b, inner)
	default:
		return nil, fmt.Errorf("failed to encode message: unknown type %d", m.Type)
	}
	return b, nil
}

// Decode decodes a protobuf payload into a message. Unknown fields are
// skipped; a payload without any known kind is rejected with ErrMalformed.
func Decode(data []byte) (Message, error) {
	var (
		msg   Message
		found bool
	)
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return Message{}, malformed(protowire.ParseError(n))
		}
		data = data[n:]

		if typ != protowire.BytesType || num < fieldText || num > fieldImage {
			n = protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return Message{}, malformed(protowire.ParseError(n))
			}
			data = data[n:]
			continue
		}

		value, n := protowire.ConsumeBytes(data)
		if n < 0 {
			return Message{}, malformed(protowire.ParseError(n))
		}
		data = data[n:]

		var err error
		switch num {
		case fieldText:
			msg = NewText(string(value))
		case fieldFile:
			msg, err = decodeFile(value)
		case fieldImage:
			msg, err = decodeImage(value)
		}
		if err != nil {
			return Message{}, err
		}
		found = true
	}
	if !found {
		return Message{}, malformed(fmt.Errorf("no message kind present"))
	}
	return msg, nil
}

func decodeFile(data []byte) (Message, error) {
	msg := Message{Type: MessageTypeFile}
	err := consumeBytesFields(data, func(num protowire.Number, value []byte) {
		switch num {
		case fieldFileName:
			msg.Name = string(value)
		case fieldFileContent:
			msg.Content = bytes.Clone(value)
		}
	})
	return msg, err
}

func decodeImage(data []byte) (Message, error) {
	msg := Message{Type: MessageTypeImage}
	err := consumeBytesFields(data, func(num protowire.Number, value []byte) {
		if num == fieldImageContent {
			msg.Content = bytes.Clone(value)
		}
	})
	return msg, err
}

// consumeBytesFields walks an embedded message and hands every
// length-delimited field to fn. Other wire types are skipped.
func consumeBytesFields(data []byte, fn func(protowire.Number, []byte)) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return malformed(protowire.ParseError(n))
		}
		data = data[n:]
		if typ != protowire.BytesType {
			n = protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return malformed(protowire.ParseError(n))
			}
			data = data[n:]
			continue
		}
		value, n := protowire.ConsumeBytes(data)
		if n < 0 {
			return malformed(protowire.ParseError(n))
		}
		data = data[n:]
		fn(num, value)
	}
	return nil
}
