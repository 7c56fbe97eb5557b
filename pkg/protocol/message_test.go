package protocol_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/omochice/frame-chat/pkg/protocol"
)

func TestMessage_EncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		msg  protocol.Message
	}{
		{"text message", protocol.NewText("Hello, World!")},
		{"empty text", protocol.NewText("")},
		{"multi-line text", protocol.NewText("first\nsecond\n")},
		{"non utf-8 text", protocol.NewText("\xff\xfe")},
		{"file message", protocol.NewFile("report.txt", []byte("line 1\nline 2\n"))},
		{"file with empty content", protocol.NewFile("empty.bin", nil)},
		{"file with binary content", protocol.NewFile("blob", []byte{0, 1, 2, 255})},
		{"image message", protocol.NewImage([]byte{0x89, 'P', 'N', 'G'})},
		{"empty image", protocol.NewImage(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)

			data, err := tt.msg.Encode()
			req.NoError(err)
			req.NotEmpty(data)

			got, err := protocol.Decode(data)
			req.NoError(err)
			req.True(tt.msg.Equal(got), "got %v, want %v", got, tt.msg)
		})
	}
}

func TestMessage_EncodeUnknownType(t *testing.T) {
	_, err := protocol.Message{Type: protocol.MessageType(42)}.Encode()
	require.Error(t, err)
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty payload", nil},
		{"truncated tag", []byte{0x80}},
		{"length past end", []byte{0x0a, 0x05, 'a'}},
		{"only unknown field", []byte{0x20, 0x01}},
		{"kind with wrong wire type", []byte{0x08, 0x01}},
		{"truncated embedded file", []byte{0x12, 0x02, 0x0a, 0x05}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)

			_, err := protocol.Decode(tt.data)
			req.Error(err)
			req.ErrorIs(err, protocol.ErrMalformed)

			var decodeErr *protocol.DecodeError
			req.ErrorAs(err, &decodeErr)
		})
	}
}

func TestDecode_SkipsUnknownFields(t *testing.T) {
	req := require.New(t)
	data, err := protocol.NewText("hi").Encode()
	req.NoError(err)

	// varint field 7 = 1 prepended
	data = append([]byte{0x38, 0x01}, data...)

	got, err := protocol.Decode(data)
	req.NoError(err)
	req.True(protocol.NewText("hi").Equal(got))
}

func TestMessage_Clone(t *testing.T) {
	req := require.New(t)
	original := protocol.NewFile("a.txt", []byte("abc"))

	clone := original.Clone()
	clone.Content[0] = 'z'

	req.Equal("abc", string(original.Content))
	req.Equal("a.txt", clone.Name)
}

func TestMessage_Equal(t *testing.T) {
	tests := []struct {
		name string
		a, b protocol.Message
		want bool
	}{
		{"same text", protocol.NewText("x"), protocol.NewText("x"), true},
		{"different text", protocol.NewText("x"), protocol.NewText("y"), false},
		{"different kind", protocol.NewText(""), protocol.NewImage(nil), false},
		{"nil and empty content", protocol.NewImage(nil), protocol.NewImage([]byte{}), true},
		{"different file name", protocol.NewFile("a", nil), protocol.NewFile("b", nil), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.a.Equal(tt.b))
		})
	}
}

func TestMessageType_String(t *testing.T) {
	tests := []struct {
		name string
		mt   protocol.MessageType
		want string
	}{
		{"text type", protocol.MessageTypeText, "TEXT"},
		{"file type", protocol.MessageTypeFile, "FILE"},
		{"image type", protocol.MessageTypeImage, "IMAGE"},
		{"unknown type", protocol.MessageType(9), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.mt.String(); got != tt.want {
				t.Errorf("MessageType.String() = %v, want %v", got, tt.want)
			}
		})
	}
}
