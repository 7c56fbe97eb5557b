package server

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/omochice/frame-chat/internal/mocks"
)

func TestRegistry_InsertReplaces(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	first := mocks.NewMockSender(ctrl)
	second := mocks.NewMockSender(ctrl)
	registry := NewRegistry()

	_, replaced := registry.Insert("127.0.0.1:1000", first)
	req.False(replaced)

	previous, replaced := registry.Insert("127.0.0.1:1000", second)
	req.True(replaced)
	req.Same(first, previous)
	req.Equal(1, registry.Len())

	current, ok := registry.Get("127.0.0.1:1000")
	req.True(ok)
	req.Same(second, current)
}

func TestRegistry_RemoveIsIdempotent(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	registry := NewRegistry()
	registry.Insert("a", mocks.NewMockSender(ctrl))

	req.True(registry.Remove("a"))
	req.False(registry.Remove("a"))
	req.False(registry.Contains("a"))
	req.Equal(0, registry.Len())
}

func TestRegistry_RecipientsIsSnapshot(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	registry := NewRegistry()
	registry.Insert("a", mocks.NewMockSender(ctrl))
	registry.Insert("b", mocks.NewMockSender(ctrl))
	registry.Insert("c", mocks.NewMockSender(ctrl))

	recipients := registry.Recipients("a")
	registry.Insert("d", mocks.NewMockSender(ctrl))

	req.Len(recipients, 2)
	req.Contains(recipients, "b")
	req.Contains(recipients, "c")
	req.NotContains(recipients, "a")
	req.NotContains(recipients, "d")
}

func TestRegistry_AddressesSorted(t *testing.T) {
	ctrl := gomock.NewController(t)
	registry := NewRegistry()
	for _, address := range []string{"c", "a", "b"} {
		registry.Insert(address, mocks.NewMockSender(ctrl))
	}

	require.Equal(t, []string{"a", "b", "c"}, registry.Addresses())
}

func TestRegistry_Drain(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	registry := NewRegistry()
	registry.Insert("a", mocks.NewMockSender(ctrl))
	registry.Insert("b", mocks.NewMockSender(ctrl))

	req.Len(registry.Drain(), 2)
	req.Equal(0, registry.Len())
}
