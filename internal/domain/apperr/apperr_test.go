package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	base := errors.New("boom")
	err := New(KindUpload, "upload file", "alice", "0000000000001", base)
	wrapped := fmt.Errorf("create calendar: %w", err)

	assert.Equal(t, KindUpload, KindOf(wrapped))
	assert.True(t, Is(wrapped, KindUpload))
	assert.False(t, Is(wrapped, KindParse))
	assert.ErrorIs(t, wrapped, base)
	assert.Equal(t, KindUnknown, KindOf(base))
	assert.False(t, Is(nil, KindUnknown))
}

func TestError_Message(t *testing.T) {
	err := New(KindUnauthorized, "create calendar", "", "", nil)
	assert.Equal(t, "create calendar: unauthorized", err.Error())

	err = New(KindNotFound, "delete event", "bob", "0000000000001", errors.New("gone"))
	assert.Equal(t, "delete event 0000000000001: not_found: gone", err.Error())
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "Please sign in to continue.", Message(KindUnauthorized))
	assert.Equal(t, genericMessage, Message(Kind("mystery")))
	assert.Equal(t, genericMessage, UserMessage(errors.New("plain")))
	assert.Equal(t, Message(KindUpload), UserMessage(New(KindUpload, "op", "", "", nil)))
}
