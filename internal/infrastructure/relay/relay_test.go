package relay

import (
	"context"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMemoryRelay_SendThenReceive(t *testing.T) {
	r := NewMemoryRelay()
	ctx := context.Background()

	require.NoError(t, r.Send(ctx, "chan", []byte("first")))
	require.NoError(t, r.Send(ctx, "chan", []byte("second")))

	msg, err := r.Receive(ctx, "chan")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), msg)
}

func TestMemoryRelay_ReceiveBlocksUntilSend(t *testing.T) {
	r := NewMemoryRelay()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = r.Send(context.Background(), "chan", []byte("hello"))
	}()

	msg, err := r.Receive(ctx, "chan")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), msg)
}

func TestMemoryRelay_ReceiveTimeout(t *testing.T) {
	r := NewMemoryRelay()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := r.Receive(ctx, "silent")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMemoryRelay_TimedOutReceiveReleasesChannel(t *testing.T) {
	r := NewMemoryRelay()

	for i := 0; i < 100; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
		_, err := r.Receive(ctx, fmt.Sprintf("chan-%d", i))
		cancel()
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	}
	assert.Equal(t, 0, r.Len())

	ctx := context.Background()
	require.NoError(t, r.Send(ctx, "kept", []byte("x")))
	_, err := r.Receive(ctx, "kept")
	require.NoError(t, err)
	assert.Equal(t, 0, r.Len())
}

func TestMemoryRelay_CancelKeepsOtherWaiter(t *testing.T) {
	r := NewMemoryRelay()
	done := make(chan []byte, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		msg, _ := r.Receive(ctx, "shared")
		done <- msg
	}()

	require.Eventually(t, func() bool { return r.Len() == 1 }, time.Second, time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	_, err := r.Receive(ctx, "shared")
	cancel()
	assert.Error(t, err)
	assert.Equal(t, 1, r.Len())

	require.NoError(t, r.Send(context.Background(), "shared", []byte("hello")))
	assert.Equal(t, []byte("hello"), <-done)
}

func TestClient_AgainstHandler(t *testing.T) {
	mem := NewMemoryRelay()
	srv := httptest.NewServer(NewHandler(mem, 30*time.Millisecond, discardLogger()).Routes())
	defer srv.Close()

	sender := NewClient(srv.URL+"/", srv.Client(), discardLogger())
	receiver := NewClient(srv.URL, srv.Client(), discardLogger())
	receiver.retryDelay = 5 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	go func() {
		// longer than one poll window so the receiver retries at least once
		time.Sleep(60 * time.Millisecond)
		_ = sender.Send(context.Background(), "abc", []byte("sealed"))
	}()

	msg, err := receiver.Receive(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, []byte("sealed"), msg)
}

func TestClient_ReceiveRespectsContext(t *testing.T) {
	mem := NewMemoryRelay()
	srv := httptest.NewServer(NewHandler(mem, 10*time.Millisecond, discardLogger()).Routes())
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client(), discardLogger())
	c.retryDelay = time.Millisecond
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Receive(ctx, "nobody")
	assert.Error(t, err)
}
