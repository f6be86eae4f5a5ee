package runtime

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"eventky/internal/domain/auth"
)

// DefaultAuthTimeout bounds AwaitApproval when no timeout is configured.
const DefaultAuthTimeout = 2 * time.Minute

// Exchange trades an approved token for a session with the homeserver.
type Exchange func(ctx context.Context, token *auth.Token) (Session, error)

type flow struct {
	req       *auth.FlowRequest
	relay     Relay
	timeout   time.Duration
	exchange  Exchange
	cancelled chan struct{}
	once      sync.Once
}

// NewFlow wires a flow request to a relay. AwaitApproval gives up after
// timeout.
func NewFlow(req *auth.FlowRequest, relay Relay, timeout time.Duration, exchange Exchange) Flow {
	if timeout <= 0 {
		timeout = DefaultAuthTimeout
	}
	return &flow{
		req:       req,
		relay:     relay,
		timeout:   timeout,
		exchange:  exchange,
		cancelled: make(chan struct{}),
	}
}

func (f *flow) AuthorizationURL() string {
	return f.req.URL()
}

func (f *flow) Cancel() {
	f.once.Do(func() { close(f.cancelled) })
}

func (f *flow) isCancelled() bool {
	select {
	case <-f.cancelled:
		return true
	default:
		return false
	}
}

func (f *flow) AwaitApproval(ctx context.Context) (Session, error) {
	if f.isCancelled() {
		return nil, ErrAuthCancelled
	}

	waitCtx, stop := context.WithTimeout(ctx, f.timeout)
	defer stop()
	go func() {
		select {
		case <-f.cancelled:
			stop()
		case <-waitCtx.Done():
		}
	}()

	payload, err := f.relay.Receive(waitCtx, f.req.ChannelID())
	if err != nil {
		switch {
		case f.isCancelled():
			return nil, ErrAuthCancelled
		case errors.Is(waitCtx.Err(), context.DeadlineExceeded):
			return nil, ErrAuthTimeout
		case ctx.Err() != nil:
			return nil, fmt.Errorf("%w: %v", ErrAuthCancelled, ctx.Err())
		}
		return nil, err
	}

	token, err := auth.OpenToken(f.req.Secret, payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRejected, err)
	}
	if token.Capabilities != f.req.Capabilities.String() {
		return nil, fmt.Errorf("%w: approver granted %q, requested %q", ErrRejected, token.Capabilities, f.req.Capabilities.String())
	}
	return f.exchange(ctx, token)
}

// SendApproval signs the capabilities requested by flowURL with kp and
// posts the sealed token to relay.
func SendApproval(ctx context.Context, kp *auth.Keypair, req *auth.FlowRequest, relay Relay, now time.Time) error {
	token, err := auth.IssueToken(kp, req.Capabilities, now)
	if err != nil {
		return err
	}
	sealed, err := auth.SealToken(req.Secret, token)
	if err != nil {
		return err
	}
	return relay.Send(ctx, req.ChannelID(), sealed)
}
