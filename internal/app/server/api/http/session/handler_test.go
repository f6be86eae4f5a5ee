package session

import (
	"bytes"
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventky/internal/app/server/api/apitest"
	"eventky/internal/domain/auth"
)

func newHandler(t *testing.T, wait time.Duration) *Handler {
	t.Helper()
	app, _ := apitest.NewApp(t)
	return NewHandler(app, wait, apitest.Logger(), huma.Middlewares{})
}

func requireStatus(t *testing.T, err error, status int) {
	t.Helper()
	var se huma.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, status, se.GetStatus())
}

func TestHandler_SignupSigninSignout(t *testing.T) {
	h := newHandler(t, time.Second)
	ctx := context.Background()
	kp, err := auth.GenerateKeypair()
	require.NoError(t, err)

	out, err := h.signup(ctx, &signupInput{Body: signupRequest{SecretKey: kp.SecretHex()}})
	require.NoError(t, err)
	assert.True(t, out.Body.Authenticated)
	assert.Equal(t, kp.OwnerID(), out.Body.OwnerID)
	assert.Equal(t, "/:rw", out.Body.Capabilities)

	current, err := h.session(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, kp.OwnerID(), current.Body.OwnerID)

	_, err = h.signout(ctx, nil)
	require.NoError(t, err)
	current, err = h.session(ctx, nil)
	require.NoError(t, err)
	assert.False(t, current.Body.Authenticated)

	out, err = h.signin(ctx, &signinInput{Body: signinRequest{SecretKey: kp.SecretHex()}})
	require.NoError(t, err)
	assert.Equal(t, kp.OwnerID(), out.Body.OwnerID)
}

func TestHandler_SigninUnknownKey(t *testing.T) {
	h := newHandler(t, time.Second)
	kp, err := auth.GenerateKeypair()
	require.NoError(t, err)

	_, err = h.signin(context.Background(), &signinInput{Body: signinRequest{SecretKey: kp.SecretHex()}})
	requireStatus(t, err, http.StatusNotFound)
}

func TestHandler_SignupMalformedKey(t *testing.T) {
	h := newHandler(t, time.Second)

	_, err := h.signup(context.Background(), &signupInput{Body: signupRequest{SecretKey: "zz"}})
	requireStatus(t, err, http.StatusUnprocessableEntity)
}

func TestHandler_FlowApproved(t *testing.T) {
	app, rt := apitest.NewApp(t)
	h := NewHandler(app, 2*time.Second, apitest.Logger(), huma.Middlewares{})
	ctx := context.Background()

	owner, err := auth.GenerateKeypair()
	require.NoError(t, err)
	_, err = rt.Signer(owner).Signup(ctx, apitest.HomeserverID, "")
	require.NoError(t, err)

	started, err := h.startFlow(ctx, &startFlowInput{})
	require.NoError(t, err)
	assert.Equal(t, "pending", started.Body.Status)
	assert.Contains(t, started.Body.URL, auth.FlowScheme+":")

	qr, err := h.flowQR(ctx, &flowIDInput{ID: started.Body.ID})
	require.NoError(t, err)
	assert.Equal(t, "image/png", qr.ContentType)
	assert.True(t, bytes.HasPrefix(qr.Body, []byte("\x89PNG")))

	go func() {
		_ = rt.Signer(owner).Approve(ctx, started.Body.URL)
	}()

	out, err := h.awaitFlow(ctx, &flowIDInput{ID: started.Body.ID})
	require.NoError(t, err)
	assert.Equal(t, "approved", out.Body.Status)
	require.NotNil(t, out.Body.Session)
	assert.Equal(t, owner.OwnerID(), out.Body.Session.OwnerID)
	assert.Equal(t, apitest.BaseAppPath+":rw", out.Body.Session.Capabilities)
	assert.Equal(t, owner.OwnerID(), app.OwnerID())

	// reported flows are forgotten
	_, err = h.awaitFlow(ctx, &flowIDInput{ID: started.Body.ID})
	requireStatus(t, err, http.StatusNotFound)
}

func TestHandler_FlowPendingThenCancelled(t *testing.T) {
	h := newHandler(t, 20*time.Millisecond)
	ctx := context.Background()

	started, err := h.startFlow(ctx, &startFlowInput{})
	require.NoError(t, err)

	out, err := h.awaitFlow(ctx, &flowIDInput{ID: started.Body.ID})
	require.NoError(t, err)
	assert.Equal(t, "pending", out.Body.Status)

	_, err = h.cancelFlow(ctx, &flowIDInput{ID: started.Body.ID})
	require.NoError(t, err)

	_, err = h.cancelFlow(ctx, &flowIDInput{ID: started.Body.ID})
	requireStatus(t, err, http.StatusNotFound)
}

func TestHandler_FinishedFlowEvictedWithoutPoll(t *testing.T) {
	h := newHandler(t, 10*time.Millisecond)
	ctx := context.Background()

	started, err := h.startFlow(ctx, &startFlowInput{})
	require.NoError(t, err)
	p, ok := h.flows.get(started.Body.ID)
	require.True(t, ok)

	p.flow.Cancel()
	<-p.done
	assert.Eventually(t, func() bool { return h.flows.len() == 0 }, time.Second, 5*time.Millisecond)

	_, err = h.awaitFlow(ctx, &flowIDInput{ID: started.Body.ID})
	requireStatus(t, err, http.StatusNotFound)
}

func TestHandler_StartFlowInvalidCapabilities(t *testing.T) {
	h := newHandler(t, time.Second)

	_, err := h.startFlow(context.Background(), &startFlowInput{Body: startFlowRequest{Capabilities: "no-slash:rw"}})
	requireStatus(t, err, http.StatusUnprocessableEntity)
}
