package health

import (
	"context"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/slog"
)

type stubRuntime bool

func (s stubRuntime) IsInitialized() bool { return bool(s) }

func TestHandler_healthCheck(t *testing.T) {
	tests := []struct {
		name           string
		initialized    bool
		expectedStatus string
	}{
		{
			name:           "initialized runtime returns OK",
			initialized:    true,
			expectedStatus: "OK",
		},
		{
			name:           "runtime not yet initialized",
			initialized:    false,
			expectedStatus: "STARTING",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			handler := NewHandler(stubRuntime(tt.initialized), slog.Default(), huma.Middlewares{})

			// Act
			output, err := handler.healthCheck(context.Background(), &Input{})

			// Assert
			assert.NoError(t, err)
			assert.NotNil(t, output)
			assert.Equal(t, tt.expectedStatus, output.Body.Status)
		})
	}
}

func TestNewHandler(t *testing.T) {
	handler := NewHandler(stubRuntime(true), slog.Default(), huma.Middlewares{})

	assert.NotNil(t, handler)
	assert.NotNil(t, handler.log)
	assert.NotNil(t, handler.middleware)
}
