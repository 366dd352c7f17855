package tmux

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockClient is a testify/mock implementation of Client.
//
//	m := new(tmux.MockClient)
//	m.On("DisplayMessage", mock.Anything, "hello", 5*time.Second).Return(nil)
type MockClient struct {
	mock.Mock
}

var _ Client = (*MockClient)(nil)

// HasSession returns the configured result.
func (m *MockClient) HasSession(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

// DisplayMessage returns the configured error.
func (m *MockClient) DisplayMessage(ctx context.Context, msg string, duration time.Duration) error {
	args := m.Called(ctx, msg, duration)
	return args.Error(0)
}

// SetStatusOption returns the configured error.
func (m *MockClient) SetStatusOption(ctx context.Context, name, value string) error {
	args := m.Called(ctx, name, value)
	return args.Error(0)
}

// Run returns the configured stdout, stderr and error.
func (m *MockClient) Run(ctx context.Context, args ...string) (string, string, error) {
	callArgs := make([]interface{}, 0, len(args)+1)
	callArgs = append(callArgs, ctx)
	for _, a := range args {
		callArgs = append(callArgs, a)
	}
	ret := m.Called(callArgs...)
	return ret.String(0), ret.String(1), ret.Error(2)
}
