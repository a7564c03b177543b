// Package testutil provides centralized test mocks, fixtures, and helpers.
// All test files should import mocks from here instead of defining their own.
package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/runixer/evalboard/internal/evaluator"
)

// MockEvaluatorClient implements evaluator.Client for tests.
type MockEvaluatorClient struct {
	mock.Mock
}

func (m *MockEvaluatorClient) ListConversations(ctx context.Context, opts evaluator.ListOptions) ([]evaluator.Conversation, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]evaluator.Conversation), args.Error(1)
}

func (m *MockEvaluatorClient) CountConversations(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockEvaluatorClient) GetConversation(ctx context.Context, id string) (evaluator.Conversation, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(evaluator.Conversation), args.Error(1)
}

func (m *MockEvaluatorClient) Version(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// NetworkError builds the error the evaluator client returns for a failed call.
func NetworkError(op string, status int) *evaluator.NetworkError {
	return &evaluator.NetworkError{
		Op:         op,
		URL:        "http://evaluator.test/" + op,
		StatusCode: status,
		Err:        context.DeadlineExceeded,
	}
}
