package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dukex/flowdesk/pkg/models"
)

// MockRemote is a mock implementation of the collection and builder Remote interfaces.
type MockRemote struct {
	mock.Mock
}

func (m *MockRemote) ListWorkflows(ctx context.Context) ([]*models.Workflow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Workflow), args.Error(1)
}

func (m *MockRemote) DeleteWorkflow(ctx context.Context, id string) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

func (m *MockRemote) CreateWorkflow(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error) {
	args := m.Called(ctx, workflow)
	if fn, ok := args.Get(0).(func(context.Context, *models.Workflow) (*models.Workflow, error)); ok {
		return fn(ctx, workflow)
	}

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Workflow), args.Error(1)
}

func (m *MockRemote) UpdateWorkflow(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error) {
	args := m.Called(ctx, workflow)
	if fn, ok := args.Get(0).(func(context.Context, *models.Workflow) (*models.Workflow, error)); ok {
		return fn(ctx, workflow)
	}

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Workflow), args.Error(1)
}
