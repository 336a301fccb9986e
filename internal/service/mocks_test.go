package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/tiwac100/hydrogen/internal/domain"
	"github.com/tiwac100/hydrogen/internal/event"
)

// --- Mock Account Client ---

type mockAccountClient struct {
	mock.Mock
}

func (m *mockAccountClient) ListAddresses(ctx context.Context, token string) (*domain.AddressCollection, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AddressCollection), args.Error(1)
}

func (m *mockAccountClient) CreateAddress(ctx context.Context, token string, fields domain.AddressInput) (string, error) {
	args := m.Called(ctx, token, fields)
	return args.String(0), args.Error(1)
}

func (m *mockAccountClient) UpdateAddress(ctx context.Context, token, id string, fields domain.AddressInput) error {
	args := m.Called(ctx, token, id, fields)
	return args.Error(0)
}

func (m *mockAccountClient) DeleteAddress(ctx context.Context, token, id string) error {
	args := m.Called(ctx, token, id)
	return args.Error(0)
}

func (m *mockAccountClient) SetDefaultAddress(ctx context.Context, token, id string) error {
	args := m.Called(ctx, token, id)
	return args.Error(0)
}

// --- Mock Address Cache ---

type mockAddressCache struct {
	mock.Mock
}

func (m *mockAddressCache) Get(ctx context.Context, token string) (*domain.AddressCollection, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AddressCollection), args.Error(1)
}

func (m *mockAddressCache) Set(ctx context.Context, token string, coll *domain.AddressCollection) error {
	args := m.Called(ctx, token, coll)
	return args.Error(0)
}

func (m *mockAddressCache) Invalidate(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// --- Mock Event Publisher ---

type mockEventPublisher struct {
	mock.Mock
}

func (m *mockEventPublisher) PublishAddressCreated(ctx context.Context, ref string, data event.AddressEventData) error {
	return m.Called(ctx, ref, data).Error(0)
}

func (m *mockEventPublisher) PublishAddressUpdated(ctx context.Context, ref string, data event.AddressEventData) error {
	return m.Called(ctx, ref, data).Error(0)
}

func (m *mockEventPublisher) PublishAddressDeleted(ctx context.Context, ref string, data event.AddressEventData) error {
	return m.Called(ctx, ref, data).Error(0)
}

func (m *mockEventPublisher) PublishDefaultAddressChanged(ctx context.Context, ref string, data event.AddressEventData) error {
	return m.Called(ctx, ref, data).Error(0)
}
