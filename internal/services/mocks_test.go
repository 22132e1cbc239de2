package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/eventra/backend/internal/models"
)

type MockEventStore struct {
	mock.Mock
}

func (m *MockEventStore) FindFinishedUndistributedEvents(ctx context.Context) ([]models.Event, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Event), args.Error(1)
}

func (m *MockEventStore) FindEventByID(ctx context.Context, eventID string) (*models.Event, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

type MockRevenueAggregator struct {
	mock.Mock
}

func (m *MockRevenueAggregator) AggregateRevenueForEvent(ctx context.Context, eventID string) (*models.RevenueAggregate, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RevenueAggregate), args.Error(1)
}

type MockDistributionLedger struct {
	mock.Mock
}

func (m *MockDistributionLedger) InsertIfAbsent(ctx context.Context, rec *models.DistributionRecord) (bool, *models.DistributionRecord, error) {
	args := m.Called(ctx, rec)
	if args.Get(1) == nil {
		return args.Bool(0), nil, args.Error(2)
	}
	return args.Bool(0), args.Get(1).(*models.DistributionRecord), args.Error(2)
}

func (m *MockDistributionLedger) FindByEvent(ctx context.Context, eventID string) (*models.DistributionRecord, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DistributionRecord), args.Error(1)
}

type MockStatsInvalidator struct {
	mock.Mock
}

func (m *MockStatsInvalidator) InvalidateStats(ctx context.Context) {
	m.Called(ctx)
}
