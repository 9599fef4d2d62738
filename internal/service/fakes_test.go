package service

import (
	"context"
	"sync"

	"github.com/transitops/transit-collector/internal/domain"
)

type fakeFetcher struct {
	fetchFn func(ctx context.Context, endpoint string) ([]byte, error)
}

func (f *fakeFetcher) Fetch(ctx context.Context, endpoint string) ([]byte, error) {
	if f.fetchFn != nil {
		return f.fetchFn(ctx, endpoint)
	}
	return nil, nil
}

type fakeAttemptRepo struct {
	createFn  func(ctx context.Context, a *domain.FetchAttempt) error
	getByIDFn func(ctx context.Context, id string) (*domain.FetchAttempt, error)

	created []domain.FetchAttempt
}

func (f *fakeAttemptRepo) Create(ctx context.Context, a *domain.FetchAttempt) error {
	if f.createFn != nil {
		if err := f.createFn(ctx, a); err != nil {
			return err
		}
	}
	if a != nil {
		f.created = append(f.created, *a)
	}
	return nil
}

func (f *fakeAttemptRepo) GetByID(ctx context.Context, id string) (*domain.FetchAttempt, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

type fakeRecordRepo struct {
	writeTripUpdatesFn      func(ctx context.Context, rows []domain.TripUpdate) error
	writeStopTimeUpdatesFn  func(ctx context.Context, rows []domain.StopTimeUpdate) error
	writeVehiclePositionsFn func(ctx context.Context, rows []domain.VehiclePosition) error
	writeServiceAlertsFn    func(ctx context.Context, rows []domain.ServiceAlert) error

	tripUpdates      []domain.TripUpdate
	stopTimeUpdates  []domain.StopTimeUpdate
	vehiclePositions []domain.VehiclePosition
	serviceAlerts    []domain.ServiceAlert
}

func (f *fakeRecordRepo) WriteTripUpdates(ctx context.Context, rows []domain.TripUpdate) error {
	if f.writeTripUpdatesFn != nil {
		if err := f.writeTripUpdatesFn(ctx, rows); err != nil {
			return err
		}
	}
	f.tripUpdates = append(f.tripUpdates, rows...)
	return nil
}

func (f *fakeRecordRepo) WriteStopTimeUpdates(ctx context.Context, rows []domain.StopTimeUpdate) error {
	if f.writeStopTimeUpdatesFn != nil {
		if err := f.writeStopTimeUpdatesFn(ctx, rows); err != nil {
			return err
		}
	}
	f.stopTimeUpdates = append(f.stopTimeUpdates, rows...)
	return nil
}

func (f *fakeRecordRepo) WriteVehiclePositions(ctx context.Context, rows []domain.VehiclePosition) error {
	if f.writeVehiclePositionsFn != nil {
		if err := f.writeVehiclePositionsFn(ctx, rows); err != nil {
			return err
		}
	}
	f.vehiclePositions = append(f.vehiclePositions, rows...)
	return nil
}

func (f *fakeRecordRepo) WriteServiceAlerts(ctx context.Context, rows []domain.ServiceAlert) error {
	if f.writeServiceAlertsFn != nil {
		if err := f.writeServiceAlertsFn(ctx, rows); err != nil {
			return err
		}
	}
	f.serviceAlerts = append(f.serviceAlerts, rows...)
	return nil
}

type fakeRateLimiter struct {
	allowFn func(ctx context.Context, family string) (bool, error)
	waitFn  func(ctx context.Context, family string) error

	waitCalls []string
}

func (f *fakeRateLimiter) Allow(ctx context.Context, family string) (bool, error) {
	if f.allowFn != nil {
		return f.allowFn(ctx, family)
	}
	return true, nil
}

func (f *fakeRateLimiter) Wait(ctx context.Context, family string) error {
	f.waitCalls = append(f.waitCalls, family)
	if f.waitFn != nil {
		return f.waitFn(ctx, family)
	}
	return nil
}

type fakeOutageRepo struct {
	writeOutagesFn   func(ctx context.Context, rows []domain.EquipmentOutage) error
	writeEquipmentFn func(ctx context.Context, rows []domain.EquipmentUnit) error

	outages   []domain.EquipmentOutage
	equipment []domain.EquipmentUnit
}

func (f *fakeOutageRepo) WriteOutages(ctx context.Context, rows []domain.EquipmentOutage) error {
	if f.writeOutagesFn != nil {
		if err := f.writeOutagesFn(ctx, rows); err != nil {
			return err
		}
	}
	f.outages = append(f.outages, rows...)
	return nil
}

func (f *fakeOutageRepo) WriteEquipment(ctx context.Context, rows []domain.EquipmentUnit) error {
	if f.writeEquipmentFn != nil {
		if err := f.writeEquipmentFn(ctx, rows); err != nil {
			return err
		}
	}
	f.equipment = append(f.equipment, rows...)
	return nil
}

type fakeIngestor struct {
	ingestFn func(ctx context.Context, feed domain.FeedSource) error

	mu    sync.Mutex
	feeds []string
}

func (f *fakeIngestor) IngestFeed(ctx context.Context, feed domain.FeedSource) error {
	f.mu.Lock()
	f.feeds = append(f.feeds, feed.Name)
	f.mu.Unlock()

	if f.ingestFn != nil {
		return f.ingestFn(ctx, feed)
	}
	return nil
}

func (f *fakeIngestor) ingestedFeeds() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.feeds...)
}
