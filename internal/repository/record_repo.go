package repository

import (
	"context"

	"github.com/transitops/transit-collector/internal/domain"
	"gorm.io/gorm"
)

const insertBatchSize = 100

// RecordRepository persists normalized feed rows. Each method writes one
// kind's rows for one attempt as a single transaction; an empty slice is a
// no-op and issues no statement. Kinds commit independently of each other.
type RecordRepository interface {
	WriteTripUpdates(ctx context.Context, rows []domain.TripUpdate) error
	WriteStopTimeUpdates(ctx context.Context, rows []domain.StopTimeUpdate) error
	WriteVehiclePositions(ctx context.Context, rows []domain.VehiclePosition) error
	WriteServiceAlerts(ctx context.Context, rows []domain.ServiceAlert) error
}

type GormRecordRepo struct {
	db *gorm.DB
}

func NewGormRecordRepo(db *gorm.DB) *GormRecordRepo {
	return &GormRecordRepo{db: db}
}

func (r *GormRecordRepo) WriteTripUpdates(ctx context.Context, rows []domain.TripUpdate) error {
	if len(rows) == 0 {
		return nil
	}

	models := make([]TripUpdateModel, 0, len(rows))
	for _, row := range rows {
		models = append(models, tripUpdateModelFromDomain(row))
	}

	return r.writeBatch(ctx, &models)
}

func (r *GormRecordRepo) WriteStopTimeUpdates(ctx context.Context, rows []domain.StopTimeUpdate) error {
	if len(rows) == 0 {
		return nil
	}

	models := make([]StopTimeUpdateModel, 0, len(rows))
	for _, row := range rows {
		models = append(models, stopTimeUpdateModelFromDomain(row))
	}

	return r.writeBatch(ctx, &models)
}

func (r *GormRecordRepo) WriteVehiclePositions(ctx context.Context, rows []domain.VehiclePosition) error {
	if len(rows) == 0 {
		return nil
	}

	models := make([]VehiclePositionModel, 0, len(rows))
	for _, row := range rows {
		models = append(models, vehiclePositionModelFromDomain(row))
	}

	return r.writeBatch(ctx, &models)
}

func (r *GormRecordRepo) WriteServiceAlerts(ctx context.Context, rows []domain.ServiceAlert) error {
	if len(rows) == 0 {
		return nil
	}

	models := make([]ServiceAlertModel, 0, len(rows))
	for _, row := range rows {
		models = append(models, serviceAlertModelFromDomain(row))
	}

	return r.writeBatch(ctx, &models)
}

func (r *GormRecordRepo) writeBatch(ctx context.Context, models any) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(models, insertBatchSize).Error
	})
}
