package repository

import (
	"context"

	"github.com/transitops/transit-collector/internal/domain"
	"gorm.io/gorm"
)

// OutageRepository persists equipment outage and inventory rows from the
// JSON feeds.
type OutageRepository interface {
	WriteOutages(ctx context.Context, rows []domain.EquipmentOutage) error
	WriteEquipment(ctx context.Context, rows []domain.EquipmentUnit) error
}

type GormOutageRepo struct {
	db *gorm.DB
}

func NewGormOutageRepo(db *gorm.DB) *GormOutageRepo {
	return &GormOutageRepo{db: db}
}

func (r *GormOutageRepo) WriteOutages(ctx context.Context, rows []domain.EquipmentOutage) error {
	if len(rows) == 0 {
		return nil
	}

	models := make([]EquipmentOutageModel, 0, len(rows))
	for _, row := range rows {
		models = append(models, equipmentOutageModelFromDomain(row))
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&models, insertBatchSize).Error
	})
}

func (r *GormOutageRepo) WriteEquipment(ctx context.Context, rows []domain.EquipmentUnit) error {
	if len(rows) == 0 {
		return nil
	}

	models := make([]EquipmentUnitModel, 0, len(rows))
	for _, row := range rows {
		models = append(models, equipmentUnitModelFromDomain(row))
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&models, insertBatchSize).Error
	})
}
