package repository

import (
	"context"
	"errors"

	"github.com/transitops/transit-collector/internal/domain"
	"gorm.io/gorm"
)

// AttemptRepository records poll attempts. The attempt row must be durable
// before any derived rows referencing it are written.
type AttemptRepository interface {
	Create(ctx context.Context, a *domain.FetchAttempt) error
	GetByID(ctx context.Context, id string) (*domain.FetchAttempt, error)
}

type GormAttemptRepo struct {
	db *gorm.DB
}

func NewGormAttemptRepo(db *gorm.DB) *GormAttemptRepo {
	return &GormAttemptRepo{db: db}
}

func (r *GormAttemptRepo) Create(ctx context.Context, a *domain.FetchAttempt) error {
	model := attemptModelFromDomain(a)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	if a != nil {
		*a = *attemptModelToDomain(model)
	}
	return nil
}

func (r *GormAttemptRepo) GetByID(ctx context.Context, id string) (*domain.FetchAttempt, error) {
	var model FetchAttemptModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return attemptModelToDomain(&model), nil
}
