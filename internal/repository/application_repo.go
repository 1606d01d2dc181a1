package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/kursadbilgin/dispatch-console/internal/domain"
	"gorm.io/gorm"
)

type ApplicationRepository interface {
	Create(ctx context.Context, app *domain.Application) error
	List(ctx context.Context) ([]domain.Application, error)
	GetByName(ctx context.Context, name string) (*domain.Application, error)
	UpdateCredentials(ctx context.Context, name string, creds domain.Credentials) error
	DeleteByName(ctx context.Context, name string) error
}

type GormApplicationRepo struct {
	db *gorm.DB
}

func NewGormApplicationRepo(db *gorm.DB) *GormApplicationRepo {
	return &GormApplicationRepo{db: db}
}

func (r *GormApplicationRepo) Create(ctx context.Context, app *domain.Application) error {
	model := applicationModelFromDomain(app)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return err
	}
	if app != nil {
		*app = *applicationModelToDomain(model)
	}
	return nil
}

func (r *GormApplicationRepo) List(ctx context.Context) ([]domain.Application, error) {
	var models []ApplicationModel
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}

	apps := make([]domain.Application, 0, len(models))
	for i := range models {
		apps = append(apps, *applicationModelToDomain(&models[i]))
	}
	return apps, nil
}

func (r *GormApplicationRepo) GetByName(ctx context.Context, name string) (*domain.Application, error) {
	var model ApplicationModel
	err := r.db.WithContext(ctx).First(&model, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return applicationModelToDomain(&model), nil
}

func (r *GormApplicationRepo) UpdateCredentials(ctx context.Context, name string, creds domain.Credentials) error {
	result := r.db.WithContext(ctx).
		Model(&ApplicationModel{}).
		Where("name = ?", name).
		Updates(map[string]any{
			"api_token":  creds.Token,
			"api_secret": creds.Secret,
		})
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return domain.ErrConflict
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GormApplicationRepo) DeleteByName(ctx context.Context, name string) error {
	result := r.db.WithContext(ctx).
		Where("name = ?", name).
		Delete(&ApplicationModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
