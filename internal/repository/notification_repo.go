package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/kursadbilgin/dispatch-console/internal/domain"
	"gorm.io/gorm"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// RecordFilter narrows the notification log. Nil fields match everything.
type RecordFilter struct {
	ApplicationID *string
	Channel       *string
	Provider      *string
	From          *time.Time
	To            *time.Time
}

type ListParams struct {
	RecordFilter
	Page     int
	PageSize int
}

// Fingerprint summarizes a filtered snapshot cheaply. Two reads with the
// same fingerprint see the same rows unless rows were rewritten without
// touching updated_at.
type Fingerprint struct {
	Count         int64
	LastUpdatedAt time.Time
}

type NotificationRepository interface {
	ListRecords(ctx context.Context, filter RecordFilter) ([]domain.NotificationRecord, error)
	List(ctx context.Context, params ListParams) ([]domain.NotificationRecord, int64, error)
	Fingerprint(ctx context.Context, filter RecordFilter) (Fingerprint, error)
}

type GormNotificationRepo struct {
	db *gorm.DB
}

func NewGormNotificationRepo(db *gorm.DB) *GormNotificationRepo {
	return &GormNotificationRepo{db: db}
}

// ListRecords returns the whole filtered log in insertion order.
func (r *GormNotificationRepo) ListRecords(ctx context.Context, filter RecordFilter) ([]domain.NotificationRecord, error) {
	var models []NotificationModel
	err := r.filtered(ctx, filter).
		Order("created_at ASC").
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return notificationModelsToDomain(models), nil
}

func (r *GormNotificationRepo) List(ctx context.Context, params ListParams) ([]domain.NotificationRecord, int64, error) {
	query := r.filtered(ctx, params.RecordFilter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := max(params.Page, 1)
	pageSize := params.PageSize
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	pageSize = min(pageSize, MaxPageSize)

	var models []NotificationModel
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	return notificationModelsToDomain(models), total, nil
}

func (r *GormNotificationRepo) Fingerprint(ctx context.Context, filter RecordFilter) (Fingerprint, error) {
	var row struct {
		Count         int64        `gorm:"column:count"`
		LastUpdatedAt sql.NullTime `gorm:"column:last_updated_at"`
	}
	err := r.filtered(ctx, filter).
		Select("COUNT(*) AS count, MAX(updated_at) AS last_updated_at").
		Scan(&row).Error
	if err != nil {
		return Fingerprint{}, err
	}

	fp := Fingerprint{Count: row.Count}
	if row.LastUpdatedAt.Valid {
		fp.LastUpdatedAt = row.LastUpdatedAt.Time.UTC()
	}
	return fp, nil
}

func (r *GormNotificationRepo) filtered(ctx context.Context, filter RecordFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&NotificationModel{})

	if filter.ApplicationID != nil {
		query = query.Where("application_id = ?", *filter.ApplicationID)
	}
	if filter.Channel != nil {
		query = query.Where("channel = ?", *filter.Channel)
	}
	if filter.Provider != nil {
		query = query.Where("provider = ?", *filter.Provider)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}

	return query
}
