package repository

import (
	"context"

	"github.com/geniusacademy/registration-service/internal/models"
	"gorm.io/gorm"
)

type ClassRepository interface {
	FindAll(ctx context.Context) ([]models.ClassOffering, error)
	FindBySlug(ctx context.Context, classID string) (*models.ClassOffering, error)
	Update(ctx context.Context, classID string, fields map[string]interface{}) (int64, error)
	RegisteredCount(ctx context.Context, classID string) (int64, error)
}

type classRepository struct {
	db *gorm.DB
}

func NewClassRepository(db *gorm.DB) ClassRepository {
	return &classRepository{db: db}
}

func (r *classRepository) FindAll(ctx context.Context) ([]models.ClassOffering, error) {
	var classes []models.ClassOffering
	if err := r.db.WithContext(ctx).Order("title ASC").Find(&classes).Error; err != nil {
		return nil, err
	}
	return classes, nil
}

func (r *classRepository) FindBySlug(ctx context.Context, classID string) (*models.ClassOffering, error) {
	var class models.ClassOffering
	if err := r.db.WithContext(ctx).Where("class_id = ?", classID).First(&class).Error; err != nil {
		return nil, err
	}
	return &class, nil
}

// Update applies a partial field update and reports how many rows matched.
func (r *classRepository) Update(ctx context.Context, classID string, fields map[string]interface{}) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.ClassOffering{}).
		Where("class_id = ?", classID).
		Updates(fields)
	return res.RowsAffected, res.Error
}

// RegisteredCount counts non-cancelled registrations holding a seat in the
// class, via the registration_classes join table.
func (r *classRepository) RegisteredCount(ctx context.Context, classID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.RegistrationClass{}).
		Joins("JOIN registrations ON registrations.id = registration_classes.registration_id").
		Where("registration_classes.class_id = ? AND registrations.reg_status <> ?", classID, models.RegCancel).
		Count(&count).Error
	return count, err
}
