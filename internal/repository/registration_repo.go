package repository

import (
	"context"

	"github.com/geniusacademy/registration-service/internal/models"
	"gorm.io/gorm"
)

// RegistrationFilter narrows List results. Zero values mean "no filter".
type RegistrationFilter struct {
	YearGroup string
	Search    string
	Page      int
	PerPage   int
}

type RegistrationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, reg *models.Registration) error
	FindByID(ctx context.Context, id uint) (*models.Registration, error)
	List(ctx context.Context, filter RegistrationFilter) ([]models.Registration, int64, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) (int64, error)
	Delete(ctx context.Context, id uint) (int64, error)
	GetDB() *gorm.DB
}

type registrationRepository struct {
	db *gorm.DB
}

func NewRegistrationRepository(db *gorm.DB) RegistrationRepository {
	return &registrationRepository{db: db}
}

func (r *registrationRepository) GetDB() *gorm.DB {
	return r.db
}

// Create inserts the registration together with its selection rows. A nil
// tx uses the repository's own handle; gorm runs the multi-row insert in
// its default transaction either way.
func (r *registrationRepository) Create(ctx context.Context, tx *gorm.DB, reg *models.Registration) error {
	db := r.db
	if tx != nil {
		db = tx
	}
	return db.WithContext(ctx).Create(reg).Error
}

func (r *registrationRepository) FindByID(ctx context.Context, id uint) (*models.Registration, error) {
	var reg models.Registration
	if err := r.db.WithContext(ctx).Preload("Classes").First(&reg, id).Error; err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *registrationRepository) List(ctx context.Context, filter RegistrationFilter) ([]models.Registration, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Registration{})

	if filter.YearGroup != "" && filter.YearGroup != "all" {
		q = q.Where("year_group = ?", filter.YearGroup)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where(
			`order_code ILIKE ? OR parent_first_name ILIKE ? OR parent_last_name ILIKE ?
			 OR parent_email ILIKE ? OR parent_phone ILIKE ?
			 OR student_first_name ILIKE ? OR student_last_name ILIKE ? OR location ILIKE ?`,
			like, like, like, like, like, like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	per := filter.PerPage
	if per < 1 {
		per = 20
	}

	var regs []models.Registration
	err := q.Preload("Classes").
		Order("created_at DESC").
		Limit(per).
		Offset((page - 1) * per).
		Find(&regs).Error
	if err != nil {
		return nil, 0, err
	}
	return regs, total, nil
}

func (r *registrationRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Registration{}).
		Where("order_code = ?", code).
		Count(&count).Error
	return count > 0, err
}

// UpdateFields applies a direct column overwrite and reports rows matched.
func (r *registrationRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Registration{}).
		Where("id = ?", id).
		Updates(fields)
	return res.RowsAffected, res.Error
}

func (r *registrationRepository) Delete(ctx context.Context, id uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Select("Classes").
		Delete(&models.Registration{ID: id})
	return res.RowsAffected, res.Error
}
