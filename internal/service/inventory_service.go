package service

import (
	"context"
	"errors"

	"github.com/geniusacademy/registration-service/internal/dto"
	"github.com/geniusacademy/registration-service/internal/models"
	"github.com/geniusacademy/registration-service/internal/repository"
	"gorm.io/gorm"
)

var ErrClassNotFound = errors.New("class not found")

type InventoryService interface {
	ListClasses(ctx context.Context) ([]dto.ClassStatusResponse, error)
	GetClass(ctx context.Context, classID string) (*models.ClassOffering, error)
	RegisteredCount(ctx context.Context, classID string) (int64, error)
	IsAvailable(ctx context.Context, classID string) (bool, error)
	UpdateClass(ctx context.Context, classID string, req dto.UpdateClassRequest) error
}

type inventoryService struct {
	classRepo repository.ClassRepository
}

func NewInventoryService(classRepo repository.ClassRepository) InventoryService {
	return &inventoryService{classRepo: classRepo}
}

func (s *inventoryService) ListClasses(ctx context.Context) ([]dto.ClassStatusResponse, error) {
	classes, err := s.classRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]dto.ClassStatusResponse, len(classes))
	for i, c := range classes {
		registered, err := s.classRepo.RegisteredCount(ctx, c.ClassID)
		if err != nil {
			return nil, err
		}
		out[i] = dto.ClassStatusResponse{
			ClassID:        c.ClassID,
			Title:          c.Title,
			Description:    c.Description,
			Price:          c.Price,
			MaxSeats:       c.MaxSeats,
			Registered:     registered,
			Available:      availability(&c, registered),
			StatusOverride: c.StatusOverride,
		}
	}
	return out, nil
}

func (s *inventoryService) GetClass(ctx context.Context, classID string) (*models.ClassOffering, error) {
	class, err := s.classRepo.FindBySlug(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}
	return class, nil
}

func (s *inventoryService) RegisteredCount(ctx context.Context, classID string) (int64, error) {
	return s.classRepo.RegisteredCount(ctx, classID)
}

func (s *inventoryService) IsAvailable(ctx context.Context, classID string) (bool, error) {
	class, err := s.GetClass(ctx, classID)
	if err != nil {
		return false, err
	}
	if class.StatusOverride != models.OverrideAuto {
		return availability(class, 0), nil
	}
	registered, err := s.classRepo.RegisteredCount(ctx, classID)
	if err != nil {
		return false, err
	}
	return availability(class, registered), nil
}

func (s *inventoryService) UpdateClass(ctx context.Context, classID string, req dto.UpdateClassRequest) error {
	fields := map[string]interface{}{}
	if req.Title != nil {
		if *req.Title == "" {
			return Validationf("class title cannot be empty")
		}
		fields["title"] = *req.Title
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return Validationf("class price cannot be negative")
		}
		fields["price"] = *req.Price
	}
	if req.MaxSeats != nil {
		if *req.MaxSeats < 1 {
			return Validationf("max seats must be at least 1")
		}
		fields["max_seats"] = *req.MaxSeats
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.StatusOverride != nil {
		override := models.StatusOverride(*req.StatusOverride)
		if !override.Valid() {
			return Validationf("status override must be one of auto, available, full")
		}
		fields["status_override"] = override
	}
	if len(fields) == 0 {
		return Validationf("no fields to update")
	}

	affected, err := s.classRepo.Update(ctx, classID, fields)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrClassNotFound
	}
	return nil
}

// availability resolves the manual override first; only auto mode looks at
// the seat count.
func availability(class *models.ClassOffering, registered int64) bool {
	switch class.StatusOverride {
	case models.OverrideFull:
		return false
	case models.OverrideAvailable:
		return true
	default:
		return registered < int64(class.MaxSeats)
	}
}
