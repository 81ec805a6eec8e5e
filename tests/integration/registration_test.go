//go:build integration

package integration

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/geniusacademy/registration-service/internal/dto"
	"github.com/geniusacademy/registration-service/internal/models"
	"github.com/geniusacademy/registration-service/internal/repository"
	"github.com/geniusacademy/registration-service/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopSignatures struct{}

func (nopSignatures) Save(dataURI string) (string, error) { return "", nil }

type nopMailer struct{}

func (nopMailer) SendNewRegistration(reg *models.Registration) error { return nil }

func createTestClass(t *testing.T, classID string, maxSeats int) *models.ClassOffering {
	t.Helper()
	class := &models.ClassOffering{
		ClassID:  classID,
		Title:    classID,
		Price:    79.99,
		MaxSeats: maxSeats,
	}
	require.NoError(t, testDB.Create(class).Error)
	return class
}

func newRegistrationService() (service.RegistrationService, service.InventoryService) {
	classRepo := repository.NewClassRepository(testDB)
	regRepo := repository.NewRegistrationRepository(testDB)
	inventory := service.NewInventoryService(classRepo)
	codes := service.NewOrderCodeGenerator(regRepo.CodeExists)
	regs := service.NewRegistrationService(regRepo, inventory, codes, nopSignatures{}, nil, nopMailer{})
	return regs, inventory
}

func submitRequest(email, student string) dto.SubmitRegistrationRequest {
	return dto.SubmitRegistrationRequest{
		ParentFirstName:  "Jordan",
		ParentLastName:   "Reed",
		ParentEmail:      email,
		ParentPhone:      "07700900123",
		StudentFirstName: student,
		StudentLastName:  "Reed",
		Location:         "Birmingham",
		YearGroup:        "Year 5",
		Classes: []dto.ClassSelection{
			{ID: "sat-morning", Title: "sat-morning", Price: 79.99},
		},
		PaymentMethod: "cash",
		AcceptedTerms: true,
	}
}

// 40 parents submit concurrently; every registration must get a distinct
// order code even when random draws collide.
func TestConcurrentSubmissions_UniqueOrderCodes(t *testing.T) {
	cleanTables()
	createTestClass(t, "sat-morning", 100)
	svc, _ := newRegistrationService()

	totalUsers := 40
	var wg sync.WaitGroup
	results := make(chan *dto.SubmitResult, totalUsers)
	errs := make(chan error, totalUsers)

	wg.Add(totalUsers)
	for i := 0; i < totalUsers; i++ {
		go func(idx int) {
			defer wg.Done()
			req := submitRequest(fmt.Sprintf("parent-%03d@example.com", idx), fmt.Sprintf("student-%03d", idx))
			result, err := svc.Submit(context.Background(), req)
			if err != nil {
				errs <- err
				return
			}
			results <- result
		}(i)
	}
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		t.Fatalf("submission failed: %v", err)
	}

	codes := make(map[string]bool)
	for r := range results {
		assert.Len(t, r.OrderCode, service.OrderCodeLength)
		assert.False(t, codes[r.OrderCode], "duplicate order code %s", r.OrderCode)
		codes[r.OrderCode] = true
	}
	assert.Len(t, codes, totalUsers)
}

func TestSeatCounting_ExcludesCancelled(t *testing.T) {
	cleanTables()
	createTestClass(t, "sat-morning", 2)
	svc, inventory := newRegistrationService()

	first, err := svc.Submit(context.Background(), submitRequest("a@example.com", "Alpha"))
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), submitRequest("b@example.com", "Beta"))
	require.NoError(t, err)

	available, err := inventory.IsAvailable(context.Background(), "sat-morning")
	require.NoError(t, err)
	assert.False(t, available, "both seats are taken")

	// A third submission must be refused.
	_, err = svc.Submit(context.Background(), submitRequest("c@example.com", "Gamma"))
	assert.True(t, service.IsValidation(err))

	// Cancelling one frees the seat.
	_, err = svc.UpdateSingle(context.Background(), first.ID, dto.UpdateRegistrationRequest{
		PaymentStatus: "cancel",
		RegStatus:     "cancel",
	})
	require.NoError(t, err)

	count, err := inventory.RegisteredCount(context.Background(), "sat-morning")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	available, err = inventory.IsAvailable(context.Background(), "sat-morning")
	require.NoError(t, err)
	assert.True(t, available)
}

func TestDelete_CascadesToSelections(t *testing.T) {
	cleanTables()
	createTestClass(t, "sat-morning", 10)
	svc, _ := newRegistrationService()

	result, err := svc.Submit(context.Background(), submitRequest("a@example.com", "Alpha"))
	require.NoError(t, err)

	var selections int64
	testDB.Model(&models.RegistrationClass{}).Count(&selections)
	require.Equal(t, int64(1), selections)

	require.NoError(t, svc.Delete(context.Background(), result.ID))

	testDB.Model(&models.RegistrationClass{}).Count(&selections)
	assert.Equal(t, int64(0), selections, "selection rows must go with the registration")
}

func TestList_SearchAndFilter(t *testing.T) {
	cleanTables()
	createTestClass(t, "sat-morning", 100)
	svc, _ := newRegistrationService()

	req := submitRequest("smith@example.com", "Avery")
	req.ParentLastName = "Smith"
	_, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)

	req = submitRequest("jones@example.com", "Blake")
	req.ParentLastName = "Jones"
	req.YearGroup = "Year 7"
	_, err = svc.Submit(context.Background(), req)
	require.NoError(t, err)

	regs, total, err := svc.List(context.Background(), repository.RegistrationFilter{Search: "smith"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Smith", regs[0].ParentLastName)

	regs, total, err = svc.List(context.Background(), repository.RegistrationFilter{YearGroup: "Year 7"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Jones", regs[0].ParentLastName)

	_, total, err = svc.List(context.Background(), repository.RegistrationFilter{YearGroup: "all"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestApplyOrderStatus_Persists(t *testing.T) {
	cleanTables()
	createTestClass(t, "sat-morning", 10)
	svc, _ := newRegistrationService()

	result, err := svc.Submit(context.Background(), submitRequest("a@example.com", "Alpha"))
	require.NoError(t, err)

	require.NoError(t, svc.ApplyOrderStatus(context.Background(), result.ID, "1001", "completed"))

	reg, err := svc.Get(context.Background(), result.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, reg.PaymentStatus)
	assert.Equal(t, models.RegActive, reg.RegStatus)
	assert.Equal(t, service.PaymentProviderWooCommerce, reg.PaymentProvider)
	assert.Equal(t, "1001", reg.PaymentTrx)
}
