package consumer

import (
	"context"
	"errors"
	"testing"

	"github.com/geniusacademy/registration-service/internal/dto"
	"github.com/geniusacademy/registration-service/internal/models"
	"github.com/geniusacademy/registration-service/internal/repository"
	"github.com/geniusacademy/registration-service/internal/service"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
)

// --- Fake acknowledger ---

type fakeAcknowledger struct {
	acked    bool
	nacked   bool
	requeued bool
}

func (a *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	a.acked = true
	return nil
}
func (a *fakeAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	a.nacked = true
	a.requeued = requeue
	return nil
}
func (a *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	a.nacked = true
	a.requeued = requeue
	return nil
}

// --- Mock RegistrationService ---

type mockRegService struct {
	applyFn func(ctx context.Context, registrationID uint, orderID, status string) error
	applied int
}

func (m *mockRegService) ApplyOrderStatus(ctx context.Context, registrationID uint, orderID, status string) error {
	m.applied++
	if m.applyFn != nil {
		return m.applyFn(ctx, registrationID, orderID, status)
	}
	return nil
}
func (m *mockRegService) Submit(ctx context.Context, req dto.SubmitRegistrationRequest) (*dto.SubmitResult, error) {
	return nil, nil
}
func (m *mockRegService) Get(ctx context.Context, id uint) (*models.Registration, error) {
	return nil, nil
}
func (m *mockRegService) List(ctx context.Context, filter repository.RegistrationFilter) ([]models.Registration, int64, error) {
	return nil, 0, nil
}
func (m *mockRegService) UpdateSingle(ctx context.Context, id uint, req dto.UpdateRegistrationRequest) (*models.Registration, error) {
	return nil, nil
}
func (m *mockRegService) Delete(ctx context.Context, id uint) error { return nil }

func delivery(body string) (amqp.Delivery, *fakeAcknowledger) {
	ack := &fakeAcknowledger{}
	return amqp.Delivery{Acknowledger: ack, Body: []byte(body)}, ack
}

// --- Tests ---

func TestOrderConsumer_SyncsStatus(t *testing.T) {
	svc := &mockRegService{
		applyFn: func(ctx context.Context, registrationID uint, orderID, status string) error {
			assert.Equal(t, uint(42), registrationID)
			assert.Equal(t, "1001", orderID)
			assert.Equal(t, "completed", status)
			return nil
		},
	}
	oc := NewOrderConsumer(svc)

	msg, ack := delivery(`{"order_id":"1001","registration_id":42,"status":"completed"}`)
	oc.handleMessage(context.Background(), msg)

	assert.True(t, ack.acked)
	assert.False(t, ack.nacked)
}

func TestOrderConsumer_DropsMalformedBody(t *testing.T) {
	svc := &mockRegService{}
	oc := NewOrderConsumer(svc)

	msg, ack := delivery(`{broken`)
	oc.handleMessage(context.Background(), msg)

	assert.True(t, ack.nacked)
	assert.False(t, ack.requeued)
	assert.Equal(t, 0, svc.applied)
}

func TestOrderConsumer_DropsMissingBackReference(t *testing.T) {
	svc := &mockRegService{}
	oc := NewOrderConsumer(svc)

	// An order created outside the registration flow has no registration_id.
	msg, ack := delivery(`{"order_id":"2002","status":"completed"}`)
	oc.handleMessage(context.Background(), msg)

	assert.True(t, ack.nacked)
	assert.False(t, ack.requeued)
	assert.Equal(t, 0, svc.applied)
}

func TestOrderConsumer_AcksUntrackedStatus(t *testing.T) {
	svc := &mockRegService{
		applyFn: func(ctx context.Context, registrationID uint, orderID, status string) error {
			return service.ErrUnknownOrderStatus
		},
	}
	oc := NewOrderConsumer(svc)

	msg, ack := delivery(`{"order_id":"1001","registration_id":42,"status":"pending-payment"}`)
	oc.handleMessage(context.Background(), msg)

	assert.True(t, ack.acked)
}

func TestOrderConsumer_DropsUnknownRegistration(t *testing.T) {
	svc := &mockRegService{
		applyFn: func(ctx context.Context, registrationID uint, orderID, status string) error {
			return service.ErrRegistrationNotFound
		},
	}
	oc := NewOrderConsumer(svc)

	msg, ack := delivery(`{"order_id":"1001","registration_id":404,"status":"completed"}`)
	oc.handleMessage(context.Background(), msg)

	assert.True(t, ack.nacked)
	assert.False(t, ack.requeued, "an unknown registration will not appear by retrying")
}

func TestOrderConsumer_RequeuesTransientFailure(t *testing.T) {
	svc := &mockRegService{
		applyFn: func(ctx context.Context, registrationID uint, orderID, status string) error {
			return errors.New("connection reset")
		},
	}
	oc := NewOrderConsumer(svc)

	msg, ack := delivery(`{"order_id":"1001","registration_id":42,"status":"completed"}`)
	oc.handleMessage(context.Background(), msg)

	assert.True(t, ack.nacked)
	assert.True(t, ack.requeued)
}
