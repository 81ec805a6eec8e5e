package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/geniusacademy/registration-service/internal/dto"
	"github.com/geniusacademy/registration-service/internal/service"
	amqp "github.com/rabbitmq/amqp091-go"
)

// OrderConsumer applies commerce order status-change notifications to the
// registrations they back-reference.
type OrderConsumer struct {
	regs service.RegistrationService
}

func NewOrderConsumer(regs service.RegistrationService) *OrderConsumer {
	return &OrderConsumer{regs: regs}
}

func (oc *OrderConsumer) Start(msgs <-chan amqp.Delivery) {
	go func() {
		for msg := range msgs {
			oc.handleMessage(context.Background(), msg)
		}
		log.Println("[OrderConsumer] channel closed, stopping consumer")
	}()
}

func (oc *OrderConsumer) handleMessage(ctx context.Context, msg amqp.Delivery) {
	var notif dto.OrderStatusMessage
	if err := json.Unmarshal(msg.Body, &notif); err != nil {
		log.Printf("[OrderConsumer] failed to unmarshal: %v", err)
		msg.Nack(false, false)
		return
	}
	if notif.RegistrationID == 0 {
		log.Printf("[OrderConsumer] order %s has no registration back-reference, dropping", notif.OrderID)
		msg.Nack(false, false)
		return
	}

	err := oc.regs.ApplyOrderStatus(ctx, notif.RegistrationID, notif.OrderID, notif.Status)
	switch {
	case err == nil:
		log.Printf("[OrderConsumer] order %s (%s) synced to registration %d", notif.OrderID, notif.Status, notif.RegistrationID)
		msg.Ack(false)
	case errors.Is(err, service.ErrUnknownOrderStatus):
		// Not a status we track; acknowledge and move on.
		msg.Ack(false)
	case errors.Is(err, service.ErrRegistrationNotFound):
		log.Printf("[OrderConsumer] order %s references unknown registration %d", notif.OrderID, notif.RegistrationID)
		msg.Nack(false, false)
	default:
		log.Printf("[OrderConsumer] failed to sync order %s: %v", notif.OrderID, err)
		msg.Nack(false, true) // requeue
	}
}
