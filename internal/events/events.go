// Package events fans domain events out to the message broker and to
// websocket clients after the database work is committed.
package events

import (
	"context"
	"errors"
	"log"
	"time"

	"go-marketplace-api/internal/ws"
)

const (
	OrderCreated            = "order.created"
	StoreOrderCreated       = "store_order.created"
	StoreOrderStatusChanged = "store_order.status_changed"
	TopupCompleted          = "topup.completed"
	WithdrawalRequested     = "withdrawal.requested"
	WithdrawalProcessed     = "withdrawal.processed"
	WithdrawalRejected      = "withdrawal.rejected"
	SettlementCreated       = "settlement.created"
)

type Publisher interface {
	Publish(ctx context.Context, routingKey string, data interface{}) error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, string, interface{}) error { return nil }

// Multi publishes to each publisher in turn and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, routingKey string, data interface{}) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, routingKey, data); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// HubPublisher pushes events to websocket clients.
type HubPublisher struct {
	Hub *ws.Hub
}

func (h HubPublisher) Publish(_ context.Context, routingKey string, data interface{}) error {
	return h.Hub.Send(routingKey, data)
}

// PublishAsync sends the event from a goroutine; failures are only logged.
func PublishAsync(p Publisher, routingKey string, data interface{}) {
	if p == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := p.Publish(ctx, routingKey, data); err != nil {
			log.Printf("Warning: failed to publish %s: %v", routingKey, err)
		}
	}()
}
