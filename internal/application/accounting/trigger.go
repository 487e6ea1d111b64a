package accounting

import (
	"context"

	domsync "github.com/fenestra/backend/internal/domain/sync"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Queue accepts deferred sync work. Satisfied by the sync dispatcher.
type Queue interface {
	Submit(name string, entityType domsync.EntityType, direction domsync.Direction, run func(ctx context.Context) domsync.Result) bool
}

// Trigger requests accounting pushes without blocking the caller. Requests
// for a disabled integration are dropped before they reach the queue.
type Trigger struct {
	service *Service
	queue   Queue
	logger  *zap.Logger
}

// NewTrigger wires the trigger
func NewTrigger(service *Service, queue Queue, logger *zap.Logger) *Trigger {
	return &Trigger{service: service, queue: queue, logger: logger}
}

func (t *Trigger) enabled(kind string) bool {
	if t.service.Enabled() {
		return true
	}
	t.logger.Debug("accounting sync disabled, dropping request", zap.String("kind", kind))
	return false
}

// RequestCustomerPush queues an outbound customer push
func (t *Trigger) RequestCustomerPush(customerID uuid.UUID) {
	if !t.enabled("customer") {
		return
	}
	t.queue.Submit("push customer", domsync.EntityTypeCustomer, domsync.DirectionERPToQuickBooks,
		func(ctx context.Context) domsync.Result {
			return t.service.PushCustomer(ctx, customerID)
		})
}

// RequestInvoicePush queues an outbound invoice push
func (t *Trigger) RequestInvoicePush(invoiceID uuid.UUID) {
	if !t.enabled("invoice") {
		return
	}
	t.queue.Submit("push invoice", domsync.EntityTypeInvoice, domsync.DirectionERPToQuickBooks,
		func(ctx context.Context) domsync.Result {
			return t.service.PushInvoice(ctx, invoiceID)
		})
}

// RequestPurchaseOrderPush queues an outbound purchase order push
func (t *Trigger) RequestPurchaseOrderPush(orderID uuid.UUID) {
	if !t.enabled("purchase_order") {
		return
	}
	t.queue.Submit("push purchase order", domsync.EntityTypePurchaseOrder, domsync.DirectionERPToQuickBooks,
		func(ctx context.Context) domsync.Result {
			return t.service.PushPurchaseOrder(ctx, orderID)
		})
}

// RequestEstimatePush queues an outbound estimate push for a project
func (t *Trigger) RequestEstimatePush(projectID uuid.UUID) {
	if !t.enabled("estimate") {
		return
	}
	t.queue.Submit("push estimate", domsync.EntityTypeEstimate, domsync.DirectionERPToQuickBooks,
		func(ctx context.Context) domsync.Result {
			return t.service.PushEstimate(ctx, projectID)
		})
}
