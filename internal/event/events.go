package event

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type CustomerCreatedEvent struct {
	Timestamp  time.Time `json:"timestamp"`
	CustomerID uuid.UUID `json:"customerId"`
	Email      string    `json:"email"`
	CreatedBy  uuid.UUID `json:"createdBy"`
}

type OfferCreatedEvent struct {
	Timestamp      time.Time `json:"timestamp"`
	OfferID        uuid.UUID `json:"offerId"`
	CustomerID     uuid.UUID `json:"customerId"`
	MonthlyPayment string    `json:"monthlyPayment"`
	CreatedBy      uuid.UUID `json:"createdBy"`
}

type OfferUpdatedEvent struct {
	Timestamp      time.Time `json:"timestamp"`
	OfferID        uuid.UUID `json:"offerId"`
	CustomerID     uuid.UUID `json:"customerId"`
	Status         string    `json:"status"`
	MonthlyPayment string    `json:"monthlyPayment"`
}

func NewCustomerCreatedEvent(customerID uuid.UUID, email string, createdBy uuid.UUID) CustomerCreatedEvent {
	return CustomerCreatedEvent{
		Timestamp:  time.Now(),
		CustomerID: customerID,
		Email:      email,
		CreatedBy:  createdBy,
	}
}

func NewOfferCreatedEvent(offerID, customerID uuid.UUID, monthlyPayment string, createdBy uuid.UUID) OfferCreatedEvent {
	return OfferCreatedEvent{
		Timestamp:      time.Now(),
		OfferID:        offerID,
		CustomerID:     customerID,
		MonthlyPayment: monthlyPayment,
		CreatedBy:      createdBy,
	}
}

func NewOfferUpdatedEvent(offerID, customerID uuid.UUID, status, monthlyPayment string) OfferUpdatedEvent {
	return OfferUpdatedEvent{
		Timestamp:      time.Now(),
		OfferID:        offerID,
		CustomerID:     customerID,
		Status:         status,
		MonthlyPayment: monthlyPayment,
	}
}

type Publisher interface {
	PublishCustomerCreated(ctx context.Context, event CustomerCreatedEvent) error
	PublishOfferCreated(ctx context.Context, event OfferCreatedEvent) error
	PublishOfferUpdated(ctx context.Context, event OfferUpdatedEvent) error
}

// NopPublisher is wired when no broker is configured. Services treat publish
// failures as non-fatal, so dropping events entirely is safe too.
type NopPublisher struct{}

var _ Publisher = NopPublisher{}

func (NopPublisher) PublishCustomerCreated(context.Context, CustomerCreatedEvent) error { return nil }
func (NopPublisher) PublishOfferCreated(context.Context, OfferCreatedEvent) error       { return nil }
func (NopPublisher) PublishOfferUpdated(context.Context, OfferUpdatedEvent) error       { return nil }
