package models

import "time"

// ProductEventType names a product lifecycle transition.
type ProductEventType string

const (
	ProductCreated ProductEventType = "product.created"
	ProductUpdated ProductEventType = "product.updated"
	ProductDeleted ProductEventType = "product.deleted"
)

// ProductEvent is published after a product write commits.
type ProductEvent struct {
	Type       ProductEventType `json:"type"`
	ProductID  string           `json:"productId"`
	OwnerID    string           `json:"ownerId"`
	Name       string           `json:"name,omitempty"`
	Stock      int              `json:"stock"`
	OccurredAt time.Time        `json:"occurredAt"`
}
