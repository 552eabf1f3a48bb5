package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const CollectionName = "outbox"

// EventType identifies the kind of event
type EventType string

const (
	EventTypeHealthAlert EventType = "healthAlert"
)

// Event is the common envelope for all outbox events. EventId is stable
// across redeliveries and lets consumers drop duplicates.
type Event struct {
	Id          *primitive.ObjectID `bson:"_id,omitempty"`
	EventId     string              `bson:"eventId"`
	EventType   EventType           `bson:"eventType"`
	CreatedTime time.Time           `bson:"createdTime"`
	Payload     bson.Raw            `bson:"payload"`
}

// HealthAlertPayload is recorded when the overall status of a user worsens
type HealthAlertPayload struct {
	UserId     string            `bson:"userId"`
	UserName   string            `bson:"userName"`
	DeviceMac  string            `bson:"deviceMac"`
	Previous   string            `bson:"previous"`
	Current    string            `bson:"current"`
	Statuses   map[string]string `bson:"statuses"`
	MeasuredAt *time.Time        `bson:"measuredAt,omitempty"`
}

type Repository interface {
	Create(ctx context.Context, event Event) error
	List(ctx context.Context, eventType EventType, limit int) ([]Event, error)
	Initialize(ctx context.Context) error
}

// NewEvent creates an Event from a typed payload
func NewEvent(eventType EventType, payload interface{}) (Event, error) {
	raw, err := bson.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("error marshaling outbox event payload: %w", err)
	}

	return Event{
		EventId:     uuid.NewString(),
		EventType:   eventType,
		CreatedTime: time.Now(),
		Payload:     bson.Raw(raw),
	}, nil
}

// DecodePayload unmarshals the payload of the event into v
func (e Event) DecodePayload(v interface{}) error {
	if err := bson.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("error unmarshaling %s payload: %w", e.EventType, err)
	}
	return nil
}
