// Package events describes the lifecycle events a session emits.
package events

import (
	"encoding/json"
	"fmt"
	"time"
)

type Type string

const (
	OrderPlaced          Type = "order_placed"
	PartnerAssigned      Type = "partner_assigned"
	OrderStatusChanged   Type = "order_status_changed"
	OrderDelivered       Type = "order_delivered"
	OrderCancelled       Type = "order_cancelled"
	MenuItemDeleted      Type = "menu_item_deleted"
	PartnerStatusChanged Type = "partner_status_changed"
)

// Event is a flat record so that every topic shares one schema, whether it
// ends up as JSON, a Kafka message or a Parquet row.
type Event struct {
	Timestamp      int64  `json:"timestamp" parquet:"name=timestamp,type=INT64"`
	EventType      string `json:"eventType" parquet:"name=eventType,type=BYTE_ARRAY,convertedtype=UTF8"`
	OrderID        string `json:"orderId,omitempty" parquet:"name=orderId,type=BYTE_ARRAY,convertedtype=UTF8"`
	PartnerID      string `json:"partnerId,omitempty" parquet:"name=partnerId,type=BYTE_ARRAY,convertedtype=UTF8"`
	MenuItemID     string `json:"menuItemId,omitempty" parquet:"name=menuItemId,type=BYTE_ARRAY,convertedtype=UTF8"`
	Status         string `json:"status,omitempty" parquet:"name=status,type=BYTE_ARRAY,convertedtype=UTF8"`
	PreviousStatus string `json:"previousStatus,omitempty" parquet:"name=previousStatus,type=BYTE_ARRAY,convertedtype=UTF8"`
	Total          int64  `json:"total,omitempty" parquet:"name=total,type=INT64"`
	ItemCount      int32  `json:"itemCount,omitempty" parquet:"name=itemCount,type=INT32"`
	Earnings       int64  `json:"earnings,omitempty" parquet:"name=earnings,type=INT64"`
	Address        string `json:"address,omitempty" parquet:"name=address,type=BYTE_ARRAY,convertedtype=UTF8"`
}

func New(t Type, at time.Time) Event {
	return Event{Timestamp: at.Unix(), EventType: string(t)}
}

// Topic is the stream an event is written to.
func (e Event) Topic() string {
	return e.EventType + "_events"
}

func (e Event) Marshal() ([]byte, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s event: %w", e.EventType, err)
	}
	return b, nil
}

// Publisher receives every event the session applies. Implementations must
// not call back into the session.
type Publisher interface {
	Publish(e Event)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(e Event)

func (f PublisherFunc) Publish(e Event) { f(e) }

// Discard drops every event.
var Discard Publisher = PublisherFunc(func(Event) {})

// Recorder keeps events in memory, mostly for tests and summaries.
type Recorder struct {
	Events []Event
}

func (r *Recorder) Publish(e Event) {
	r.Events = append(r.Events, e)
}

func (r *Recorder) OfType(t Type) []Event {
	var out []Event
	for _, e := range r.Events {
		if e.EventType == string(t) {
			out = append(out, e)
		}
	}
	return out
}
