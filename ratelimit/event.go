package ratelimit

import (
	"context"
	"time"
)

// EventType event type
type EventType string

const (
	// EventAdmitted request admitted within the window
	EventAdmitted EventType = "admitted"

	// EventDenied request denied, window quota exhausted
	EventDenied EventType = "denied"

	// EventWindowReset bucket manually reset
	EventWindowReset EventType = "window_reset"
)

// Event interface
type Event interface {
	Type() EventType
	Resource() string
	Context() context.Context
	Timestamp() time.Time
}

// BaseEvent basic event
type BaseEvent struct {
	eventType EventType
	resource  string
	ctx       context.Context
	timestamp time.Time
}

// NewBaseEvent creates a base event
func NewBaseEvent(eventType EventType, resource string, ctx context.Context) BaseEvent {
	return BaseEvent{
		eventType: eventType,
		resource:  resource,
		ctx:       ctx,
		timestamp: time.Now(),
	}
}

// Type returns the event type
func (e *BaseEvent) Type() EventType {
	return e.eventType
}

// Resource returns the resource
func (e *BaseEvent) Resource() string {
	return e.resource
}

// Context returns the context
func (e *BaseEvent) Context() context.Context {
	return e.ctx
}

// Timestamp returns the timestamp
func (e *BaseEvent) Timestamp() time.Time {
	return e.timestamp
}

// AdmittedEvent request admitted
type AdmittedEvent struct {
	BaseEvent
	Remaining int64
	Limit     int64
}

// DeniedEvent request denied
type DeniedEvent struct {
	BaseEvent
	RetryAfter time.Duration
}

// WindowResetEvent bucket reset
type WindowResetEvent struct {
	BaseEvent
}

// EventListener event listener interface
type EventListener interface {
	OnEvent(event Event)
}

// EventListenerFunc event listener function type
type EventListenerFunc func(event Event)

// OnEvent implements the EventListener interface
func (f EventListenerFunc) OnEvent(event Event) {
	f(event)
}

// EventBus event bus interface
type EventBus interface {
	// Subscribe to events
	Subscribe(listener EventListener)

	// Publish an event (non-blocking; drops when the buffer is full)
	Publish(event Event)

	// Close the event bus
	Close()
}
