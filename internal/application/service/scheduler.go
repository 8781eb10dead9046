package service

import (
	"context"
	"time"
)

// DeliveryHandler receives the payload of a fired wake-up.
type DeliveryHandler func(ctx context.Context, payload string) error

// SchedulerService defines the interface for one-shot wake-up scheduling.
type SchedulerService interface {
	// ScheduleAt requests a wake-up delivering payload at (or after) at.
	// Scheduling again under the same identity replaces the pending wake-up.
	ScheduleAt(ctx context.Context, at time.Time, payload string, identity int) error
	// Cancel drops the pending wake-up for identity, if any.
	Cancel(ctx context.Context, identity int) error
	// Pending returns the fire time of every pending wake-up by identity.
	Pending() map[int]time.Time
	// SetDeliveryHandler registers the function fired wake-ups are delivered to.
	SetDeliveryHandler(handler DeliveryHandler)
	// Stop stops the underlying scheduler. Pending wake-ups are lost.
	Stop()
}
