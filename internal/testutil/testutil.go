// Package testutil provides shared test fixtures for the pointer
// pipeline.
//
// This package centralises common test helpers to reduce code
// duplication across test files.
package testutil

import (
	"github.com/banshee-data/touchbridge/internal/bridge"
)

// DragMapper maps the primary contact's position straight onto the
// visual translation, the simplest useful mapping for pipeline tests.
func DragMapper(sample bridge.PointerSample, _ []bridge.PointerSample) bridge.VisualUpdate {
	return bridge.VisualUpdate{
		TranslateX: bridge.Float(sample.X),
		TranslateY: bridge.Float(sample.Y),
	}
}

// Contacts builds a single full-pressure contact list at the given
// position.
func Contacts(x, y float64) []bridge.Contact {
	return []bridge.Contact{{ID: 1, X: x, Y: y, Pressure: 1}}
}

// Event builds a single-contact pointer event.
func Event(timestampMs, x, y float64) bridge.PointerEvent {
	return bridge.PointerEvent{Timestamp: timestampMs, Contacts: Contacts(x, y)}
}
