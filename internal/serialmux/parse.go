package serialmux

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/banshee-data/touchbridge/internal/bridge"
)

// Digitizer line grammar. Each line is one pointer frame:
//
//	millis,kind[,contact[,contact...]]
//
// where kind is down/move/up and contact is "id:x:y:pressure". The
// contact list holds the contacts still active after the event, so an up
// line with no contacts means the surface is clear. Lines beginning with
// '{' are device status JSON and are not pointer frames.
const (
	EventTypeDown    = "down"
	EventTypeMove    = "move"
	EventTypeUp      = "up"
	EventTypeStatus  = "status"
	EventTypeUnknown = "unknown"
)

// ClassifyLine inspects a raw line and returns a simple event type token.
func ClassifyLine(line string) string {
	if strings.HasPrefix(line, "{") {
		return EventTypeStatus
	}
	fields := strings.SplitN(line, ",", 3)
	if len(fields) < 2 {
		return EventTypeUnknown
	}
	switch fields[1] {
	case EventTypeDown, EventTypeMove, EventTypeUp:
		return fields[1]
	}
	return EventTypeUnknown
}

// ParsePointerLine parses one digitizer frame line into a pointer event.
// The returned kind is one of EventTypeDown/Move/Up.
func ParsePointerLine(line string) (kind string, ev bridge.PointerEvent, err error) {
	fields := strings.Split(strings.TrimSpace(line), ",")
	if len(fields) < 2 {
		return "", ev, fmt.Errorf("invalid frame %q: expected at least 2 fields", line)
	}

	millis, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return "", ev, fmt.Errorf("invalid timestamp %q: %w", fields[0], err)
	}

	kind = fields[1]
	switch kind {
	case EventTypeDown, EventTypeMove, EventTypeUp:
	default:
		return "", ev, fmt.Errorf("unknown frame kind %q", kind)
	}

	ev.Timestamp = millis
	for _, raw := range fields[2:] {
		c, err := parseContact(raw)
		if err != nil {
			return "", bridge.PointerEvent{}, err
		}
		ev.Contacts = append(ev.Contacts, c)
	}

	if kind != EventTypeUp && len(ev.Contacts) == 0 {
		return "", bridge.PointerEvent{}, fmt.Errorf("%s frame %q carries no contacts", kind, line)
	}

	return kind, ev, nil
}

func parseContact(raw string) (bridge.Contact, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 4 {
		return bridge.Contact{}, fmt.Errorf("invalid contact %q: expected id:x:y:pressure", raw)
	}

	id, err := strconv.Atoi(parts[0])
	if err != nil {
		return bridge.Contact{}, fmt.Errorf("invalid contact id %q: %w", parts[0], err)
	}
	x, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return bridge.Contact{}, fmt.Errorf("invalid contact x %q: %w", parts[1], err)
	}
	y, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return bridge.Contact{}, fmt.Errorf("invalid contact y %q: %w", parts[2], err)
	}
	pressure, err := strconv.ParseFloat(parts[3], 64)
	if err != nil {
		return bridge.Contact{}, fmt.Errorf("invalid contact pressure %q: %w", parts[3], err)
	}

	return bridge.Contact{ID: id, X: x, Y: y, Pressure: pressure}, nil
}
