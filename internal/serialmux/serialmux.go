// Package serialmux provides an abstraction over a serial port with the
// ability for multiple clients to subscribe to line events from a single
// serial-attached touch digitizer and send commands to it.
package serialmux

import (
	"bufio"
	"context"
	crand "crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"github.com/banshee-data/touchbridge/internal/monitoring"
)

var ErrWriteFailed = fmt.Errorf("failed to write to serial port")

// subscriberBuffer absorbs short bursts of frames so the read loop does
// not drop lines while a subscriber is mid-dispatch.
const subscriberBuffer = 32

// SerialMux is a generic serial port multiplexer that allows multiple
// clients to subscribe to line events from a single serial port.
type SerialMux[T SerialPorter] struct {
	port         T
	subscribers  map[string]chan string
	subscriberMu sync.Mutex
	commandMu    sync.Mutex
	closing      bool
	closingMu    sync.Mutex
}

// SerialMuxInterface defines the interface for the SerialMux type.
type SerialMuxInterface interface {
	// Subscribe creates a new channel for receiving line events from the
	// serial port. The channel ID identifies the channel when
	// unsubscribing.
	Subscribe() (string, chan string)
	// Unsubscribe removes a channel from the list of subscribers.
	Unsubscribe(string)
	// SendCommand writes the provided command to the serial port.
	SendCommand(string) error
	// Monitor reads lines from the serial port and fans them out to all
	// subscribed channels until the context is cancelled or the port
	// closes.
	Monitor(context.Context) error
	// Close closes all subscribed channels and closes the serial port.
	Close() error
}

// NewSerialMux creates a SerialMux instance backed by the given port.
func NewSerialMux[T SerialPorter](port T) *SerialMux[T] {
	return &SerialMux[T]{
		port:        port,
		subscribers: make(map[string]chan string),
	}
}

// randomID generates a random channel ID (8 byte random hex encoded value)
func randomID() string {
	b := make([]byte, 8)
	crand.Read(b)
	return hex.EncodeToString(b)
}

func (s *SerialMux[T]) Subscribe() (string, chan string) {
	id := randomID()
	ch := make(chan string, subscriberBuffer)
	s.subscriberMu.Lock()
	defer s.subscriberMu.Unlock()
	s.subscribers[id] = ch
	return id, ch
}

// SubscriberCount reports the number of active subscriptions.
func (s *SerialMux[T]) SubscriberCount() int {
	s.subscriberMu.Lock()
	defer s.subscriberMu.Unlock()
	return len(s.subscribers)
}

func (s *SerialMux[T]) Unsubscribe(id string) {
	s.subscriberMu.Lock()
	defer s.subscriberMu.Unlock()
	if ch, ok := s.subscribers[id]; ok {
		close(ch)
		delete(s.subscribers, id)
	}
}

// SendCommand writes a single command line to the digitizer. Commands are
// serialized so concurrent callers cannot interleave partial writes.
func (s *SerialMux[T]) SendCommand(cmd string) error {
	s.commandMu.Lock()
	defer s.commandMu.Unlock()

	if !strings.HasSuffix(cmd, "\n") {
		cmd += "\n"
	}
	n, err := s.port.Write([]byte(cmd))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	if n != len(cmd) {
		return fmt.Errorf("%w: wrote %d of %d bytes", ErrWriteFailed, n, len(cmd))
	}
	return nil
}

// Monitor reads lines from the serial port and sends them to all
// subscribers. Slow subscribers drop lines rather than stalling the read
// loop: a stale pointer frame is worse than a missing one.
func (s *SerialMux[T]) Monitor(ctx context.Context) error {
	scanner := bufio.NewScanner(s.port)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		s.subscriberMu.Lock()
		for _, ch := range s.subscribers {
			select {
			case ch <- line:
			default:
				monitoring.Debugf("serialmux: dropped line for slow subscriber")
			}
		}
		s.subscriberMu.Unlock()
	}

	if err := scanner.Err(); err != nil {
		s.closingMu.Lock()
		closing := s.closing
		s.closingMu.Unlock()
		if closing {
			return nil
		}
		return fmt.Errorf("serial read failed: %w", err)
	}
	return nil
}

// Close closes all subscriber channels and the underlying port.
func (s *SerialMux[T]) Close() error {
	s.closingMu.Lock()
	s.closing = true
	s.closingMu.Unlock()

	s.subscriberMu.Lock()
	for id, ch := range s.subscribers {
		close(ch)
		delete(s.subscribers, id)
	}
	s.subscriberMu.Unlock()

	return s.port.Close()
}
