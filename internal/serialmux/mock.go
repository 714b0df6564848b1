package serialmux

import (
	"bytes"
	"io"
	"sync"
	"time"
)

// MockSerialPort implements SerialPorter for testing and dev mode.
type MockSerialPort struct {
	io.Reader
	io.WriteCloser
}

// NewMockSerialMux creates a SerialMux backed by a mock serial port that
// replays the given fixture lines at the given interval, looping forever.
// Useful for running the daemon without digitizer hardware.
func NewMockSerialMux(lines []string, interval time.Duration) *SerialMux[*MockSerialPort] {
	r, w := io.Pipe()

	mockPort := &MockSerialPort{
		Reader:      r,
		WriteCloser: w,
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		i := 0
		for range ticker.C {
			if len(lines) == 0 {
				continue
			}
			if _, err := io.WriteString(w, lines[i%len(lines)]+"\n"); err != nil {
				return // reader closed
			}
			i++
		}
	}()

	return NewSerialMux(mockPort)
}

// TestableSerialPort implements SerialPorter with configurable behaviour
// for tests: scripted reads, captured writes, injectable errors.
type TestableSerialPort struct {
	mu sync.Mutex

	// ReadBuffer holds data to be returned by Read calls.
	ReadBuffer *bytes.Buffer

	// WriteBuffer captures data written to the port.
	WriteBuffer *bytes.Buffer

	// ReadError is returned by Read calls once the buffer drains, if set.
	ReadError error

	// WriteError is returned by Write calls if set.
	WriteError error

	// CloseError is returned by Close if set.
	CloseError error

	closed bool
}

// NewTestableSerialPort creates a port preloaded with the given input.
func NewTestableSerialPort(input string) *TestableSerialPort {
	return &TestableSerialPort{
		ReadBuffer:  bytes.NewBufferString(input),
		WriteBuffer: &bytes.Buffer{},
	}
}

func (p *TestableSerialPort) Read(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0, io.EOF
	}
	if p.ReadBuffer.Len() == 0 {
		if p.ReadError != nil {
			return 0, p.ReadError
		}
		return 0, io.EOF
	}
	return p.ReadBuffer.Read(b)
}

func (p *TestableSerialPort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.WriteError != nil {
		return 0, p.WriteError
	}
	return p.WriteBuffer.Write(b)
}

func (p *TestableSerialPort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return p.CloseError
}

// Written returns everything written to the port so far.
func (p *TestableSerialPort) Written() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.WriteBuffer.String()
}
