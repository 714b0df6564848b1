package monitoring

import (
	"testing"
)

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	called := false
	SetLogger(func(format string, v ...interface{}) {
		called = true
	})
	Logf("test message")
	if !called {
		t.Error("Custom logger was not called")
	}

	// A nil logger becomes a no-op and must not panic.
	called = false
	SetLogger(nil)
	Logf("test message")
	if called {
		t.Error("No-op logger should not have triggered callback")
	}
}

func TestLogf_Default(t *testing.T) {
	if Logf == nil {
		t.Error("Logf should not be nil by default")
	}
}

func TestDebugf(t *testing.T) {
	original := Logf
	defer func() {
		Logf = original
		SetDebug(false)
	}()

	calls := 0
	SetLogger(func(format string, v ...interface{}) {
		calls++
	})

	Debugf("hidden %d", 1)
	if calls != 0 {
		t.Error("Debugf logged while debug disabled")
	}

	SetDebug(true)
	Debugf("visible %d", 2)
	if calls != 1 {
		t.Errorf("Debugf calls = %d, want 1", calls)
	}
}
