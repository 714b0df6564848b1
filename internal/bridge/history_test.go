package bridge

import "testing"

func TestSampleHistory_FIFOEviction(t *testing.T) {
	h := newSampleHistory(5)
	for i := 0; i < 10; i++ {
		h.Add(PointerSample{X: float64(i), Timestamp: float64(i) * 16})
	}

	if h.Len() != 5 {
		t.Fatalf("history length = %d, want 5", h.Len())
	}

	// The five most recent samples remain, oldest first.
	for i, s := range h.Samples() {
		want := float64(i + 5)
		if s.X != want {
			t.Errorf("samples[%d].X = %v, want %v", i, s.X, want)
		}
	}
}

func TestSampleHistory_Last(t *testing.T) {
	h := newSampleHistory(3)
	if h.Last() != nil {
		t.Error("Last on empty history should be nil")
	}

	h.Add(PointerSample{X: 1})
	h.Add(PointerSample{X: 2})
	if last := h.Last(); last == nil || last.X != 2 {
		t.Errorf("Last = %+v, want X=2", last)
	}
}

func TestSampleHistory_Clear(t *testing.T) {
	h := newSampleHistory(3)
	h.Add(PointerSample{X: 1})
	h.Clear()
	if h.Len() != 0 {
		t.Errorf("length after Clear = %d, want 0", h.Len())
	}
	if h.Last() != nil {
		t.Error("Last after Clear should be nil")
	}
}

func TestSampleHistory_DefaultCapacity(t *testing.T) {
	h := newSampleHistory(0)
	if h.capacity != 10 {
		t.Errorf("default capacity = %d, want 10", h.capacity)
	}
}
