package bridge

// sampleHistory is a bounded FIFO of pointer samples. Length never
// exceeds capacity; the oldest sample is evicted first.
type sampleHistory struct {
	samples  []PointerSample
	capacity int
}

func newSampleHistory(capacity int) *sampleHistory {
	if capacity <= 0 {
		capacity = 10
	}
	return &sampleHistory{
		samples:  make([]PointerSample, 0, capacity),
		capacity: capacity,
	}
}

// Add appends a sample, evicting the oldest when at capacity.
func (h *sampleHistory) Add(s PointerSample) {
	if len(h.samples) >= h.capacity {
		copy(h.samples, h.samples[1:])
		h.samples = h.samples[:len(h.samples)-1]
	}
	h.samples = append(h.samples, s)
}

// Last returns the most recent sample, or nil if the history is empty.
func (h *sampleHistory) Last() *PointerSample {
	if len(h.samples) == 0 {
		return nil
	}
	return &h.samples[len(h.samples)-1]
}

// Len returns the number of stored samples.
func (h *sampleHistory) Len() int {
	return len(h.samples)
}

// Samples returns the stored samples oldest first. The returned slice
// aliases internal storage and must not be retained across Add calls.
func (h *sampleHistory) Samples() []PointerSample {
	return h.samples
}

// Clear discards all samples, keeping capacity.
func (h *sampleHistory) Clear() {
	h.samples = h.samples[:0]
}
