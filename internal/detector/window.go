package detector

import (
	"fmt"

	"firestige.xyz/strix/internal/core"
)

// The rolling windows are fixed-capacity circular buffers with FIFO
// eviction. Memory stays O(capacity) no matter how many packets a run
// processes; each feature evicts independently.

// floatWindow holds recent float samples.
type floatWindow struct {
	buf  []float64
	head int // next write position
	size int
}

func newFloatWindow(capacity int) (*floatWindow, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: %d", core.ErrWindowCapacity, capacity)
	}
	return &floatWindow{buf: make([]float64, capacity)}, nil
}

func (w *floatWindow) Push(v float64) {
	w.buf[w.head] = v
	w.head = (w.head + 1) % len(w.buf)
	if w.size < len(w.buf) {
		w.size++
	}
}

func (w *floatWindow) Len() int { return w.size }

func (w *floatWindow) Mean() float64 {
	if w.size == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < w.size; i++ {
		sum += w.at(i)
	}
	return sum / float64(w.size)
}

// Variance is the population variance over the current window.
func (w *floatWindow) Variance() float64 {
	if w.size < 2 {
		return 0
	}
	mean := w.Mean()
	var sum float64
	for i := 0; i < w.size; i++ {
		d := w.at(i) - mean
		sum += d * d
	}
	return sum / float64(w.size)
}

// Samples returns the window contents oldest-first.
func (w *floatWindow) Samples() []float64 {
	out := make([]float64, w.size)
	for i := 0; i < w.size; i++ {
		out[i] = w.at(i)
	}
	return out
}

// at indexes chronologically: 0 is the oldest retained sample.
func (w *floatWindow) at(i int) float64 {
	start := (w.head - w.size + len(w.buf)) % len(w.buf)
	return w.buf[(start+i)%len(w.buf)]
}

// boolWindow holds recent outcomes and tracks how many are true.
type boolWindow struct {
	buf   []bool
	head  int
	size  int
	trues int
}

func newBoolWindow(capacity int) (*boolWindow, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: %d", core.ErrWindowCapacity, capacity)
	}
	return &boolWindow{buf: make([]bool, capacity)}, nil
}

func (w *boolWindow) Push(v bool) {
	if w.size == len(w.buf) {
		if w.buf[w.head] {
			w.trues--
		}
	} else {
		w.size++
	}
	w.buf[w.head] = v
	w.head = (w.head + 1) % len(w.buf)
	if v {
		w.trues++
	}
}

func (w *boolWindow) Len() int { return w.size }

// Rate is the fraction of true outcomes in the window.
func (w *boolWindow) Rate() float64 {
	if w.size == 0 {
		return 0
	}
	return float64(w.trues) / float64(w.size)
}

// idWindow holds recent identifier sightings with per-identifier counts.
type idWindow struct {
	buf    []string
	head   int
	size   int
	counts map[string]int
}

func newIDWindow(capacity int) (*idWindow, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: %d", core.ErrWindowCapacity, capacity)
	}
	return &idWindow{
		buf:    make([]string, capacity),
		counts: make(map[string]int),
	}, nil
}

func (w *idWindow) Push(id string) {
	if w.size == len(w.buf) {
		evicted := w.buf[w.head]
		w.counts[evicted]--
		if w.counts[evicted] == 0 {
			delete(w.counts, evicted)
		}
	} else {
		w.size++
	}
	w.buf[w.head] = id
	w.head = (w.head + 1) % len(w.buf)
	w.counts[id]++
}

func (w *idWindow) Len() int { return w.size }

// Freq is the sighting frequency of id within the window.
func (w *idWindow) Freq(id string) float64 {
	if w.size == 0 {
		return 0
	}
	return float64(w.counts[id]) / float64(w.size)
}
