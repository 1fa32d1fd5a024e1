package detector

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"firestige.xyz/strix/internal/core"
)

func TestFloatWindow_Eviction(t *testing.T) {
	w, err := newFloatWindow(3)
	if err != nil {
		t.Fatalf("newFloatWindow: %v", err)
	}

	for _, v := range []float64{1, 2, 3} {
		w.Push(v)
	}
	if w.Len() != 3 {
		t.Fatalf("Len: got %d, want 3", w.Len())
	}
	if got := w.Samples(); !reflect.DeepEqual(got, []float64{1, 2, 3}) {
		t.Errorf("Samples: got %v", got)
	}

	// Pushing past capacity evicts the oldest sample.
	w.Push(4)
	w.Push(5)
	if w.Len() != 3 {
		t.Errorf("Len after overflow: got %d, want 3", w.Len())
	}
	if got := w.Samples(); !reflect.DeepEqual(got, []float64{3, 4, 5}) {
		t.Errorf("Samples after overflow: got %v", got)
	}
	if got := w.Mean(); got != 4 {
		t.Errorf("Mean: got %g, want 4", got)
	}
}

func TestFloatWindow_Variance(t *testing.T) {
	w, _ := newFloatWindow(10)

	if got := w.Variance(); got != 0 {
		t.Errorf("empty variance: got %g", got)
	}
	w.Push(5)
	if got := w.Variance(); got != 0 {
		t.Errorf("single sample variance: got %g", got)
	}

	for _, v := range []float64{5, 5, 5} {
		w.Push(v)
	}
	if got := w.Variance(); got != 0 {
		t.Errorf("constant samples variance: got %g", got)
	}

	w, _ = newFloatWindow(10)
	for _, v := range []float64{2, 4, 4, 4, 5, 5, 7, 9} {
		w.Push(v)
	}
	// Known population variance of this set is 4.
	if got := w.Variance(); math.Abs(got-4) > 1e-12 {
		t.Errorf("Variance: got %g, want 4", got)
	}
}

func TestBoolWindow_RateWithEviction(t *testing.T) {
	w, _ := newBoolWindow(4)

	if got := w.Rate(); got != 0 {
		t.Errorf("empty rate: got %g", got)
	}

	w.Push(true)
	w.Push(false)
	w.Push(true)
	w.Push(false)
	if got := w.Rate(); got != 0.5 {
		t.Errorf("Rate: got %g, want 0.5", got)
	}

	// Evicts the oldest true; window is now {false,true,false,false}.
	w.Push(false)
	if got := w.Rate(); got != 0.25 {
		t.Errorf("Rate after eviction: got %g, want 0.25", got)
	}
	if w.Len() != 4 {
		t.Errorf("Len: got %d, want 4", w.Len())
	}
}

func TestIDWindow_FreqWithEviction(t *testing.T) {
	w, _ := newIDWindow(3)

	w.Push("a")
	w.Push("a")
	w.Push("b")
	if got := w.Freq("a"); math.Abs(got-2.0/3.0) > 1e-12 {
		t.Errorf("Freq(a): got %g", got)
	}

	// Evicts the first "a".
	w.Push("c")
	if got := w.Freq("a"); math.Abs(got-1.0/3.0) > 1e-12 {
		t.Errorf("Freq(a) after eviction: got %g", got)
	}
	if got := w.Freq("missing"); got != 0 {
		t.Errorf("Freq(missing): got %g", got)
	}
}

func TestWindows_InvalidCapacity(t *testing.T) {
	if _, err := newFloatWindow(0); !errors.Is(err, core.ErrWindowCapacity) {
		t.Errorf("float window: got %v", err)
	}
	if _, err := newBoolWindow(-1); !errors.Is(err, core.ErrWindowCapacity) {
		t.Errorf("bool window: got %v", err)
	}
	if _, err := newIDWindow(0); !errors.Is(err, core.ErrWindowCapacity) {
		t.Errorf("id window: got %v", err)
	}
}
