package date

import (
	"iter"
	"slices"
)

// History stores a chronological series of values, each associated with a specific date.
// Dates are unique and the series is always sorted. A nil *History reads as empty.
type History[T any] struct {
	days   []Date
	values []T
}

// Len returns the number of items in the history.
func (h *History[T]) Len() int {
	if h == nil {
		return 0
	}
	return len(h.days)
}

// search returns the position of day in the history and whether it is present.
func (h *History[T]) search(day Date) (int, bool) {
	return slices.BinarySearchFunc(h.days, day, Date.Compare)
}

// Append adds a point to the history.
//
// An existing value at that date is overwritten, the latest write wins.
func (h *History[T]) Append(on Date, v T) *History[T] {
	i, found := h.search(on)
	if found {
		h.values[i] = v
		return h
	}
	h.days = slices.Insert(h.days, i, on)
	h.values = slices.Insert(h.values, i, v)
	return h
}

// Get returns the value at 'day' and true or zero value and false.
func (h *History[T]) Get(day Date) (T, bool) {
	if h == nil {
		var zero T
		return zero, false
	}
	if i, found := h.search(day); found {
		return h.values[i], true
	}
	var zero T
	return zero, false
}

// AsOf returns the most recent value dated on or before day, together with its date.
func (h *History[T]) AsOf(day Date) (Date, T, bool) {
	if h.Len() == 0 {
		var zero T
		return Date{}, zero, false
	}
	i, found := h.search(day)
	if found {
		return h.days[i], h.values[i], true
	}
	// i is where day would be inserted, the previous point is the latest before it.
	if i == 0 {
		var zero T
		return Date{}, zero, false
	}
	return h.days[i-1], h.values[i-1], true
}

// OnOrAfter returns the earliest value dated on or after day, together with its date.
func (h *History[T]) OnOrAfter(day Date) (Date, T, bool) {
	if h.Len() == 0 {
		var zero T
		return Date{}, zero, false
	}
	i, _ := h.search(day)
	if i >= len(h.days) {
		var zero T
		return Date{}, zero, false
	}
	return h.days[i], h.values[i], true
}

// First returns the earliest point of the history.
func (h *History[T]) First() (Date, T, bool) {
	if h.Len() == 0 {
		var zero T
		return Date{}, zero, false
	}
	return h.days[0], h.values[0], true
}

// Latest returns the latest point of the history.
func (h *History[T]) Latest() (Date, T, bool) {
	last := h.Len() - 1
	if last < 0 {
		var zero T
		return Date{}, zero, false
	}
	return h.days[last], h.values[last], true
}

// Values returns an iterator over all date/value pairs in the history, in chronological order.
func (h *History[T]) Values() iter.Seq2[Date, T] {
	return func(yield func(Date, T) bool) {
		if h == nil {
			return
		}
		for i, on := range h.days {
			if !yield(on, h.values[i]) {
				return
			}
		}
	}
}
