package imageset

import (
	"fmt"

	"github.com/kimamovic21/real-estate-marketplace/internal/domain"
)

// Move relocates the element at from to position to. The input is not modified and
// every other element keeps its relative order.
func Move[T any](seq []T, from, to int) ([]T, error) {
	if from < 0 || from >= len(seq) || to < 0 || to >= len(seq) {
		return nil, fmt.Errorf("%w: move %d -> %d out of range for %d images", domain.ErrInvalidInput, from, to, len(seq))
	}
	out := make([]T, 0, len(seq))
	item := seq[from]
	for i, v := range seq {
		if i == from {
			continue
		}
		if len(out) == to {
			out = append(out, item)
		}
		out = append(out, v)
	}
	if len(out) == to {
		out = append(out, item)
	}
	return out, nil
}

// Remove returns seq without the element at position i.
func Remove[T any](seq []T, i int) ([]T, error) {
	if i < 0 || i >= len(seq) {
		return nil, fmt.Errorf("%w: remove %d out of range for %d images", domain.ErrInvalidInput, i, len(seq))
	}
	out := make([]T, 0, len(seq)-1)
	out = append(out, seq[:i]...)
	return append(out, seq[i+1:]...), nil
}

// Cover returns the first element of seq.
func Cover[T any](seq []T) (T, bool) {
	var zero T
	if len(seq) == 0 {
		return zero, false
	}
	return seq[0], true
}
