package recipe

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the upstream API has no recipe for an id.
var ErrNotFound = errors.New("recipe not found")

// UpstreamError reports a failed call to the recipe API: transport failure,
// non-success status, or a payload that could not be decoded.
type UpstreamError struct {
	Op     string
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("upstream %s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("upstream %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// StoreError reports a failed backing-store query.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// AggregationError is what the Aggregator returns for any failure. It keeps
// the original UpstreamError or StoreError as its cause.
type AggregationError struct {
	Op       string
	RecipeID int64
	Err      error
}

func (e *AggregationError) Error() string {
	if e.RecipeID != 0 {
		return fmt.Sprintf("%s recipe %d: %v", e.Op, e.RecipeID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *AggregationError) Unwrap() error {
	return e.Err
}

func aggregationError(op string, id int64, err error) error {
	aggregationErrors.WithLabelValues(op).Inc()
	return &AggregationError{Op: op, RecipeID: id, Err: err}
}
