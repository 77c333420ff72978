// Reclens - User-Based Collaborative Filtering Recommendation Service
// Copyright 2026 Reclens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reclens/reclens

package userknn

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by the engine.
var (
	// ErrNotFitted indicates a prediction was attempted before Fit
	// completed. Not retryable without a prior successful Fit.
	ErrNotFitted = errors.New("engine is not fitted: call Fit before predicting")

	// ErrEmptyTrainingSet indicates Fit was called with no interactions.
	ErrEmptyTrainingSet = errors.New("training set contains no interactions")
)

// UserNotFoundError indicates a queried user id is absent from the
// trained mapping. Recoverable: callers typically fall back to a
// popularity list.
type UserNotFoundError struct {
	UserID int64
}

func (e *UserNotFoundError) Error() string {
	return fmt.Sprintf("user %d not found in training data", e.UserID)
}

// MalformedInteractionError indicates a training record field could not
// be coerced to the expected type. It fails the whole fit; no partial
// model is produced.
type MalformedInteractionError struct {
	Line  int
	Field string
	Value string
	Err   error
}

func (e *MalformedInteractionError) Error() string {
	return fmt.Sprintf("malformed interaction at line %d: field %q value %q: %v",
		e.Line, e.Field, e.Value, e.Err)
}

func (e *MalformedInteractionError) Unwrap() error {
	return e.Err
}
