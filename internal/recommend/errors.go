// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

package recommend

import "errors"

var (
	// ErrUserNotFound is returned when the queried user has no row in the matrix.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmptyCatalog is returned when the active model has no users or products.
	ErrEmptyCatalog = errors.New("empty catalog")

	// ErrCorruptModel marks a persisted model that cannot be reconstructed.
	ErrCorruptModel = errors.New("corrupt model")

	// ErrNoStoredModel is returned by a ModelStore that holds no model yet.
	ErrNoStoredModel = errors.New("no stored model")

	// ErrTrainingInProgress is returned when Train is called while a run is active.
	ErrTrainingInProgress = errors.New("training already in progress")

	// ErrInsufficientData is returned when the data provider yields too few valid records.
	ErrInsufficientData = errors.New("insufficient rating records")
)
