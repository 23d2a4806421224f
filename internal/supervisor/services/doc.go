// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

/*
Package services provides suture.Service implementations for Productrec.

  - HTTPServerService runs an *http.Server and shuts it down gracefully
    when its context is canceled.
  - RetrainService loads the newest stored model at startup, trains when
    none exists or TrainOnStartup is set, retrains on an interval and
    accepts manual triggers from the API (TriggerTraining).
  - PeriodicService runs a housekeeping function on a fixed interval.

Every service returns only on context cancellation or a fatal error, so
suture restarts are reserved for real failures such as a listener that
cannot bind.
*/
package services
