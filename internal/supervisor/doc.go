// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

/*
Package supervisor provides process supervision for Productrec using suture v4.

Long-running services are organized into a tree so that a failure in one
layer restarts only that layer:

	RootSupervisor ("productrec")
	├── DataSupervisor ("data-layer")
	│   └── RetrainService
	├── MaintenanceSupervisor ("maintenance-layer")
	│   └── PeriodicService (lockout cleanup)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Supervisor events (service start, failure, backoff) are logged through
sutureslog into the slog logger passed to NewSupervisorTree; cmd/server
passes logging.NewSlogLogger so they share the zerolog output.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddDataService(services.NewRetrainService(engine, retrainCfg))
	tree.AddAPIService(services.NewHTTPServerService(server, server.Addr, 10*time.Second))

	errCh := tree.ServeBackground(ctx)

After the context is canceled, UnstoppedServiceReport lists services that
did not stop within ShutdownTimeout.
*/
package supervisor
