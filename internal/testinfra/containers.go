// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"os/exec"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// SkipIfNoDocker skips the test if Docker is not available.
func SkipIfNoDocker(t *testing.T) {
	t.Helper()

	if !IsDockerAvailable() {
		t.Skip("Skipping test: Docker not available")
	}
}

// IsDockerAvailable checks if Docker daemon is running and accessible.
func IsDockerAvailable() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "docker", "info")
	return cmd.Run() == nil
}

// CleanupContainer is a helper for deferred container cleanup that logs errors.
func CleanupContainer(t *testing.T, ctx context.Context, container testcontainers.Container) {
	t.Helper()

	if container != nil {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	}
}

// containerSpec describes a single-port service container.
type containerSpec struct {
	image        string
	port         nat.Port
	env          map[string]string
	waitFor      wait.Strategy
	startTimeout time.Duration
}

// startContainer starts spec and returns the container with its
// host:port endpoint.
func startContainer(ctx context.Context, spec containerSpec) (testcontainers.Container, string, error) {
	exposed := nat.Port(spec.port.Port() + "/tcp")

	strategy := spec.waitFor
	if strategy == nil {
		strategy = wait.ForListeningPort(exposed)
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        spec.image,
			ExposedPorts: []string{string(exposed)},
			Env:          spec.env,
			WaitingFor:   wait.ForAll(strategy).WithStartupTimeout(spec.startTimeout),
		},
		Started: true,
	})
	if err != nil {
		return nil, "", fmt.Errorf("create %s container: %w", spec.image, err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, "", fmt.Errorf("get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, exposed)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, "", fmt.Errorf("get mapped port: %w", err)
	}

	return container, fmt.Sprintf("%s:%s", host, port.Port()), nil
}
