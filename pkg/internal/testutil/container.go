// Package testutil holds helpers for integration tests backed by Docker.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
)

const pingTimeout = 5 * time.Second

// IsDockerRunning reports whether a Docker daemon answers on the environment's
// configured endpoint.
func IsDockerRunning(ctx context.Context) bool {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return false
	}
	defer cli.Close()

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	_, err = cli.Ping(ctx)
	return err == nil
}

// SkipWithoutDocker skips t in short mode or when Docker is unavailable.
func SkipWithoutDocker(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	if !IsDockerRunning(context.Background()) {
		t.Skip("Docker is not running, skipping integration test")
	}
}

// StartContainer starts req and returns the host and mapped port of its
// first exposed port. The container is terminated when t finishes.
func StartContainer(ctx context.Context, t *testing.T, req testcontainers.ContainerRequest) (string, int) {
	t.Helper()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("failed to start container %s: %v", req.Image, err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get host: %v", err)
	}

	mapped, err := container.MappedPort(ctx, nat.Port(req.ExposedPorts[0]))
	if err != nil {
		t.Fatalf("failed to get mapped port: %v", err)
	}

	return host, mapped.Int()
}
