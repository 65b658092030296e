//go:build integration

package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Sternrassler/hypixel-cache/internal/testutil"
	"github.com/Sternrassler/hypixel-cache/pkg/config"
	"github.com/Sternrassler/hypixel-cache/pkg/server"
)

func startRedis(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	redisC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}
	t.Cleanup(func() { redisC.Terminate(ctx) })

	endpoint, err := redisC.Endpoint(ctx, "redis")
	if err != nil {
		t.Fatalf("Failed to get Redis endpoint: %v", err)
	}
	return endpoint
}

// Two app instances share one Redis: the second serves from the first's cache.
func TestApp_SharedRedisCache(t *testing.T) {
	redisURL := startRedis(t)

	mojangAPI := testutil.NewMockMojang()
	defer mojangAPI.Close()
	mojangAPI.AddProfile("Notch", notchID)

	hypixelAPI := testutil.NewMockHypixel("hypixel-key")
	defer hypixelAPI.Close()
	hypixelAPI.SetPlayer(notchID, testutil.NewPlayerResponse(`{"displayname":"Notch"}`))

	newInstance := func() *httptest.Server {
		cfg := memoryConfig(t, mojangAPI.URL(), hypixelAPI.URL())
		cfg.CacheBackend = config.BackendRedis
		cfg.RedisURL = redisURL

		a, err := newApp(context.Background(), cfg)
		if err != nil {
			t.Fatalf("newApp: %v", err)
		}
		t.Cleanup(func() { a.Close() })

		ts := httptest.NewServer(a.handler)
		t.Cleanup(ts.Close)
		return ts
	}

	first, second := newInstance(), newInstance()

	for i, ts := range []*httptest.Server{first, second} {
		req, _ := http.NewRequest(http.MethodGet, ts.URL+"/name/Notch", nil)
		req.Header.Set(server.SecretHeader, "s3cret")
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("request %d: status %d", i, resp.StatusCode)
		}
	}

	if got := hypixelAPI.FetchCount(); got != 1 {
		t.Errorf("Expected 1 upstream fetch across instances, got %d", got)
	}
	if got := mojangAPI.RequestCount(); got != 1 {
		t.Errorf("Expected 1 Mojang lookup across instances, got %d", got)
	}
}
