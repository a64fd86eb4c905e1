package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/img-hub/img-hub/internal/cache"
	"github.com/img-hub/img-hub/internal/imgkey"
	"github.com/img-hub/img-hub/internal/origin"
	"github.com/img-hub/img-hub/internal/resolver"
	"github.com/img-hub/img-hub/internal/server"
)

func TestEntriesListsCachedFiles(t *testing.T) {
	app, store := newDiagnosticsApp(t)
	for _, code := range []string{"301", "200"} {
		key, err := imgkey.Parse(code)
		if err != nil {
			t.Fatalf("key error: %v", err)
		}
		if _, err := store.Put(context.Background(), key, []byte(code)); err != nil {
			t.Fatalf("put error: %v", err)
		}
	}

	resp, err := app.Test(httptest.NewRequest("GET", "http://img.hub.local/-/entries", nil))
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var payload struct {
		Entries []string `json:"entries"`
		Count   int      `json:"count"`
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if payload.Count != 2 {
		t.Fatalf("expected 2 entries, got %d", payload.Count)
	}
	if payload.Entries[0] != "200.jpg" || payload.Entries[1] != "301.jpg" {
		t.Fatalf("排序错误: %v", payload.Entries)
	}
}

func TestEntriesEmptyStore(t *testing.T) {
	app, _ := newDiagnosticsApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "http://img.hub.local/-/entries", nil))
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	var payload struct {
		Entries []string `json:"entries"`
		Count   int      `json:"count"`
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if payload.Count != 0 || payload.Entries == nil {
		t.Fatalf("空目录应返回空数组: %+v", payload)
	}
}

func TestHealthReportsEntryCount(t *testing.T) {
	app, store := newDiagnosticsApp(t)
	key, _ := imgkey.Parse("418")
	if _, err := store.Put(context.Background(), key, []byte("x")); err != nil {
		t.Fatalf("put error: %v", err)
	}

	resp, err := app.Test(httptest.NewRequest("GET", "http://img.hub.local/-/health", nil))
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	var payload struct {
		Status  string `json:"status"`
		Entries int    `json:"entries"`
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if payload.Status != "ok" || payload.Entries != 1 {
		t.Fatalf("unexpected health payload: %+v", payload)
	}
}

func newDiagnosticsApp(t *testing.T) (*fiber.App, cache.Store) {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store, err := cache.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("store error: %v", err)
	}

	fetcher := origin.FetcherFunc(func(ctx context.Context, k imgkey.Key) ([]byte, error) {
		return nil, origin.ErrUpstream
	})
	res, err := resolver.New(store, fetcher, logger)
	if err != nil {
		t.Fatalf("resolver error: %v", err)
	}

	app, err := server.NewApp(server.AppOptions{
		Logger:   logger,
		Resolver: res,
		Store:    store,
	})
	if err != nil {
		t.Fatalf("app error: %v", err)
	}
	RegisterDiagnosticsRoutes(app, store)
	return app, store
}
