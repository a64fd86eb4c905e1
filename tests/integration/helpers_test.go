package integration

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/img-hub/img-hub/internal/cache"
	"github.com/img-hub/img-hub/internal/config"
	"github.com/img-hub/img-hub/internal/origin"
	"github.com/img-hub/img-hub/internal/resolver"
	"github.com/img-hub/img-hub/internal/server"
	"github.com/img-hub/img-hub/internal/server/routes"
)

// originStub 模拟远端图片源：按编码返回固定正文，可随时切换为故障模式。
type originStub struct {
	server *httptest.Server

	mu       sync.Mutex
	body     []byte
	failing  bool
	getCalls int
}

func newOriginStub(t *testing.T, body []byte) *originStub {
	t.Helper()
	stub := &originStub{body: body}
	stub.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stub.mu.Lock()
		defer stub.mu.Unlock()
		stub.getCalls++
		if stub.failing {
			http.Error(w, "origin down", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write(stub.body)
	}))
	t.Cleanup(stub.server.Close)
	return stub
}

func (s *originStub) SetFailing(failing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing = failing
}

func (s *originStub) GetCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getCalls
}

// testServer 以 main.go 的装配顺序组装全套组件：配置 → 存储 → 回源 → 路由。
type testServer struct {
	app        *fiber.App
	store      cache.Store
	storageDir string
}

func newTestServer(t *testing.T, stub *originStub) *testServer {
	t.Helper()

	storageDir := t.TempDir()
	cfg := &config.Config{
		Global: config.GlobalConfig{
			ListenHost:        "127.0.0.1",
			ListenPort:        5000,
			StoragePath:       storageDir,
			OriginURLTemplate: stub.server.URL + "/%s.jpg",
			OriginTimeout:     config.Duration(5 * time.Second),
			LogLevel:          "info",
		},
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store, err := cache.NewStore(cfg.Global.StoragePath)
	if err != nil {
		t.Fatalf("store error: %v", err)
	}

	client := server.NewOriginClient(cfg)
	fetcher, err := origin.NewHTTPFetcher(client, cfg.Global.OriginURLTemplate)
	if err != nil {
		t.Fatalf("fetcher error: %v", err)
	}

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
	routes.RegisterDiagnosticsRoutes(app, store)

	return &testServer{
		app:        app,
		store:      store,
		storageDir: storageDir,
	}
}

func (s *testServer) request(t *testing.T, method, path string, body []byte) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, "http://img.hub.local"+path, reader)
	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	return resp
}

func readBody(t *testing.T, resp *http.Response) []byte {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body error: %v", err)
	}
	return body
}
