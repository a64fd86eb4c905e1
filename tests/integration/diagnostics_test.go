package integration

import (
	"encoding/json"
	"testing"

	"github.com/gofiber/fiber/v3"
)

func TestDiagnosticsEntriesReflectMutations(t *testing.T) {
	stub := newOriginStub(t, []byte("img"))
	srv := newTestServer(t, stub)

	// GET 回源 + PUT 各产生一个条目
	srv.request(t, "GET", "/200", nil).Body.Close()
	srv.request(t, "PUT", "/404", []byte{0xFF}).Body.Close()

	resp := srv.request(t, "GET", "/-/entries", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var payload struct {
		Entries []string `json:"entries"`
		Count   int      `json:"count"`
	}
	if err := json.Unmarshal(readBody(t, resp), &payload); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if payload.Count != 2 {
		t.Fatalf("expected 2 entries, got %+v", payload)
	}
	if payload.Entries[0] != "200.jpg" || payload.Entries[1] != "404.jpg" {
		t.Fatalf("条目应按名称排序: %v", payload.Entries)
	}

	// DELETE 后条目消失
	srv.request(t, "DELETE", "/200", nil).Body.Close()
	resp2 := srv.request(t, "GET", "/-/entries", nil)
	if err := json.Unmarshal(readBody(t, resp2), &payload); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if payload.Count != 1 || payload.Entries[0] != "404.jpg" {
		t.Fatalf("DELETE 后列表未更新: %+v", payload)
	}
}

func TestDiagnosticsHealth(t *testing.T) {
	stub := newOriginStub(t, []byte("img"))
	srv := newTestServer(t, stub)

	resp := srv.request(t, "GET", "/-/health", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var payload struct {
		Status  string `json:"status"`
		Entries int    `json:"entries"`
	}
	if err := json.Unmarshal(readBody(t, resp), &payload); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if payload.Status != "ok" || payload.Entries != 0 {
		t.Fatalf("unexpected health payload: %+v", payload)
	}
}
