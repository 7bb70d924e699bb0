package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/TrungLeDangThanh/personal-trainer/internal/config"
	"github.com/TrungLeDangThanh/personal-trainer/internal/connections"
	"github.com/TrungLeDangThanh/personal-trainer/internal/services/session"
	"github.com/gorilla/websocket"
)

func TestHandleWidgetPage(t *testing.T) {
	restore := config.SetJWTSecret([]byte("test-secret"))
	defer restore()

	sessionService := session.NewService(nil)

	req := httptest.NewRequest(http.MethodGet, "/widget", nil)
	w := httptest.NewRecorder()
	HandleWidgetPage(sessionService, w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}

	body := w.Body.String()
	for _, want := range []string{
		"Personal Trainer",
		"Embark on your journey to fitness.",
		"Ask me anything",
		"/widget.js",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("widget page missing %q", want)
		}
	}

	if len(w.Result().Cookies()) != 1 {
		t.Error("widget page should mint a session cookie")
	}
}

func TestHandleWidgetJS(t *testing.T) {
	restore := config.SetJWTSecret([]byte("test-secret"))
	defer restore()

	sessionService := session.NewService(nil)

	req := httptest.NewRequest(http.MethodGet, "/widget.js", nil)
	w := httptest.NewRecorder()
	HandleWidgetJS(sessionService, w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/javascript" {
		t.Errorf("Content-Type = %q, want application/javascript", ct)
	}

	body := w.Body.String()
	for _, want := range []string{"Time taken:", "/v1/chat/turns"} {
		if !strings.Contains(body, want) {
			t.Errorf("widget script missing %q", want)
		}
	}

	if len(w.Result().Cookies()) != 1 {
		t.Error("widget script should mint a session cookie")
	}
}

func TestHandleHealth(t *testing.T) {
	manager := connections.NewManager(connections.DefaultTimeouts)
	manager.Add(&websocket.Conn{}, "sess-1")

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	HandleHealth(nil, manager, w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode health response: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("status = %q, want %q", resp.Status, "ok")
	}
	if resp.Redis != "unconfigured" {
		t.Errorf("redis = %q, want %q", resp.Redis, "unconfigured")
	}
	if resp.ActiveConnections != 1 {
		t.Errorf("active_connections = %d, want 1", resp.ActiveConnections)
	}
}
