package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/TrungLeDangThanh/personal-trainer/internal/config"
)

func TestEnsureSessionMintsAndReuses(t *testing.T) {
	restore := config.SetJWTSecret([]byte("test-secret"))
	defer restore()

	service := NewService(nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	sid, err := service.EnsureSession(rec, req)
	if err != nil {
		t.Fatalf("EnsureSession() error = %v", err)
	}
	if sid == "" {
		t.Fatal("EnsureSession() returned empty session id")
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("got %d cookies, want 1", len(cookies))
	}
	if cookies[0].Name != config.GetSessionCookieName() {
		t.Errorf("cookie name = %q, want %q", cookies[0].Name, config.GetSessionCookieName())
	}
	if !cookies[0].HttpOnly {
		t.Error("session cookie should be HttpOnly")
	}

	// Replaying the cookie resolves to the same session without a new cookie.
	rec2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.AddCookie(cookies[0])

	sid2, err := service.EnsureSession(rec2, req2)
	if err != nil {
		t.Fatalf("EnsureSession() replay error = %v", err)
	}
	if sid2 != sid {
		t.Errorf("replayed session id = %q, want %q", sid2, sid)
	}
	if got := rec2.Result().Cookies(); len(got) != 0 {
		t.Errorf("replay set %d cookies, want 0", len(got))
	}
}

func TestEnsureSessionReplacesTamperedCookie(t *testing.T) {
	restore := config.SetJWTSecret([]byte("test-secret"))
	defer restore()

	service := NewService(nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sid, err := service.EnsureSession(rec, req)
	if err != nil {
		t.Fatalf("EnsureSession() error = %v", err)
	}
	cookie := rec.Result().Cookies()[0]

	// Re-sign everything under a different secret so the cookie no longer
	// validates.
	swap := config.SetJWTSecret([]byte("rotated-secret"))
	defer swap()

	rec2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.AddCookie(cookie)

	sid2, err := service.EnsureSession(rec2, req2)
	if err != nil {
		t.Fatalf("EnsureSession() error = %v", err)
	}
	if sid2 == sid {
		t.Error("tampered cookie kept its session id")
	}
	if got := rec2.Result().Cookies(); len(got) != 1 {
		t.Errorf("got %d replacement cookies, want 1", len(got))
	}
}

func TestValidateSessionWithoutCookie(t *testing.T) {
	service := NewService(nil)

	claims, err := service.ValidateSession(httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Errorf("ValidateSession() error = %v, want nil", err)
	}
	if claims != nil {
		t.Errorf("ValidateSession() = %+v, want nil", claims)
	}
}

func TestClearSessionInvalidatesStore(t *testing.T) {
	restore := config.SetJWTSecret([]byte("test-secret"))
	defer restore()

	service := NewService(nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := service.EnsureSession(rec, req); err != nil {
		t.Fatalf("EnsureSession() error = %v", err)
	}
	cookie := rec.Result().Cookies()[0]

	clearReq := httptest.NewRequest(http.MethodGet, "/", nil)
	clearReq.AddCookie(cookie)
	service.ClearSession(httptest.NewRecorder(), clearReq)

	// The old cookie still parses but its backing session is gone.
	replay := httptest.NewRequest(http.MethodGet, "/", nil)
	replay.AddCookie(cookie)
	claims, err := service.ValidateSession(replay)
	if err != nil {
		t.Fatalf("ValidateSession() error = %v", err)
	}
	if claims != nil {
		t.Error("cleared session still validates")
	}
}
