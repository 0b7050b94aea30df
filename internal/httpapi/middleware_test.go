package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"callbridge/internal/auth"

	"github.com/gin-gonic/gin"
)

func TestCapKey_UsesAuthenticatedUserWhenPresent(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	req := httptest.NewRequest(http.MethodPost, "/v1/calls/invite", nil)
	c.Request = req.WithContext(auth.WithUserID(req.Context(), "u42"))

	if got, want := capKey(c), "invite_cap:user:u42"; got != want {
		t.Errorf("capKey = %q, want %q", got, want)
	}
}

func TestCapKey_FallsBackToClientIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	req := httptest.NewRequest(http.MethodPost, "/v1/calls/invite", nil)
	req.RemoteAddr = "203.0.113.7:4444"
	c.Request = req

	if got, want := capKey(c), "invite_cap:ip:203.0.113.7"; got != want {
		t.Errorf("capKey = %q, want %q", got, want)
	}
}

func TestInviteCap_AllowsThroughOnRedisError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.POST("/v1/calls/invite", InviteCap(nil, 1, time.Second), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/calls/invite", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 when the cap backend is unreachable", w.Code)
	}
}
