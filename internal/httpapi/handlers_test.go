package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"callbridge/internal/invite"
	"callbridge/internal/push"
	"callbridge/internal/rtctoken"
	"callbridge/internal/store"

	"github.com/gin-gonic/gin"
)

type fakeSender struct {
	id   string
	err  error
	sent []push.Message
}

func (f *fakeSender) Send(_ context.Context, msg push.Message) (string, error) {
	f.sent = append(f.sent, msg)
	if f.err != nil {
		return "", f.err
	}
	return f.id, nil
}

type fakeBuilder struct {
	token string
	err   error
}

func (f fakeBuilder) Build(string, uint32, rtctoken.Role, time.Duration) (string, error) {
	return f.token, f.err
}

func newInviteRouter(mem *store.Memory, fcm push.Sender) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := Handlers{
		Invites: invite.NewService(mem, mem, push.NewDispatcher(nil, fcm, nil), ""),
	}
	r := gin.New()
	r.POST("/v1/calls/invite", h.SendInvite)
	return r
}

func postInvite(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/calls/invite", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSendInvite_Success(t *testing.T) {
	mem := store.NewMemory()
	mem.Profiles["bob"] = invite.Profile{UserID: "bob", Platform: "android", FCMToken: "TOK"}
	fcm := &fakeSender{id: "m1"}
	r := newInviteRouter(mem, fcm)

	w := postInvite(r, `{"callId":"c1","channelName":"room1","callerUid":"u1","recipientId":"bob"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var res invite.Result
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !res.Success || res.ChannelName != "room1" || res.CallID != "c1" || res.Platform != "android" {
		t.Fatalf("unexpected response: %+v", res)
	}
	if res.Notifications.FCM.Status != push.StatusSent {
		t.Fatalf("expected fcm sent, got %+v", res.Notifications.FCM)
	}

	if _, ok := mem.Calls["room1"]; !ok {
		t.Fatalf("expected call record for room1")
	}
	if len(fcm.sent) != 1 || fcm.sent[0].Token != "TOK" || !strings.Contains(fcm.sent[0].Title, "u1") {
		t.Fatalf("unexpected push: %+v", fcm.sent)
	}
}

func TestSendInvite_MissingFieldIs400(t *testing.T) {
	mem := store.NewMemory()
	fcm := &fakeSender{}
	r := newInviteRouter(mem, fcm)

	w := postInvite(r, `{"channelName":"room1","callerUid":"u1","recipientId":"bob"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if mem.CallCount() != 0 || len(fcm.sent) != 0 {
		t.Fatalf("no side effects allowed on validation failure")
	}
}

func TestSendInvite_MalformedBodyIs400(t *testing.T) {
	r := newInviteRouter(store.NewMemory(), &fakeSender{})
	w := postInvite(r, `{not json`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestSendInvite_UnknownRecipientIs404(t *testing.T) {
	mem := store.NewMemory()
	r := newInviteRouter(mem, &fakeSender{})

	w := postInvite(r, `{"callId":"c1","channelName":"room1","callerUid":"u1","recipientId":"bob"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "Recipient not found" {
		t.Fatalf("unexpected error body: %v", body)
	}
	if mem.CallCount() != 0 {
		t.Fatalf("no record must be written")
	}
}

func TestSendInvite_WriteFailureIs500(t *testing.T) {
	mem := store.NewMemory()
	mem.Profiles["bob"] = invite.Profile{UserID: "bob", FCMToken: "TOK"}
	mem.PutCallErr = errors.New("store down")
	r := newInviteRouter(mem, &fakeSender{})

	w := postInvite(r, `{"callId":"c1","channelName":"room1","callerUid":"u1","recipientId":"bob"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestSendInvite_WrongMethodIs405(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mem := store.NewMemory()
	h := Handlers{Invites: invite.NewService(mem, mem, push.NewDispatcher(nil, nil, nil), "")}
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})
	r.POST("/v1/calls/invite", h.SendInvite)

	req := httptest.NewRequest(http.MethodGet, "/v1/calls/invite", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}
}

func newTokenRouter(b rtctoken.Builder) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := Handlers{Tokens: b, TokenExpiry: 600 * time.Second}
	r := gin.New()
	r.GET("/v1/rtc/token", h.RTCToken)
	return r
}

func TestRTCToken_Success(t *testing.T) {
	r := newTokenRouter(fakeBuilder{token: "T"})

	req := httptest.NewRequest(http.MethodGet, "/v1/rtc/token?channel=room1&uid=42", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["token"] != "T" || body["channelName"] != "room1" {
		t.Fatalf("unexpected body: %v", body)
	}
	if body["uid"] != float64(42) || body["expires_in"] != float64(600) {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestRTCToken_MissingChannelIs400(t *testing.T) {
	r := newTokenRouter(fakeBuilder{token: "T"})
	req := httptest.NewRequest(http.MethodGet, "/v1/rtc/token", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestRTCToken_UnconfiguredIs500(t *testing.T) {
	r := newTokenRouter(nil)
	req := httptest.NewRequest(http.MethodGet, "/v1/rtc/token?channel=room1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestRTCToken_SigningFailureIs500(t *testing.T) {
	r := newTokenRouter(fakeBuilder{err: errors.New("bad key")})
	req := httptest.NewRequest(http.MethodGet, "/v1/rtc/token?channel=room1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestRTCToken_BadUIDIs400(t *testing.T) {
	r := newTokenRouter(fakeBuilder{token: "T"})
	req := httptest.NewRequest(http.MethodGet, "/v1/rtc/token?channel=room1&uid=-1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
