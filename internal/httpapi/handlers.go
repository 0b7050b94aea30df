// Package httpapi wires HTTP requests to the invite pipeline and the
// RTC token builder. Handlers stay thin: parse input, call internal
// modules, map errors to status codes.
package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"callbridge/internal/invite"
	"callbridge/internal/rtctoken"
	"callbridge/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
type Handlers struct {
	Invites *invite.Service

	// Tokens is nil when no Agora credentials are configured; the
	// token endpoint then reports a server misconfiguration.
	Tokens      rtctoken.Builder
	TokenExpiry time.Duration
}

// SendInvite handles POST /v1/calls/invite.
func (h Handlers) SendInvite(c *gin.Context) {
	if h.Invites == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "invite service not configured"})
		return
	}

	var req invite.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "callId, channelName, callerUid and recipientId are required"})
		return
	}

	res, err := h.Invites.Send(c.Request.Context(), req)
	switch {
	case errors.Is(err, invite.ErrInvalidArgument):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "callId, channelName, callerUid and recipientId are required"})
	case errors.Is(err, invite.ErrRecipientNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Recipient not found"})
	case err != nil:
		logger.FromGin(c).Error("invite failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	default:
		c.JSON(http.StatusOK, res)
	}
}

// RTCToken handles GET /v1/rtc/token.
func (h Handlers) RTCToken(c *gin.Context) {
	channel := c.Query("channel")
	if channel == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "channel is required"})
		return
	}

	if h.Tokens == nil {
		// Misconfiguration, not a caller mistake.
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "rtc token signing is not configured"})
		return
	}

	var uid uint32
	if v := c.Query("uid"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "uid must be a non-negative integer"})
			return
		}
		uid = uint32(n)
	}

	expiry := h.TokenExpiry
	if v := c.Query("expiry"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "expiry must be a positive integer"})
			return
		}
		expiry = time.Duration(n) * time.Second
	}

	tok, err := h.Tokens.Build(channel, uid, rtctoken.ParseRole(c.Query("role")), expiry)
	if err != nil {
		logger.FromGin(c).Error("rtc token signing failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token signing failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":       tok,
		"channelName": channel,
		"uid":         uid,
		"expires_in":  int(expiry.Seconds()),
	})
}
