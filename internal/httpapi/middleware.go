package httpapi

import (
	"net/http"
	"time"

	"callbridge/internal/auth"
	"callbridge/pkg/logger"
	"callbridge/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// capKey scopes the invite cap to the authenticated user when the auth
// middleware ran, falling back to the caller IP on open deployments.
func capKey(c *gin.Context) string {
	if uid, err := auth.UserID(c.Request.Context()); err == nil {
		return "invite_cap:user:" + uid
	}
	return "invite_cap:ip:" + c.ClientIP()
}

// InviteCap limits in-flight invitations per caller. The slot is
// released when the request finishes; the TTL covers crashed instances.
// On Redis errors the request is allowed through: the cap is a guard,
// not a dependency.
func InviteCap(rdb *redis.Client, limit int, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := capKey(c)

		ok, err := utils.AcquireInviteSlot(c.Request.Context(), rdb, key, limit, ttl)
		if err != nil {
			logger.FromGin(c).Warn("invite cap acquire failed", "err", err)
			c.Next()
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many concurrent invitations"})
			return
		}
		defer func() {
			if err := utils.ReleaseInviteSlot(c.Request.Context(), rdb, key); err != nil {
				logger.FromGin(c).Warn("invite cap release failed", "err", err)
			}
		}()

		c.Next()
	}
}
