package middlewares

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/agaii/ping-api/domain/model"
	"github.com/agaii/ping-api/infrastructure/logger"
	"github.com/agaii/ping-api/infrastructure/security"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	ActorContextKey = "actor"

	guestIDHeader = "X-Guest-Session-ID"
	maxGuestIDLen = 64
)

// ActorMiddleware resolves the acting identity for every request: a
// valid bearer token yields a registered user, the guest header yields
// a guest, and neither yields an anonymous actor. A malformed or
// expired token is rejected rather than silently downgraded to
// anonymous.
func ActorMiddleware(verifier *security.TokenVerifier, logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := model.Actor{}

		if header := c.GetHeader("Authorization"); header != "" {
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				c.JSON(http.StatusUnauthorized, gin.H{
					"error":   "invalid_token",
					"message": "Authorization header must be a bearer token",
				})
				c.Abort()
				return
			}

			userID, err := verifier.Verify(token)
			if err != nil {
				logger.Debug("rejected bearer token", zap.Error(err))
				c.JSON(http.StatusUnauthorized, gin.H{
					"error":   "invalid_token",
					"message": "Token is invalid or expired",
				})
				c.Abort()
				return
			}
			actor.UserID = &userID
		} else if guestID := c.GetHeader(guestIDHeader); guestID != "" {
			if len(guestID) > maxGuestIDLen {
				guestID = guestID[:maxGuestIDLen]
			}
			actor.GuestID = &guestID
		}

		c.Set(ActorContextKey, actor)
		c.Next()
	}
}

// RequireActor refuses anonymous callers. Placed on stats, export and
// erase routes, which are meaningless without an identity.
func RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, _ := GetActorFromContext(c)
		if actor.IsAnonymous() {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "identity_required",
				"message": "This endpoint requires a user token or guest session id",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

func GetActorFromContext(c *gin.Context) (model.Actor, bool) {
	value, exists := c.Get(ActorContextKey)
	if !exists {
		return model.Actor{}, false
	}

	actor, ok := value.(model.Actor)
	return actor, ok
}

// actorRateKey is the identity a request is rate limited by. Anonymous
// callers fall back to their client IP so they cannot dodge the limit
// by omitting identity.
func actorRateKey(c *gin.Context) string {
	actor, _ := GetActorFromContext(c)
	if actor.IsRegistered() {
		return "user:" + strconv.FormatInt(*actor.UserID, 10)
	}
	if actor.GuestID != nil && *actor.GuestID != "" {
		return "guest:" + *actor.GuestID
	}
	return "ip:" + c.ClientIP()
}
