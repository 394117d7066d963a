package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/harborline/portgate/internal/auth"
	"github.com/harborline/portgate/internal/model"
)

const actorKey = "actor"

// JWTAuth unpacks the bearer token into the actor the core trusts.
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		actor, err := auth.ParseValidate(secret, strings.TrimPrefix(h, "Bearer "))
		if err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

func RequireRole(roles ...model.Role) gin.HandlerFunc {
	allowed := map[model.Role]struct{}{}
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		actor := ActorFrom(c)
		if _, ok := allowed[actor.Role]; !ok {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}

// ActorFrom returns the actor set by JWTAuth; zero value when absent.
func ActorFrom(c *gin.Context) auth.Actor {
	v, _ := c.Get(actorKey)
	actor, _ := v.(auth.Actor)
	return actor
}
