package httpx

import (
	"github.com/gin-gonic/gin"

	"github.com/Suldaanka/dashboard/internal/access"
	"github.com/Suldaanka/dashboard/internal/apperr"
)

// Headers set by the identity gateway in front of the services.
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
)

const actorKey = "actor"

// Actor is the authenticated caller of a request.
type Actor struct {
	UserID string
	Role   access.Role
}

// Identity reads the gateway headers. Requests without a user id or role are
// rejected with 401 before any handler runs.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetHeader(HeaderUserID)
		role := access.ParseRole(c.GetHeader(HeaderUserRole))
		if uid == "" || role == "" {
			AbortError(c, apperr.Unauthenticated())
			return
		}
		c.Set(actorKey, Actor{UserID: uid, Role: role})
		c.Next()
	}
}

// ActorFrom returns the actor stored by Identity.
func ActorFrom(c *gin.Context) (Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return Actor{}, false
	}
	a, ok := v.(Actor)
	return a, ok
}

// Gate is the single authorization check: the actor's role must be allowed
// for op by the policy table.
type Gate struct {
	Policy access.Policy
}

func NewGate(p access.Policy) *Gate { return &Gate{Policy: p} }

// Require returns the middleware guarding one route.
func (g *Gate) Require(op access.Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		a, ok := ActorFrom(c)
		if !ok {
			AbortError(c, apperr.Unauthenticated())
			return
		}
		if !g.Policy.Allows(op, a.Role) {
			AbortError(c, apperr.Forbidden())
			return
		}
		c.Next()
	}
}
