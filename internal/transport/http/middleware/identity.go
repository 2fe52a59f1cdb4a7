package middleware

import (
	"github.com/gin-gonic/gin"

	"gopherauth/internal/session"
)

const ContextIdentityKey = "identity"

// LoadIdentity resolves the session once per request. Requests without a
// valid session pass through with no identity set.
func LoadIdentity(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, ok := sessions.Current(c.Request); ok {
			c.Set(ContextIdentityKey, id)
		}
		c.Next()
	}
}

// IdentityFrom returns the identity stored by LoadIdentity, or nil.
func IdentityFrom(c *gin.Context) *session.Identity {
	v, ok := c.Get(ContextIdentityKey)
	if !ok {
		return nil
	}
	id, _ := v.(*session.Identity)
	return id
}
