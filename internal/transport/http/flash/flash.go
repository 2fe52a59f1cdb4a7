// Package flash stores one-shot notices in a signed cookie so they survive
// the redirect that follows a form submission.
package flash

import (
	"encoding/gob"
	"fmt"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

const (
	CategorySuccess = "success"
	CategoryError   = "error"
	CategoryInfo    = "info"
)

type Notice struct {
	Category string
	Message  string
}

func init() {
	gob.Register(Notice{})
}

// Middleware installs the cookie-backed store the notices live in.
func Middleware(name, secret string, secure bool) gin.HandlerFunc {
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	return sessions.Sessions(name, store)
}

func Add(c *gin.Context, category, message string) error {
	s := sessions.Default(c)
	s.AddFlash(Notice{Category: category, Message: message})
	return s.Save()
}

// Pop returns pending notices and removes them. The notices are returned
// even when saving the emptied session fails; they may then show up again.
func Pop(c *gin.Context) ([]Notice, error) {
	s := sessions.Default(c)
	raw := s.Flashes()
	if len(raw) == 0 {
		return nil, nil
	}

	notices := make([]Notice, 0, len(raw))
	for _, v := range raw {
		if n, ok := v.(Notice); ok {
			notices = append(notices, n)
		}
	}
	if err := s.Save(); err != nil {
		return notices, fmt.Errorf("save flash session failed: %w", err)
	}
	return notices, nil
}
