package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"plantid/internal/session"
	"plantid/internal/transport/http/response"
)

const (
	contextSessionKey      = "session"
	contextSessionErrorKey = "session_error"
)

// SessionCookie writes the session cookie with the configured attributes.
type SessionCookie struct {
	Name   string
	Secure bool
	MaxAge int
}

func (sc SessionCookie) Set(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sc.Name, token, sc.MaxAge, "/", "", sc.Secure, true)
}

func (sc SessionCookie) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sc.Name, "", -1, "/", "", sc.Secure, true)
}

// LoadSession attaches the caller's session, if any, to the request and
// slides its expiry. It never rejects a request; a store failure is recorded
// so RequireSession can answer 500 instead of treating the caller as anonymous.
func LoadSession(manager *session.Manager, cookie SessionCookie) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookie.Name)
		if err != nil || token == "" {
			c.Next()
			return
		}

		sess, err := manager.Resolve(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, session.ErrNoSession) {
				cookie.Clear(c)
			} else {
				log.Ctx(c.Request.Context()).Error().Err(err).Msg("resolve session failed")
				c.Set(contextSessionErrorKey, err)
			}
			c.Next()
			return
		}

		if refreshed, err := manager.Token(sess.ID); err == nil {
			cookie.Set(c, refreshed)
		}
		c.Set(contextSessionKey, sess)
		c.Next()
	}
}

// RequireSession rejects requests without an active session.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if SessionUnavailable(c) {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "Session store error")
			return
		}
		if _, ok := SessionFrom(c); !ok {
			response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "Authentication required")
			return
		}
		c.Next()
	}
}

func SessionFrom(c *gin.Context) (*session.Session, bool) {
	v, ok := c.Get(contextSessionKey)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*session.Session)
	return sess, ok && sess != nil
}

// SessionUnavailable reports whether the request carried a session cookie
// that could not be checked because the store failed.
func SessionUnavailable(c *gin.Context) bool {
	_, ok := c.Get(contextSessionErrorKey)
	return ok
}

// SetSession marks the request as authenticated, used right after login.
func SetSession(c *gin.Context, sess *session.Session) {
	c.Set(contextSessionKey, sess)
}

func ClearSession(c *gin.Context) {
	c.Set(contextSessionKey, (*session.Session)(nil))
}
