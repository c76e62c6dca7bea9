package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/evcharge/internal/domain/entity"
	"github.com/oksasatya/evcharge/pkg/apperror"
	"github.com/oksasatya/evcharge/pkg/response"
)

const (
	CtxUserIDKey = "userID"
	CtxUserKey   = "user"
)

// Authenticator resolves a bearer token to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*entity.User, error)
}

// BearerToken extracts the token from the Authorization header. Both
// "Bearer <token>" and a bare "<token>" are accepted.
func BearerToken(c *gin.Context) string {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return h
}

// Auth validates the bearer token and sets userID and user in the Gin
// context on success.
func Auth(auth Authenticator, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := auth.Authenticate(c.Request.Context(), BearerToken(c))
		if err != nil {
			kind := apperror.KindOf(err)
			if kind == apperror.KindInternal && logger != nil {
				logger.WithError(err).WithField("request_id", c.GetString("request_id")).Error("authenticate failed")
			}
			response.AbortError(c, kind.HTTPStatus(), apperror.PublicMessage(err, "Server error. Try again later."))
			return
		}
		c.Set(CtxUserIDKey, u.ID)
		c.Set(CtxUserKey, u)
		c.Next()
	}
}

// CurrentUser returns the user stored by Auth, or nil.
func CurrentUser(c *gin.Context) *entity.User {
	v, ok := c.Get(CtxUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*entity.User)
	return u
}
