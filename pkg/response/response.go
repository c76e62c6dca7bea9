package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/evcharge/pkg/apperror"
)

// Result is what a handler produces on success: a status and a JSON body.
type Result struct {
	Status int
	Body   any
}

func OK(body any) Result      { return Result{Status: http.StatusOK, Body: body} }
func Created(body any) Result { return Result{Status: http.StatusCreated, Body: body} }

// HandlerFunc is a gin handler that returns its outcome instead of writing it.
type HandlerFunc func(c *gin.Context) (Result, error)

// Option tweaks how Handle maps errors for a single route.
type Option func(*options)

type options struct {
	status   map[apperror.Kind]int
	fallback string
}

// WithStatus overrides the HTTP status for one error kind on this route.
func WithStatus(kind apperror.Kind, status int) Option {
	return func(o *options) { o.status[kind] = status }
}

// WithFallback sets the message returned for internal errors on this route.
func WithFallback(msg string) Option {
	return func(o *options) { o.fallback = msg }
}

// Handle adapts a result-returning handler to gin. Tagged errors are written
// as {"error": message}; internal errors are logged with their cause and
// answered with the generic fallback message.
func Handle(logger *logrus.Logger, fn HandlerFunc, opts ...Option) gin.HandlerFunc {
	o := options{status: map[apperror.Kind]int{}, fallback: "Server error. Try again later."}
	for _, opt := range opts {
		opt(&o)
	}
	return func(c *gin.Context) {
		res, err := fn(c)
		if err != nil {
			kind := apperror.KindOf(err)
			status, ok := o.status[kind]
			if !ok {
				status = kind.HTTPStatus()
			}
			if kind == apperror.KindInternal && logger != nil {
				logger.WithError(err).WithFields(logrus.Fields{
					"request_id": c.GetString("request_id"),
					"method":     c.Request.Method,
					"path":       c.FullPath(),
				}).Error("request failed")
			}
			Error(c, status, apperror.PublicMessage(err, o.fallback))
			return
		}
		if res.Status == 0 {
			res.Status = http.StatusOK
		}
		c.JSON(res.Status, res.Body)
	}
}

// Error writes the error envelope used by every endpoint.
func Error(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// AbortError writes the error envelope and stops the handler chain.
func AbortError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}
