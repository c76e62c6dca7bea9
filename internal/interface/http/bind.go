package handlers

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/evcharge/pkg/validation"
)

// bindJSON decodes the body into dst. An empty body counts as {} so that
// missing fields get the service's own validation message.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return validation.ToError(err)
	}
	return nil
}
