package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Transactor opens a database transaction and carries it in ctx.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

var errRequestFailed = errors.New("request failed")

// TransactionMiddleware runs the rest of the chain inside one transaction.
// It commits when the response status is below 400 and rolls back otherwise.
// Auth middlewares must come after it so identity lookups share the
// transaction.
func TransactionMiddleware(tx Transactor) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := tx.WithinTransaction(c.Request.Context(), func(ctx context.Context) error {
			c.Request = c.Request.WithContext(ctx)
			c.Next()

			if c.Writer.Status() >= http.StatusBadRequest {
				return errRequestFailed
			}
			return nil
		})

		if err != nil && !errors.Is(err, errRequestFailed) {
			RequestLogger(c).Error("Request transaction failed",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
			if !c.Writer.Written() {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
			}
		}
	}
}
