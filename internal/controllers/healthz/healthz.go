// Package healthz implements the health check endpoint.
package healthz

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/budgetplanner/backend/internal/httperror"
	"github.com/budgetplanner/backend/internal/storage"
)

// Options returns the allowed HTTP verbs.
func Options(c *gin.Context) {
	c.Header("allow", "OPTIONS, GET")
	c.Status(http.StatusNoContent)
}

// Get reports whether the backend is healthy. It is healthy when the
// database answers.
func Get(store *storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := store.List(); err != nil {
			c.JSON(http.StatusInternalServerError, httperror.New(err))
			return
		}

		c.Status(http.StatusOK)
	}
}
