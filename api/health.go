package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// isoMillis matches the timestamps other services in the platform emit.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

func (a *API) getHealth(c *gin.Context) {
	type database struct {
		Native string `json:"native"`
		Mapped string `json:"mapped"`
	}
	type response struct {
		Status    string   `json:"status"`
		Timestamp string   `json:"timestamp"`
		Database  database `json:"database"`
	}

	h := a.db.HealthStatus()
	code := http.StatusOK
	if !h.Healthy() {
		code = http.StatusInternalServerError
	}

	c.JSON(code, response{
		Status:    h.Status,
		Timestamp: a.now().UTC().Format(isoMillis),
		Database: database{
			Native: h.Native,
			Mapped: h.Mapped,
		},
	})
}
