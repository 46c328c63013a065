package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (a *API) getUsers(c *gin.Context) {
	users, err := a.db.ListUsers(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, users)
}
