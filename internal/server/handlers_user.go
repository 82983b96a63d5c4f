package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (a *App) me(c *gin.Context) {
	authUser, _ := authUserFromContext(c)
	ctx := c.Request.Context()

	user, err := a.store.GetUser(ctx, authUser.ID)
	if err != nil {
		a.internalError(c, "user.get_failed", "Failed to retrieve user data", err)
		return
	}
	count, err := a.store.CountJournals(ctx, authUser.ID)
	if err != nil {
		a.internalError(c, "user.count_failed", "Failed to retrieve user data", err)
		return
	}

	user.CreatedAt = user.CreatedAt.In(a.loc)
	user.UpdatedAt = user.UpdatedAt.In(a.loc)
	c.JSON(http.StatusOK, meResponse{User: user, JournalCount: count})
}
