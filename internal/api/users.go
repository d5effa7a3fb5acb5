package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/histotrails/internal/backend"
	"github.com/mr1hm/histotrails/internal/models"
)

type listUsersQuery struct {
	Page      int    `form:"page" binding:"omitempty,min=1"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Username  string `form:"username" binding:"max=64"`
	Email     string `form:"email" binding:"max=255"`
	Role      string `form:"role" binding:"omitempty,oneof=USER ADMIN"`
	Premium   *bool  `form:"is_premium"`
	SortBy    string `form:"sort_by" binding:"max=32"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=ASC DESC"`
}

func (h *Handler) listUsers(c *gin.Context) {
	var q listUsersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	page, err := callerFrom(c).Backend.ListUsers(c.Request.Context(), backend.UserFilter{
		Page:      q.Page,
		Limit:     q.Limit,
		Username:  q.Username,
		Email:     q.Email,
		Role:      models.Role(q.Role),
		IsPremium: q.Premium,
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
	})
	if err != nil {
		upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// toggleUserRole flips USER and ADMIN. Admins cannot demote themselves.
func (h *Handler) toggleUserRole(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	caller := callerFrom(c)
	if caller.User.ID == id {
		c.JSON(http.StatusConflict, gin.H{"error": "cannot change your own role"})
		return
	}

	user, err := caller.Backend.ToggleUserRole(c.Request.Context(), id)
	if err != nil {
		upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) removeUser(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	caller := callerFrom(c)
	if caller.User.ID == id {
		c.JSON(http.StatusConflict, gin.H{"error": "cannot remove yourself"})
		return
	}

	if err := caller.Backend.RemoveUser(c.Request.Context(), id); err != nil {
		upstreamError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
