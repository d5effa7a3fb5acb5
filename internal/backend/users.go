package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mr1hm/histotrails/internal/models"
)

type UserFilter struct {
	Page      int
	Limit     int
	Username  string
	Email     string
	Role      models.Role
	IsPremium *bool
	SortBy    string
	SortOrder string // "ASC" or "DESC"
}

func (f UserFilter) query() url.Values {
	q := url.Values{}
	page, limit := f.Page, f.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	if f.Username != "" {
		q.Set("username", f.Username)
	}
	if f.Email != "" {
		q.Set("email", f.Email)
	}
	if f.Role != "" {
		q.Set("role", string(f.Role))
	}
	if f.IsPremium != nil {
		q.Set("isPremium", strconv.FormatBool(*f.IsPremium))
	}
	if f.SortBy != "" {
		q.Set("sortBy", f.SortBy)
	}
	if f.SortOrder != "" {
		q.Set("sortOrder", f.SortOrder)
	}
	return q
}

func (c *Client) ListUsers(ctx context.Context, f UserFilter) (*models.UserPage, error) {
	var page models.UserPage
	path := withQuery("api/users/paginate", f.query())
	if err := c.do(ctx, http.MethodGet, "/api/users/paginate", path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ToggleUserRole flips a user between USER and ADMIN.
func (c *Client) ToggleUserRole(ctx context.Context, id int) (*models.User, error) {
	body, err := jsonPayload(struct{}{})
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := c.do(ctx, http.MethodPatch, "/api/users/{id}/change-role", "api/users/"+strconv.Itoa(id)+"/change-role", body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) RemoveUser(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, "/api/users/remove/{id}", "api/users/remove/"+strconv.Itoa(id), nil, nil)
}
