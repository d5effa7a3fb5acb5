package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mr1hm/histotrails/internal/models"
)

type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func (c *Client) Login(ctx context.Context, email, password string) (Tokens, error) {
	body, err := jsonPayload(map[string]string{"email": email, "password": password})
	if err != nil {
		return Tokens{}, err
	}

	var tokens Tokens
	if err := c.do(ctx, http.MethodPost, "/auth/login", "auth/login", body, &tokens); err != nil {
		return Tokens{}, err
	}
	if tokens.AccessToken == "" {
		return Tokens{}, fmt.Errorf("login response carried no access token")
	}
	return tokens, nil
}

// RefreshAccessToken exchanges a refresh token for a new access token.
func (c *Client) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	body, err := jsonPayload(map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return "", err
	}

	var tokens Tokens
	if err := c.do(ctx, http.MethodPost, "/auth/refresh", refreshPath, body, &tokens); err != nil {
		return "", err
	}
	if tokens.AccessToken == "" {
		return "", fmt.Errorf("refresh response carried no access token")
	}
	return tokens.AccessToken, nil
}

func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/auth/me", "auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
