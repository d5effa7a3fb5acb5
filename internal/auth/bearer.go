package auth

import "context"

// Bearer is a token presented by an API caller. It is forwarded as is and
// cannot be refreshed, so a rejected token surfaces as the backend's 401.
type Bearer string

func (b Bearer) AccessToken(ctx context.Context) (string, error) {
	return string(b), nil
}

func (b Bearer) Refresh(ctx context.Context) (string, error) {
	return "", ErrNoRefreshToken
}
