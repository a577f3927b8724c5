package api

import (
	"context"
	"fmt"

	"github.com/valyala/fasthttp"

	"github.com/fastygo/dialin/api/transport"
	"github.com/fastygo/dialin/domain"
)

func (c *Client) Login(ctx context.Context, creds domain.Credentials) (domain.Identity, error) {
	return c.authenticate(ctx, "/auth/login", creds)
}

func (c *Client) Register(ctx context.Context, creds domain.Credentials) (domain.Identity, error) {
	return c.authenticate(ctx, "/auth/register", creds)
}

// Me revalidates a persisted identity.
func (c *Client) Me(ctx context.Context, userID int64) (domain.Identity, error) {
	var out transport.UserResponse
	err := c.do(ctx, call{
		method: fasthttp.MethodPost,
		path:   "/auth/me",
		body:   transport.SessionCheckRequest{UserID: userID},
	}, &out)
	if err != nil {
		return domain.Identity{}, err
	}
	return out.Identity(), nil
}

func (c *Client) authenticate(ctx context.Context, path string, creds domain.Credentials) (domain.Identity, error) {
	var out transport.UserResponse
	err := c.do(ctx, call{
		method: fasthttp.MethodPost,
		path:   path,
		body:   transport.CredentialsRequest{Username: creds.Username, Password: creds.Password},
	}, &out)
	if err != nil {
		return domain.Identity{}, err
	}
	identity := out.Identity()
	if !identity.Valid() {
		return domain.Identity{}, domain.NewError(domain.ErrCodeInternal, fmt.Sprintf("%s returned no user id", path))
	}
	return identity, nil
}
