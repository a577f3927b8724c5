package api

import (
	"context"
	"fmt"

	"github.com/valyala/fasthttp"

	"github.com/fastygo/dialin/domain"
)

func (c *Client) GetPreferences(ctx context.Context, userID int64) (domain.Preferences, error) {
	var out domain.Preferences
	err := c.do(ctx, call{
		method: fasthttp.MethodGet,
		path:   preferencesPath(userID),
	}, &out)
	return out, err
}

func (c *Client) UpdatePreferences(ctx context.Context, userID int64, patch domain.PreferencesPatch) (domain.Preferences, error) {
	var out domain.Preferences
	err := c.do(ctx, call{
		method: fasthttp.MethodPut,
		path:   preferencesPath(userID),
		body:   patch,
	}, &out)
	return out, err
}

func preferencesPath(userID int64) string {
	return fmt.Sprintf("/user_data/%d", userID)
}
