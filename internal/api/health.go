package api

import (
	"context"

	"github.com/valyala/fasthttp"

	"github.com/fastygo/dialin/api/transport"
)

// Health pings the backend's health endpoint.
func (c *Client) Health(ctx context.Context) (transport.HealthResponse, error) {
	var out transport.HealthResponse
	err := c.do(ctx, call{method: fasthttp.MethodGet, path: "/health"}, &out)
	return out, err
}
