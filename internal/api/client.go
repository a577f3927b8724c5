package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/dialin/domain"
	"github.com/fastygo/dialin/pkg/httpcontext"
	appLogger "github.com/fastygo/dialin/pkg/logger"
)

// Doer is the subset of *fasthttp.Client the API client needs.
type Doer interface {
	DoTimeout(req *fasthttp.Request, resp *fasthttp.Response, timeout time.Duration) error
}

// Options configure a Client.
type Options struct {
	Timeout time.Duration
	HTTP    Doer
}

// Client talks JSON to the backend. It never retries; callers decide how to
// recover from a failed call.
type Client struct {
	baseURL string
	timeout time.Duration
	http    Doer
	logger  *zap.Logger
}

func New(baseURL string, logger *zap.Logger, opts Options) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.HTTP == nil {
		opts.HTTP = &fasthttp.Client{
			Name:                "dialin",
			MaxIdleConnDuration: time.Minute,
		}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: opts.Timeout,
		http:    opts.HTTP,
		logger:  logger,
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

type call struct {
	method string
	path   string
	userID int64
	body   interface{}
}

func (c *Client) do(ctx context.Context, in call, out interface{}) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return domain.WrapError(domain.ErrCodeUnavailable, "request not sent", err)
	}
	ctx = httpcontext.Ensure(ctx)
	log := appLogger.WithRequestID(ctx, c.logger)

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + in.path)
	req.Header.SetMethod(in.method)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	if in.userID != 0 {
		req.URI().QueryArgs().Add("user_id", strconv.FormatInt(in.userID, 10))
	}
	httpcontext.Decorate(ctx, req)

	if in.body != nil {
		payload, err := json.Marshal(in.body)
		if err != nil {
			return domain.WrapError(domain.ErrCodeInvalid, "encode request", err)
		}
		req.Header.SetContentType("application/json")
		req.SetBody(payload)
	}

	started := time.Now()
	if err := c.http.DoTimeout(req, resp, c.deadline(ctx)); err != nil {
		log.Warn("backend unreachable",
			zap.String("method", in.method),
			zap.String("path", in.path),
			zap.Error(err))
		return domain.WrapError(domain.ErrCodeUnavailable, "backend unreachable", err)
	}

	status := resp.StatusCode()
	log.Debug("backend call",
		zap.String("method", in.method),
		zap.String("path", in.path),
		zap.Int("status", status),
		zap.Duration("elapsed", time.Since(started)))

	if status < 200 || status >= 300 {
		return newStatusError(status, resp.Body())
	}
	if out == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return domain.WrapError(domain.ErrCodeInternal, fmt.Sprintf("decode %s %s", in.method, in.path), err)
	}
	return nil
}

func (c *Client) deadline(ctx context.Context) time.Duration {
	timeout := c.timeout
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < timeout {
			timeout = left
		}
	}
	if timeout <= 0 {
		timeout = time.Millisecond
	}
	return timeout
}
