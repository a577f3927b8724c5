package api

import (
	"context"
	"fmt"

	"github.com/valyala/fasthttp"

	"github.com/fastygo/dialin/domain"
)

// Resource is the CRUD endpoint set of one entity domain.
type Resource[T any, P any] struct {
	client *Client
	domain domain.Domain
}

func NewResource[T any, P any](client *Client, dom domain.Domain) *Resource[T, P] {
	return &Resource[T, P]{client: client, domain: dom}
}

func (r *Resource[T, P]) Domain() domain.Domain {
	return r.domain
}

// List returns every record the user owns. A 404 is returned as is; callers
// decide whether it means "empty".
func (r *Resource[T, P]) List(ctx context.Context, userID int64) ([]T, error) {
	var out []T
	err := r.client.do(ctx, call{
		method: fasthttp.MethodGet,
		path:   r.collectionPath(),
		userID: userID,
	}, &out)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func (r *Resource[T, P]) Create(ctx context.Context, item T) (T, error) {
	var out T
	err := r.client.do(ctx, call{
		method: fasthttp.MethodPost,
		path:   r.collectionPath(),
		body:   item,
	}, &out)
	return out, err
}

func (r *Resource[T, P]) Update(ctx context.Context, userID, id int64, patch P) (T, error) {
	var out T
	err := r.client.do(ctx, call{
		method: fasthttp.MethodPut,
		path:   r.itemPath(id),
		userID: userID,
		body:   patch,
	}, &out)
	return out, err
}

func (r *Resource[T, P]) Delete(ctx context.Context, userID, id int64) error {
	return r.client.do(ctx, call{
		method: fasthttp.MethodDelete,
		path:   r.itemPath(id),
		userID: userID,
	}, nil)
}

func (r *Resource[T, P]) collectionPath() string {
	return fmt.Sprintf("/%s/", r.domain)
}

func (r *Resource[T, P]) itemPath(id int64) string {
	return fmt.Sprintf("/%s/%d", r.domain, id)
}

// Resources bundles the four entity endpoints.
type Resources struct {
	Categories *Resource[domain.Category, domain.CategoryPatch]
	Tasks      *Resource[domain.Task, domain.TaskPatch]
	Events     *Resource[domain.Event, domain.EventPatch]
	Rules      *Resource[domain.Rule, domain.RulePatch]
}

func (c *Client) Resources() Resources {
	return Resources{
		Categories: NewResource[domain.Category, domain.CategoryPatch](c, domain.DomainCategories),
		Tasks:      NewResource[domain.Task, domain.TaskPatch](c, domain.DomainTasks),
		Events:     NewResource[domain.Event, domain.EventPatch](c, domain.DomainEvents),
		Rules:      NewResource[domain.Rule, domain.RulePatch](c, domain.DomainRules),
	}
}
