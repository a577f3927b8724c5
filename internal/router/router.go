package router

import (
	"fmt"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/dialin/api/handler"
	"github.com/fastygo/dialin/domain"
)

// RecordRoutes is implemented by every apiHandler.RecordHandler instantiation.
type RecordRoutes interface {
	Domain() domain.Domain
	List(ctx *fasthttp.RequestCtx)
	Create(ctx *fasthttp.RequestCtx)
	Update(ctx *fasthttp.RequestCtx)
	Delete(ctx *fasthttp.RequestCtx)
}

type Handlers struct {
	Auth        *apiHandler.AuthHandler
	Preferences *apiHandler.PreferencesHandler
	Health      *apiHandler.HealthHandler
	Records     []RecordRoutes
}

func New(handlers Handlers) *router.Router {
	r := router.New()
	r.RedirectTrailingSlash = false

	r.GET("/health", handlers.Health.Check)

	r.POST("/auth/register", handlers.Auth.Register)
	r.POST("/auth/login", handlers.Auth.Login)
	r.POST("/auth/me", handlers.Auth.Me)
	r.POST("/auth/logout", handlers.Auth.Logout)

	r.GET("/user_data/{user_id}", handlers.Preferences.Get)
	r.PUT("/user_data/{user_id}", handlers.Preferences.Update)

	for _, h := range handlers.Records {
		collection := fmt.Sprintf("/%s/", h.Domain())
		item := fmt.Sprintf("/%s/{id}", h.Domain())
		r.GET(collection, h.List)
		r.POST(collection, h.Create)
		r.PUT(item, h.Update)
		r.DELETE(item, h.Delete)
	}

	return r
}
