// Package devserver is an in-memory stand-in for the dialin backend. It speaks
// the same HTTP contract and is used for local development and tests.
package devserver

import (
	"net"
	"time"

	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/dialin/api/handler"
	"github.com/fastygo/dialin/domain"
	"github.com/fastygo/dialin/internal/middleware"
	"github.com/fastygo/dialin/internal/router"
	"github.com/fastygo/dialin/pkg/httpcontext"
	"github.com/fastygo/dialin/repository/memory"
	authUC "github.com/fastygo/dialin/usecase/auth"
	preferencesUC "github.com/fastygo/dialin/usecase/preferences"
	recordsUC "github.com/fastygo/dialin/usecase/records"
)

type Options struct {
	Name           string
	RequestTimeout time.Duration
	BcryptCost     int
}

type Server struct {
	http   *fasthttp.Server
	logger *zap.Logger
}

func New(opts Options, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Name == "" {
		opts.Name = "dialin-devserver"
	}

	adapter := httpcontext.NewAdapter(opts.RequestTimeout)

	authUseCase := authUC.New(memory.NewUserRepository(), opts.BcryptCost, logger)
	prefsUseCase := preferencesUC.New(memory.NewPreferencesRepository(), logger)

	categories := recordsUC.New[domain.Category, domain.CategoryPatch](domain.DomainCategories,
		memory.NewRecords[domain.Category]("Category not found"), logger)
	tasks := recordsUC.New[domain.Task, domain.TaskPatch](domain.DomainTasks,
		memory.NewRecords[domain.Task]("Task not found"), logger)
	events := recordsUC.New[domain.Event, domain.EventPatch](domain.DomainEvents,
		memory.NewRecords[domain.Event]("Event not found"), logger)
	rules := recordsUC.New[domain.Rule, domain.RulePatch](domain.DomainRules,
		memory.NewRecords[domain.Rule]("Rule not found"), logger)

	handlers := router.Handlers{
		Auth:        apiHandler.NewAuthHandler(authUseCase, adapter, logger),
		Preferences: apiHandler.NewPreferencesHandler(prefsUseCase, adapter, logger),
		Health:      apiHandler.NewHealthHandler(adapter, logger),
		Records: []router.RecordRoutes{
			apiHandler.NewRecordHandler(categories, adapter, logger),
			apiHandler.NewRecordHandler(tasks, adapter, logger),
			apiHandler.NewRecordHandler(events, adapter, logger),
			apiHandler.NewRecordHandler(rules, adapter, logger),
		},
	}

	r := router.New(handlers)
	handler := middleware.AccessLog(logger)(middleware.CORS(r.Handler))

	return &Server{
		http: &fasthttp.Server{
			Handler:      handler,
			Name:         opts.Name,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  time.Minute,
		},
		logger: logger,
	}
}

// Handler exposes the routed request handler.
func (s *Server) Handler() fasthttp.RequestHandler {
	return s.http.Handler
}

func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("devserver listening", zap.String("address", addr))
	return s.http.ListenAndServe(addr)
}

func (s *Server) Serve(ln net.Listener) error {
	return s.http.Serve(ln)
}

func (s *Server) Shutdown() error {
	return s.http.Shutdown()
}

// ServeInMemory serves on an in-process listener and returns an HTTP client
// wired to it. Call the returned stop function to shut the server down.
func (s *Server) ServeInMemory() (*fasthttp.Client, func()) {
	ln := fasthttputil.NewInmemoryListener()
	go func() {
		if err := s.http.Serve(ln); err != nil {
			s.logger.Warn("in-memory devserver stopped", zap.Error(err))
		}
	}()
	client := &fasthttp.Client{
		Dial: func(string) (net.Conn, error) {
			return ln.Dial()
		},
	}
	return client, func() {
		_ = s.http.Shutdown()
		_ = ln.Close()
	}
}
