// Package router is a thin generic layer over gin. Handlers are plain
// domain methods taking a request model and returning a response model; the
// router does the binding, the context plumbing, and the response envelope.
package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/retroquest-labs/backend/config"
	"github.com/retroquest-labs/backend/pkg/logger"
	"github.com/retroquest-labs/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type HandlerFunc[Request, Response any] func(ctx context.Context, req *Request) (*Response, error)

// MiddlewareFunc runs before the handler. It may derive a new context, which
// the handler and the closers then receive.
type MiddlewareFunc func(ctx context.Context, r *http.Request) (context.Context, error)

// CloserFunc runs after the handler with its final error, nil on success.
type CloserFunc func(ctx context.Context, r *http.Request, err error)

type Router struct {
	Inner gin.IRouter

	cfg    config.Configs
	db     *gorm.DB
	logger logger.Logger

	befores []MiddlewareFunc
	closers []CloserFunc
}

func New(db *gorm.DB, cfg config.Configs, logger logger.Logger) *Router {
	gin.SetMode(gin.ReleaseMode)
	return &Router{
		Inner:  gin.New(),
		cfg:    cfg,
		db:     db,
		logger: logger,
	}
}

// Branch returns a router sharing the underlying engine but with its own
// middleware chain, so route groups can require different authentication.
func (r *Router) Branch() *Router {
	return &Router{
		Inner:   r.Inner,
		cfg:     r.cfg,
		db:      r.db,
		logger:  r.logger,
		befores: append([]MiddlewareFunc{}, r.befores...),
		closers: append([]CloserFunc{}, r.closers...),
	}
}

func (r *Router) Before(middleware MiddlewareFunc) {
	r.befores = append(r.befores, middleware)
}

func (r *Router) AddCloser(closer CloserFunc) {
	r.closers = append(r.closers, closer)
}

func GET[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.Inner.GET(pattern, wrapHandler(r, http.MethodGet, handler))
}

func POST[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.Inner.POST(pattern, wrapHandler(r, http.MethodPost, handler))
}

func (r *Router) Handler() http.Handler {
	return r.Inner.(*gin.Engine)
}

// requestContext seeds the request context with the ambient values every
// handler expects. It keeps the request's own cancellation, so long-running
// handlers stop when the caller disconnects.
func (r *Router) requestContext(gctx *gin.Context) context.Context {
	ctx := gctx.Request.Context()
	ctx = xcontext.WithDB(ctx, r.db)
	ctx = xcontext.WithConfigs(ctx, r.cfg)
	ctx = xcontext.WithLogger(ctx, r.logger)
	return ctx
}
