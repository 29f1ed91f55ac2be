package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/retroquest-labs/backend/pkg/errorx"
	"github.com/retroquest-labs/backend/pkg/xcontext"
)

func wrapHandler[Request, Response any](
	router *Router,
	method string,
	handler HandlerFunc[Request, Response],
) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		ctx := router.requestContext(gctx)

		resp, err := func() (*Response, error) {
			var req Request
			var err error
			switch method {
			case http.MethodGet:
				err = gctx.ShouldBindQuery(&req)
			case http.MethodPost:
				if gctx.Request.ContentLength > 0 {
					err = gctx.ShouldBindJSON(&req)
				}
			}
			if err != nil {
				xcontext.Logger(ctx).Debugf("Cannot bind the request: %v", err)
				return nil, errorx.New(errorx.BadRequest, "Cannot bind the request")
			}

			for _, middleware := range router.befores {
				newCtx, err := middleware(ctx, gctx.Request)
				if err != nil {
					return nil, err
				}

				ctx = newCtx
			}

			return handler(ctx, &req)
		}()

		if err != nil {
			gctx.JSON(http.StatusOK, newErrorResponse(err))
		} else {
			gctx.JSON(http.StatusOK, newResponse(resp))
		}

		for _, closer := range router.closers {
			closer(ctx, gctx.Request, err)
		}
	}
}
