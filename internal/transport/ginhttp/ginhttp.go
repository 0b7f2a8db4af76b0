// Package ginhttp exposes the same ILP-over-HTTP endpoint as
// internal/transport/chihttp, built on gin instead of chi. The node
// carries both router stacks (see SPEC_FULL.md's domain stack) so an
// operator can front either one with existing gin or chi middleware;
// the wire frames and packet conversions are shared via
// internal/transport/wire.
package ginhttp

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/interledger-go/ilp-node/internal/transport/wire"
	"github.com/interledger-go/ilp-node/pkg/ilp"
)

// AccountResolver maps a gin request context to the ILP address of the
// peer making it.
type AccountResolver func(c *gin.Context) (string, error)

// NewEngine builds a gin.Engine with a single POST /ilp endpoint.
func NewEngine(next ilp.IncomingHandler[string], resolve AccountResolver, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(accessLog(logger))

	engine.POST("/ilp", func(c *gin.Context) {
		handleILP(c, next, resolve, logger)
	})

	return engine
}

func handleILP(c *gin.Context, next ilp.IncomingHandler[string], resolve AccountResolver, logger *zap.Logger) {
	from, err := resolve(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var frame wire.RequestFrame
	if err := c.ShouldBindJSON(&frame); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	prepare, err := wire.DecodePrepare(frame.Prepare)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := next.HandleRequest(c.Request.Context(), ilp.IncomingRequest[string]{
		From:    from,
		Prepare: prepare,
	})
	if err != nil {
		logger.Error("incoming handler failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, toResultFrame(result))
}

func toResultFrame(result ilp.Result) wire.ResultFrame {
	var resp wire.ResultFrame
	if fulfill, ok := result.Fulfill(); ok {
		frame := wire.EncodeFulfill(fulfill)
		resp.Fulfill = &frame
	} else if reject, ok := result.Reject(); ok {
		frame := wire.EncodeReject(reject)
		resp.Reject = &frame
	}
	return resp
}

func accessLog(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
