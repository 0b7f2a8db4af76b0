// Package chihttp exposes a chain of ilp.IncomingHandler[string] over
// HTTP using go-chi/chi, one of the two router stacks this node carries
// (see internal/transport/ginhttp for the other). Accounts are
// identified on this transport by a plain string — whatever header or
// mTLS identity the deployment resolves a peer's ILP address to — since
// the validator chain never inspects the account type parameter.
package chihttp

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/interledger-go/ilp-node/internal/transport/wire"
	"github.com/interledger-go/ilp-node/pkg/ilp"
)

// AccountResolver maps an HTTP request to the ILP address of the peer
// making it (e.g. from a bearer token or client certificate).
type AccountResolver func(r *http.Request) (string, error)

// NewRouter builds a chi.Router with a single POST /ilp endpoint that
// decodes a wire.RequestFrame, runs it through next, and encodes the
// resulting wire.ResultFrame.
func NewRouter(next ilp.IncomingHandler[string], resolve AccountResolver, logger *zap.Logger) chi.Router {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(accessLog(logger))

	r.Post("/ilp", func(w http.ResponseWriter, req *http.Request) {
		handleILP(w, req, next, resolve, logger)
	})

	return r
}

func handleILP(w http.ResponseWriter, req *http.Request, next ilp.IncomingHandler[string], resolve AccountResolver, logger *zap.Logger) {
	from, err := resolve(req)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var frame wire.RequestFrame
	if err := json.NewDecoder(req.Body).Decode(&frame); err != nil {
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return
	}

	prepare, err := wire.DecodePrepare(frame.Prepare)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := next.HandleRequest(req.Context(), ilp.IncomingRequest[string]{
		From:    from,
		Prepare: prepare,
	})
	if err != nil {
		logger.Error("incoming handler failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeResult(w, result)
}

func writeResult(w http.ResponseWriter, result ilp.Result) {
	var resp wire.ResultFrame
	if fulfill, ok := result.Fulfill(); ok {
		frame := wire.EncodeFulfill(fulfill)
		resp.Fulfill = &frame
	} else if reject, ok := result.Reject(); ok {
		frame := wire.EncodeReject(reject)
		resp.Reject = &frame
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// accessLog logs every request's method, path, status, and latency,
// the structured-logging analog of the teacher's settlementInterceptor
// pattern of wrapping the ResponseWriter to observe the outcome.
func accessLog(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
			)
		})
	}
}
