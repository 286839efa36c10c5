package routekit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nhalm/canonlog"
)

type pipelineContextKey string

const rawBodyKey pipelineContextKey = "raw_body"

func rawBodyFromContext(ctx context.Context) []byte {
	raw, _ := ctx.Value(rawBodyKey).([]byte)
	return raw
}

// Option configures a Pipeline.
type Option func(*pipelineConfig)

type pipelineConfig struct {
	canonlog       bool
	canonlogFields func(*http.Request) map[string]any
}

// WithCanonlog enables canonical logging for requests handled by the
// pipeline's bound handlers. Logs method, path, route, status, and
// duration_ms for each request.
func WithCanonlog() Option {
	return func(c *pipelineConfig) {
		c.canonlog = true
	}
}

// WithCanonlogFields adds custom fields to each log entry.
// The function receives the request and returns fields to add.
// Called at request start, before any step executes.
func WithCanonlogFields(fn func(*http.Request) map[string]any) Option {
	return func(c *pipelineConfig) {
		c.canonlogFields = fn
	}
}

// Pipeline is an immutable ordered list of steps. Chaining methods return
// a new Pipeline, so a partially-built pipeline can be reused as a
// template; two pipelines grown from a common prefix never observe each
// other's later steps.
type Pipeline struct {
	cfg   pipelineConfig
	steps []Step
}

// New creates an empty Pipeline.
func New(opts ...Option) Pipeline {
	var cfg pipelineConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return Pipeline{cfg: cfg}
}

// Use returns a new Pipeline with the step appended.
func (p Pipeline) Use(step Step) Pipeline {
	steps := make([]Step, len(p.steps)+1)
	copy(steps, p.steps)
	steps[len(p.steps)] = step
	return Pipeline{cfg: p.cfg, steps: steps}
}

// ValidateBody appends a BodyStep for the prototype.
func (p Pipeline) ValidateBody(prototype any) Pipeline {
	return p.Use(BodyStep(prototype))
}

// ValidateParams appends a ParamsStep for the prototype.
func (p Pipeline) ValidateParams(prototype any) Pipeline {
	return p.Use(ParamsStep(prototype))
}

// ValidateQuery appends a QueryStep for the prototype.
func (p Pipeline) ValidateQuery(prototype any) Pipeline {
	return p.Use(QueryStep(prototype))
}

// Paginate appends a PaginationStep.
func (p Pipeline) Paginate() Pipeline {
	return p.Use(PaginationStep())
}

// HandlerFunc is the user handler invoked after every step has run.
// Its return value is wrapped in the success envelope; a returned error
// is normalized into the error envelope.
type HandlerFunc func(r *http.Request, c Context) (any, error)

// Handle binds fn to the accumulated steps and returns the resulting
// http.HandlerFunc. Handle does not consume the pipeline: it may be called
// again with a different handler to produce an independent bound handler
// over the same step list.
//
// A bound handler resolves the path parameters, buffers the request body,
// runs the steps strictly in append order, then invokes fn. It always
// writes a response: every failure, including panics, is caught at this
// single boundary and normalized.
func (p Pipeline) Handle(fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var start time.Time
		if p.cfg.canonlog {
			ctx = canonlog.NewContext(ctx)
			start = time.Now()

			canonlog.InfoAddMany(ctx, map[string]any{
				"method": r.Method,
				"path":   r.URL.Path,
			})

			if p.cfg.canonlogFields != nil {
				canonlog.InfoAddMany(ctx, p.cfg.canonlogFields(r))
			}
		}

		if timeout := getConfig().Timeout; timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		if r.Body != nil && r.Body != http.NoBody {
			if data, err := io.ReadAll(r.Body); err == nil && len(data) > 0 {
				ctx = context.WithValue(ctx, rawBodyKey, data)
				r.Body = io.NopCloser(bytes.NewReader(data))
			}
		}

		r = r.WithContext(ctx)
		params := pathParams(r)

		reply := p.run(r, params, fn)

		if p.cfg.canonlog {
			route := r.URL.Path
			if rctx := chi.RouteContext(ctx); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}

			canonlog.InfoAddMany(ctx, map[string]any{
				"route":       route,
				"status":      reply.Code,
				"duration_ms": time.Since(start).Milliseconds(),
			})

			canonlog.Flush(ctx)
		}

		writeReply(w, reply)
	}
}

// run executes the step chain and the user handler, converting any error
// or panic into the error envelope. It always returns a non-nil reply.
func (p Pipeline) run(r *http.Request, params map[string]string, fn HandlerFunc) (reply *Reply) {
	defer func() {
		if rec := recover(); rec != nil {
			normalized := Normalize(fmt.Errorf("panic: %v", rec), r)
			reply = &Reply{
				Code:    normalized.Code,
				Message: normalized.Message,
				Error:   normalized.Meta,
			}
		}
	}()

	c := Context{Params: params}

	result, err := p.exec(0, r, c, fn)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = NewTimeout(WithRequest(r))
		}
		normalized := Normalize(err, r)
		return &Reply{
			Code:    normalized.Code,
			Message: normalized.Message,
			Error:   normalized.Meta,
		}
	}
	if result == nil {
		result = OK(nil)
	}
	return result
}

// exec runs step i, wiring its continuation to step i+1 or, when the
// steps are exhausted, to the user handler.
func (p Pipeline) exec(i int, r *http.Request, c Context, fn HandlerFunc) (*Reply, error) {
	if i >= len(p.steps) {
		if err := r.Context().Err(); err != nil {
			return nil, err
		}
		v, err := fn(r, c)
		if err != nil {
			return nil, err
		}
		return OK(v), nil
	}
	return p.steps[i](r, c, func(r *http.Request, c Context) (*Reply, error) {
		return p.exec(i+1, r, c, fn)
	})
}

// pathParams harvests the raw path parameters from chi's routing context.
func pathParams(r *http.Request) map[string]string {
	params := make(map[string]string)
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return params
	}
	for i, key := range rctx.URLParams.Keys {
		params[key] = rctx.URLParams.Values[i]
	}
	return params
}
