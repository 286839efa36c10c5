package routekit

import (
	"encoding/json"
	"io"
	"net/http"
	"reflect"
)

// Next continues the pipeline with an updated context: the following step
// if one remains, otherwise the user handler.
type Next func(r *http.Request, c Context) (*Reply, error)

// Step is a single stage of a pipeline. A step either returns next's
// result, or returns its own non-nil *Reply to short-circuit everything
// after it. Errors propagate untouched to the pipeline boundary; no step
// handles errors itself.
type Step func(r *http.Request, c Context, next Next) (*Reply, error)

// prototypeType resolves the struct type a step decodes into.
// Steps allocate a fresh instance per request, so the prototype value
// itself is never written to.
func prototypeType(prototype any) reflect.Type {
	t := reflect.TypeOf(prototype)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		panic("routekit: prototype must be a struct or pointer to struct")
	}
	return t
}

// BodyStep returns a step that decodes the JSON request body into a fresh
// instance of the prototype's type, validates it, and sets Context.Body.
func BodyStep(prototype any) Step {
	typ := prototypeType(prototype)
	return func(r *http.Request, c Context, next Next) (*Reply, error) {
		raw := rawBodyFromContext(r.Context())
		if raw == nil && r.Body != nil {
			raw, _ = io.ReadAll(r.Body)
		}

		dest := reflect.New(typ).Interface()
		if err := json.Unmarshal(raw, dest); err != nil {
			return nil, NewValidation(WithMessage("invalid JSON request body"), WithRequest(r))
		}
		if err := validateStruct(dest); err != nil {
			return nil, err
		}

		c.Body = dest
		return next(r, c)
	}
}

// ParamsStep returns a step that decodes the raw path parameters into a
// fresh instance of the prototype's type via `param` struct tags,
// validates it, and replaces Context.Params with the typed value.
func ParamsStep(prototype any) Step {
	typ := prototypeType(prototype)
	return func(r *http.Request, c Context, next Next) (*Reply, error) {
		params := c.RawParams()
		if params == nil {
			params = pathParams(r)
		}

		dest := reflect.New(typ).Interface()
		if err := decodeInto(dest, "param", func(name string) string {
			return params[name]
		}); err != nil {
			return nil, NewValidation(WithMessage("invalid path parameters"), WithRequest(r))
		}
		if err := validateStruct(dest); err != nil {
			return nil, err
		}

		c.Params = dest
		return next(r, c)
	}
}

// QueryStep returns a step that decodes the query string into a fresh
// instance of the prototype's type via `query` struct tags, validates it,
// and sets Context.Query.
func QueryStep(prototype any) Step {
	typ := prototypeType(prototype)
	return func(r *http.Request, c Context, next Next) (*Reply, error) {
		query := r.URL.Query()

		dest := reflect.New(typ).Interface()
		if err := decodeInto(dest, "query", query.Get); err != nil {
			return nil, NewValidation(WithMessage("invalid query parameters"), WithRequest(r))
		}
		if err := validateStruct(dest); err != nil {
			return nil, err
		}

		c.Query = dest
		return next(r, c)
	}
}

// PaginationStep returns a step that derives pagination values from the
// query string using the configured parameter names and sets
// Context.Pagination. It never fails; missing or invalid values default.
func PaginationStep() Step {
	return func(r *http.Request, c Context, next Next) (*Reply, error) {
		c.Pagination = paginationFromQuery(r.URL.Query())
		return next(r, c)
	}
}
