package routekit

// Context is the record of validated and derived values threaded through
// a pipeline. It starts with only the raw path parameters; each step adds
// one field to a copy of the context it passes downstream, so earlier
// steps never observe later additions. A fresh Context is created per
// request and is never shared across invocations.
type Context struct {
	// Params holds the raw path parameters (map[string]string) until a
	// ValidateParams step replaces them with a typed value.
	Params any

	// Body is the validated request body, set by a ValidateBody step.
	Body any

	// Query is the validated query string, set by a ValidateQuery step.
	Query any

	// Pagination is set by a Paginate step.
	Pagination *Pagination
}

// BodyAs returns the context body as *T.
func BodyAs[T any](c Context) (*T, bool) {
	v, ok := c.Body.(*T)
	return v, ok
}

// QueryAs returns the context query as *T.
func QueryAs[T any](c Context) (*T, bool) {
	v, ok := c.Query.(*T)
	return v, ok
}

// ParamsAs returns the typed path parameters as *T.
// It reports false until a ValidateParams step has run.
func ParamsAs[T any](c Context) (*T, bool) {
	v, ok := c.Params.(*T)
	return v, ok
}

// RawParams returns the raw path parameters, or nil if they have been
// replaced by a typed value.
func (c Context) RawParams() map[string]string {
	params, _ := c.Params.(map[string]string)
	return params
}
