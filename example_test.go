package routekit_test

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nhalm/routekit"
	"github.com/nhalm/routekit/auth"
	"github.com/nhalm/routekit/store"
)

func ExamplePipeline_Handle() {
	type CreateUserRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	r := chi.NewRouter()
	r.Post("/users", routekit.New().
		ValidateBody(CreateUserRequest{}).
		Handle(func(_ *http.Request, c routekit.Context) (any, error) {
			body, _ := routekit.BodyAs[CreateUserRequest](c)
			return map[string]string{"email": body.Email}, nil
		}))
}

func ExamplePipeline_Paginate() {
	r := chi.NewRouter()
	r.Get("/users", routekit.New().
		Paginate().
		Handle(func(_ *http.Request, c routekit.Context) (any, error) {
			// c.Pagination.Skip and c.Pagination.PageSize drive the query.
			return []string{}, nil
		}))
}

func ExamplePipeline_reuseAsTemplate() {
	type UserParams struct {
		ID int `param:"id" validate:"required,min=1"`
	}

	base := routekit.New().ValidateParams(UserParams{})

	r := chi.NewRouter()
	r.Get("/users/{id}", base.Handle(func(_ *http.Request, c routekit.Context) (any, error) {
		params, _ := routekit.ParamsAs[UserParams](c)
		return params.ID, nil
	}))
	r.Delete("/users/{id}", base.Handle(func(_ *http.Request, c routekit.Context) (any, error) {
		return nil, routekit.NewForbidden()
	}))
}

func ExampleConfigure() {
	routekit.Configure(routekit.Config{
		Lang:    "kr",
		Timeout: 30 * time.Second,
		Pagination: routekit.PaginationKeys{
			PageIndex: "page",
			PageSize:  "size",
			SortBy:    "sort",
			SortOrder: "order",
		},
	})
}

func ExampleSetErrorHook() {
	routekit.SetErrorHook(func(err error, r *http.Request) routekit.ErrorReply {
		return routekit.ErrorReply{
			Code:    http.StatusInternalServerError,
			Message: "something went wrong",
			Meta:    map[string]string{"path": r.URL.Path},
		}
	})
}

func ExampleNew_authMiddleware() {
	sessions := store.NewMemory()
	defer sessions.Close()

	auth.Register("session", &auth.Session{Store: sessions})
	auth.Register("internal", &auth.Internal{Secret: []byte("shared-secret")})

	r := chi.NewRouter()
	r.Use(auth.Use("session"))
}
