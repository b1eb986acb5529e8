package api

import (
	"context"
	"net/http"
	"net/http/pprof"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/keymint-io/keymint/config"
	"github.com/keymint-io/keymint/db"
	"github.com/keymint-io/keymint/db/entities"
	"github.com/keymint-io/keymint/db/query"
	"github.com/keymint-io/keymint/pkg/errs"
	"github.com/keymint-io/keymint/pkg/http/middlewares"
	"github.com/keymint-io/keymint/pkg/http/response"
	"github.com/keymint-io/keymint/pkg/types"
	"github.com/keymint-io/keymint/services/activation"
)

const MsgNotFound = "Not found"

// Registry is the slice of the license registry the API dispatches to.
type Registry interface {
	Issue(ctx context.Context, orderRef string, maxMajorVersion uint16) (*entities.License, error)
	Verify(key string) bool
	IsValid(ctx context.Context, key string) (bool, error)
	Revoke(ctx context.Context, entity *entities.License) error
	Refund(ctx context.Context, orderRef string) error
}

// Activator applies activation policy for presented keys.
type Activator interface {
	Activate(ctx context.Context, key, appVersion, deviceID string) (*activation.Result, error)
}

type API struct {
	cfg         *config.Config
	db          *db.DB
	registry    Registry
	activator   Activator
	middlewares []mux.MiddlewareFunc
}

type Options struct {
	Config      *config.Config
	DB          *db.DB
	Registry    Registry
	Activator   Activator
	Middlewares []mux.MiddlewareFunc
}

func NewAPI(opts Options) *API {
	return &API{
		cfg:         opts.Config,
		db:          opts.DB,
		registry:    opts.Registry,
		activator:   opts.Activator,
		middlewares: opts.Middlewares,
	}
}

// param returns the value of an url variable
func (api *API) param(r *http.Request, variable string) string {
	return mux.Vars(r)[variable]
}

func (api *API) json(code int, w http.ResponseWriter, data interface{}) {
	response.JSON(w, code, data)
}

func (api *API) bindQuery(r *http.Request, q *query.Query) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page_no"))
	if page <= 0 {
		page = 1
	}

	pagesize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	if pagesize <= 0 {
		pagesize = 20
	}

	q.Page(uint64(page), uint64(pagesize))
}

func (api *API) error(code int, w http.ResponseWriter, err error) {
	if e, ok := err.(*errs.ValidateError); ok {
		api.json(code, w, types.ErrorResponse{
			Message: "Request Validation",
			Error:   e,
		})
		return
	}
	api.json(code, w, types.ErrorResponse{Message: err.Error()})
}

func (api *API) assert(err error) {
	if err != nil {
		panic(err)
	}
}

// Handler returns a http.Handler
func (api *API) Handler() http.Handler {
	r := mux.NewRouter()

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, 404, types.ErrorResponse{Message: "not found"})
	})

	for _, m := range api.middlewares {
		r.Use(m)
	}
	r.Use(middlewares.PanicRecovery)

	r.HandleFunc("/", api.Index).Methods("GET")
	r.HandleFunc("/health", api.Health).Methods("GET")

	r.HandleFunc("/licenses", api.PageLicense).Methods("GET")
	r.HandleFunc("/licenses", api.IssueLicense).Methods("POST")
	r.HandleFunc("/licenses/validate", api.ValidateKey).Methods("POST")
	r.HandleFunc("/licenses/{id}", api.GetLicense).Methods("GET")
	r.HandleFunc("/licenses/{id}/key", api.GetLicenseKey).Methods("GET")
	r.HandleFunc("/licenses/{id}/revoke", api.RevokeLicense).Methods("POST")
	r.HandleFunc("/licenses/{id}/activations", api.ListActivations).Methods("GET")

	r.HandleFunc("/refunds", api.Refund).Methods("POST")

	r.HandleFunc("/activations", api.Activate).Methods("POST")

	if api.cfg.Admin.DebugEndpoints {
		r.HandleFunc("/debug/pprof/profile", pprof.Profile).Methods("GET")
		r.HandleFunc("/debug/pprof/symbol", pprof.Symbol).Methods("GET")
		r.HandleFunc("/debug/pprof/trace", pprof.Trace).Methods("GET")
		r.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline).Methods("GET")
		r.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index).Methods("GET")
	}

	return r
}
