package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"iap-backoffice/middleware"
	"iap-backoffice/utils"
)

const slowRequest = 500 * time.Millisecond

// RouterDeps is everything the HTTP API needs.
type RouterDeps struct {
	Stage       string
	MetricsPath string
	Receipts    ReceiptStore
	Boxes       BoxStore
	Jobs        JobEnqueuer
	FailedJobs  JobRetrier
	QueueStats  QueueStats
	Auth        interface {
		Authenticator
		middleware.TokenValidator
	}
	Sessions    sessions.Store
	RateLimiter *middleware.RateLimiter
	DB          Pinger
	Redis       Pinger
	Logger      *zap.SugaredLogger
}

// NewRouter mounts the API under the stage prefix and metrics at the root.
func NewRouter(deps RouterDeps) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.CORSMiddleware)
	router.Use(middleware.SecurityHeadersMiddleware)
	router.Use(middleware.LoggingMiddleware(deps.Logger, slowRequest))
	router.Use(middleware.MetricsMiddleware)

	if deps.MetricsPath != "" {
		router.Handle(deps.MetricsPath, promhttp.Handler()).Methods("GET")
	}

	api := router.PathPrefix(utils.StageURL(deps.Stage, "/api")).Subrouter()
	if deps.RateLimiter != nil {
		api.Use(deps.RateLimiter.Middleware)
	}

	health := NewHealthHandler(deps.Stage, deps.DB, deps.Redis, deps.QueueStats)
	tables := NewTablesHandler(deps.Stage)
	authHandler := NewAuthHandler(deps.Auth, deps.Sessions, deps.Logger)

	api.HandleFunc("/health", health.Health).Methods("GET")
	api.HandleFunc("/tables", tables.GetTables).Methods("GET", "OPTIONS")
	api.HandleFunc("/tables/{name}", tables.GetTable).Methods("GET", "OPTIONS")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/logout", authHandler.Logout).Methods("POST", "OPTIONS")

	receipts := NewReceiptHandler(deps.Receipts, deps.Jobs, deps.Logger)
	boxes := NewBoxHandler(deps.Boxes, deps.Logger)
	jobs := NewJobHandler(deps.FailedJobs, deps.Logger)

	protected := api.NewRoute().Subrouter()
	protected.Use(middleware.AuthMiddleware(deps.Auth, deps.Sessions, deps.Logger))
	protected.HandleFunc("/receipts", receipts.ListReceipts).Methods("GET", "OPTIONS")
	protected.HandleFunc("/receipts/summary", receipts.Summary).Methods("GET", "OPTIONS")
	protected.HandleFunc("/receipts/{uuid}", receipts.GetReceipt).Methods("GET", "OPTIONS")
	protected.HandleFunc("/receipts/{uuid}/track", receipts.TrackReceipt).Methods("POST", "OPTIONS")
	protected.HandleFunc("/boxes", boxes.ListBoxes).Methods("GET", "OPTIONS")
	protected.HandleFunc("/jobs/{id}/retry", jobs.RetryJob).Methods("POST", "OPTIONS")

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.SendErrorResponse(w, http.StatusNotFound, "Not found")
	})
	return router
}
