package routes

import (
	"context"
	"net/http"
	"time"

	"postboard/app/controllers"
	"postboard/app/middleware"
	"postboard/app/services"
	"postboard/app/views"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Dependencies is everything the router needs.
type Dependencies struct {
	Posts    *services.PostService
	Comments *services.CommentService
	Views    *views.Templates
	Log      logrus.FieldLogger

	// Registry receives the HTTP metrics and is served at /metrics. Optional.
	Registry *prometheus.Registry
	// Ready backs /healthz; nil means always ready.
	Ready func(ctx context.Context) error
}

// SetupRoutes defines the application's routes and returns a router.
func SetupRoutes(deps Dependencies) *mux.Router {
	router := mux.NewRouter()

	// Apply global middleware
	router.Use(middleware.RequestID)
	if deps.Registry != nil {
		router.Use(middleware.NewMetrics(deps.Registry).Handler)
	}
	router.Use(middleware.Logger(deps.Log))
	router.Use(middleware.Recoverer(deps.Log))

	postController := controllers.NewPostController(deps.Posts, deps.Comments, deps.Views, deps.Log)
	commentController := controllers.NewCommentController(deps.Comments, deps.Log)

	router.Handle("/", http.RedirectHandler("/post/list", http.StatusFound)).Methods("GET")
	router.HandleFunc("/healthz", healthHandler(deps.Ready)).Methods("GET")
	if deps.Registry != nil {
		router.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})).Methods("GET")
	}

	// Post pages live on the root router so a wrong method yields 405.
	router.HandleFunc("/post/list", postController.List).Methods("GET")
	router.HandleFunc("/post/search", postController.Search).Methods("GET")
	router.HandleFunc("/post/details", postController.Details).Methods("GET")
	router.HandleFunc("/post/create", postController.New).Methods("GET")
	router.HandleFunc("/post/create", postController.Create).Methods("POST")
	router.HandleFunc("/post/modify", postController.Modify).Methods("GET")
	router.HandleFunc("/post/update", postController.Update).Methods("POST")
	router.HandleFunc("/post/delete", postController.Delete).Methods("GET")

	// API routes with JSON content type
	api := router.PathPrefix("/api").Subrouter()
	api.Use(middleware.ContentTypeJSON)

	api.HandleFunc("/post", postController.List).Methods("GET")
	api.HandleFunc("/post", postController.Create).Methods("POST")
	api.HandleFunc("/post/search", postController.Search).Methods("GET")
	api.HandleFunc("/post/{id:[0-9]+}", postController.Details).Methods("GET")
	api.HandleFunc("/post/{id:[0-9]+}", postController.Update).Methods("PUT")
	api.HandleFunc("/post/{id:[0-9]+}", postController.Delete).Methods("DELETE")

	api.HandleFunc("/comment", commentController.Register).Methods("POST")
	api.HandleFunc("/comment/all/{id:[0-9]+}", commentController.List).Methods("GET")
	api.HandleFunc("/comment/{id:[0-9]+}", commentController.Show).Methods("GET")

	return router
}

func healthHandler(ready func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ready != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := ready(ctx); err != nil {
				http.Error(w, "unavailable: "+err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		w.Write([]byte("ok"))
	}
}

// NewServer wraps the router in an http.Server with conservative timeouts.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
