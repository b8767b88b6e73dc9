// Package httpapi exposes a Session to a view layer over JSON/HTTP. Every
// mutating endpoint answers with the resulting session state; remote
// failures show up only as state (fallbacks, empty cart, notice), never as
// HTTP errors.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/R3E-Network/tiny-trolley/internal/httputil"
	"github.com/R3E-Network/tiny-trolley/internal/logging"
	"github.com/R3E-Network/tiny-trolley/internal/metrics"
	"github.com/R3E-Network/tiny-trolley/internal/middleware"
	"github.com/R3E-Network/tiny-trolley/internal/model"
	"github.com/R3E-Network/tiny-trolley/internal/session"
)

// Config configures the view bridge.
type Config struct {
	Logger         *logging.Logger
	RateLimit      int
	Burst          int
	AllowedOrigins []string
	// CleanupStop stops the rate limiter cleanup loop when closed.
	CleanupStop <-chan struct{}
}

type handler struct {
	session *session.Session
}

// NewHandler returns the view bridge HTTP handler for s.
func NewHandler(s *session.Session, cfg Config) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = logging.NewDiscard("storefront-http")
	}
	h := &handler{session: s}

	limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.Burst, log)
	if cfg.CleanupStop != nil {
		limiter.StartCleanup(time.Minute, cfg.CleanupStop)
	}

	r := mux.NewRouter()
	r.Use(middleware.MetricsMiddleware(), middleware.LoggingMiddleware(log))

	r.HandleFunc("/health", h.health).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(limiter.Handler)
	api.HandleFunc("/state", h.state).Methods(http.MethodGet)
	api.HandleFunc("/view", h.setView).Methods(http.MethodPut)
	api.HandleFunc("/products", h.products).Methods(http.MethodGet)
	api.HandleFunc("/products/reload", h.reloadProducts).Methods(http.MethodPost)
	api.HandleFunc("/cart", h.addToCart).Methods(http.MethodPost)
	api.HandleFunc("/cart/remove", h.removeFromCart).Methods(http.MethodPost)
	api.HandleFunc("/auth/{kind}", h.submitAuth).Methods(http.MethodPost)

	return middleware.Tracing(middleware.NewCORSMiddleware(cfg.AllowedOrigins).Handler(r))
}

// detach keeps request values such as the trace ID but drops cancellation:
// a sync operation runs to completion even if the view disconnects.
func detach(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) state(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.session.State())
}

type viewRequest struct {
	View    model.View `json:"view"`
	Product *int64     `json:"product,omitempty"`
}

func (h *handler) setView(w http.ResponseWriter, r *http.Request) {
	var req viewRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	ctx := detach(r)
	if req.View == model.ViewDetail && req.Product != nil {
		h.session.ShowProduct(ctx, *req.Product)
	} else {
		h.session.Navigate(ctx, req.View)
	}
	httputil.WriteJSON(w, http.StatusOK, h.session.State())
}

func (h *handler) products(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.session.ProductsByCategory(r.URL.Query().Get("category")))
}

func (h *handler) reloadProducts(w http.ResponseWriter, r *http.Request) {
	h.session.LoadCatalog(detach(r))
	httputil.WriteJSON(w, http.StatusOK, h.session.State())
}

type addToCartRequest struct {
	Product  *int64 `json:"product"`
	Quantity int    `json:"quantity"`
}

func (h *handler) addToCart(w http.ResponseWriter, r *http.Request) {
	var req addToCartRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	if req.Product == nil {
		httputil.BadRequest(w, "product is required")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 0 {
		httputil.BadRequest(w, "quantity must be positive")
		return
	}

	h.session.AddToCart(detach(r), *req.Product, req.Quantity)
	httputil.WriteJSON(w, http.StatusOK, h.session.State())
}

func (h *handler) removeFromCart(w http.ResponseWriter, r *http.Request) {
	var line model.CartLine
	if err := httputil.ReadJSON(r, &line); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	h.session.RemoveFromCart(detach(r), line)
	httputil.WriteJSON(w, http.StatusOK, h.session.State())
}

func (h *handler) submitAuth(w http.ResponseWriter, r *http.Request) {
	kind, err := model.ParseAuthKind(mux.Vars(r)["kind"])
	if err != nil {
		httputil.WriteError(w, http.StatusNotFound, err.Error())
		return
	}

	var creds model.Credentials
	if err := httputil.ReadJSON(r, &creds); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	h.session.SubmitAuth(detach(r), kind, creds)
	httputil.WriteJSON(w, http.StatusOK, h.session.State())
}
