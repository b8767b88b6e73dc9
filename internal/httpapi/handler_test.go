package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/R3E-Network/tiny-trolley/internal/middleware"
	"github.com/R3E-Network/tiny-trolley/internal/model"
	"github.com/R3E-Network/tiny-trolley/internal/remote"
	"github.com/R3E-Network/tiny-trolley/internal/session"
)

// storefront is an in-memory stand-in for the remote storefront API.
type storefront struct {
	mu      sync.Mutex
	down    bool
	cart    []model.CartLine
	nextID  int64
	removed []string
}

func (f *storefront) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.down {
		w.WriteHeader(http.StatusBadGateway)
		return
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/products/":
		_, _ = io.WriteString(w, `[{"id":10,"name":"Linen Shirt","price":"45.50","category":"Tops"},{"id":11,"name":"Wool Coat","price":210,"category":"Outerwear"}]`)
	case r.Method == http.MethodGet && r.URL.Path == "/api/products/10/":
		_, _ = io.WriteString(w, `{"id":10,"name":"Linen Shirt (remote)","price":45.5,"category":"Tops"}`)
	case r.Method == http.MethodGet && r.URL.Path == "/api/cart/":
		if f.cart == nil {
			_, _ = io.WriteString(w, `[]`)
			return
		}
		_ = json.NewEncoder(w).Encode(f.cart)
	case r.Method == http.MethodPost && r.URL.Path == "/api/cart/":
		var req struct {
			Product  int64 `json:"product"`
			Quantity int   `json:"quantity"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.nextID++
		f.cart = append(f.cart, model.CartLine{
			ID:       model.Int64(f.nextID),
			Product:  model.Int64(req.Product),
			Quantity: req.Quantity,
		})
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{}`)
	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/api/cart/"):
		f.removed = append(f.removed, r.URL.Path)
		f.cart = nil
		w.WriteHeader(http.StatusNoContent)
	case r.Method == http.MethodPost && r.URL.Path == "/api/auth/login/":
		_, _ = io.WriteString(w, `{"token":"abc"}`)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *storefront) removedPaths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.removed...)
}

func (f *storefront) setDown(down bool) {
	f.mu.Lock()
	f.down = down
	f.mu.Unlock()
}

func newTestHandler(t *testing.T) (http.Handler, *session.Session, *storefront) {
	t.Helper()

	api := &storefront{}
	h, sess := newHandlerFor(t, api)
	return h, sess, api
}

// newHandlerFor starts a session against api and returns the bridge for it.
func newHandlerFor(t *testing.T, api http.Handler) (http.Handler, *session.Session) {
	t.Helper()

	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	client, err := remote.New(remote.Config{URL: srv.URL + "/api/"})
	require.NoError(t, err)

	sess := session.New(client, session.Options{OnFlagChange: func(string, bool) {}})
	sess.Start(context.Background())

	return NewHandler(sess, Config{RateLimit: 0, AllowedOrigins: []string{"http://localhost:3000"}}), sess
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, session.State) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var st session.State
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	}
	return rec, st
}

func TestHealth(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(middleware.TraceHeader))
}

func TestState_AfterStartup(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec, st := doJSON(t, h, http.MethodGet, "/api/state", "")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, model.ViewHome, st.View)
	require.Len(t, st.Products, 2)
	assert.Equal(t, model.Price(45.5), st.Products[0].Price)
	assert.Empty(t, st.Cart)
	assert.Empty(t, st.Notice)
	assert.Equal(t, model.Flags{}, st.Flags)
}

func TestProducts_ByCategory(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products?category=Outerwear", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var products []model.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &products))
	require.Len(t, products, 1)
	assert.Equal(t, "Wool Coat", products[0].Name)
}

func TestReloadProducts_FallsBackWhenOffline(t *testing.T) {
	h, _, api := newTestHandler(t)
	api.setDown(true)

	rec, st := doJSON(t, h, http.MethodPost, "/api/products/reload", "")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, session.DefaultProducts(), st.Products)
	assert.Equal(t, session.NoticeCatalogOffline, st.Notice)
}

func TestStartup_CatalogFallbacks(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"object instead of array", `{"results":[]}`},
		{"non-finite prices", `[{"id":1,"name":"X","price":"NaN"},{"id":2,"name":"Y","price":"Infinity"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newHandlerFor(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/api/products/" {
					_, _ = io.WriteString(w, tt.body)
					return
				}
				w.WriteHeader(http.StatusNotFound)
			}))

			rec, st := doJSON(t, h, http.MethodGet, "/api/state", "")
			require.Equal(t, http.StatusOK, rec.Code)
			require.NotEmpty(t, rec.Body.String())

			assert.Equal(t, session.DefaultProducts(), st.Products)
			assert.Equal(t, session.NoticeCatalogOffline, st.Notice)
		})
	}
}

func TestSetView_CartWithNonPositiveQuantityEmptiesCart(t *testing.T) {
	h, _ := newHandlerFor(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/products/":
			_, _ = io.WriteString(w, `[{"id":1,"name":"Scarf","price":10}]`)
		case "/api/cart/":
			_, _ = io.WriteString(w, `[{"id":9,"product":1,"quantity":-3},{"id":10,"product":1,"quantity":0}]`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	rec, st := doJSON(t, h, http.MethodPut, "/api/view", `{"view":"cart"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, st.Cart)
	assert.Equal(t, model.Price(0), st.Total)
}

func TestSetView_DetailResolvesRemote(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec, st := doJSON(t, h, http.MethodPut, "/api/view", `{"view":"detail","product":10}`)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, model.ViewDetail, st.View)
	require.NotNil(t, st.SelectedProduct)
	assert.Equal(t, int64(10), *st.SelectedProduct)
	require.NotNil(t, st.Detail)
	assert.Equal(t, "Linen Shirt (remote)", st.Detail.Name)
}

func TestSetView_DetailFallsBackToCache(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec, st := doJSON(t, h, http.MethodPut, "/api/view", `{"view":"detail","product":11}`)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NotNil(t, st.Detail)
	assert.Equal(t, "Wool Coat", st.Detail.Name)
	assert.Empty(t, st.Notice)
}

func TestSetView_InvalidView(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec, _ := doJSON(t, h, http.MethodPut, "/api/view", `{"view":"attic"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = doJSON(t, h, http.MethodPut, "/api/view", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartFlow(t *testing.T) {
	h, _, api := newTestHandler(t)

	rec, st := doJSON(t, h, http.MethodPost, "/api/cart", `{"product":10,"quantity":2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, st.Cart, 1)
	assert.Equal(t, 2, st.Cart[0].Quantity)
	assert.Equal(t, "Linen Shirt added to cart!", st.Notice)
	assert.Equal(t, model.Price(91), st.Total)

	rec, st = doJSON(t, h, http.MethodPost, "/api/cart/remove", `{"id":1,"product":10,"quantity":2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, st.Cart)
	assert.Equal(t, session.NoticeRemoved, st.Notice)
	assert.Equal(t, []string{"/api/cart/1/"}, api.removedPaths())
}

func TestAddToCart_Validation(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec, _ := doJSON(t, h, http.MethodPost, "/api/cart", `{"quantity":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = doJSON(t, h, http.MethodPost, "/api/cart", `{"product":10,"quantity":-3}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddToCart_FailureBecomesNotice(t *testing.T) {
	h, _, api := newTestHandler(t)
	api.setDown(true)

	rec, st := doJSON(t, h, http.MethodPost, "/api/cart", `{"product":10}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, session.NoticeAddFailed, st.Notice)
	assert.False(t, st.Flags.Action)
}

func TestSetView_CartRefreshFailureEmptiesCart(t *testing.T) {
	h, _, api := newTestHandler(t)

	_, st := doJSON(t, h, http.MethodPost, "/api/cart", `{"product":10}`)
	require.Len(t, st.Cart, 1)

	api.setDown(true)
	rec, st := doJSON(t, h, http.MethodPut, "/api/view", `{"view":"cart"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.ViewCart, st.View)
	assert.Empty(t, st.Cart)
}

func TestSubmitAuth(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec, st := doJSON(t, h, http.MethodPost, "/api/auth/login", `{"username":"ana","password":"pw"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `Login successful: {"token":"abc"}`, st.Notice)

	rec, st = doJSON(t, h, http.MethodPost, "/api/auth/signup", `{"username":"ana"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, session.NoticeAuthFailed, st.Notice)

	rec, st = doJSON(t, h, http.MethodPost, "/api/auth/login", `{"username":"ana","remember":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `Login successful: {"token":"abc"}`, st.Notice)

	rec, _ = doJSON(t, h, http.MethodPost, "/api/auth/logout", `{}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	h, _, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/cart", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestUnknownRoute(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
