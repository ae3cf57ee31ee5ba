package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"clam-browse/internal/auth"
	"clam-browse/internal/browse"
	"clam-browse/internal/logger"
	"clam-browse/internal/prefs"
)

// ProductStore is the persistence the handlers need
type ProductStore interface {
	ListProducts(ctx context.Context, q ListQuery) ([]Product, error)
	CountProducts(ctx context.Context, q ListQuery) (int, error)
	GetProduct(ctx context.Context, id string) (*Product, error)
	CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error)
	UpdateProduct(ctx context.Context, id string, req UpdateProductRequest) (*Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

// Options tunes the browse endpoints
type Options struct {
	PageSize    int
	MaxPageSize int
	// SearchPushdown reports whether browse search text is sent to the store; when it
	// returns false the full catalog is fetched and searched in memory
	SearchPushdown func() bool
	// Prefs returns the preference store of a browsing session
	Prefs func(session string) prefs.Store
}

// Handler handles HTTP requests for catalog operations
type Handler struct {
	store    ProductStore
	verifier *auth.Verifier
	opts     Options
}

// NewHandler creates a new catalog handler
func NewHandler(store ProductStore, verifier *auth.Verifier, opts Options) *Handler {
	if opts.PageSize < 1 {
		opts.PageSize = 10
	}
	if opts.MaxPageSize < opts.PageSize {
		opts.MaxPageSize = opts.PageSize
	}
	if opts.SearchPushdown == nil {
		opts.SearchPushdown = func() bool { return true }
	}
	return &Handler{store: store, verifier: verifier, opts: opts}
}

// Register mounts every catalog route on r
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/api/products", h.ListProducts).Methods(http.MethodGet)
	r.HandleFunc("/api/products/{id}", h.GetProduct).Methods(http.MethodGet)
	r.HandleFunc("/api/browse", h.Browse).Methods(http.MethodGet)
	r.HandleFunc("/api/facets", h.Facets).Methods(http.MethodGet)

	r.HandleFunc("/api/products", h.RequireAdmin(h.CreateProduct)).Methods(http.MethodPost)
	r.HandleFunc("/api/products/{id}", h.RequireAdmin(h.UpdateProduct)).Methods(http.MethodPut)
	r.HandleFunc("/api/products/{id}", h.RequireAdmin(h.DeleteProduct)).Methods(http.MethodDelete)

	if h.opts.Prefs != nil {
		r.HandleFunc("/api/prefs/{session}", h.GetPrefs).Methods(http.MethodGet)
		r.HandleFunc("/api/prefs/{session}", h.PutPrefs).Methods(http.MethodPut)
		r.HandleFunc("/api/prefs/{session}", h.DeletePrefs).Methods(http.MethodDelete)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Errorf("encode response: %v", err)
	}
}

// ListProducts handles GET /api/products. Without a limit every match is returned.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	q := ListQuery{
		Search:   strings.TrimSpace(params.Get("q")),
		Category: params.Get("category"),
	}
	if q.Category == browse.AllCategories {
		q.Category = ""
	}
	if params.Has("limit") {
		q.Limit, _ = strconv.Atoi(params.Get("limit"))
		if q.Limit <= 0 || q.Limit > 100 {
			q.Limit = 20
		}
		q.Offset, _ = strconv.Atoi(params.Get("offset"))
		q.Offset = max(q.Offset, 0)
	}

	products, err := h.store.ListProducts(r.Context(), q)
	if err != nil {
		logger.Errorf("ListProducts: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	total := len(products)
	if q.Limit > 0 {
		total, err = h.store.CountProducts(r.Context(), q)
		if err != nil {
			logger.Errorf("CountProducts: %v", err)
			total = len(products)
		}
	}

	writeJSON(w, http.StatusOK, ProductListResponse{
		Products: products,
		Total:    total,
		Limit:    q.Limit,
		Offset:   q.Offset,
	})
}

// GetProduct handles GET /api/products/{id}
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.store.GetProduct(r.Context(), mux.Vars(r)["id"])
	if errors.Is(err, ErrNotFound) {
		http.Error(w, "product not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logger.Errorf("GetProduct: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

type badParam struct {
	name, value string
}

func (e *badParam) Error() string { return "invalid " + e.name + ": " + e.value }

func floatParam(params map[string][]string, name string, fallback float64) (float64, error) {
	vals := params[name]
	if len(vals) == 0 || vals[0] == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(vals[0], 64)
	if err != nil {
		return 0, &badParam{name, vals[0]}
	}
	return f, nil
}

func intParam(params map[string][]string, name string, fallback int) (int, error) {
	vals := params[name]
	if len(vals) == 0 || vals[0] == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(vals[0])
	if err != nil || n < 1 {
		return 0, &badParam{name, vals[0]}
	}
	return n, nil
}

// parseBrowseQuery reads the browse parameters. Brands may repeat or be comma separated.
func (h *Handler) parseBrowseQuery(r *http.Request) (browse.Query, error) {
	params := r.URL.Query()
	q := browse.Query{
		Criteria: browse.MatchAll(),
		Search:   strings.TrimSpace(params.Get("q")),
		Sort:     browse.ParseSortMode(params.Get("sort")),
	}
	if c := params.Get("category"); c != "" {
		q.Criteria.Category = c
	}
	for _, raw := range params["brand"] {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				q.Criteria.Brands = append(q.Criteria.Brands, b)
			}
		}
	}

	var err error
	if q.Criteria.PriceRange[0], err = floatParam(params, "min_price", 0); err != nil {
		return q, err
	}
	if q.Criteria.PriceRange[1], err = floatParam(params, "max_price", math.Inf(1)); err != nil {
		return q, err
	}
	if q.Criteria.Rating, err = floatParam(params, "rating", 0); err != nil {
		return q, err
	}
	if q.Page.CurrentPage, err = intParam(params, "page", 1); err != nil {
		return q, err
	}
	if q.Page.PageSize, err = intParam(params, "page_size", h.opts.PageSize); err != nil {
		return q, err
	}
	q.Page.PageSize = min(q.Page.PageSize, h.opts.MaxPageSize)

	return q, q.Criteria.Validate()
}

// Browse handles GET /api/browse: filter, sort and paginate the catalog in one call
func (h *Handler) Browse(w http.ResponseWriter, r *http.Request) {
	q, err := h.parseBrowseQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	lq := ListQuery{}
	if h.opts.SearchPushdown() {
		lq.Search = q.Search
	}
	rows, err := h.store.ListProducts(r.Context(), lq)
	if err != nil {
		logger.Errorf("Browse: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	products := toBrowse(rows)
	res := browse.Run(products, q)
	logger.Debugf("browse q=%q sort=%s fetched=%d matched=%d page=%d/%d",
		q.Search, q.Sort, len(products), res.Total, res.Page, res.TotalPages)

	writeJSON(w, http.StatusOK, BrowseResponse{
		Result: res,
		Sort:   q.Sort.String(),
		Facets: browse.ExtractFacets(products),
	})
}

// Facets handles GET /api/facets for the whole catalog
func (h *Handler) Facets(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.ListProducts(r.Context(), ListQuery{})
	if err != nil {
		logger.Errorf("Facets: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, browse.ExtractFacets(toBrowse(rows)))
}

// CreateProduct handles POST /api/products (admin only)
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.Price <= 0 || req.SKU == "" {
		http.Error(w, "name, price, and sku are required", http.StatusBadRequest)
		return
	}
	if !validRating(req.Rating) {
		http.Error(w, "rating must be between 0 and 5", http.StatusBadRequest)
		return
	}

	product, err := h.store.CreateProduct(r.Context(), req)
	if err != nil {
		logger.Errorf("CreateProduct: %v", err)
		http.Error(w, "failed to create product", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func validRating(r *float64) bool {
	return r == nil || (*r >= 0 && *r <= browse.MaxRating)
}

// UpdateProduct handles PUT /api/products/{id} (admin only)
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if (req.Price != nil && *req.Price < 0) || !validRating(req.Rating) {
		http.Error(w, "price must be non-negative and rating between 0 and 5", http.StatusBadRequest)
		return
	}

	product, err := h.store.UpdateProduct(r.Context(), mux.Vars(r)["id"], req)
	if errors.Is(err, ErrNotFound) {
		http.Error(w, "product not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logger.Errorf("UpdateProduct: %v", err)
		http.Error(w, "failed to update product", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// DeleteProduct handles DELETE /api/products/{id} (admin only)
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	err := h.store.DeleteProduct(r.Context(), mux.Vars(r)["id"])
	if errors.Is(err, ErrNotFound) {
		http.Error(w, "product not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logger.Errorf("DeleteProduct: %v", err)
		http.Error(w, "failed to delete product", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetPrefs handles GET /api/prefs/{session}
func (h *Handler) GetPrefs(w http.ResponseWriter, r *http.Request) {
	st, err := prefs.Load(r.Context(), h.opts.Prefs(mux.Vars(r)["session"]))
	if err != nil && !errors.Is(err, prefs.ErrCorrupt) {
		logger.Errorf("GetPrefs: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if err != nil {
		logger.Warnf("GetPrefs: serving defaults: %v", err)
	}
	writeJSON(w, http.StatusOK, PrefsPayload{Filters: st.Criteria, Sort: st.Sort.String()})
}

// PutPrefs handles PUT /api/prefs/{session}
func (h *Handler) PutPrefs(w http.ResponseWriter, r *http.Request) {
	payload := PrefsPayload{Filters: browse.DefaultCriteria()}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := payload.Filters.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	store := h.opts.Prefs(mux.Vars(r)["session"])
	mode := browse.ParseSortMode(payload.Sort)
	if err := prefs.SaveCriteria(r.Context(), store, payload.Filters); err != nil {
		logger.Errorf("PutPrefs: %v", err)
		http.Error(w, "failed to save preferences", http.StatusInternalServerError)
		return
	}
	if err := prefs.SaveSort(r.Context(), store, mode); err != nil {
		logger.Errorf("PutPrefs: %v", err)
		http.Error(w, "failed to save preferences", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, PrefsPayload{Filters: payload.Filters, Sort: mode.String()})
}

// DeletePrefs handles DELETE /api/prefs/{session}
func (h *Handler) DeletePrefs(w http.ResponseWriter, r *http.Request) {
	store := h.opts.Prefs(mux.Vars(r)["session"])
	for _, key := range []string{prefs.KeyFilters, prefs.KeySort} {
		if err := store.Delete(r.Context(), key); err != nil {
			logger.Errorf("DeletePrefs: %v", err)
			http.Error(w, "failed to delete preferences", http.StatusInternalServerError)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// RequireAdmin is middleware that requires a valid JWT token with admin role
func (h *Handler) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenStr := auth.GetBearerToken(r)
		if tokenStr == "" {
			logger.Debugf("RequireAdmin: no bearer token provided")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		claims, err := h.verifier.ParseToken(tokenStr)
		if err != nil {
			logger.Debugf("RequireAdmin: JWT parse error: %v", err)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if !auth.HasRole(claims.Roles, auth.RoleAdmin) {
			logger.Debugf("RequireAdmin: user lacks admin role")
			http.Error(w, "forbidden - admin role required", http.StatusForbidden)
			return
		}
		next(w, r)
	}
}
