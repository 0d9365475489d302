package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"vitrina.shop/internal/audit"
	"vitrina.shop/internal/auth"
	"vitrina.shop/internal/catalog"
)

type productRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents"`
	Currency    string `json:"currency"`
	ImageURL    string `json:"image_url"`
}

type listProductsResponse struct {
	Items []catalog.Product `json:"items"`
}

func (a *API) handleProductsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listProducts(w, r)
	case http.MethodPost:
		if !a.requireRole(w, r, auth.RoleAdmin) {
			return
		}
		a.createProduct(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleProductResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/products/")
	if path == "" || strings.Contains(path, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	id, err := strconv.ParseInt(path, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, http.StatusNotFound, "product not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		a.getProduct(w, r, id)
	case http.MethodPut:
		if !a.requireRole(w, r, auth.RoleAdmin) {
			return
		}
		a.updateProduct(w, r, id)
	case http.MethodDelete:
		if !a.requireRole(w, r, auth.RoleAdmin) {
			return
		}
		a.deleteProduct(w, r, id)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

func (a *API) listProducts(w http.ResponseWriter, r *http.Request) {
	filter, err := parseProductFilter(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	items, err := a.catalog.List(r.Context(), filter)
	if err != nil {
		handleCatalogError(w, r, err)
		return
	}
	if items == nil {
		items = []catalog.Product{}
	}
	writeJSON(w, http.StatusOK, listProductsResponse{Items: items})
}

func (a *API) getProduct(w http.ResponseWriter, r *http.Request, id int64) {
	p, err := a.catalog.Get(r.Context(), id)
	if err != nil {
		handleCatalogError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	p := catalog.Product{
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Currency:    req.Currency,
		ImageURL:    req.ImageURL,
	}
	if err := a.catalog.Create(r.Context(), &p); err != nil {
		handleCatalogError(w, r, err)
		return
	}

	a.auditCatalog(r, "catalog.product.create", p.ID)

	w.Header().Set("Location", "/api/products/"+strconv.FormatInt(p.ID, 10))
	writeJSON(w, http.StatusCreated, p)
}

func (a *API) updateProduct(w http.ResponseWriter, r *http.Request, id int64) {
	var req productRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	p := catalog.Product{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Currency:    req.Currency,
		ImageURL:    req.ImageURL,
	}
	if err := a.catalog.Update(r.Context(), &p); err != nil {
		handleCatalogError(w, r, err)
		return
	}

	a.auditCatalog(r, "catalog.product.update", id)
	writeJSON(w, http.StatusOK, p)
}

func (a *API) deleteProduct(w http.ResponseWriter, r *http.Request, id int64) {
	if err := a.catalog.Delete(r.Context(), id); err != nil {
		handleCatalogError(w, r, err)
		return
	}
	a.auditCatalog(r, "catalog.product.delete", id)
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) auditCatalog(r *http.Request, event string, id int64) {
	_ = audit.LogEvent(r.Context(), event, map[string]any{
		"product_id": id,
	})
}

func parseProductFilter(r *http.Request) (catalog.Filter, error) {
	q := r.URL.Query()
	f := catalog.Filter{Name: strings.TrimSpace(q.Get("name"))}

	if raw := strings.TrimSpace(q.Get("min_price")); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 0 {
			return catalog.Filter{}, errors.New("min_price must be a non-negative integer")
		}
		f.MinPrice = &v
	}
	if raw := strings.TrimSpace(q.Get("max_price")); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 0 {
			return catalog.Filter{}, errors.New("max_price must be a non-negative integer")
		}
		f.MaxPrice = &v
	}

	switch sortBy := strings.ToLower(strings.TrimSpace(q.Get("sort_by"))); sortBy {
	case "", catalog.SortByID, catalog.SortByName, catalog.SortByPrice:
		f.SortBy = sortBy
	default:
		return catalog.Filter{}, errors.New("sort_by must be one of id, name, price")
	}

	switch order := strings.ToLower(strings.TrimSpace(q.Get("order"))); order {
	case "", catalog.OrderAsc, catalog.OrderDesc:
		f.Order = order
	default:
		return catalog.Filter{}, errors.New("order must be asc or desc")
	}

	return f, nil
}

func handleCatalogError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, catalog.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
