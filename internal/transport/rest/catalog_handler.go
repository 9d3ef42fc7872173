package rest

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/datum-redsoft/expense-reports/internal/core/datamodel/card"
	"github.com/datum-redsoft/expense-reports/internal/core/datamodel/catalog"
	"github.com/datum-redsoft/expense-reports/internal/core/datamodel/user"
	"github.com/datum-redsoft/expense-reports/internal/transport"
)

// CatalogAPI is the slice of the remote gateway the lookup endpoints proxy.
type CatalogAPI interface {
	ListUsers(ctx context.Context) ([]user.User, error)
	GetUser(ctx context.Context, userID int64) (*user.User, error)
	ListUserCards(ctx context.Context, userID int64) ([]card.Card, error)
	ListCountries(ctx context.Context) ([]user.Country, error)
	ListCategories(ctx context.Context) ([]catalog.Category, error)
	ListCostCenters(ctx context.Context) ([]catalog.CostCenter, error)
}

// CatalogHandler proxies the reference-data lookups the forms and the admin
// views need. The gateway already filters inactive catalog records.
type CatalogHandler struct {
	*transport.BaseHandler
	api CatalogAPI
}

func NewCatalogHandler(base *transport.BaseHandler, api CatalogAPI) *CatalogHandler {
	return &CatalogHandler{BaseHandler: base, api: api}
}

func (h *CatalogHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.api.ListUsers(r.Context())
	if err != nil {
		h.WriteError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, users)
}

func (h *CatalogHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathID(w, r, "userID")
	if !ok {
		return
	}
	u, err := h.api.GetUser(r.Context(), userID)
	if err != nil {
		h.WriteError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, u)
}

func (h *CatalogHandler) ListUserCards(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathID(w, r, "userID")
	if !ok {
		return
	}
	cards, err := h.api.ListUserCards(r.Context(), userID)
	if err != nil {
		h.WriteError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, cards)
}

func (h *CatalogHandler) ListCountries(w http.ResponseWriter, r *http.Request) {
	countries, err := h.api.ListCountries(r.Context())
	if err != nil {
		h.WriteError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, countries)
}

func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.api.ListCategories(r.Context())
	if err != nil {
		h.WriteError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, categories)
}

func (h *CatalogHandler) ListCostCenters(w http.ResponseWriter, r *http.Request) {
	centers, err := h.api.ListCostCenters(r.Context())
	if err != nil {
		h.WriteError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, centers)
}

func (h *CatalogHandler) pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		h.WriteStatusError(w, http.StatusBadRequest, name+" must be a positive integer")
		return 0, false
	}
	return id, true
}
