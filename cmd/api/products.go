package main

import (
	"net/http"
	"strconv"

	"tienda/internal/domain/catalog"
	"tienda/internal/inventory"

	"github.com/go-chi/chi/v5"
)

func parseProductID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, inventory.ErrInvalidReference
	}
	return id, nil
}

// listProductsHandler supports the original query surface: ?limit, ?page,
// ?sort=asc|desc (by price) and ?query=available|<category>.
func (app *application) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	f := catalog.Filter{Limit: 10}

	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			app.badRequestResponse(w, r, inventory.ErrInvalidQuantity)
			return
		}
		f.Limit = n
	}
	if v := r.URL.Query().Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			page = 1
		}
		if f.Limit > 0 {
			f.Offset = (page - 1) * f.Limit
		}
	}
	switch r.URL.Query().Get("sort") {
	case "asc":
		f.SortByPrice = "asc"
	case "desc":
		f.SortByPrice = "desc"
	}
	if q := r.URL.Query().Get("query"); q != "" {
		if q == "available" {
			f.AvailableOnly = true
		} else {
			f.Category = q
		}
	}

	products, err := app.coordinator.ListProducts(r.Context(), f)
	if err != nil {
		app.coordinatorError(w, r, err)
		return
	}
	if products == nil {
		products = []catalog.Product{}
	}

	if err := app.jsonResponse(w, http.StatusOK, products); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) getProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseProductID(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	p, err := app.coordinator.GetProduct(r.Context(), id)
	if err != nil {
		app.coordinatorError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, p); err != nil {
		app.internalServerError(w, r, err)
	}
}

type createProductPayload struct {
	Title      string   `json:"title" validate:"required,max=200"`
	Code       string   `json:"code" validate:"required,max=100"`
	PriceCents int64    `json:"price_cents" validate:"gte=0"`
	Stock      int      `json:"stock" validate:"gte=0"`
	Category   string   `json:"category" validate:"required,max=100"`
	Thumbnails []string `json:"thumbnails"`
	Status     *bool    `json:"status"`
}

func (app *application) createProductHandler(w http.ResponseWriter, r *http.Request) {
	var payload createProductPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	status := true
	if payload.Status != nil {
		status = *payload.Status
	}

	p := &catalog.Product{
		Title:      payload.Title,
		Code:       payload.Code,
		PriceCents: payload.PriceCents,
		Stock:      payload.Stock,
		Category:   payload.Category,
		Thumbnails: payload.Thumbnails,
		Status:     status,
	}

	if err := app.coordinator.CreateProduct(r.Context(), p); err != nil {
		app.coordinatorError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, p); err != nil {
		app.internalServerError(w, r, err)
	}
}

type updateProductPayload struct {
	Title      *string   `json:"title" validate:"omitempty,max=200"`
	Code       *string   `json:"code" validate:"omitempty,max=100"`
	PriceCents *int64    `json:"price_cents" validate:"omitempty,gte=0"`
	Stock      *int      `json:"stock" validate:"omitempty,gte=0"`
	Category   *string   `json:"category" validate:"omitempty,max=100"`
	Thumbnails *[]string `json:"thumbnails"`
	Status     *bool     `json:"status"`
}

func (app *application) updateProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseProductID(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload updateProductPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	p, err := app.coordinator.UpdateProduct(r.Context(), id, catalog.UpdateFields{
		Title:      payload.Title,
		Code:       payload.Code,
		PriceCents: payload.PriceCents,
		Stock:      payload.Stock,
		Category:   payload.Category,
		Thumbnails: payload.Thumbnails,
		Status:     payload.Status,
	})
	if err != nil {
		app.coordinatorError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, p); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) deleteProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseProductID(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.coordinator.DeleteProduct(r.Context(), id); err != nil {
		app.coordinatorError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, map[string]string{"message": "product deleted"}); err != nil {
		app.internalServerError(w, r, err)
	}
}
