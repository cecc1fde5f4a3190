package main

import (
	"net/http"

	"tienda/internal/domain/cart"
	"tienda/internal/inventory"

	"github.com/go-chi/chi/v5"
)

func (app *application) createCartHandler(w http.ResponseWriter, r *http.Request) {
	view, err := app.coordinator.CreateCart(r.Context())
	if err != nil {
		app.coordinatorError(w, r, err)
		return
	}

	if err := app.cartResponse(w, http.StatusCreated, view); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) getCartHandler(w http.ResponseWriter, r *http.Request) {
	view, err := app.coordinator.GetCart(r.Context(), chi.URLParam(r, "cartID"))
	if err != nil {
		app.coordinatorError(w, r, err)
		return
	}

	if err := app.cartResponse(w, http.StatusOK, view); err != nil {
		app.internalServerError(w, r, err)
	}
}

type quantityPayload struct {
	Quantity int `json:"quantity" validate:"gte=1"`
}

// readQuantity parses the optional {quantity} body; an empty body means 1.
func (app *application) readQuantity(w http.ResponseWriter, r *http.Request) (int, error) {
	if r.ContentLength == 0 {
		return 1, nil
	}

	var payload quantityPayload
	if err := readJSON(w, r, &payload); err != nil {
		return 0, err
	}
	if err := Validate.Struct(payload); err != nil {
		return 0, inventory.ErrInvalidQuantity
	}
	return payload.Quantity, nil
}

func (app *application) addCartItemHandler(w http.ResponseWriter, r *http.Request) {
	productID, err := parseProductID(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	qty, err := app.readQuantity(w, r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	view, err := app.coordinator.AddToCart(r.Context(), chi.URLParam(r, "cartID"), productID, qty)
	if err != nil {
		app.coordinatorError(w, r, err)
		return
	}

	if err := app.cartResponse(w, http.StatusOK, view); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) updateCartItemHandler(w http.ResponseWriter, r *http.Request) {
	productID, err := parseProductID(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload quantityPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	view, err := app.coordinator.UpdateQuantity(r.Context(), chi.URLParam(r, "cartID"), productID, payload.Quantity)
	if err != nil {
		app.coordinatorError(w, r, err)
		return
	}

	if err := app.cartResponse(w, http.StatusOK, view); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) removeCartItemHandler(w http.ResponseWriter, r *http.Request) {
	productID, err := parseProductID(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	view, err := app.coordinator.RemoveFromCart(r.Context(), chi.URLParam(r, "cartID"), productID)
	if err != nil {
		app.coordinatorError(w, r, err)
		return
	}

	if err := app.cartResponse(w, http.StatusOK, view); err != nil {
		app.internalServerError(w, r, err)
	}
}

type replaceCartPayload struct {
	Products []struct {
		Product  int64 `json:"product" validate:"required,gt=0"`
		Quantity int   `json:"quantity" validate:"required,gte=1"`
	} `json:"products" validate:"required,dive"`
}

func (app *application) replaceCartHandler(w http.ResponseWriter, r *http.Request) {
	var payload replaceCartPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	lines := make([]cart.Line, 0, len(payload.Products))
	for _, p := range payload.Products {
		lines = append(lines, cart.Line{ProductID: p.Product, Quantity: p.Quantity})
	}

	view, err := app.coordinator.ReplaceLines(r.Context(), chi.URLParam(r, "cartID"), lines)
	if err != nil {
		app.coordinatorError(w, r, err)
		return
	}

	if err := app.cartResponse(w, http.StatusOK, view); err != nil {
		app.internalServerError(w, r, err)
	}
}

// clearCartHandler empties the cart; with ?purge=true the record itself is
// removed.
func (app *application) clearCartHandler(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "cartID")

	if r.URL.Query().Get("purge") == "true" {
		if err := app.coordinator.DeleteCart(r.Context(), cartID); err != nil {
			app.coordinatorError(w, r, err)
			return
		}
		if err := app.jsonResponse(w, http.StatusOK, map[string]string{"message": "cart deleted"}); err != nil {
			app.internalServerError(w, r, err)
		}
		return
	}

	view, err := app.coordinator.ClearCart(r.Context(), cartID)
	if err != nil {
		app.coordinatorError(w, r, err)
		return
	}

	if err := app.cartResponse(w, http.StatusOK, view); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) checkoutHandler(w http.ResponseWriter, r *http.Request) {
	view, err := app.coordinator.Checkout(r.Context(), chi.URLParam(r, "cartID"))
	if err != nil {
		app.coordinatorError(w, r, err)
		return
	}

	if err := app.cartResponse(w, http.StatusOK, view); err != nil {
		app.internalServerError(w, r, err)
	}
}
