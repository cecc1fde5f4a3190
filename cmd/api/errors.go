package main

import (
	"errors"
	"net/http"

	"tienda/internal/domain/catalog"
	"tienda/internal/inventory"
)

func (app *application) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Errorw("internal error", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusInternalServerError, "the server encountered a problem")
}

func (app *application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("bad request", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusBadRequest, err.Error())
}

func (app *application) notFoundResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("not found", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusNotFound, err.Error())
}

func (app *application) conflictResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("conflict", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusConflict, err.Error())
}

func (app *application) serviceUnavailableResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Errorw("storage unavailable", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusServiceUnavailable, inventory.ErrRepositoryUnavailable.Error())
}

func (app *application) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request, retryAfter string) {
	app.logger.Warnw("rate limit exceeded", "path", r.URL.Path)

	w.Header().Set("Retry-After", retryAfter)
	writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded, retry after: "+retryAfter)
}

// coordinatorError maps the taxonomy onto status codes with stable messages.
func (app *application) coordinatorError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, inventory.ErrProductNotFound),
		errors.Is(err, inventory.ErrCartNotFound):
		app.notFoundResponse(w, r, err)
	case errors.Is(err, inventory.ErrOutOfStock),
		errors.Is(err, inventory.ErrStockExceeded):
		app.conflictResponse(w, r, err)
	case errors.Is(err, inventory.ErrInvalidQuantity),
		errors.Is(err, inventory.ErrInvalidReference):
		app.badRequestResponse(w, r, err)
	case errors.Is(err, inventory.ErrRepositoryUnavailable):
		app.serviceUnavailableResponse(w, r, err)
	case errors.Is(err, catalog.ErrDuplicateCode):
		app.conflictResponse(w, r, err)
	default:
		app.internalServerError(w, r, err)
	}
}
