package main

import "net/http"

var version = "1.0.0"

func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	data := map[string]string{
		"status":          "ok",
		"env":             app.config.env,
		"version":         version,
		"catalog_backend": app.config.catalogBackend,
		"cart_backend":    app.config.cartBackend,
	}

	if err := app.jsonResponse(w, http.StatusOK, data); err != nil {
		app.internalServerError(w, r, err)
	}
}
