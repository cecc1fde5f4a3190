package main

import "net/http"

func (app *application) realtimeHandler(w http.ResponseWriter, r *http.Request) {
	app.hub.ServeWS(w, r)
}
