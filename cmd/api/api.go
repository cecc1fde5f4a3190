package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tienda/internal/inventory"
	"tienda/internal/ratelimiter"
	"tienda/internal/realtime"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

type application struct {
	config      config
	coordinator *inventory.Coordinator
	hub         *realtime.Hub
	logger      *zap.SugaredLogger
	rateLimiter ratelimiter.Limiter
}

type config struct {
	addr           string
	env            string
	catalogBackend string // "postgres" or "file"
	cartBackend    string // "firestore" or "file"
	dataDir        string
	db             dbConfig
	firestore      firestoreConfig
	rateLimiter    ratelimiter.Config
}

type dbConfig struct {
	addr         string
	maxOpenConns int
	maxIdleTime  string
}

type firestoreConfig struct {
	projectID       string
	credentialsFile string
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/v1", func(r chi.Router) {
		r.With(middleware.Timeout(60*time.Second)).Get("/health", app.healthCheckHandler)

		// No timeout middleware here: a websocket lives longer than a minute.
		r.Get("/realtime", app.realtimeHandler)

		r.Route("/products", func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))
			r.Get("/", app.listProductsHandler)
			r.Get("/{productID}", app.getProductHandler)

			r.Group(func(r chi.Router) {
				r.Use(app.RateLimiterMiddleware)
				r.Post("/", app.createProductHandler)
				r.Put("/{productID}", app.updateProductHandler)
				r.Delete("/{productID}", app.deleteProductHandler)
			})
		})

		r.Route("/carts", func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))
			r.Use(app.RateLimiterMiddleware)
			r.Post("/", app.createCartHandler)
			r.Get("/{cartID}", app.getCartHandler)
			r.Put("/{cartID}", app.replaceCartHandler)
			r.Delete("/{cartID}", app.clearCartHandler)
			r.Post("/{cartID}/checkout", app.checkoutHandler)
			r.Post("/{cartID}/items/{productID}", app.addCartItemHandler)
			r.Put("/{cartID}/items/{productID}", app.updateCartItemHandler)
			r.Delete("/{cartID}/items/{productID}", app.removeCartItemHandler)
		})
	})

	return r
}

func (app *application) run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		app.hub.Close()
		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", app.config.addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}
