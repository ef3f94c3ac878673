// Librarium - Library Circulation and Discovery Backend
// Copyright 2026 Librarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/librarium-app/librarium

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/librarium-app/librarium/internal/middleware"
)

// Router assembles the HTTP routes around a Handler.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter builds a router over the given handler and middleware
// configuration.
func NewRouter(handler *Handler, mwConfig *ChiMiddlewareConfig) *Router {
	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(mwConfig),
	}
}

// chiMW adapts http.HandlerFunc middleware to Chi's signature.
func chiMW(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(chiMW(middleware.RequestID))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())

	// Health gets its own permissive limit so monitoring probes are
	// never rejected alongside a busy client.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Get("/", router.handler.Health)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(chiMW(middleware.PrometheusMetrics))
		r.Use(chiMW(middleware.Compression))

		// Catalog
		r.Route("/books", func(r chi.Router) {
			r.Get("/", router.handler.ListBooks)
			r.Post("/", router.handler.CreateBook)
			r.Get("/{id}", router.handler.GetBook)
			r.Put("/{id}", router.handler.UpdateBook)
			r.Delete("/{id}", router.handler.DeleteBook)
			r.With(router.chiMiddleware.RateLimitOracle()).
				Get("/{id}/summary", router.handler.BookSummary)
		})

		// Borrowers
		r.Route("/users", func(r chi.Router) {
			r.Get("/", router.handler.ListUsers)
			r.Post("/", router.handler.CreateUser)
			r.Get("/{id}", router.handler.GetUser)
			r.Put("/{id}", router.handler.UpdateUser)
			r.Delete("/{id}", router.handler.DeleteUser)
		})

		// Circulation
		r.Post("/borrow", router.handler.Borrow)
		r.Post("/return", router.handler.Return)
		r.Get("/borrow-records", router.handler.ListBorrowRecords)

		// Discovery
		r.Post("/search", router.handler.Search)
		r.With(router.chiMiddleware.RateLimitOracle()).
			Post("/recommendations", router.handler.Recommendations)

		// Dashboard
		r.Get("/stats", router.handler.Stats)
	})

	// Observability
	r.Handle("/metrics", promhttp.Handler())

	return r
}
