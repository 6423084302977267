// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withRequestID)
	router.Use(withLogging)

	if h.metrics != nil {
		router.Method("GET", "/metrics", h.metrics)
	}

	router.Group(func(r chi.Router) {
		r.Use(withGZip)
		r.Get("/api/version/", h.getServerVersion)
		r.Get("/api/status/", h.getStatus)
		r.Get("/api/healthz", h.healthz)
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
