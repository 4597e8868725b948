// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package web

import (
	"net/http"
	"slices"

	"github.com/go-chi/cors"
)

// middlewareCORS allows the invite page to call the join endpoint from the
// configured origins, credentials are only sent to explicit origins.
func middlewareCORS(origins []string) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-Requested-With",
		},
		AllowCredentials: !slices.Contains(origins, "*"),
		MaxAge:           300,
	}

	return cors.Handler(opts)
}
