// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package db

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/canonical/membership-service/internal/logging"
)

// TransactionMiddleware runs mutating requests inside one transaction,
// committed only when the handler answers with a status below 400.
func TransactionMiddleware(db DBClientInterface, logger logging.LoggerInterface) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			err := db.WithTx(r.Context(), func(txCtx context.Context) error {
				ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

				next.ServeHTTP(ww, r.WithContext(txCtx))

				if ww.Status() >= http.StatusBadRequest {
					return fmt.Errorf("request failed with status %d", ww.Status())
				}
				return nil
			})
			if err != nil {
				logger.Debugf("transaction not committed: %v", err)
			}
		})
	}
}
