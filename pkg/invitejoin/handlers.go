// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package invitejoin

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/canonical/membership-service/internal/apperror"
	"github.com/canonical/membership-service/internal/identity"
	"github.com/canonical/membership-service/internal/logging"
	"github.com/canonical/membership-service/internal/types"
)

type JoinRequest struct {
	Token  string                 `json:"token" validate:"required"`
	Status types.InvitationStatus `json:"status" validate:"required,oneof=accepted declined"`
	// Stamp is the one handed out by the invite page, accepting needs it
	Stamp string `json:"stamp"`
}

type API struct {
	coordinator CoordinatorInterface
	validate    *validator.Validate
	logger      logging.LoggerInterface
}

func (a *API) RegisterEndpoints(r chi.Router) {
	r.Get("/invite/{id}", a.page)
	r.Post("/api/v0/organizations/{id}/join", a.join)
}

func (a *API) page(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	outcome, err := a.coordinator.Visit(
		r.Context(),
		chi.URLParam(r, "id"),
		q.Get("token"),
		q.Get(StampParam),
		q.Get(RedirectMarker) == "true",
		identity.VisitorFromContext(r.Context()),
	)
	if err != nil {
		a.writeError(w, err)
		return
	}

	if outcome.RedirectTo != "" {
		http.Redirect(w, r, outcome.RedirectTo, http.StatusSeeOther)
		return
	}

	a.writeJSON(w, http.StatusOK, outcome)
}

func (a *API) join(w http.ResponseWriter, r *http.Request) {
	var req JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, apperror.New(apperror.CodeInvalidData, "invalid request body"))
		return
	}

	if err := a.validate.Struct(req); err != nil {
		a.writeError(w, apperror.Wrap(apperror.CodeInvalidData, "token and a status of accepted or declined are required", err))
		return
	}

	result, err := a.coordinator.Join(r.Context(), chi.URLParam(r, "id"), req.Token, req.Stamp, req.Status, identity.VisitorFromContext(r.Context()))
	if err != nil {
		a.writeError(w, err)
		return
	}

	a.writeJSON(w, http.StatusOK, result)
}

func (a *API) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Errorf("failed to encode response: %v", err)
	}
}

// writeError never tells a link holder why the link stopped working.
func (a *API) writeError(w http.ResponseWriter, err error) {
	if apperror.IsInvalidLink(err) {
		err = apperror.InvalidLink()
	}

	if apperror.CodeOf(err) == apperror.CodeDatabaseFailure {
		a.logger.Errorf("invite request failed: %v", err)
	}

	if werr := apperror.WriteJSON(w, err); werr != nil {
		a.logger.Errorf("failed to encode error response: %v", werr)
	}
}

func NewAPI(coordinator CoordinatorInterface, logger logging.LoggerInterface) *API {
	return &API{
		coordinator: coordinator,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		logger:      logger,
	}
}
