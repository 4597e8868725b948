// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package invitation

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/canonical/membership-service/internal/apperror"
	"github.com/canonical/membership-service/internal/identity"
	"github.com/canonical/membership-service/internal/logging"
	"github.com/canonical/membership-service/internal/types"
)

type CreateInvitationRequest struct {
	types.Invitee
	Roles []types.Role `json:"roles"`
}

type UpdateInvitationRequest struct {
	Roles []types.Role `json:"roles"`
}

type InvitationResponse struct {
	Invitation *types.Invitation `json:"invitation"`
	Link       string            `json:"link,omitempty"`
}

type InvitationsResponse struct {
	Invitations []*types.Invitation `json:"invitations"`
}

type API struct {
	service ServiceInterface
	logger  logging.LoggerInterface
}

func (a *API) RegisterEndpoints(r chi.Router) {
	r.Post("/api/v0/organizations/{id}/invite", a.create)
	r.Put("/api/v0/organizations/{id}/invite/{inviteId}", a.updateRoles)
	r.Delete("/api/v0/organizations/{id}/invite/{inviteId}", a.cancel)
	r.Get("/api/v0/organizations/{id}/invitations", a.list)
}

func (a *API) create(w http.ResponseWriter, r *http.Request) {
	var req CreateInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.logger.Debugf("invalid invitation payload: %v", err)
		a.writeError(w, apperror.New(apperror.CodeInvalidData, "invalid request body"))
		return
	}

	visitor := identity.VisitorFromContext(r.Context())

	inv, link, err := a.service.Create(r.Context(), chi.URLParam(r, "id"), visitor.UserID, req.Invitee, req.Roles)
	if err != nil {
		a.writeError(w, err)
		return
	}

	a.writeJSON(w, http.StatusCreated, InvitationResponse{Invitation: inv, Link: link})
}

func (a *API) updateRoles(w http.ResponseWriter, r *http.Request) {
	var req UpdateInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.logger.Debugf("invalid invitation payload: %v", err)
		a.writeError(w, apperror.New(apperror.CodeInvalidData, "invalid request body"))
		return
	}

	visitor := identity.VisitorFromContext(r.Context())

	inv, err := a.service.UpdateRoles(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "inviteId"), visitor.UserID, req.Roles)
	if err != nil {
		a.writeError(w, err)
		return
	}

	a.writeJSON(w, http.StatusOK, InvitationResponse{Invitation: inv})
}

func (a *API) cancel(w http.ResponseWriter, r *http.Request) {
	visitor := identity.VisitorFromContext(r.Context())

	if err := a.service.Cancel(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "inviteId"), visitor.UserID); err != nil {
		a.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// list serves two audiences: anyone holding a token may look up that single
// invitation, administrators list every pending one.
func (a *API) list(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "id")
	q := r.URL.Query()

	if q.Has("token") {
		a.lookup(w, r, orgID, q.Get("token"), types.InvitationStatus(q.Get("status")))
		return
	}

	visitor := identity.VisitorFromContext(r.Context())

	invitations, err := a.service.ListPending(r.Context(), orgID, visitor.UserID)
	if err != nil {
		a.writeError(w, err)
		return
	}

	a.writeJSON(w, http.StatusOK, InvitationsResponse{Invitations: invitations})
}

func (a *API) lookup(w http.ResponseWriter, r *http.Request, orgID, token string, status types.InvitationStatus) {
	inv, err := a.service.Lookup(r.Context(), orgID, token)
	if err != nil {
		a.writeError(w, err)
		return
	}

	if inv == nil || (status != "" && status != inv.Status) {
		a.writeError(w, apperror.InvalidLink())
		return
	}

	a.writeJSON(w, http.StatusOK, InvitationResponse{Invitation: inv})
}

func (a *API) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Errorf("failed to encode response: %v", err)
	}
}

func (a *API) writeError(w http.ResponseWriter, err error) {
	if apperror.CodeOf(err) == apperror.CodeDatabaseFailure {
		a.logger.Errorf("request failed: %v", err)
	}

	if werr := apperror.WriteJSON(w, err); werr != nil {
		a.logger.Errorf("failed to encode error response: %v", werr)
	}
}

func NewAPI(service ServiceInterface, logger logging.LoggerInterface) *API {
	return &API{
		service: service,
		logger:  logger,
	}
}
