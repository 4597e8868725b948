// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package organization

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/canonical/membership-service/internal/apperror"
	"github.com/canonical/membership-service/internal/identity"
	"github.com/canonical/membership-service/internal/logging"
	"github.com/canonical/membership-service/internal/permissions"
	"github.com/canonical/membership-service/internal/types"
)

type CreateOrganizationRequest struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

type TransferOwnershipRequest struct {
	UserID string `json:"user_id"`
}

type UpdateMemberRequest struct {
	Roles []types.Role `json:"roles"`
}

type MembersResponse struct {
	Members []*types.Member `json:"members"`
}

type PermissionsResponse struct {
	Permissions []permissions.Permission `json:"permissions"`
}

type API struct {
	service ServiceInterface
	logger  logging.LoggerInterface
}

func (a *API) RegisterEndpoints(r chi.Router) {
	r.Post("/api/v0/organizations", a.create)
	r.Get("/api/v0/organizations/{id}", a.get)
	r.Delete("/api/v0/organizations/{id}", a.delete)
	r.Post("/api/v0/organizations/{id}/transfer", a.transfer)
	r.Get("/api/v0/organizations/{id}/members", a.listMembers)
	r.Put("/api/v0/organizations/{id}/members/{userId}", a.updateMember)
	r.Delete("/api/v0/organizations/{id}/members/{userId}", a.removeMember)
	r.Get("/api/v0/organizations/{id}/permissions", a.myPermissions)
}

func (a *API) create(w http.ResponseWriter, r *http.Request) {
	var req CreateOrganizationRequest
	if !a.decode(w, r, &req) {
		return
	}

	org, err := a.service.Create(r.Context(), actor(r), req.Name, req.Avatar)
	if err != nil {
		a.writeError(w, err)
		return
	}

	a.writeJSON(w, http.StatusCreated, org)
}

func (a *API) get(w http.ResponseWriter, r *http.Request) {
	org, err := a.service.Get(r.Context(), actor(r), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, err)
		return
	}

	a.writeJSON(w, http.StatusOK, org)
}

func (a *API) delete(w http.ResponseWriter, r *http.Request) {
	if err := a.service.Delete(r.Context(), actor(r), chi.URLParam(r, "id")); err != nil {
		a.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *API) transfer(w http.ResponseWriter, r *http.Request) {
	var req TransferOwnershipRequest
	if !a.decode(w, r, &req) {
		return
	}

	if err := a.service.TransferOwnership(r.Context(), actor(r), chi.URLParam(r, "id"), req.UserID); err != nil {
		a.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *API) listMembers(w http.ResponseWriter, r *http.Request) {
	members, err := a.service.ListMembers(r.Context(), actor(r), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, err)
		return
	}

	a.writeJSON(w, http.StatusOK, MembersResponse{Members: members})
}

func (a *API) updateMember(w http.ResponseWriter, r *http.Request) {
	var req UpdateMemberRequest
	if !a.decode(w, r, &req) {
		return
	}

	member, err := a.service.UpdateMemberRoles(r.Context(), actor(r), chi.URLParam(r, "id"), chi.URLParam(r, "userId"), req.Roles)
	if err != nil {
		a.writeError(w, err)
		return
	}

	a.writeJSON(w, http.StatusOK, member)
}

func (a *API) removeMember(w http.ResponseWriter, r *http.Request) {
	if err := a.service.RemoveMember(r.Context(), actor(r), chi.URLParam(r, "id"), chi.URLParam(r, "userId")); err != nil {
		a.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *API) myPermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := a.service.MyPermissions(r.Context(), actor(r), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, err)
		return
	}

	a.writeJSON(w, http.StatusOK, PermissionsResponse{Permissions: perms})
}

func actor(r *http.Request) string {
	return identity.VisitorFromContext(r.Context()).UserID
}

func (a *API) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		a.logger.Debugf("invalid request body: %v", err)
		a.writeError(w, apperror.New(apperror.CodeInvalidData, "invalid request body"))
		return false
	}
	return true
}

func (a *API) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Errorf("failed to encode response: %v", err)
	}
}

func (a *API) writeError(w http.ResponseWriter, err error) {
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
