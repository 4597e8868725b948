// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authorization

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/canonical/membership-service/internal/logging"
	"github.com/canonical/membership-service/internal/monitoring"
	"github.com/canonical/membership-service/internal/openfga"
	"github.com/canonical/membership-service/internal/tracing"
	"github.com/canonical/membership-service/internal/types"
)

var ErrInvalidAuthModel = fmt.Errorf("invalid authorization model schema")

var _ AuthorizerInterface = (*Authorizer)(nil)

type Authorizer struct {
	client AuthzClientInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (a *Authorizer) ValidateModel(ctx context.Context) error {
	ctx, span := a.tracer.Start(ctx, "authorization.Authorizer.ValidateModel")
	defer span.End()

	model := *NewAuthorizationModelProvider("v0").GetModel()

	eq, err := a.client.CompareModel(ctx, model)
	if err != nil {
		return err
	}
	if !eq {
		return ErrInvalidAuthModel
	}
	return nil
}

func (a *Authorizer) SyncMember(ctx context.Context, orgID, userID string, roles []types.Role, isOwner bool) error {
	ctx, span := a.tracer.Start(ctx, "authorization.Authorizer.SyncMember")
	defer span.End()

	user, object := UserTuple(userID), OrganizationTuple(orgID)

	desired := map[string]bool{MEMBER_RELATION: true}
	if isOwner {
		desired[OWNER_RELATION] = true
	}
	for _, r := range roles {
		desired[RoleRelation(r)] = true
	}

	current, err := a.readAll(ctx, user, object)
	if err != nil {
		return err
	}

	var stale []openfga.Tuple
	for _, t := range current {
		if desired[t.Relation] {
			delete(desired, t.Relation)
			continue
		}
		stale = append(stale, t)
	}

	missing := make([]openfga.Tuple, 0, len(desired))
	for _, relation := range slices.Sorted(maps.Keys(desired)) {
		missing = append(missing, *openfga.NewTuple(user, relation, object))
	}

	if err := a.client.DeleteTuples(ctx, stale); err != nil {
		return err
	}

	return a.client.WriteTuples(ctx, missing)
}

func (a *Authorizer) RemoveMember(ctx context.Context, orgID, userID string) error {
	ctx, span := a.tracer.Start(ctx, "authorization.Authorizer.RemoveMember")
	defer span.End()

	current, err := a.readAll(ctx, UserTuple(userID), OrganizationTuple(orgID))
	if err != nil {
		return err
	}

	return a.client.DeleteTuples(ctx, current)
}

func (a *Authorizer) DeleteOrganization(ctx context.Context, orgID string) error {
	ctx, span := a.tracer.Start(ctx, "authorization.Authorizer.DeleteOrganization")
	defer span.End()

	cToken := ""
	for {
		r, err := a.client.ReadTuples(ctx, "", "", OrganizationTuple(orgID), cToken)
		if err != nil {
			a.logger.Errorf("error when retrieving tuples: %s", err)
			return err
		}
		if len(r.Tuples) == 0 {
			break
		}
		ts := make([]openfga.Tuple, len(r.Tuples))
		for i, t := range r.Tuples {
			ts[i] = *openfga.NewTuple(t.Key.User, t.Key.Relation, t.Key.Object)
		}
		if err := a.client.DeleteTuples(ctx, ts); err != nil {
			a.logger.Errorf("error when deleting tuples %v: %s", ts, err)
			return err
		}
		if r.ContinuationToken == "" {
			break
		}
		cToken = r.ContinuationToken
	}
	return nil
}

func (a *Authorizer) readAll(ctx context.Context, user, object string) ([]openfga.Tuple, error) {
	var tuples []openfga.Tuple

	cToken := ""
	for {
		r, err := a.client.ReadTuples(ctx, user, "", object, cToken)
		if err != nil {
			a.logger.Errorf("error when retrieving tuples: %s", err)
			return nil, err
		}
		for _, t := range r.Tuples {
			tuples = append(tuples, *openfga.NewTuple(t.Key.User, t.Key.Relation, t.Key.Object))
		}
		if r.ContinuationToken == "" {
			break
		}
		cToken = r.ContinuationToken
	}

	return tuples, nil
}

func NewAuthorizer(client AuthzClientInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Authorizer {
	authorizer := new(Authorizer)
	authorizer.client = client
	authorizer.tracer = tracer
	authorizer.monitor = monitor
	authorizer.logger = logger

	return authorizer
}
