// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authorization

import (
	"context"

	fga "github.com/openfga/go-sdk"
	"github.com/openfga/go-sdk/client"

	"github.com/canonical/membership-service/internal/openfga"
	"github.com/canonical/membership-service/internal/types"
)

// AuthorizerInterface mirrors organization membership into the relationship store
type AuthorizerInterface interface {
	ValidateModel(context.Context) error

	// SyncMember makes the stored relations of the user on the organization
	// match exactly the given roles and owner flag.
	SyncMember(ctx context.Context, orgID, userID string, roles []types.Role, isOwner bool) error
	RemoveMember(ctx context.Context, orgID, userID string) error
	DeleteOrganization(ctx context.Context, orgID string) error
}

type AuthzClientInterface interface {
	ReadModel(context.Context) (*fga.AuthorizationModel, error)
	CompareModel(context.Context, fga.AuthorizationModel) (bool, error)
	ReadTuples(ctx context.Context, user, relation, object, continuationToken string) (*client.ClientReadResponse, error)
	WriteTuples(ctx context.Context, tuples []openfga.Tuple) error
	DeleteTuples(ctx context.Context, tuples []openfga.Tuple) error
}
