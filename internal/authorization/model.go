// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authorization

import (
	"encoding/json"
	"fmt"

	fga "github.com/openfga/go-sdk"
	"github.com/openfga/language/pkg/go/transformer"
)

var v0AuthzModel = `model
  schema 1.1

type user

type organization
  relations
    define owner: [user]
    define role_owner: [user]
    define role_admin: [user]
    define role_manager: [user]
    define role_appraiser: [user]
    define member: [user] or owner
    define can_view: member
    define can_edit: owner or role_owner or role_admin
    define can_delete: owner
`

type AuthorizationModelProvider struct {
	apiVersion string
}

// GetModel parses the DSL of the configured version, it panics on an
// unknown version or an unparsable model.
func (a *AuthorizationModelProvider) GetModel() *fga.AuthorizationModel {
	var dsl string

	switch a.apiVersion {
	case "v0":
		dsl = v0AuthzModel
	default:
		panic(fmt.Sprintf("unknown authorization model version %q", a.apiVersion))
	}

	raw, err := transformer.TransformDSLToJSON(dsl)
	if err != nil {
		panic(fmt.Sprintf("invalid authorization model: %v", err))
	}

	model := new(fga.AuthorizationModel)
	if err := json.Unmarshal([]byte(raw), model); err != nil {
		panic(fmt.Sprintf("invalid authorization model json: %v", err))
	}

	return model
}

func NewAuthorizationModelProvider(apiVersion string) *AuthorizationModelProvider {
	a := new(AuthorizationModelProvider)
	a.apiVersion = apiVersion

	return a
}
