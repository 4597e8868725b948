// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package openfga

import "github.com/openfga/go-sdk/client"

type Tuple struct {
	User     string
	Relation string
	Object   string
}

func (t Tuple) Values() (string, string, string) {
	return t.User, t.Relation, t.Object
}

func (t Tuple) writeKey() client.ClientTupleKey {
	return client.ClientTupleKey{User: t.User, Relation: t.Relation, Object: t.Object}
}

func (t Tuple) deleteKey() client.ClientTupleKeyWithoutCondition {
	return client.ClientTupleKeyWithoutCondition{User: t.User, Relation: t.Relation, Object: t.Object}
}

func NewTuple(user, relation, object string) *Tuple {
	t := new(Tuple)

	t.User = user
	t.Relation = relation
	t.Object = object

	return t
}
