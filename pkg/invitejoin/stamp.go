// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package invitejoin

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// StampParam carries the stamp through the sign in return URL
	StampParam = "stamp"

	stampIssuer   = "membership-service/invite"
	stampLifetime = time.Hour
)

// stampClaims bind a sign in started from the invite page to one invitation.
// The session returning with the stamp must have been established after it
// was issued.
type stampClaims struct {
	OrganizationID string `json:"org"`
	jwt.RegisteredClaims
}

func (c *Coordinator) issueStamp(orgID, token string) (string, error) {
	now := c.now()

	claims := stampClaims{
		OrganizationID: orgID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    stampIssuer,
			Subject:   tokenDigest(token),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(stampLifetime)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.signingKey)
}

// stampIssuedAt verifies the stamp was issued for this invitation and returns
// when it was issued.
func (c *Coordinator) stampIssuedAt(stamp, orgID, token string) (time.Time, error) {
	var claims stampClaims

	_, err := jwt.ParseWithClaims(
		stamp,
		&claims,
		func(*jwt.Token) (any, error) { return c.signingKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(stampIssuer),
		jwt.WithSubject(tokenDigest(token)),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return time.Time{}, err
	}

	if claims.OrganizationID != orgID {
		return time.Time{}, fmt.Errorf("stamp issued for organization %s", claims.OrganizationID)
	}
	if claims.IssuedAt == nil {
		return time.Time{}, errors.New("stamp has no issue time")
	}

	return claims.IssuedAt.Time, nil
}

func tokenDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
