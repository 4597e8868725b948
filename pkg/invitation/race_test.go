// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package invitation

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/canonical/membership-service/internal/apperror"
	"github.com/canonical/membership-service/internal/logging"
	"github.com/canonical/membership-service/internal/monitoring"
	"github.com/canonical/membership-service/internal/storage"
	"github.com/canonical/membership-service/internal/tracing"
	"github.com/canonical/membership-service/internal/types"
)

// memStore keeps invitations and members in memory and resolves invitations
// with the same compare-and-swap rule as the SQL store.
type memStore struct {
	mu          sync.Mutex
	invitations map[string]*types.Invitation
	tokens      map[string]string
	members     map[string]*types.Member
}

func newMemStore(inv *types.Invitation) *memStore {
	return &memStore{
		invitations: map[string]*types.Invitation{inv.ID: inv},
		tokens:      map[string]string{*inv.Token: inv.ID},
		members:     map[string]*types.Member{},
	}
}

func (m *memStore) GetOrganization(ctx context.Context, id string) (*types.Organization, error) {
	return &types.Organization{ID: id}, nil
}

func (m *memStore) UpsertMembership(ctx context.Context, orgID, userID string, roles []types.Role, active bool) (*types.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := orgID + "/" + userID
	existing, ok := m.members[key]
	if !ok {
		existing = &types.Member{OrganizationID: orgID, UserID: userID}
		m.members[key] = existing
	}
	existing.Roles = types.MergeRoles(existing.Roles, roles)
	existing.Active = active

	out := *existing
	return &out, nil
}

func (m *memStore) CreateInvitation(ctx context.Context, inv *types.Invitation) (*types.Invitation, error) {
	return nil, fmt.Errorf("not supported")
}

func (m *memStore) GetInvitation(ctx context.Context, orgID, id string) (*types.Invitation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inv, ok := m.invitations[id]
	if !ok || inv.OrganizationID != orgID {
		return nil, storage.ErrNotFound
	}
	out := *inv
	return &out, nil
}

func (m *memStore) FindInvitationByToken(ctx context.Context, orgID, token string) (*types.Invitation, error) {
	m.mu.Lock()
	id, ok := m.tokens[token]
	m.mu.Unlock()

	if !ok {
		return nil, storage.ErrNotFound
	}
	return m.GetInvitation(ctx, orgID, id)
}

func (m *memStore) ListInvitations(ctx context.Context, orgID string, status types.InvitationStatus) ([]*types.Invitation, error) {
	return nil, nil
}

func (m *memStore) UpdateInvitationRoles(ctx context.Context, orgID, id string, roles []types.Role) (*types.Invitation, error) {
	return nil, fmt.Errorf("not supported")
}

func (m *memStore) ResolveInvitation(ctx context.Context, orgID, id, token string, status types.InvitationStatus) (*types.Invitation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inv, ok := m.invitations[id]
	if !ok || inv.OrganizationID != orgID || inv.Token == nil || *inv.Token != token || inv.Status != types.InvitationPending {
		return nil, storage.ErrConflict
	}

	inv.Status = status
	inv.Token = nil

	out := *inv
	return &out, nil
}

func (m *memStore) DeletePendingInvitation(ctx context.Context, orgID, id string) error {
	return fmt.Errorf("not supported")
}

type inlineTx struct{}

func (inlineTx) WithTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func (inlineTx) AfterCommit(ctx context.Context, fn func()) {
	fn()
}

type allowAll struct{}

func (allowAll) Can(ctx context.Context, orgID, userID, area, action string) bool { return true }

type nopAuthz struct{}

func (nopAuthz) SyncMember(ctx context.Context, orgID, userID string, roles []types.Role, isOwner bool) error {
	return nil
}

type nopNotifier struct{}

func (nopNotifier) SendInviteCreated(ctx context.Context, inv *types.Invitation, org *types.Organization, link string) error {
	return nil
}

func (nopNotifier) SendInviteResolved(ctx context.Context, inv *types.Invitation, org *types.Organization, inviterEmail string) error {
	return nil
}

type nopDirectory struct{}

func (nopDirectory) UserEmail(ctx context.Context, userID string) (string, error) {
	return "owner@example.com", nil
}

func newMemService(store *memStore) *Service {
	logger := logging.NewNoopLogger()
	s := NewService(
		store, inlineTx{}, allowAll{}, nopAuthz{}, nopNotifier{}, nopDirectory{},
		"https://app.example.com", time.Hour,
		tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test", logger), logger,
	)
	s.now = func() time.Time { return testNow }
	return s
}

func TestService_ConcurrentAcceptHasOneWinner(t *testing.T) {
	const attempts = 16

	store := newMemStore(pendingInvitation())
	s := newMemService(store)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
		codes   = map[apperror.Code]int{}
	)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			_, err := s.Accept(context.Background(), "org-1", "token-1", fmt.Sprintf("user-%d", i))

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				winners++
				return
			}
			codes[apperror.CodeOf(err)]++
		}(i)
	}
	wg.Wait()

	if winners != 1 {
		t.Fatalf("expected exactly one winner, got %d", winners)
	}
	if codes[apperror.CodeAlreadyResolved] != attempts-1 {
		t.Errorf("expected %d ALREADY_RESOLVED, got %v", attempts-1, codes)
	}
	if len(store.members) != 1 {
		t.Errorf("expected one membership, got %d", len(store.members))
	}

	inv := store.invitations["inv-1"]
	if inv.Status != types.InvitationAccepted || inv.Token != nil {
		t.Errorf("expected accepted invitation without token, got %+v", inv)
	}
}

func TestService_DeclineThenAccept(t *testing.T) {
	store := newMemStore(pendingInvitation())
	s := newMemService(store)

	if _, err := s.Decline(context.Background(), "org-1", "token-1"); err != nil {
		t.Fatalf("unexpected decline error: %v", err)
	}

	_, err := s.Accept(context.Background(), "org-1", "token-1", "user-3")
	if apperror.CodeOf(err) != apperror.CodeAlreadyResolved {
		t.Fatalf("expected ALREADY_RESOLVED, got %v", err)
	}
	if len(store.members) != 0 {
		t.Errorf("expected no membership after decline")
	}
}

func TestService_AcceptMergesExistingMembership(t *testing.T) {
	store := newMemStore(pendingInvitation())
	store.members["org-1/user-3"] = &types.Member{
		OrganizationID: "org-1",
		UserID:         "user-3",
		Roles:          []types.Role{types.RoleManager},
		Active:         false,
	}
	s := newMemService(store)

	member, err := s.Accept(context.Background(), "org-1", "token-1", "user-3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !member.Active {
		t.Errorf("expected membership to be reactivated")
	}
	if len(member.Roles) != 2 {
		t.Errorf("expected merged roles, got %v", member.Roles)
	}
}

func TestService_ExpiredTokenIsTransitionedOnce(t *testing.T) {
	inv := pendingInvitation()
	inv.Expires = testNow.Add(-time.Second)

	store := newMemStore(inv)
	s := newMemService(store)

	_, err := s.Accept(context.Background(), "org-1", "token-1", "user-3")
	if apperror.CodeOf(err) != apperror.CodeExpired {
		t.Fatalf("expected EXPIRED, got %v", err)
	}

	if got := store.invitations["inv-1"]; got.Status != types.InvitationExpired || got.Token != nil {
		t.Errorf("expected expired invitation without token, got %+v", got)
	}

	_, err = s.Decline(context.Background(), "org-1", "token-1")
	if apperror.CodeOf(err) != apperror.CodeAlreadyResolved {
		t.Fatalf("expected ALREADY_RESOLVED on reuse, got %v", err)
	}
}
