package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wadjakorntonsri/go-card-collection/pkg/core/domain"
)

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t, domain.PerDeckPolicy)
	ctx := context.Background()

	u, err := f.users.Register(ctx, "ash", "ash@pallet.town", "pikachu")
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.NotEqual(t, "pikachu", u.PasswordHash)

	_, err = f.users.Register(ctx, "ash", "other@pallet.town", "pikachu")
	requireKind(t, err, domain.KindConflict)
	_, err = f.users.Register(ctx, "ash2", "ash@pallet.town", "pikachu")
	requireKind(t, err, domain.KindConflict)
	_, err = f.users.Register(ctx, "a", "a@pallet.town", "pikachu")
	requireKind(t, err, domain.KindValidation)
	_, err = f.users.Register(ctx, "misty", "misty@cerulean", "short")
	requireKind(t, err, domain.KindValidation)

	logged, err := f.users.Login(ctx, "ash", "pikachu")
	require.NoError(t, err)
	assert.Equal(t, u.ID, logged.ID)
	require.NotNil(t, logged.LastLogin)

	logged, err = f.users.Login(ctx, "ash@pallet.town", "pikachu")
	require.NoError(t, err)
	assert.Equal(t, u.ID, logged.ID)

	_, err = f.users.Login(ctx, "ash", "raichu")
	assert.True(t, errors.Is(err, domain.ErrInvalidCredentials))
	_, err = f.users.Login(ctx, "gary", "eevee1")
	assert.True(t, errors.Is(err, domain.ErrInvalidCredentials))
	_, err = f.users.Login(ctx, "", "")
	requireKind(t, err, domain.KindValidation)
}

func TestFindOrCreateByEmail(t *testing.T) {
	f := newFixture(t, domain.PerDeckPolicy)
	ctx := context.Background()

	_, err := f.users.Register(ctx, "brock", "brock@pewter.city", "onix123")
	require.NoError(t, err)

	u, err := f.users.FindOrCreateByEmail(ctx, "brock@pewter.city")
	require.NoError(t, err)
	assert.Equal(t, "brock", u.Username)

	u, err = f.users.FindOrCreateByEmail(ctx, "brock@gmail.com")
	require.NoError(t, err)
	assert.NotEqual(t, "brock", u.Username)
	assert.Contains(t, u.Username, "brock-")

	again, err := f.users.FindOrCreateByEmail(ctx, "brock@gmail.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.ID)

	_, err = f.users.FindOrCreateByEmail(ctx, "not-an-email")
	requireKind(t, err, domain.KindValidation)
}

func TestProfile(t *testing.T) {
	f := newFixture(t, domain.PerDeckPolicy)
	ctx := context.Background()
	alice := f.user(t, "alice")
	f.own(t, alice, "base-58", 4)
	f.deck(t, alice, "Electric")

	p, err := f.users.Profile(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "alice", p.User.Username)
	assert.Len(t, p.Entries, 1)
	assert.Len(t, p.Decks, 1)

	_, err = f.users.Profile(ctx, 4242)
	requireKind(t, err, domain.KindNotFound)
}

func TestDeleteUser_Cascade(t *testing.T) {
	f := newFixture(t, domain.PerDeckPolicy)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	f.own(t, alice, "base-4", 1, 1)
	f.own(t, bob, "base-4", 1)
	deckA := f.deck(t, alice, "Deck A")
	f.deck(t, alice, "Deck B")
	bobDeck := f.deck(t, bob, "Bob")
	_, err := f.alloc.Allocate(ctx, alice, deckA, "base-4", 2)
	require.NoError(t, err)
	_, err = f.alloc.Allocate(ctx, bob, bobDeck, "base-4", 1)
	require.NoError(t, err)

	res, err := f.users.DeleteUser(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, domain.CascadeResult{Entries: 2, Decks: 2, Allocations: 1}, *res)

	_, err = f.users.Profile(ctx, alice)
	requireKind(t, err, domain.KindNotFound)

	allocated, err := f.store.AllocatedQuantity(ctx, bob, "base-4")
	require.NoError(t, err)
	assert.Equal(t, 1, allocated)

	_, err = f.users.DeleteUser(ctx, alice)
	requireKind(t, err, domain.KindNotFound)
}
