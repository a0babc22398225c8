package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wadjakorntonsri/go-card-collection/pkg/core/domain"
	"github.com/wadjakorntonsri/go-card-collection/pkg/ports"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	store    ports.Store
	locks    *ScopeLocks
	hashCost int
}

func NewUserService(store ports.Store, locks *ScopeLocks) *UserService {
	return &UserService{store: store, locks: locks, hashCost: bcrypt.DefaultCost}
}

func (s *UserService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	user, err := domain.NewUser(username, email, password)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, domain.Internal(err)
	}
	user.PasswordHash = string(hash)

	if err := s.create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) create(ctx context.Context, user *domain.User) error {
	err := s.store.WithinTx(ctx, func(tx ports.Repository) error {
		existing, err := tx.GetUserByUsername(ctx, user.Username)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.Conflict("username already exists")
		}
		existing, err = tx.GetUserByEmail(ctx, user.Email)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.Conflict("email already registered")
		}
		return tx.CreateUser(ctx, user)
	})
	return domain.Internal(err)
}

// Login accepts a username or an email address.
func (s *UserService) Login(ctx context.Context, login, password string) (*domain.User, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, domain.Validation("missing username or password")
	}

	var user *domain.User
	var err error
	if strings.Contains(login, "@") {
		if !domain.ValidEmail(login) {
			return nil, domain.Validation("invalid email format")
		}
		user, err = s.store.GetUserByEmail(ctx, login)
	} else {
		user, err = s.store.GetUserByUsername(ctx, login)
	}
	if err != nil {
		return nil, domain.Internal(err)
	}
	if user == nil {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	if err := s.store.TouchLogin(ctx, user.ID); err != nil {
		return nil, domain.Internal(err)
	}
	now := time.Now().UTC()
	user.LastLogin = &now
	return user, nil
}

var usernameStrip = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// FindOrCreateByEmail backs federated login. New accounts get a username
// derived from the address and an unusable random password.
func (s *UserService) FindOrCreateByEmail(ctx context.Context, email string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if !domain.ValidEmail(email) {
		return nil, domain.Validation("invalid email format")
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, domain.Internal(err)
	}
	if user != nil {
		if err := s.store.TouchLogin(ctx, user.ID); err != nil {
			return nil, domain.Internal(err)
		}
		return user, nil
	}

	base := usernameStrip.ReplaceAllString(strings.SplitN(email, "@", 2)[0], "")
	for len(base) < 3 {
		base += "_"
	}
	secret := uuid.NewString()
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), s.hashCost)
	if err != nil {
		return nil, domain.Internal(err)
	}

	for attempt := 0; attempt < 5; attempt++ {
		username := base
		if attempt > 0 {
			username = fmt.Sprintf("%s-%s", base, uuid.NewString()[:6])
		}
		user, err = domain.NewUser(username, email, secret)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)

		err = s.create(ctx, user)
		if err == nil {
			return user, nil
		}
		if domain.KindOf(err) != domain.KindConflict || domain.ReasonOf(err) != "username already exists" {
			return nil, err
		}
	}
	return nil, domain.Conflict("could not allocate a username for %s", email)
}

func (s *UserService) Profile(ctx context.Context, userID int64) (*domain.Profile, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, domain.Internal(err)
	}
	if user == nil {
		return nil, domain.NotFound("user not found")
	}

	entries, err := s.store.ListEntries(ctx, userID)
	if err != nil {
		return nil, domain.Internal(err)
	}
	decks, err := s.store.ListDecks(ctx, userID)
	if err != nil {
		return nil, domain.Internal(err)
	}

	return &domain.Profile{User: *user, Entries: entries, Decks: decks}, nil
}

// DeleteUser removes the account with all of its entries, decks and
// allocations.
func (s *UserService) DeleteUser(ctx context.Context, userID int64) (*domain.CascadeResult, error) {
	scope := func(q ports.Repository) ([]string, error) {
		cards, err := q.UserCardIDs(ctx, userID)
		if err != nil {
			return nil, err
		}
		keys := make([]string, len(cards))
		for i, c := range cards {
			keys[i] = scopeKey(userID, c)
		}
		return keys, nil
	}

	var result *domain.CascadeResult
	err := withScopedTx(ctx, s.store, s.locks, scope, func(tx ports.Repository) error {
		user, err := tx.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return domain.NotFound("user not found")
		}
		result, err = deleteUserCascade(ctx, tx, userID)
		return err
	})
	if err != nil {
		return nil, domain.Internal(err)
	}
	return result, nil
}
