package impl

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"storefront/config"
	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/repository"
	"storefront/internal/domain/service"
	"storefront/internal/errors"
	"storefront/internal/infra/auth"
	"storefront/internal/infra/metrics"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test_secret_key_very_long_for_testing"

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig() *config.Config {
	return &config.Config{
		Auth: &config.AuthConfig{
			SecretKey:       testSecret,
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 30 * 24 * time.Hour,
			BcryptCost:      bcrypt.MinCost,
		},
		PasswordStrength: config.DefaultPasswordStrength(),
	}
}

// memStore is an in-memory credential store. Every method copies entities in
// and out so callers can never mutate stored state by accident.
type memStore struct {
	mu     sync.Mutex
	users  map[uuid.UUID]*entity.User
	tokens map[string]*entity.RefreshToken

	// Failure injection.
	findUserErr    error
	createTokenErr error
	revokeErr      error
	// beforeRevoke runs inside RevokeRefreshToken before the compare-and-set.
	beforeRevoke func(hash string)
}

func newMemStore() *memStore {
	return &memStore{
		users:  make(map[uuid.UUID]*entity.User),
		tokens: make(map[string]*entity.RefreshToken),
	}
}

type memSnapshot struct {
	users  map[uuid.UUID]*entity.User
	tokens map[string]*entity.RefreshToken
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := memSnapshot{
		users:  make(map[uuid.UUID]*entity.User, len(s.users)),
		tokens: make(map[string]*entity.RefreshToken, len(s.tokens)),
	}
	for k, v := range s.users {
		u := *v
		snap.users[k] = &u
	}
	for k, v := range s.tokens {
		snap.tokens[k] = copyToken(v)
	}

	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = snap.users
	s.tokens = snap.tokens
}

func (s *memStore) tokenCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.tokens)
}

func (s *memStore) token(hash string) *entity.RefreshToken {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.tokens[hash]; ok {
		return copyToken(t)
	}

	return nil
}

func (s *memStore) userCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.users)
}

func (s *memStore) deleteUser(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.users, id)
}

func (s *memStore) setTokenExpiry(hash string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[hash].ExpiresAt = at
}

func copyToken(t *entity.RefreshToken) *entity.RefreshToken {
	c := *t
	if t.RevokedAt != nil {
		at := *t.RevokedAt
		c.RevokedAt = &at
	}
	if t.ReplacedBy != nil {
		id := *t.ReplacedBy
		c.ReplacedBy = &id
	}

	return &c
}

type memUserRepo struct{ s *memStore }

func (r *memUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.findUserErr != nil {
		return nil, r.s.findUserErr
	}
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	c := *u

	return &c, nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.findUserErr != nil {
		return nil, r.s.findUserErr
	}
	for _, u := range r.s.users {
		if u.Email == email {
			c := *u

			return &c, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

// Create enforces the unique email index.
func (r *memUserRepo) Create(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == user.Email {
			return domainerrors.ErrUserAlreadyExists.WrapMessage("email already exists")
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.Must(uuid.NewV7())
	}
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now
	c := *user
	r.s.users[user.ID] = &c

	return nil
}

func (r *memUserRepo) List(_ context.Context, limit, offset int) ([]*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	all := make([]*entity.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		c := *u
		all = append(all, &c)
	}
	// UUIDv7 ids sort by creation.
	for i := 1; i < len(all); i++ {
		for j := i; j > 0 && all[j].ID.String() < all[j-1].ID.String(); j-- {
			all[j], all[j-1] = all[j-1], all[j]
		}
	}
	if offset >= len(all) {
		return []*entity.User{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}

	return all, nil
}

type memRefreshRepo struct{ s *memStore }

func (r *memRefreshRepo) CreateRefreshToken(_ context.Context, token *entity.RefreshToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.createTokenErr != nil {
		return r.s.createTokenErr
	}
	if _, ok := r.s.tokens[token.TokenHash]; ok {
		return domainerrors.ErrRefreshTokenInvalid.WrapMessage("refresh token already exists")
	}
	if token.ID == uuid.Nil {
		token.ID = uuid.Must(uuid.NewV7())
	}
	token.CreatedAt = time.Now()
	r.s.tokens[token.TokenHash] = copyToken(token)

	return nil
}

// FindRefreshTokenByHashForUpdate relies on memTxManager serialising transactions.
func (r *memRefreshRepo) FindRefreshTokenByHashForUpdate(_ context.Context, hash string) (*entity.RefreshToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.tokens[hash]
	if !ok {
		return nil, repository.ErrRefreshTokenNotFound
	}

	return copyToken(t), nil
}

func (r *memRefreshRepo) RevokeRefreshToken(_ context.Context, hash string, replacedBy *uuid.UUID, at time.Time) (bool, error) {
	if r.s.beforeRevoke != nil {
		r.s.beforeRevoke(hash)
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.revokeErr != nil {
		return false, r.s.revokeErr
	}
	t, ok := r.s.tokens[hash]
	if !ok || t.Revoked {
		return false, nil
	}
	t.Revoked = true
	t.RevokedAt = &at
	if replacedBy != nil {
		id := *replacedBy
		t.ReplacedBy = &id
	}

	return true, nil
}

func (r *memRefreshRepo) RevokeRefreshTokensByUserID(_ context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.revokeErr != nil {
		return 0, r.s.revokeErr
	}
	var n int64
	for _, t := range r.s.tokens {
		if t.UserID == userID && !t.Revoked {
			t.Revoked = true
			t.RevokedAt = &at
			n++
		}
	}

	return n, nil
}

func (r *memRefreshRepo) FindActiveRefreshTokensByUserID(_ context.Context, userID uuid.UUID, now time.Time) ([]*entity.RefreshToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*entity.RefreshToken
	for _, t := range r.s.tokens {
		if t.UserID == userID && t.UsableAt(now) {
			out = append(out, copyToken(t))
		}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].CreatedAt.After(out[j-1].CreatedAt); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}

	return out, nil
}

type memRepoFactory struct{ s *memStore }

func (f *memRepoFactory) UserRepo() repository.UserRepository {
	return &memUserRepo{s: f.s}
}

func (f *memRepoFactory) RefreshTokenRepo() repository.RefreshTokenRepository {
	return &memRefreshRepo{s: f.s}
}

// memTxManager serialises transactions, which stands in for the row lock, and
// restores the pre-transaction snapshot on error or panic.
type memTxManager struct {
	mu       sync.Mutex
	s        *memStore
	beginErr error
}

func (tm *memTxManager) Execute(_ context.Context, fn func(txRepoFactory repository.RepositoryFactory) error) error {
	if tm.beginErr != nil {
		return tm.beginErr
	}

	tm.mu.Lock()
	defer tm.mu.Unlock()

	snap := tm.s.snapshot()
	defer func() {
		if r := recover(); r != nil {
			tm.s.restore(snap)
			panic(r)
		}
	}()

	if err := fn(&memRepoFactory{s: tm.s}); err != nil {
		tm.s.restore(snap)

		return err
	}

	return nil
}

type testEnv struct {
	srv     *userService
	store   *memStore
	tx      *memTxManager
	tokens  service.TokenService
	metrics *metrics.Metrics
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := newTestConfig()
	tokens, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	store := newMemStore()
	tx := &memTxManager{s: store}
	m := metrics.New()

	srv := NewUserService(UserServiceParams{
		TxManager:        tx,
		UserRepo:         &memUserRepo{s: store},
		RefreshTokenRepo: &memRefreshRepo{s: store},
		Hasher:           auth.NewBcryptHasher(cfg),
		TokenService:     tokens,
		Metrics:          m,
		Logger:           newDiscardLogger(),
	}).(*userService)

	return &testEnv{srv: srv, store: store, tx: tx, tokens: tokens, metrics: m}
}

var errStoreDown = errors.New("store unavailable")
