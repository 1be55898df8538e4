package application

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/adiwicaksono/blogpanel/internal/domain/model"
)

// fakeAdminStore is an in-memory AdminStore.
type fakeAdminStore struct {
	admins map[string]*model.Admin // keyed by id
}

func newFakeAdminStore() *fakeAdminStore {
	return &fakeAdminStore{admins: map[string]*model.Admin{}}
}

func (s *fakeAdminStore) GetByUsername(ctx context.Context, username string) (*model.Admin, error) {
	for _, a := range s.admins {
		if a.Username == username {
			copied := *a
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakeAdminStore) GetByID(ctx context.Context, id string) (*model.Admin, error) {
	if a, ok := s.admins[id]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, nil
}

func (s *fakeAdminStore) Create(ctx context.Context, admin model.Admin) error {
	if existing, _ := s.GetByUsername(ctx, admin.Username); existing != nil {
		return fmt.Errorf("username %q already taken", admin.Username)
	}
	s.admins[admin.ID] = &admin
	return nil
}

func (s *fakeAdminStore) Count(ctx context.Context) (int, error) {
	return len(s.admins), nil
}

func (s *fakeAdminStore) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	a, ok := s.admins[id]
	if !ok {
		return fmt.Errorf("admin %q not found", id)
	}
	a.PasswordHash = passwordHash
	return nil
}

func (s *fakeAdminStore) RecordLogin(ctx context.Context, id string) error {
	a, ok := s.admins[id]
	if !ok {
		return fmt.Errorf("admin %q not found", id)
	}
	a.LastLogin = time.Now().UTC()
	return nil
}

func seedAdmin(t *testing.T, store *fakeAdminStore, username, password string) *model.Admin {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	admin := &model.Admin{
		ID:           "admin-" + username,
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		Role:         "admin",
	}
	store.admins[admin.ID] = admin
	return admin
}

func newTestSessionService(store *fakeAdminStore) *SessionService {
	return NewSessionService(store, []byte("test-session-secret"), time.Hour, testLogger())
}

func TestSessionService_LoginSuccess(t *testing.T) {
	store := newFakeAdminStore()
	seedAdmin(t, store, "maya", "correct horse battery")
	svc := newTestSessionService(store)

	token, admin, err := svc.Login(context.Background(), "maya", "correct horse battery")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "maya", admin.Username)

	assert.False(t, store.admins[admin.ID].LastLogin.IsZero(), "successful login recorded")
}

func TestSessionService_LoginWrongPassword(t *testing.T) {
	store := newFakeAdminStore()
	seedAdmin(t, store, "maya", "correct horse battery")
	svc := newTestSessionService(store)

	_, _, err := svc.Login(context.Background(), "maya", "wrong")
	assert.ErrorIs(t, err, ErrInvalidLogin)
}

func TestSessionService_LoginUnknownUsername(t *testing.T) {
	svc := newTestSessionService(newFakeAdminStore())

	_, _, err := svc.Login(context.Background(), "nobody", "whatever")
	assert.ErrorIs(t, err, ErrInvalidLogin, "unknown username and wrong password are indistinguishable")
}

func TestSessionService_VerifyRoundTrip(t *testing.T) {
	store := newFakeAdminStore()
	seeded := seedAdmin(t, store, "maya", "correct horse battery")
	svc := newTestSessionService(store)

	token, _, err := svc.Login(context.Background(), "maya", "correct horse battery")
	require.NoError(t, err)

	admin, err := svc.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, admin.ID)
	assert.Equal(t, "maya", admin.Username)
}

func TestSessionService_VerifyExpiredToken(t *testing.T) {
	store := newFakeAdminStore()
	seedAdmin(t, store, "maya", "correct horse battery")
	svc := newTestSessionService(store)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := svc.Login(context.Background(), "maya", "correct horse battery")
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestSessionService_VerifyTamperedToken(t *testing.T) {
	store := newFakeAdminStore()
	seedAdmin(t, store, "maya", "correct horse battery")
	svc := newTestSessionService(store)

	token, _, err := svc.Login(context.Background(), "maya", "correct horse battery")
	require.NoError(t, err)

	_, err = svc.Verify(context.Background(), token+"x")
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestSessionService_VerifyWrongSecret(t *testing.T) {
	store := newFakeAdminStore()
	seedAdmin(t, store, "maya", "correct horse battery")

	issuer := NewSessionService(store, []byte("secret-a"), time.Hour, testLogger())
	verifier := NewSessionService(store, []byte("secret-b"), time.Hour, testLogger())

	token, _, err := issuer.Login(context.Background(), "maya", "correct horse battery")
	require.NoError(t, err)

	_, err = verifier.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestSessionService_VerifyDeletedAccount(t *testing.T) {
	store := newFakeAdminStore()
	admin := seedAdmin(t, store, "maya", "correct horse battery")
	svc := newTestSessionService(store)

	token, _, err := svc.Login(context.Background(), "maya", "correct horse battery")
	require.NoError(t, err)

	delete(store.admins, admin.ID)

	_, err = svc.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestSessionService_ChangePassword(t *testing.T) {
	store := newFakeAdminStore()
	admin := seedAdmin(t, store, "maya", "old password here")
	svc := newTestSessionService(store)
	ctx := context.Background()

	require.NoError(t, svc.ChangePassword(ctx, admin.ID, "old password here", "new password here"))

	_, _, err := svc.Login(ctx, "maya", "old password here")
	assert.ErrorIs(t, err, ErrInvalidLogin)

	_, _, err = svc.Login(ctx, "maya", "new password here")
	assert.NoError(t, err)
}

func TestSessionService_ChangePasswordWrongCurrent(t *testing.T) {
	store := newFakeAdminStore()
	admin := seedAdmin(t, store, "maya", "old password here")
	svc := newTestSessionService(store)

	err := svc.ChangePassword(context.Background(), admin.ID, "not the password", "new password here")
	assert.ErrorIs(t, err, ErrInvalidLogin)
}

func TestSessionService_BootstrapCreatesInitialAdmin(t *testing.T) {
	store := newFakeAdminStore()
	svc := newTestSessionService(store)
	ctx := context.Background()

	require.NoError(t, svc.Bootstrap(ctx, "admin", "admin@example.com", "bootstrap password"))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, _, err = svc.Login(ctx, "admin", "bootstrap password")
	assert.NoError(t, err)
}

func TestSessionService_BootstrapNoOpWhenPopulated(t *testing.T) {
	store := newFakeAdminStore()
	seedAdmin(t, store, "maya", "correct horse battery")
	svc := newTestSessionService(store)
	ctx := context.Background()

	require.NoError(t, svc.Bootstrap(ctx, "admin", "admin@example.com", "bootstrap password"))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "bootstrap never adds a second account")
}
