package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/identity-hub/identity-service/internal/core/domain"
)

// stubUserRepo is an in-memory identity store that enforces uniqueness of
// normalized username and normalized email the way the Mongo indexes do.
type stubUserRepo struct {
	mu     sync.Mutex
	users  map[string]*domain.User
	nextID int

	addToRoleErr error
	deleteErr    error
	updateHook   func(u *domain.User) error
	deleted      []string
	hashUpdates  int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.Roles = append([]domain.Role(nil), u.Roles...)
	return &clone
}

// seed stores a user directly, bypassing uniqueness checks.
func (r *stubUserRepo) seed(id, username, email string, roles ...domain.Role) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := &domain.User{
		ID:                 id,
		Username:           username,
		NormalizedUsername: domain.Normalize(username),
		Email:              email,
		NormalizedEmail:    domain.Normalize(email),
		PasswordHash:       "hashed:secret1",
		FirstName:          "Ada",
		LastName:           "Lovelace",
		Roles:              roles,
	}
	r.users[id] = u
	return cloneUser(u)
}

func (r *stubUserRepo) conflict(u *domain.User) (email, username bool) {
	for id, other := range r.users {
		if id == u.ID {
			continue
		}
		if other.NormalizedEmail == u.NormalizedEmail {
			email = true
		}
		if other.NormalizedUsername == u.NormalizedUsername {
			username = true
		}
	}
	return email, username
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	dupEmail, dupUsername := r.conflict(user)
	verr := &domain.ValidationError{}
	if dupUsername {
		verr.Add(domain.CodeDuplicateUserName, "username taken")
	}
	if dupEmail {
		verr.Add(domain.CodeDuplicateEmail, "email taken")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	r.nextID++
	stored := cloneUser(user)
	stored.ID = fmt.Sprintf("u%d", r.nextID)
	r.users[stored.ID] = stored
	return cloneUser(stored), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByNormalizedEmail(_ context.Context, normalizedEmail string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.NormalizedEmail == normalizedEmail {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.NormalizedUsername == domain.Normalize(username) {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) error {
	if r.updateHook != nil {
		if err := r.updateHook(user); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	dupEmail, dupUsername := r.conflict(user)
	if dupEmail {
		return domain.ErrDuplicateEmail
	}
	if dupUsername {
		return domain.ErrDuplicateUsername
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *stubUserRepo) UpdatePasswordHash(_ context.Context, id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	r.hashUpdates++
	return nil
}

func (r *stubUserRepo) AddToRole(_ context.Context, id string, role domain.Role) error {
	if r.addToRoleErr != nil {
		return r.addToRoleErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Roles = append(u.Roles, role)
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *stubUserRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

// stubHasher prefixes passwords instead of hashing them.
type stubHasher struct {
	rehash bool
	err    error
}

func (h stubHasher) Hash(password string) (string, error) {
	if h.err != nil {
		return "", h.err
	}
	return "hashed:" + password, nil
}

func (h stubHasher) Verify(hash, password string) (bool, bool) {
	return hash == "hashed:"+password, h.rehash
}

type stubEmailValidator struct{}

func (stubEmailValidator) ValidateEmail(email string) error {
	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		return errors.New("invalid email")
	}
	return nil
}

type stubUploader struct {
	url       string
	uploadErr error
	deleteErr error
	uploads   []string
	deletes   []string
}

func (u *stubUploader) Upload(_ context.Context, filename string, _ []byte, folder string) (string, error) {
	if u.uploadErr != nil {
		return "", u.uploadErr
	}
	u.uploads = append(u.uploads, folder+"/"+filename)
	return u.url, nil
}

func (u *stubUploader) Delete(_ context.Context, url string) error {
	u.deletes = append(u.deletes, url)
	return u.deleteErr
}

type stubResets struct {
	generated []string
	consumed  []string
	err       error
}

func (r *stubResets) Generate(_ context.Context, userID string) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	r.generated = append(r.generated, userID)
	return "reset-" + userID, nil
}

func (r *stubResets) Consume(_ context.Context, userID, token string) error {
	if token != "reset-"+userID {
		return domain.ErrInvalidResetToken
	}
	r.consumed = append(r.consumed, userID)
	return nil
}

type stubRevocations struct {
	revoked map[string]time.Time
	err     error
}

func (r *stubRevocations) Revoke(_ context.Context, tokenID string, until time.Time) error {
	if r.err != nil {
		return r.err
	}
	if r.revoked == nil {
		r.revoked = make(map[string]time.Time)
	}
	r.revoked[tokenID] = until
	return nil
}

func (r *stubRevocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	_, ok := r.revoked[tokenID]
	return ok, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.AccountEvent
}

func (p *recordingPublisher) Publish(e domain.AccountEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) types() []domain.AccountEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.AccountEventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}
