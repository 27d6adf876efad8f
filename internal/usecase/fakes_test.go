package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/allahbobax/boolean-api/internal/core/domain"
	"github.com/allahbobax/boolean-api/internal/core/port"
	"github.com/allahbobax/boolean-api/internal/repository"
)

// fakeUserRepo is an in-memory port.UserRepository for service tests.
type fakeUserRepo struct {
	mu        sync.Mutex
	users     map[string]*domain.User
	createErr error
	recordErr error
	clearErr  error
}

func newFakeUserRepo(users ...domain.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[string]*domain.User)}
	for i := range users {
		u := users[i]
		repo.users[u.ID] = &u
	}
	return repo
}

func (r *fakeUserRepo) get(id string) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id]
}

func (r *fakeUserRepo) Create(_ context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return repository.ErrConflict
		}
	}
	r.users[user.ID] = &user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByIdentifier(_ context.Context, identifier string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == identifier || u.Email == strings.ToLower(identifier) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByHWID(_ context.Context, hwid string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.HWID != nil && *u.HWID == hwid {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) RecordLoginFailure(_ context.Context, id string, attempts int, lockedUntil *time.Time, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.recordErr != nil {
		return r.recordErr
	}
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.FailedLoginAttempts = attempts
	u.LockedUntil = lockedUntil
	u.LastFailedLoginAt = &at
	return nil
}

func (r *fakeUserRepo) ClearLoginFailures(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.clearErr != nil {
		return r.clearErr
	}
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.FailedLoginAttempts = 0
	u.LockedUntil = nil
	u.LastFailedLoginAt = nil
	return nil
}

func (r *fakeUserRepo) SetHWID(_ context.Context, id, hwid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.HWID = &hwid
	return nil
}

func (r *fakeUserRepo) ClearHWID(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.HWID = nil
	return nil
}

func (r *fakeUserRepo) LinkOAuth(_ context.Context, id string, provider, oauthID string, avatar, hwid *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.OAuthProvider = &provider
	u.OAuthID = &oauthID
	if avatar != nil {
		u.Avatar = avatar
	}
	if hwid != nil {
		u.HWID = hwid
	}
	return nil
}

var _ port.UserRepository = (*fakeUserRepo)(nil)

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	mu         sync.Mutex
	registered []domain.UserRegisteredEvent
	failures   []domain.LoginFailedEvent
	locks      []domain.AccountLockedEvent
	conflicts  []domain.DeviceConflictEvent
}

func (p *recordingPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.registered = append(p.registered, event)
	return nil
}

func (p *recordingPublisher) PublishLoginFailed(_ context.Context, event domain.LoginFailedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures = append(p.failures, event)
	return nil
}

func (p *recordingPublisher) PublishAccountLocked(_ context.Context, event domain.AccountLockedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.locks = append(p.locks, event)
	return nil
}

func (p *recordingPublisher) PublishDeviceConflict(_ context.Context, event domain.DeviceConflictEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.conflicts = append(p.conflicts, event)
	return nil
}

var _ port.EventPublisher = (*recordingPublisher)(nil)

// failingStore errors on every operation, simulating a store outage.
type failingStore struct {
	err error
}

func (s failingStore) Incr(context.Context, string, time.Duration) (int64, error) {
	return 0, s.err
}

func (s failingStore) TTL(context.Context, string) (time.Duration, error) {
	return 0, s.err
}

func (s failingStore) Get(context.Context, string) (string, error) {
	return "", s.err
}

func (s failingStore) Set(context.Context, string, string, time.Duration) error {
	return s.err
}

func (s failingStore) Delete(context.Context, string) error {
	return s.err
}

var _ port.CounterStore = failingStore{}
