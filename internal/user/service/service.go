// Package service orchestrates the user collection: creation with password
// hashing and email uniqueness, metadata-driven partial updates, credential
// verification and linear-scan lookups.
package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"orgdir/internal/audit"
	"orgdir/internal/crypto"
	"orgdir/internal/platform/metrics"
	"orgdir/internal/record"
	"orgdir/internal/user/models"
	dErrors "orgdir/pkg/domain-errors"
)

// Store is the sequential record store for users. Positions passed to
// RewriteAt are zero-based (sequence number minus one).
type Store interface {
	LoadAll(ctx context.Context) ([]*models.User, error)
	Append(ctx context.Context, user *models.User) error
	RewriteAt(ctx context.Context, position int, user *models.User) error
}

// Service owns all writes to the user collection; see the organization
// service for the locking rationale.
type Service struct {
	mu      sync.Mutex
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	trail   *audit.Trail
	columns record.Table[models.User]
}

type Option func(*Service)

// WithAuditTrail records every successful mutation on the given trail.
func WithAuditTrail(trail *audit.Trail) Option {
	return func(s *Service) { s.trail = trail }
}

func New(store Store, logger *slog.Logger, m *metrics.Metrics, opts ...Option) *Service {
	s := &Service{
		store:   store,
		logger:  logger,
		metrics: m,
		columns: models.Columns(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create hashes the password, allocates identity and appends the new user.
// The email must not be held by any live record (case-sensitive equality).
func (s *Service) Create(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnknown, "failed to load users")
	}
	for _, u := range users {
		if u.Email == req.Email {
			return nil, dErrors.New(dErrors.CodeBusinessKeyExists, "email already exists")
		}
	}

	hashed, err := crypto.HashPassword(req.Password)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnknown, "failed to hash password")
	}

	seq := record.NextSeq(users, func(u *models.User) int { return u.Seq })
	user := models.NewUser(req, uuid.New(), seq, hashed.Hash, hashed.Salt, time.Now().UTC())

	if err := s.store.Append(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to append user", "email", req.Email, "error", err)
		return nil, dErrors.Wrap(err, dErrors.CodeUnknown, "failed to persist user")
	}

	s.metrics.IncrementCreated("users")
	s.trail.Record(audit.Event{Action: audit.ActionCreate, Collection: "users", GUID: user.GUID})
	return user, nil
}

// Update resolves the target by external identifier, runs the update intent
// through the sanitize engine, and rewrites the record's line on success.
func (s *Service) Update(ctx context.Context, guid uuid.UUID, intent record.Intent) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnknown, "failed to load users")
	}
	var target *models.User
	for _, u := range users {
		if u.GUID == guid {
			target = u
			break
		}
	}
	if target == nil {
		return nil, dErrors.New(dErrors.CodeRecordNotFound, "user does not exist")
	}

	guidOf := func(u *models.User) uuid.UUID { return u.GUID }
	if err := record.Apply(s.columns, target, guid, users, guidOf, intent); err != nil {
		return nil, err
	}

	if err := s.store.RewriteAt(ctx, target.Seq-1, target); err != nil {
		s.logger.ErrorContext(ctx, "failed to rewrite user", "guid", guid, "error", err)
		return nil, dErrors.Wrap(err, dErrors.CodeUnknown, "failed to persist user")
	}

	s.metrics.IncrementUpdated("users")
	s.trail.Record(audit.Event{Action: audit.ActionUpdate, Collection: "users", GUID: guid, Fields: intent.Fields()})
	return target, nil
}

// VerifyLogin checks an email/password pair against the stored PBKDF2
// material. It returns the matching user or an unauthorized error; callers
// must not learn whether the email or the password was wrong.
func (s *Service) VerifyLogin(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.GetByEmail(ctx, email)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeRecordNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, err
	}
	if !crypto.VerifyPassword(password, user.PasswordHash, user.Salt) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}
	return user, nil
}

func (s *Service) GetBySeq(ctx context.Context, seq int) (*models.User, error) {
	return s.find(ctx, func(u *models.User) bool { return u.Seq == seq })
}

func (s *Service) GetByGUID(ctx context.Context, guid uuid.UUID) (*models.User, error) {
	return s.find(ctx, func(u *models.User) bool { return u.GUID == guid })
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.find(ctx, func(u *models.User) bool { return u.Email == email })
}

func (s *Service) List(ctx context.Context) ([]*models.User, error) {
	users, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnknown, "failed to load users")
	}
	return users, nil
}

func (s *Service) find(ctx context.Context, match func(*models.User) bool) (*models.User, error) {
	users, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnknown, "failed to load users")
	}
	for _, u := range users {
		if match(u) {
			return u, nil
		}
	}
	return nil, dErrors.New(dErrors.CodeRecordNotFound, "user does not exist")
}
