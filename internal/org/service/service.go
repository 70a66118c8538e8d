// Package service orchestrates the organization collection: creation with
// business-key checks and sequence allocation, metadata-driven partial
// updates, and linear-scan lookups.
package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"orgdir/internal/audit"
	"orgdir/internal/org/models"
	"orgdir/internal/platform/metrics"
	"orgdir/internal/record"
	dErrors "orgdir/pkg/domain-errors"
)

// Store is the sequential record store for organizations. Positions passed
// to RewriteAt are zero-based (sequence number minus one).
type Store interface {
	LoadAll(ctx context.Context) ([]*models.Organization, error)
	Append(ctx context.Context, org *models.Organization) error
	RewriteAt(ctx context.Context, position int, org *models.Organization) error
}

// Service owns all writes to the organization collection. The mutex
// serializes create/update so each writer sees a fresh snapshot and its
// rewrite positions stay valid; lookups read their own snapshot lock-free.
type Service struct {
	mu      sync.Mutex
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	trail   *audit.Trail
	columns record.Table[models.Organization]
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

// Create allocates identity for a new organization and appends it.
// The VAT must not be held by any live record (case-sensitive equality).
func (s *Service) Create(ctx context.Context, req models.CreateOrganizationRequest) (*models.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orgs, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnknown, "failed to load organizations")
	}
	for _, org := range orgs {
		if org.VAT == req.VAT {
			return nil, dErrors.New(dErrors.CodeBusinessKeyExists, "vat already exists")
		}
	}

	seq := record.NextSeq(orgs, func(o *models.Organization) int { return o.Seq })
	org := models.NewOrganization(req, uuid.New(), seq, time.Now().UTC())

	if err := s.store.Append(ctx, org); err != nil {
		s.logger.ErrorContext(ctx, "failed to append organization", "vat", req.VAT, "error", err)
		return nil, dErrors.Wrap(err, dErrors.CodeUnknown, "failed to persist organization")
	}

	s.metrics.IncrementCreated("organizations")
	s.trail.Record(audit.Event{Action: audit.ActionCreate, Collection: "organizations", GUID: org.GUID})
	return org, nil
}

// Update resolves the target by external identifier, runs the update intent
// through the sanitize engine, and rewrites the record's line on success.
// A failed intent leaves both memory and disk untouched.
func (s *Service) Update(ctx context.Context, guid uuid.UUID, intent record.Intent) (*models.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orgs, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnknown, "failed to load organizations")
	}
	target := findByGUID(orgs, guid)
	if target == nil {
		return nil, dErrors.New(dErrors.CodeRecordNotFound, "organization does not exist")
	}

	guidOf := func(o *models.Organization) uuid.UUID { return o.GUID }
	if err := record.Apply(s.columns, target, guid, orgs, guidOf, intent); err != nil {
		return nil, err
	}

	if err := s.store.RewriteAt(ctx, target.Seq-1, target); err != nil {
		s.logger.ErrorContext(ctx, "failed to rewrite organization", "guid", guid, "error", err)
		return nil, dErrors.Wrap(err, dErrors.CodeUnknown, "failed to persist organization")
	}

	s.metrics.IncrementUpdated("organizations")
	s.trail.Record(audit.Event{Action: audit.ActionUpdate, Collection: "organizations", GUID: guid, Fields: intent.Fields()})
	return target, nil
}

func (s *Service) GetBySeq(ctx context.Context, seq int) (*models.Organization, error) {
	return s.find(ctx, func(o *models.Organization) bool { return o.Seq == seq })
}

func (s *Service) GetByGUID(ctx context.Context, guid uuid.UUID) (*models.Organization, error) {
	return s.find(ctx, func(o *models.Organization) bool { return o.GUID == guid })
}

func (s *Service) GetByVAT(ctx context.Context, vat string) (*models.Organization, error) {
	return s.find(ctx, func(o *models.Organization) bool { return o.VAT == vat })
}

func (s *Service) List(ctx context.Context) ([]*models.Organization, error) {
	orgs, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnknown, "failed to load organizations")
	}
	return orgs, nil
}

func (s *Service) find(ctx context.Context, match func(*models.Organization) bool) (*models.Organization, error) {
	orgs, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnknown, "failed to load organizations")
	}
	for _, org := range orgs {
		if match(org) {
			return org, nil
		}
	}
	return nil, dErrors.New(dErrors.CodeRecordNotFound, "organization does not exist")
}

func findByGUID(orgs []*models.Organization, guid uuid.UUID) *models.Organization {
	for _, org := range orgs {
		if org.GUID == guid {
			return org
		}
	}
	return nil
}
