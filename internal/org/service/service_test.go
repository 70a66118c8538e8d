package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"orgdir/internal/crypto"
	"orgdir/internal/org/models"
	"orgdir/internal/record"
	"orgdir/internal/storage"
	dErrors "orgdir/pkg/domain-errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type OrgServiceSuite struct {
	suite.Suite
	ctx     context.Context
	store   *storage.LineStore[models.Organization]
	service *Service
}

func (s *OrgServiceSuite) SetupTest() {
	codec, err := crypto.NewCodec("0123456789abcdef0123456789abcdef", "fedcba9876543210")
	s.Require().NoError(err)
	s.ctx = context.Background()
	s.store = storage.NewLineStore[models.Organization](filepath.Join(s.T().TempDir(), "orgs.txt"), codec)
	s.service = New(s.store, testLogger(), nil)
}

func TestOrgServiceSuite(t *testing.T) {
	suite.Run(t, new(OrgServiceSuite))
}

func (s *OrgServiceSuite) create(vat, name string) *models.Organization {
	org, err := s.service.Create(s.ctx, models.CreateOrganizationRequest{
		Name:           name,
		CommercialName: name + " Corp",
		VAT:            vat,
	})
	s.Require().NoError(err)
	return org
}

func (s *OrgServiceSuite) TestCreateAssignsContiguousSequences() {
	first := s.create("00000001R", "First")
	second := s.create("00000002R", "Second")
	third := s.create("00000003R", "Third")

	s.Equal(1, first.Seq)
	s.Equal(2, second.Seq)
	s.Equal(3, third.Seq)

	s.NotEqual(first.GUID, second.GUID)
	s.False(first.CreatedAt.IsZero())
	s.False(first.Deleted)
}

func (s *OrgServiceSuite) TestCreateRejectsDuplicateVAT() {
	s.create("00000001R", "First")

	_, err := s.service.Create(s.ctx, models.CreateOrganizationRequest{Name: "Clone", VAT: "00000001R"})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeBusinessKeyExists))
}

func (s *OrgServiceSuite) TestUpdatePersistsAcrossReload() {
	org := s.create("00000001R", "First")

	var intent record.Intent
	intent.Set("name", "Acme")

	updated, err := s.service.Update(s.ctx, org.GUID, intent)
	s.Require().NoError(err)
	s.Equal("Acme", updated.Name)

	// a fresh service over the same file sees the change
	reloaded := New(s.store, testLogger(), nil)
	got, err := reloaded.GetByGUID(s.ctx, org.GUID)
	s.Require().NoError(err)
	s.Equal("Acme", got.Name)
	s.Equal(org.VAT, got.VAT)
}

func (s *OrgServiceSuite) TestUpdateUnknownGUIDFails() {
	var intent record.Intent
	intent.Set("name", "Acme")

	_, err := s.service.Update(s.ctx, uuid.New(), intent)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeRecordNotFound))
}

func (s *OrgServiceSuite) TestUpdateIdentityFieldFails() {
	org := s.create("00000001R", "First")

	for _, field := range []string{"guid", "seq", "created_at"} {
		var intent record.Intent
		intent.Set(field, "whatever")

		_, err := s.service.Update(s.ctx, org.GUID, intent)
		s.Require().Error(err, field)
		s.True(dErrors.HasCode(err, dErrors.CodeUnmodifiableProperty), field)
	}
}

func (s *OrgServiceSuite) TestUpdateVATToAnotherOrganizationsFails() {
	first := s.create("00000001R", "First")
	s.create("00000002R", "Second")

	var intent record.Intent
	intent.Set("vat", "00000002R")

	_, err := s.service.Update(s.ctx, first.GUID, intent)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUniqueProperty))

	// the persisted record is untouched
	got, err := s.service.GetByGUID(s.ctx, first.GUID)
	s.Require().NoError(err)
	s.Equal("00000001R", got.VAT)
}

func (s *OrgServiceSuite) TestUpdateVATToOwnValueSucceeds() {
	org := s.create("00000001R", "First")

	var intent record.Intent
	intent.Set("vat", "00000001R")

	_, err := s.service.Update(s.ctx, org.GUID, intent)
	s.Require().NoError(err)
}

func (s *OrgServiceSuite) TestUpdateUnknownFieldFails() {
	org := s.create("00000001R", "First")

	var intent record.Intent
	intent.Set("headquarters", "Madrid")

	_, err := s.service.Update(s.ctx, org.GUID, intent)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNonExistentProperty))
}

func (s *OrgServiceSuite) TestUpdateCastingFailureLeavesStoreUntouched() {
	org := s.create("00000001R", "First")

	var intent record.Intent
	intent.Set("name", "Halfway")
	intent.Set("deleted", "NotABoolean")

	_, err := s.service.Update(s.ctx, org.GUID, intent)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodePropertyCasting))

	got, err := s.service.GetByGUID(s.ctx, org.GUID)
	s.Require().NoError(err)
	s.Equal("First", got.Name)
}

func (s *OrgServiceSuite) TestLookups() {
	org := s.create("00000001R", "First")
	s.create("00000002R", "Second")

	bySeq, err := s.service.GetBySeq(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal(org.GUID, bySeq.GUID)

	byVAT, err := s.service.GetByVAT(s.ctx, "00000001R")
	s.Require().NoError(err)
	s.Equal(org.GUID, byVAT.GUID)

	_, err = s.service.GetBySeq(s.ctx, 99)
	s.True(dErrors.HasCode(err, dErrors.CodeRecordNotFound))

	all, err := s.service.List(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 2)
}

// failingStore simulates persistence I/O failures.
type failingStore struct {
	orgs      []*models.Organization
	appendErr error
	rewireErr error
}

func (f *failingStore) LoadAll(context.Context) ([]*models.Organization, error) {
	return f.orgs, nil
}

func (f *failingStore) Append(_ context.Context, org *models.Organization) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.orgs = append(f.orgs, org)
	return nil
}

func (f *failingStore) RewriteAt(_ context.Context, _ int, _ *models.Organization) error {
	return f.rewireErr
}

func (s *OrgServiceSuite) TestStoreFailuresSurfaceAsUnknown() {
	svc := New(&failingStore{appendErr: errors.New("disk full")}, testLogger(), nil)

	_, err := svc.Create(s.ctx, models.CreateOrganizationRequest{Name: "X", VAT: "V1"})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnknown))

	existing := &models.Organization{GUID: uuid.New(), Seq: 1, Name: "X", VAT: "V1"}
	svc = New(&failingStore{orgs: []*models.Organization{existing}, rewireErr: errors.New("disk full")}, testLogger(), nil)

	var intent record.Intent
	intent.Set("name", "Y")
	_, err = svc.Update(s.ctx, existing.GUID, intent)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnknown))
}
