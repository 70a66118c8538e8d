package service

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"orgdir/internal/crypto"
	"orgdir/internal/record"
	"orgdir/internal/storage"
	"orgdir/internal/user/models"
	dErrors "orgdir/pkg/domain-errors"
)

type UserServiceSuite struct {
	suite.Suite
	ctx     context.Context
	store   *storage.LineStore[models.User]
	service *Service
}

func (s *UserServiceSuite) SetupTest() {
	codec, err := crypto.NewCodec("0123456789abcdef0123456789abcdef", "fedcba9876543210")
	s.Require().NoError(err)
	s.ctx = context.Background()
	s.store = storage.NewLineStore[models.User](filepath.Join(s.T().TempDir(), "users.txt"), codec)
	s.service = New(s.store, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
}

func TestUserServiceSuite(t *testing.T) {
	suite.Run(t, new(UserServiceSuite))
}

func (s *UserServiceSuite) create(email, password string) *models.User {
	user, err := s.service.Create(s.ctx, models.CreateUserRequest{
		Name:     "Jane",
		LastName: "Doe",
		Email:    email,
		Password: password,
	})
	s.Require().NoError(err)
	return user
}

func (s *UserServiceSuite) TestCreateHashesPassword() {
	user := s.create("jane@example.com", "hunter2-but-long")

	s.Equal(1, user.Seq)
	s.NotEmpty(user.PasswordHash)
	s.NotEmpty(user.Salt)
	s.NotContains(user.PasswordHash, "hunter2")

	// round-trip through the encrypted file preserves the hash material
	reloaded, err := s.service.GetByEmail(s.ctx, "jane@example.com")
	s.Require().NoError(err)
	s.Equal(user.PasswordHash, reloaded.PasswordHash)
	s.Equal(user.Salt, reloaded.Salt)
}

func (s *UserServiceSuite) TestCreateRejectsDuplicateEmail() {
	s.create("jane@example.com", "pw-one")

	_, err := s.service.Create(s.ctx, models.CreateUserRequest{
		Name: "Other", LastName: "Person", Email: "jane@example.com", Password: "pw-two",
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeBusinessKeyExists))
}

func (s *UserServiceSuite) TestVerifyLogin() {
	s.create("jane@example.com", "correct-horse")

	user, err := s.service.VerifyLogin(s.ctx, "jane@example.com", "correct-horse")
	s.Require().NoError(err)
	s.Equal("jane@example.com", user.Email)

	_, err = s.service.VerifyLogin(s.ctx, "jane@example.com", "wrong")
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

	_, err = s.service.VerifyLogin(s.ctx, "nobody@example.com", "correct-horse")
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *UserServiceSuite) TestUpdateEmailUniqueness() {
	jane := s.create("jane@example.com", "pw")
	s.create("john@example.com", "pw")

	var intent record.Intent
	intent.Set("email", "john@example.com")
	_, err := s.service.Update(s.ctx, jane.GUID, intent)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUniqueProperty))

	// own value passes the self-excluding scan
	intent = record.Intent{}
	intent.Set("email", "jane@example.com")
	_, err = s.service.Update(s.ctx, jane.GUID, intent)
	s.Require().NoError(err)
}

func (s *UserServiceSuite) TestUpdateMutableFieldsPersist() {
	jane := s.create("jane@example.com", "pw")

	var intent record.Intent
	intent.Set("name", "Janet")
	intent.Set("last_name", "Smith")

	updated, err := s.service.Update(s.ctx, jane.GUID, intent)
	s.Require().NoError(err)
	s.Equal("Janet", updated.Name)
	s.Equal("Smith", updated.LastName)

	reloaded, err := s.service.GetBySeq(s.ctx, jane.Seq)
	s.Require().NoError(err)
	s.Equal("Janet", reloaded.Name)
	s.Equal("jane@example.com", reloaded.Email)
}

func (s *UserServiceSuite) TestUpdateIdentityFails() {
	jane := s.create("jane@example.com", "pw")

	var intent record.Intent
	intent.Set("seq", 99)

	_, err := s.service.Update(s.ctx, jane.GUID, intent)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnmodifiableProperty))
}
