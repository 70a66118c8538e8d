// Package handler exposes the user collection and the login endpoint over
// HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"orgdir/internal/crypto"
	jwttoken "orgdir/internal/jwt_token"
	"orgdir/internal/platform/metrics"
	"orgdir/internal/platform/middleware"
	"orgdir/internal/record"
	"orgdir/internal/transport/http/shared"
	"orgdir/internal/user/models"
	dErrors "orgdir/pkg/domain-errors"
)

// Service defines the user operations the handler needs.
type Service interface {
	Create(ctx context.Context, req models.CreateUserRequest) (*models.User, error)
	Update(ctx context.Context, guid uuid.UUID, intent record.Intent) (*models.User, error)
	VerifyLogin(ctx context.Context, email, password string) (*models.User, error)
	GetBySeq(ctx context.Context, seq int) (*models.User, error)
	GetByGUID(ctx context.Context, guid uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
}

// TokenService signs access tokens for verified logins and validates them
// on token-protected routes.
type TokenService interface {
	Generate(userGUID uuid.UUID, name, lastName, email string) (string, error)
	Validate(tokenString string) (*jwttoken.Claims, error)
}

type Handler struct {
	logger  *slog.Logger
	service Service
	tokens  TokenService
	codec   *crypto.Codec
	metrics *metrics.Metrics
}

func New(service Service, tokens TokenService, codec *crypto.Codec, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{logger: logger, service: service, tokens: tokens, codec: codec, metrics: m}
}

// Register mounts the user and auth routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/users", h.handleCreate)
	r.Patch("/users/{guid}", h.handleUpdate)
	r.Get("/users", h.handleList)
	r.Get("/users/{guid}", h.handleGetByGUID)
	r.Get("/users/seq/{seq}", h.handleGetBySeq)
	r.Get("/users/email/{email}", h.handleGetByEmail)
	r.Post("/auth/token", h.handleToken)
	r.With(middleware.RequireBearer(h.tokens)).Get("/me", h.handleMe)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := shared.DecodeEnvelope(h.codec, r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	user, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.logWarn(r, "create user failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteEncrypted(w, h.codec, http.StatusCreated, user)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	guid, err := uuid.Parse(chi.URLParam(r, "guid"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid user identifier"))
		return
	}

	var req models.UpdateUserRequest
	if err := shared.DecodeEnvelope(h.codec, r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	if req.Data.Empty() {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "update intent is empty"))
		return
	}

	user, err := h.service.Update(r.Context(), guid, req.Data)
	if err != nil {
		h.logWarn(r, "update user failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteEncrypted(w, h.codec, http.StatusOK, user)
}

// handleToken exchanges email/password credentials for a signed access
// token. The credential payload arrives enveloped like every other body.
func (h *Handler) handleToken(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := shared.DecodeEnvelope(h.codec, r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	user, err := h.service.VerifyLogin(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logWarn(r, "login failed", err)
		shared.WriteError(w, err)
		return
	}

	token, err := h.tokens.Generate(user.GUID, user.Name, user.LastName, user.Email)
	if err != nil {
		shared.WriteError(w, dErrors.Wrap(err, dErrors.CodeUnknown, "failed to sign token"))
		return
	}

	h.metrics.IncrementTokensIssued()
	shared.WriteJSON(w, http.StatusOK, map[string]string{
		"access_token": token,
		"token_type":   "Bearer",
	})
}

// handleMe returns the user behind the presented access token.
func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
		return
	}
	user, err := h.service.GetByEmail(r.Context(), claims.Subject)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteEncrypted(w, h.codec, http.StatusOK, user)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteEncrypted(w, h.codec, http.StatusOK, users)
}

func (h *Handler) handleGetByGUID(w http.ResponseWriter, r *http.Request) {
	guid, err := uuid.Parse(chi.URLParam(r, "guid"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid user identifier"))
		return
	}
	user, err := h.service.GetByGUID(r.Context(), guid)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteEncrypted(w, h.codec, http.StatusOK, user)
}

func (h *Handler) handleGetBySeq(w http.ResponseWriter, r *http.Request) {
	seq, err := strconv.Atoi(chi.URLParam(r, "seq"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid sequence number"))
		return
	}
	user, err := h.service.GetBySeq(r.Context(), seq)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteEncrypted(w, h.codec, http.StatusOK, user)
}

func (h *Handler) handleGetByEmail(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetByEmail(r.Context(), chi.URLParam(r, "email"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteEncrypted(w, h.codec, http.StatusOK, user)
}

func (h *Handler) logWarn(r *http.Request, msg string, err error) {
	h.logger.WarnContext(r.Context(), msg,
		"path", r.URL.Path,
		"code", dErrors.Classify(err),
		"error", err.Error(),
	)
}
