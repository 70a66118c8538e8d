// Package handler exposes the organization collection over HTTP. Handlers
// stay thin: decode the envelope, call the service, write the result.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"orgdir/internal/crypto"
	"orgdir/internal/org/models"
	"orgdir/internal/record"
	"orgdir/internal/transport/http/shared"
	dErrors "orgdir/pkg/domain-errors"
)

// Service defines the organization operations the handler needs.
type Service interface {
	Create(ctx context.Context, req models.CreateOrganizationRequest) (*models.Organization, error)
	Update(ctx context.Context, guid uuid.UUID, intent record.Intent) (*models.Organization, error)
	GetBySeq(ctx context.Context, seq int) (*models.Organization, error)
	GetByGUID(ctx context.Context, guid uuid.UUID) (*models.Organization, error)
	GetByVAT(ctx context.Context, vat string) (*models.Organization, error)
	List(ctx context.Context) ([]*models.Organization, error)
}

type Handler struct {
	logger  *slog.Logger
	service Service
	codec   *crypto.Codec
}

func New(service Service, codec *crypto.Codec, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service, codec: codec}
}

// Register mounts the organization routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/organizations", h.handleCreate)
	r.Patch("/organizations/{guid}", h.handleUpdate)
	r.Get("/organizations", h.handleList)
	r.Get("/organizations/{guid}", h.handleGetByGUID)
	r.Get("/organizations/seq/{seq}", h.handleGetBySeq)
	r.Get("/organizations/vat/{vat}", h.handleGetByVAT)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req models.CreateOrganizationRequest
	if err := shared.DecodeEnvelope(h.codec, r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	org, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.logWarn(r, "create organization failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteEncrypted(w, h.codec, http.StatusCreated, org)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	guid, err := uuid.Parse(chi.URLParam(r, "guid"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid organization identifier"))
		return
	}

	var req models.UpdateOrganizationRequest
	if err := shared.DecodeEnvelope(h.codec, r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	if req.Data.Empty() {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "update intent is empty"))
		return
	}

	org, err := h.service.Update(r.Context(), guid, req.Data)
	if err != nil {
		h.logWarn(r, "update organization failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteEncrypted(w, h.codec, http.StatusOK, org)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	orgs, err := h.service.List(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteEncrypted(w, h.codec, http.StatusOK, orgs)
}

func (h *Handler) handleGetByGUID(w http.ResponseWriter, r *http.Request) {
	guid, err := uuid.Parse(chi.URLParam(r, "guid"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid organization identifier"))
		return
	}
	org, err := h.service.GetByGUID(r.Context(), guid)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteEncrypted(w, h.codec, http.StatusOK, org)
}

func (h *Handler) handleGetBySeq(w http.ResponseWriter, r *http.Request) {
	seq, err := strconv.Atoi(chi.URLParam(r, "seq"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid sequence number"))
		return
	}
	org, err := h.service.GetBySeq(r.Context(), seq)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteEncrypted(w, h.codec, http.StatusOK, org)
}

func (h *Handler) handleGetByVAT(w http.ResponseWriter, r *http.Request) {
	org, err := h.service.GetByVAT(r.Context(), chi.URLParam(r, "vat"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteEncrypted(w, h.codec, http.StatusOK, org)
}

func (h *Handler) logWarn(r *http.Request, msg string, err error) {
	h.logger.WarnContext(r.Context(), msg,
		"path", r.URL.Path,
		"code", dErrors.Classify(err),
		"error", err.Error(),
	)
}
