// Package models holds the organization record type, its column metadata and
// its request/response shapes.
package models

import (
	"time"

	"github.com/google/uuid"

	"orgdir/internal/record"
)

// Organization is one persisted organization record.
//
// Identity (GUID, Seq) is assigned once at creation and never changes. Seq is
// 1-based and contiguous; the store derives the record's line position from
// it. VAT is the business key, unique across the live collection. Deleted is
// reserved: the flag is persisted but no create/update logic consults it.
type Organization struct {
	GUID           uuid.UUID `json:"guid"`
	Seq            int       `json:"seq"`
	Name           string    `json:"name"`
	CommercialName string    `json:"commercial_name"`
	VAT            string    `json:"vat"`
	Deleted        bool      `json:"deleted"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewOrganization builds the record for a creation request once the service
// has allocated identity.
func NewOrganization(req CreateOrganizationRequest, guid uuid.UUID, seq int, now time.Time) *Organization {
	return &Organization{
		GUID:           guid,
		Seq:            seq,
		Name:           req.Name,
		CommercialName: req.CommercialName,
		VAT:            req.VAT,
		Deleted:        false,
		CreatedAt:      now,
	}
}

// Columns is the organization column table: the fixed, compile-time record of
// each field's capability tag plus typed access for the update engine.
func Columns() record.Table[Organization] {
	return record.Table[Organization]{
		"guid": {
			Capability: record.Unmodifiable,
			Type:       "uuid",
			Get:        func(o *Organization) any { return o.GUID },
			Set: func(o *Organization, v any) error {
				id, err := record.CoerceUUID(v)
				if err == nil {
					o.GUID = id
				}
				return err
			},
		},
		"seq": {
			Capability: record.Unmodifiable,
			Type:       "int",
			Get:        func(o *Organization) any { return o.Seq },
			Set: func(o *Organization, v any) error {
				n, err := record.CoerceInt(v)
				if err == nil {
					o.Seq = n
				}
				return err
			},
		},
		"name": {
			Capability: record.NotEmpty,
			Type:       "string",
			Get:        func(o *Organization) any { return o.Name },
			Set: func(o *Organization, v any) error {
				s, err := record.CoerceString(v)
				if err == nil {
					o.Name = s
				}
				return err
			},
		},
		"commercial_name": {
			Capability: record.Mutable,
			Type:       "string",
			Get:        func(o *Organization) any { return o.CommercialName },
			Set: func(o *Organization, v any) error {
				s, err := record.CoerceString(v)
				if err == nil {
					o.CommercialName = s
				}
				return err
			},
		},
		"vat": {
			Capability: record.Unique,
			Type:       "string",
			Get:        func(o *Organization) any { return o.VAT },
			Set: func(o *Organization, v any) error {
				s, err := record.CoerceString(v)
				if err == nil {
					o.VAT = s
				}
				return err
			},
		},
		"deleted": {
			Capability: record.Mutable,
			Type:       "bool",
			Get:        func(o *Organization) any { return o.Deleted },
			Set: func(o *Organization, v any) error {
				b, err := record.CoerceBool(v)
				if err == nil {
					o.Deleted = b
				}
				return err
			},
		},
		"created_at": {
			Capability: record.Unmodifiable,
			Type:       "time",
			Get:        func(o *Organization) any { return o.CreatedAt },
			Set: func(o *Organization, v any) error {
				ts, err := record.CoerceTime(v)
				if err == nil {
					o.CreatedAt = ts
				}
				return err
			},
		},
	}
}

// CreateOrganizationRequest carries the caller-supplied fields for a new
// organization.
type CreateOrganizationRequest struct {
	Name           string `json:"name"`
	CommercialName string `json:"commercial_name"`
	VAT            string `json:"vat"`
}

// UpdateOrganizationRequest carries an ordered set of field changes for the
// organization addressed by the request URL.
type UpdateOrganizationRequest struct {
	Data record.Intent `json:"data"`
}
