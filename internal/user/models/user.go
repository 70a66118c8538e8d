// Package models holds the user record type, its column metadata and its
// request/response shapes.
package models

import (
	"time"

	"github.com/google/uuid"

	"orgdir/internal/record"
)

// User is one persisted user record.
//
// Identity (GUID, Seq) is assigned once at creation and never changes. Email
// is the business key, unique across the live collection. PasswordHash and
// Salt are base64 PBKDF2 material; the plaintext password never reaches the
// store. Deleted is reserved: persisted but not consulted by any logic.
type User struct {
	GUID         uuid.UUID `json:"guid"`
	Seq          int       `json:"seq"`
	Name         string    `json:"name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Salt         string    `json:"salt"`
	Deleted      bool      `json:"deleted"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewUser builds the record for a creation request once the service has
// allocated identity and hashed the password.
func NewUser(req CreateUserRequest, guid uuid.UUID, seq int, passwordHash, salt string, now time.Time) *User {
	return &User{
		GUID:         guid,
		Seq:          seq,
		Name:         req.Name,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Salt:         salt,
		Deleted:      false,
		CreatedAt:    now,
	}
}

// Columns is the user column table. Password material is updatable only as
// already-hashed values; hashing plaintext is the service's job.
func Columns() record.Table[User] {
	return record.Table[User]{
		"guid": {
			Capability: record.Unmodifiable,
			Type:       "uuid",
			Get:        func(u *User) any { return u.GUID },
			Set: func(u *User, v any) error {
				id, err := record.CoerceUUID(v)
				if err == nil {
					u.GUID = id
				}
				return err
			},
		},
		"seq": {
			Capability: record.Unmodifiable,
			Type:       "int",
			Get:        func(u *User) any { return u.Seq },
			Set: func(u *User, v any) error {
				n, err := record.CoerceInt(v)
				if err == nil {
					u.Seq = n
				}
				return err
			},
		},
		"name": {
			Capability: record.NotEmpty,
			Type:       "string",
			Get:        func(u *User) any { return u.Name },
			Set: func(u *User, v any) error {
				s, err := record.CoerceString(v)
				if err == nil {
					u.Name = s
				}
				return err
			},
		},
		"last_name": {
			Capability: record.NotEmpty,
			Type:       "string",
			Get:        func(u *User) any { return u.LastName },
			Set: func(u *User, v any) error {
				s, err := record.CoerceString(v)
				if err == nil {
					u.LastName = s
				}
				return err
			},
		},
		"email": {
			Capability: record.Unique,
			Type:       "string",
			Get:        func(u *User) any { return u.Email },
			Set: func(u *User, v any) error {
				s, err := record.CoerceString(v)
				if err == nil {
					u.Email = s
				}
				return err
			},
		},
		"password_hash": {
			Capability: record.NotEmpty,
			Type:       "string",
			Get:        func(u *User) any { return u.PasswordHash },
			Set: func(u *User, v any) error {
				s, err := record.CoerceString(v)
				if err == nil {
					u.PasswordHash = s
				}
				return err
			},
		},
		"salt": {
			Capability: record.NotEmpty,
			Type:       "string",
			Get:        func(u *User) any { return u.Salt },
			Set: func(u *User, v any) error {
				s, err := record.CoerceString(v)
				if err == nil {
					u.Salt = s
				}
				return err
			},
		},
		"deleted": {
			Capability: record.Mutable,
			Type:       "bool",
			Get:        func(u *User) any { return u.Deleted },
			Set: func(u *User, v any) error {
				b, err := record.CoerceBool(v)
				if err == nil {
					u.Deleted = b
				}
				return err
			},
		},
		"created_at": {
			Capability: record.Unmodifiable,
			Type:       "time",
			Get:        func(u *User) any { return u.CreatedAt },
			Set: func(u *User, v any) error {
				ts, err := record.CoerceTime(v)
				if err == nil {
					u.CreatedAt = ts
				}
				return err
			},
		},
	}
}

// CreateUserRequest carries the caller-supplied fields for a new user. The
// password arrives in plaintext and is hashed before the record is built.
type CreateUserRequest struct {
	Name     string `json:"name"`
	LastName string `json:"last_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateUserRequest carries an ordered set of field changes for the user
// addressed by the request URL.
type UpdateUserRequest struct {
	Data record.Intent `json:"data"`
}

// LoginRequest carries the credentials exchanged for an access token.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
