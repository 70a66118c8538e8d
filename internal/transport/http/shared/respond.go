// Package shared holds the envelope and error writers used by every HTTP
// handler. Entity payloads travel encrypted in both directions; errors are
// plain JSON with a stable code.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	"orgdir/internal/crypto"
	dErrors "orgdir/pkg/domain-errors"
)

// Envelope is the transport shell for encrypted payloads: base64 AES
// ciphertext of the actual JSON body.
type Envelope struct {
	Payload string `json:"payload"`
}

// ErrorResponse is the JSON body for every failed request.
type ErrorResponse struct {
	Code    dErrors.Code `json:"code"`
	Message string       `json:"message"`
}

// DecodeEnvelope reads an enveloped request body and decrypts-and-unmarshals
// the payload into v. All failures are bad_request: the caller either sent
// garbage or used the wrong key, and the two are indistinguishable here.
func DecodeEnvelope(codec *crypto.Codec, r *http.Request, v any) error {
	var env Envelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		return dErrors.New(dErrors.CodeBadRequest, "invalid request body")
	}
	if env.Payload == "" {
		return dErrors.New(dErrors.CodeBadRequest, "encrypted payload is missing")
	}
	if err := codec.DecryptAndDeserialize(env.Payload, v); err != nil {
		return dErrors.New(dErrors.CodeBadRequest, "payload decryption failed")
	}
	return nil
}

// WriteEncrypted serializes v, encrypts it and writes it enveloped.
func WriteEncrypted(w http.ResponseWriter, codec *crypto.Codec, status int, v any) {
	payload, err := codec.SerializeAndEncrypt(v)
	if err != nil {
		WriteError(w, dErrors.Wrap(err, dErrors.CodeUnknown, "failed to encrypt response"))
		return
	}
	WriteJSON(w, status, Envelope{Payload: payload})
}

// WriteJSON writes v as a JSON response.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError classifies err and writes the matching status and error body.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.Classify(err)

	message := "an error occurred"
	var de *dErrors.Error
	if errors.As(err, &de) {
		message = de.Message()
	}

	WriteJSON(w, statusFor(code), ErrorResponse{Code: code, Message: message})
}

// statusFor maps the closed error vocabulary to HTTP statuses. Property
// validation failures are client mistakes (400), key collisions conflicts
// (409); anything unclassified is a 500.
func statusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeBadRequest,
		dErrors.CodeUnmodifiableProperty,
		dErrors.CodeNonExistentProperty,
		dErrors.CodePropertyCasting:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeRecordNotFound:
		return http.StatusNotFound
	case dErrors.CodeBusinessKeyExists, dErrors.CodeUniqueProperty:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
