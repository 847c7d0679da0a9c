package dto

import (
	"encoding/base64"
	"time"

	revealDomain "github.com/allisson/sealbox/internal/reveal/domain"
)

// PayloadResponse is a redeemed reveal. Plaintext is set in server mode; the sealed fields and
// derivation parameters are set in client mode.
type PayloadResponse struct {
	RecordID      string    `json:"record_id"`
	Mode          string    `json:"mode"`
	Plaintext     string    `json:"plaintext,omitempty"`
	Ciphertext    string    `json:"ciphertext,omitempty"`
	IV            string    `json:"iv,omitempty"`
	AuthTag       string    `json:"auth_tag,omitempty"`
	IntegrityHash string    `json:"integrity_hash,omitempty"`
	KDFSalt       string    `json:"kdf_salt,omitempty"`
	KDFIterations int       `json:"kdf_iterations,omitempty"`
	KDFHash       string    `json:"kdf_hash,omitempty"`
	Algorithm     string    `json:"algorithm,omitempty"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// RevealResponse is returned by the reveal endpoint.
type RevealResponse struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	Payload   *PayloadResponse `json:"payload,omitempty"`
}

// MapPayloadToResponse converts a payload to its response.
func MapPayloadToResponse(payload *revealDomain.Payload) *PayloadResponse {
	resp := &PayloadResponse{
		RecordID:  payload.RecordID.String(),
		Mode:      string(payload.Mode),
		ExpiresAt: payload.ExpiresAt,
	}
	if payload.Plaintext != nil {
		resp.Plaintext = string(payload.Plaintext)
	}
	if sealed := payload.Sealed; sealed != nil {
		encode := base64.StdEncoding.EncodeToString
		resp.Ciphertext = encode(sealed.Ciphertext)
		resp.IV = encode(sealed.IV)
		resp.AuthTag = encode(sealed.AuthTag)
		resp.IntegrityHash = sealed.IntegrityHash
		resp.KDFSalt = encode(sealed.KDF.Salt)
		resp.KDFIterations = sealed.KDF.Iterations
		resp.KDFHash = string(sealed.KDF.Hash)
		resp.Algorithm = string(sealed.Algorithm)
	}
	return resp
}
