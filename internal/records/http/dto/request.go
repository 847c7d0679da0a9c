// Package dto provides data transfer objects for record HTTP requests and responses.
package dto

import (
	"encoding/base64"
	"time"

	validation "github.com/jellydator/validation"

	cryptoDomain "github.com/allisson/sealbox/internal/crypto/domain"
	recordsDomain "github.com/allisson/sealbox/internal/records/domain"
	customValidation "github.com/allisson/sealbox/internal/validation"
)

// CreateRecordRequest carries a client sealed value. Binary fields are base64 encoded.
type CreateRecordRequest struct {
	Ciphertext    string     `json:"ciphertext"`
	IV            string     `json:"iv"`
	AuthTag       string     `json:"auth_tag"`
	IntegrityHash string     `json:"integrity_hash"`
	KDFSalt       string     `json:"kdf_salt"`
	KDFIterations int        `json:"kdf_iterations"`
	KDFHash       string     `json:"kdf_hash"`
	Algorithm     string     `json:"algorithm"`
	MaskSurrogate string     `json:"mask_surrogate"`
	RecordType    string     `json:"record_type"`
	Tags          []string   `json:"tags"`
	ExpiresAt     *time.Time `json:"expires_at"`
}

// Validate checks field presence and the decoded sizes of the binary fields.
func (r *CreateRecordRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Ciphertext, validation.Required, customValidation.Base64),
		validation.Field(&r.IV, validation.Required, customValidation.Base64Size(cryptoDomain.IVSize)),
		validation.Field(&r.AuthTag, validation.Required, customValidation.Base64Size(cryptoDomain.TagSize)),
		validation.Field(&r.IntegrityHash, validation.Required, customValidation.HexSHA256),
		validation.Field(&r.KDFSalt, validation.Required, customValidation.Base64MinSize(cryptoDomain.MinSaltSize)),
		validation.Field(&r.KDFIterations,
			validation.Required,
			validation.Min(cryptoDomain.MinIterations),
			validation.Max(cryptoDomain.MaxIterations),
		),
		validation.Field(&r.KDFHash,
			validation.In(string(cryptoDomain.SHA256), string(cryptoDomain.SHA512)),
		),
		validation.Field(&r.Algorithm,
			validation.In(string(cryptoDomain.AESGCM), string(cryptoDomain.ChaCha20)),
		),
		validation.Field(&r.MaskSurrogate,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&r.RecordType, validation.Length(0, 64), customValidation.NoWhitespace),
		validation.Field(&r.Tags, validation.Each(validation.Required, validation.Length(1, 64))),
	)
}

// ToInput decodes the request. Validate must have passed.
func (r *CreateRecordRequest) ToInput() (*recordsDomain.CreateRecordInput, error) {
	decode := base64.StdEncoding.DecodeString

	ciphertext, err := decode(r.Ciphertext)
	if err != nil {
		return nil, err
	}
	iv, err := decode(r.IV)
	if err != nil {
		return nil, err
	}
	authTag, err := decode(r.AuthTag)
	if err != nil {
		return nil, err
	}
	salt, err := decode(r.KDFSalt)
	if err != nil {
		return nil, err
	}

	kdfHash := cryptoDomain.HashAlgorithm(r.KDFHash)
	if kdfHash == "" {
		kdfHash = cryptoDomain.SHA256
	}
	algorithm := cryptoDomain.Algorithm(r.Algorithm)
	if algorithm == "" {
		algorithm = cryptoDomain.AESGCM
	}

	return &recordsDomain.CreateRecordInput{
		Sealed: cryptoDomain.SealedPayload{
			Ciphertext:    ciphertext,
			IV:            iv,
			AuthTag:       authTag,
			IntegrityHash: r.IntegrityHash,
			KDF: cryptoDomain.KDFParams{
				Salt:       salt,
				Iterations: r.KDFIterations,
				Hash:       kdfHash,
			},
			Algorithm: algorithm,
		},
		MaskSurrogate: r.MaskSurrogate,
		RecordType:    r.RecordType,
		Tags:          r.Tags,
		ExpiresAt:     r.ExpiresAt,
	}, nil
}
