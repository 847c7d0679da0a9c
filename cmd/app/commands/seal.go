package commands

import (
	"bufio"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	cryptoDomain "github.com/allisson/sealbox/internal/crypto/domain"
	cryptoService "github.com/allisson/sealbox/internal/crypto/service"
	"github.com/allisson/sealbox/internal/masking"
	"github.com/allisson/sealbox/internal/records/http/dto"
)

// SealParams describes the record produced by RunSeal.
type SealParams struct {
	RecordType string
	Tags       []string
	Iterations int
	Hash       string
	Algorithm  string
	ExpiresAt  *time.Time
}

// RunSeal seals a value on the client side and prints the JSON body for POST /v1/records. The
// first line read from io.Reader is the credential, everything after it is the plaintext. The mask
// surrogate is computed from the plaintext with the built-in masking rules keyed by RecordType.
func RunSeal(
	sealer cryptoService.Sealer,
	masker *masking.Masker,
	logger *slog.Logger,
	params SealParams,
	io IOTuple,
) error {
	credential, plaintext, err := readSealInput(io.Reader)
	if err != nil {
		return err
	}
	defer cryptoDomain.Zero(credential)
	defer cryptoDomain.Zero(plaintext)

	hash := cryptoDomain.HashAlgorithm(params.Hash)
	if hash != "" && !hash.Valid() {
		return fmt.Errorf("unsupported kdf hash: %s", params.Hash)
	}
	algorithm := cryptoDomain.Algorithm(params.Algorithm)
	if algorithm != "" && !algorithm.Valid() {
		return fmt.Errorf("unsupported algorithm: %s", params.Algorithm)
	}

	sealed, err := sealer.Seal(credential, plaintext, cryptoService.SealOptions{
		Iterations: params.Iterations,
		Hash:       hash,
		Algorithm:  algorithm,
	})
	if err != nil {
		return fmt.Errorf("failed to seal value: %w", err)
	}

	encode := base64.StdEncoding.EncodeToString
	request := dto.CreateRecordRequest{
		Ciphertext:    encode(sealed.Ciphertext),
		IV:            encode(sealed.IV),
		AuthTag:       encode(sealed.AuthTag),
		IntegrityHash: sealed.IntegrityHash,
		KDFSalt:       encode(sealed.KDF.Salt),
		KDFIterations: sealed.KDF.Iterations,
		KDFHash:       string(sealed.KDF.Hash),
		Algorithm:     string(sealed.Algorithm),
		MaskSurrogate: masker.Mask(params.RecordType, string(plaintext)),
		RecordType:    params.RecordType,
		Tags:          params.Tags,
		ExpiresAt:     params.ExpiresAt,
	}

	if err := writeJSON(io.Writer, request); err != nil {
		return err
	}

	logger.Info("value sealed",
		slog.String("record_type", params.RecordType),
		slog.String("algorithm", request.Algorithm),
		slog.Int("kdf_iterations", request.KDFIterations),
	)
	return nil
}

func readSealInput(reader io.Reader) (credential, plaintext []byte, err error) {
	if reader == nil {
		return nil, nil, fmt.Errorf("no input")
	}

	buffered := bufio.NewReader(reader)
	line, err := buffered.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, nil, fmt.Errorf("failed to read credential: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return nil, nil, fmt.Errorf("credential cannot be empty")
	}

	rest, err := io.ReadAll(buffered)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read plaintext: %w", err)
	}
	value := strings.TrimRight(string(rest), "\r\n")
	if value == "" {
		return nil, nil, fmt.Errorf("plaintext cannot be empty")
	}

	return []byte(line), []byte(value), nil
}
