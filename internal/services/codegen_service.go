package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"go.uber.org/zap"

	"github.com/vulgatecnn/afa100-sub001/domain"
)

// codeAlphabet omits 0/O/1/I/L so printed passcodes survive
// transcription. 31 symbols at length 10 gives ~49.5 bits, far beyond what
// a device-rate-limited attacker can enumerate inside a validity window.
const codeAlphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"

// CodeGeneratorImpl implements domain.CodeGenerator with a check-and-
// regenerate loop against live credentials.
type CodeGeneratorImpl struct {
	credRepo   domain.CredentialRepository
	length     int
	maxRetries int
	logger     *zap.Logger
}

// NewCodeGenerator creates a new code generator
func NewCodeGenerator(credRepo domain.CredentialRepository, length, maxRetries int, logger *zap.Logger) domain.CodeGenerator {
	return &CodeGeneratorImpl{
		credRepo:   credRepo,
		length:     length,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

// Generate implements domain.CodeGenerator. A retry-bound hit means the
// live code space is saturated or the store is misbehaving; it is logged
// as an operational alarm, never silently retried forever.
func (g *CodeGeneratorImpl) Generate(ctx context.Context) (string, error) {
	for attempt := 0; attempt < g.maxRetries; attempt++ {
		code, err := g.randomCode()
		if err != nil {
			return "", fmt.Errorf("failed to draw random code: %w", err)
		}

		taken, err := g.credRepo.CodeValueTaken(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check code uniqueness: %w", err)
		}
		if !taken {
			return code, nil
		}

		g.logger.Warn("passcode collision, regenerating",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", g.maxRetries))
	}

	g.logger.Error("passcode generation retry bound hit",
		zap.Int("max_retries", g.maxRetries),
		zap.Int("code_length", g.length))
	return "", domain.ErrGenerationExhausted
}

func (g *CodeGeneratorImpl) randomCode() (string, error) {
	max := big.NewInt(int64(len(codeAlphabet)))
	out := make([]byte, g.length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = codeAlphabet[n.Int64()]
	}
	return string(out), nil
}
