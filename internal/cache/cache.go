package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/sjktech/odledger/internal/domain"
)

// ResultCache stores finished simulation results keyed by request
// fingerprint. Ledgers are fully recomputable, so the cache only ever holds
// redundant data; a lost or stale entry costs one recomputation.
type ResultCache interface {
	// Get returns the cached result for key, or (nil, nil) on a miss.
	Get(ctx context.Context, key string) (*domain.SimulationResult, error)

	// Set stores the result under key for the cache's configured TTL.
	Set(ctx context.Context, key string, result *domain.SimulationResult) error
}

// Fingerprint derives the cache key of a request from the SHA-256 of its
// canonical JSON form. Requests that simulate the same ledger share a key;
// any change to terms, override, or events produces a new one.
func Fingerprint(request *domain.SimulationRequest) (string, error) {
	payload, err := json.Marshal(request)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return "odledger:sim:" + hex.EncodeToString(sum[:]), nil
}
