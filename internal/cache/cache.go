// Package cache stores computed ResourceResults keyed by an input
// fingerprint so a repeated question costs no network calls.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"

	"github.com/itsjustRohitch/ResourceScout/config"
	"github.com/itsjustRohitch/ResourceScout/models"
)

// Cache is the result cache contract. Set failures are swallowed by
// implementations; caching is best-effort.
type Cache interface {
	Get(ctx context.Context, key string) (*models.ResourceResult, bool)
	Set(ctx context.Context, key string, res *models.ResourceResult)
}

// Key derives the cache fingerprint from input content only. Length
// prefixes keep (a, bc) and (ab, c) from colliding. API keys and session
// ids never enter the digest.
func Key(query, docContext string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%d:%s", len(query), query)
	fmt.Fprintf(h, "%d:%s", len(docContext), docContext)
	return hex.EncodeToString(h.Sum(nil))
}

// New builds the configured cache backend.
func New(ctx context.Context, cfg config.CacheConfig, logger *log.Logger) (Cache, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemory(), nil
	case "redis":
		client, err := Conn(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return NewRedis(client, cfg.TTL, logger), nil
	default:
		return nil, fmt.Errorf("unsupported cache backend: %s", cfg.Backend)
	}
}
