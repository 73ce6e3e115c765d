// Package influencer owns the referral-code registry: a fixed, versioned
// code→promoter table held in memory, mirrored into the document store for
// durability and audit. Validity decisions never depend on the store.
package influencer

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"intake/internal/docstore"
	"intake/pkg/platform/sentinel"
)

// Collection is the store collection mirroring the fixed table.
const Collection = "influencers"

// DefaultName is the default promoter, attributed when no referral code is
// supplied. It has no code and is never a valid ?ref= value.
const DefaultName = "CCG"

// defaultDocID is the store key for the default promoter's mirror record.
const defaultDocID = "DEFAULT_CCG"

type entry struct {
	code string
	name string
}

// The fixed referral set. Codes are 12-character uppercase alphanumeric
// tokens; the slice keeps seeding order stable across runs.
var entries = []entry{
	{"SH7X9K2M4PLQ", "Sherine hamdy"},
	{"HR3B8N5W2JKF", "Hasem rasmy"},
	{"FN6C4T9R1VXZ", "Farah nofal"},
	{"AT2Y7H3D8MNP", "Ahmed talaat"},
	{"KS5L9Q4G6BWC", "Khaled el sayed"},
	{"AR8F2K7J3XHT", "Ahmed rashad"},
	{"PS4W6M9N1YRV", "POSH"},
	{"EX7Q3K8L2CTB", "EGX"},
	{"CL9P5H4D6ZJN", "COLLAB"},
}

// Registry answers referral-code validity and name lookups and seeds the
// store mirror. The fixed table is read-only after construction, so the
// Registry is safe for concurrent use.
type Registry struct {
	store  docstore.Store
	logger *slog.Logger
	byCode map[string]string
}

// New builds a Registry over the fixed table with the given store mirror.
func New(store docstore.Store, logger *slog.Logger) *Registry {
	byCode := make(map[string]string, len(entries))
	for _, e := range entries {
		byCode[e.code] = e.name
	}
	return &Registry{
		store:  store,
		logger: logger,
		byCode: byCode,
	}
}

// IsValidCode reports whether code belongs to the fixed referral set.
// Case-insensitive; never touches the store.
func (r *Registry) IsValidCode(code string) bool {
	_, ok := r.byCode[Normalize(code)]
	return ok
}

// ResolveName returns the promoter name for a code. The fixed table is the
// fast path; unknown codes fall back to a store lookup so records seeded by
// an older code set still resolve. Store errors are tolerated as not-found.
func (r *Registry) ResolveName(ctx context.Context, code string) (string, bool) {
	normalized := Normalize(code)
	if name, ok := r.byCode[normalized]; ok {
		return name, true
	}

	doc, err := r.store.Get(ctx, Collection, normalized)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			r.logger.WarnContext(ctx, "influencer store lookup failed",
				"code", normalized,
				"error", err,
			)
		}
		return "", false
	}
	name, ok := doc.Fields["name"].(string)
	return name, ok && name != ""
}

// Seed mirrors the fixed table into the store, writing each entry only when
// absent, plus exactly one default-promoter record. Idempotent across process
// starts. Errors are logged and swallowed: a bootstrap failure must not block
// registration traffic.
//
// The check-then-write is not atomic; concurrent process starts can race and
// write the same entry twice. Set is an idempotent per-key upsert of
// identical data, so the race is harmless.
func (r *Registry) Seed(ctx context.Context) {
	for _, e := range entries {
		if _, err := r.store.Get(ctx, Collection, e.code); err == nil {
			continue
		} else if !errors.Is(err, sentinel.ErrNotFound) {
			r.logger.ErrorContext(ctx, "influencer seed check failed", "code", e.code, "error", err)
			continue
		}

		_, err := r.store.Set(ctx, Collection, e.code, map[string]any{
			"name":      e.name,
			"uniqueId":  e.code,
			"createdAt": time.Now().UnixMilli(),
		})
		if err != nil {
			r.logger.ErrorContext(ctx, "influencer seed write failed", "code", e.code, "error", err)
			continue
		}
		r.logger.InfoContext(ctx, "created influencer", "name", e.name, "code", e.code)
	}

	if _, err := r.store.Get(ctx, Collection, defaultDocID); err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			r.logger.ErrorContext(ctx, "default influencer seed check failed", "error", err)
			return
		}
		_, err := r.store.Set(ctx, Collection, defaultDocID, map[string]any{
			"name":      DefaultName,
			"isDefault": true,
			"createdAt": time.Now().UnixMilli(),
		})
		if err != nil {
			r.logger.ErrorContext(ctx, "default influencer seed write failed", "error", err)
			return
		}
		r.logger.InfoContext(ctx, "created default influencer", "name", DefaultName)
	}
}

// Normalize maps a user-supplied referral code to its canonical stored form.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
