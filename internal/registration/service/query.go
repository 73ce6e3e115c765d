package service

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"intake/internal/registration/models"
	dErrors "intake/pkg/domain-errors"
)

// ListQuery carries sanitized listing parameters. The handler clamps page to
// ≥ 0 and size to [1, 100] before calling List.
type ListQuery struct {
	Page       int
	Size       int
	Name       string
	Influencer string
}

// List fetches the full collection ordered by creation time, filters it in
// memory, and slices one page.
//
// The store offers no combined field-filter + offset query, so correctness
// requires the full ordered fetch. Acceptable at this data scale; the filter
// and paginate steps are pure functions so a store-side cursor implementation
// could replace the fetch without changing their contracts.
func (s *Service) List(ctx context.Context, q ListQuery) (*models.Page, error) {
	ctx, span := s.tracer.Start(ctx, "registration.list")
	defer span.End()
	span.SetAttributes(
		attribute.Int("page", q.Page),
		attribute.Int("size", q.Size),
	)

	docs, err := s.store.QueryAll(ctx, Collection, "createdAt", true)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to fetch registrations")
	}

	records := make([]*models.Record, 0, len(docs))
	for _, doc := range docs {
		record, err := mapRecord(doc)
		if err != nil {
			// A malformed document degrades to a skipped item, not a failed
			// listing.
			s.logger.WarnContext(ctx, "skipping unmappable registration",
				"id", doc.ID,
				"error", err,
			)
			continue
		}
		if record == nil {
			continue
		}
		records = append(records, record)
	}

	records = filterByName(records, q.Name)
	records = filterByInfluencer(records, q.Influencer)

	span.SetAttributes(attribute.Int("matched", len(records)))
	return paginate(records, q.Page, q.Size), nil
}

// filterByName keeps records whose first, last, or middle name contains the
// trimmed term, case-insensitively. A blank term keeps everything.
func filterByName(records []*models.Record, term string) []*models.Record {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return records
	}
	out := records[:0]
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.FirstName), term) ||
			strings.Contains(strings.ToLower(r.LastName), term) ||
			strings.Contains(strings.ToLower(r.MiddleName), term) {
			out = append(out, r)
		}
	}
	return out
}

// filterByInfluencer keeps records attributed to the given promoter. The
// default promoter's name selects records with default attribution (no
// influencerId); anything else matches the stored influencerId
// case-insensitively. A blank filter keeps everything.
func filterByInfluencer(records []*models.Record, filter string) []*models.Record {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return records
	}
	matchDefault := strings.EqualFold(filter, defaultPromoterName)
	out := records[:0]
	for _, r := range records {
		if matchDefault {
			if r.InfluencerID == "" && strings.EqualFold(r.ReferredBy, defaultPromoterName) {
				out = append(out, r)
			}
			continue
		}
		if r.InfluencerID != "" && strings.EqualFold(r.InfluencerID, filter) {
			out = append(out, r)
		}
	}
	return out
}

// paginate slices one page out of the filtered records and derives the
// pagination metadata. An out-of-range page yields an empty data slice with
// accurate metadata.
func paginate(records []*models.Record, page, size int) *models.Page {
	totalElements := len(records)
	totalPages := (totalElements + size - 1) / size

	start := page * size
	end := min(start+size, totalElements)

	data := []*models.Record{}
	if start < totalElements {
		data = records[start:end]
	}

	return &models.Page{
		Data:          data,
		Page:          page,
		Size:          size,
		TotalElements: int64(totalElements),
		TotalPages:    totalPages,
		HasNext:       page < totalPages-1,
		HasPrevious:   page > 0,
	}
}
