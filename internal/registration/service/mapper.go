package service

import (
	"fmt"
	"strconv"

	"intake/internal/docstore"
	"intake/internal/influencer"
	"intake/internal/registration/models"
)

const defaultPromoterName = influencer.DefaultName

// mapRecord normalizes a stored document into the response shape. A document
// with no field data maps to (nil, nil): absent, not an error. Unrecognized
// field shapes are a mapping error for that call, never best-effort coerced.
func mapRecord(doc *docstore.Document) (*models.Record, error) {
	if doc == nil || len(doc.Fields) == 0 {
		return nil, nil
	}
	data := doc.Fields

	age, err := normalizeAge(data["age"])
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", doc.ID, err)
	}

	createdAt, err := epochMillis(data["createdAt"])
	if err != nil {
		return nil, fmt.Errorf("document %s: createdAt: %w", doc.ID, err)
	}
	updatedAt, err := epochMillis(data["updatedAt"])
	if err != nil {
		return nil, fmt.Errorf("document %s: updatedAt: %w", doc.ID, err)
	}

	return &models.Record{
		ID:                      doc.ID,
		FirstName:               stringField(data, "firstName"),
		MiddleName:              stringField(data, "middleName"),
		LastName:                stringField(data, "lastName"),
		Age:                     age,
		MobileNumber:            stringField(data, "mobileNumber"),
		EmailAddress:            stringField(data, "emailAddress"),
		Profession:              stringField(data, "profession"),
		ProfessionOther:         stringField(data, "professionOther"),
		InvestmentBackground:    stringField(data, "investmentBackground"),
		CurrentInvestments:      stringListField(data, "currentInvestments"),
		CurrentInvestmentsOther: stringField(data, "currentInvestmentsOther"),
		MostInterestedIn:        stringField(data, "mostInterestedIn"),
		CreatedAt:               createdAt,
		UpdatedAt:               updatedAt,
		ReferredBy:              stringField(data, "referredBy"),
		InfluencerID:            stringField(data, "influencerId"),
	}, nil
}

// normalizeAge folds the historically inconsistent stored shapes (free-text
// string in newer documents, integer in legacy ones) into the canonical
// string form.
func normalizeAge(v any) (string, error) {
	switch age := v.(type) {
	case nil:
		return "", nil
	case string:
		return age, nil
	case int:
		return strconv.Itoa(age), nil
	case int64:
		return strconv.FormatInt(age, 10), nil
	case float64:
		return strconv.FormatFloat(age, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("unexpected age type %T", v)
	}
}

func epochMillis(v any) (int64, error) {
	switch ts := v.(type) {
	case nil:
		return 0, nil
	case int64:
		return ts, nil
	case int:
		return int64(ts), nil
	case float64:
		return int64(ts), nil
	default:
		return 0, fmt.Errorf("unexpected timestamp type %T", v)
	}
}

func stringField(data map[string]any, key string) string {
	s, _ := data[key].(string)
	return s
}

// stringListField copies the list only when the stored value is actually
// list-shaped; malformed legacy data degrades to an absent list.
func stringListField(data map[string]any, key string) []string {
	switch list := data[key].(type) {
	case []string:
		return append([]string(nil), list...)
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
