package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intake/internal/docstore"
)

func TestMapRecordNormalizesAge(t *testing.T) {
	cases := []struct {
		name string
		age  any
		want string
	}{
		{"string age", "34", "34"},
		{"int64 age", int64(34), "34"},
		{"int age", 34, "34"},
		{"float age", float64(34), "34"},
		{"missing age", nil, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := &docstore.Document{ID: "reg-1", Fields: map[string]any{
				"firstName": "Sherine",
				"age":       tc.age,
				"createdAt": int64(1700000000000),
				"updatedAt": int64(1700000000000),
			}}
			if tc.age == nil {
				delete(doc.Fields, "age")
			}
			record, err := mapRecord(doc)
			require.NoError(t, err)
			require.NotNil(t, record)
			assert.Equal(t, tc.want, record.Age)
		})
	}
}

func TestMapRecordRejectsUnexpectedAgeShape(t *testing.T) {
	doc := &docstore.Document{ID: "reg-bad", Fields: map[string]any{
		"firstName": "Sherine",
		"age":       map[string]any{"value": 34},
	}}
	_, err := mapRecord(doc)
	require.Error(t, err)
}

func TestMapRecordAbsentDocument(t *testing.T) {
	record, err := mapRecord(&docstore.Document{ID: "reg-empty", Fields: nil})
	require.NoError(t, err)
	assert.Nil(t, record)

	record, err = mapRecord(nil)
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestMapRecordInvestmentsShapes(t *testing.T) {
	t.Run("string slice", func(t *testing.T) {
		doc := &docstore.Document{ID: "r", Fields: map[string]any{
			"currentInvestments": []string{"Stocks", "Gold"},
		}}
		record, err := mapRecord(doc)
		require.NoError(t, err)
		assert.Equal(t, []string{"Stocks", "Gold"}, record.CurrentInvestments)
	})

	t.Run("any slice from JSON decode", func(t *testing.T) {
		doc := &docstore.Document{ID: "r", Fields: map[string]any{
			"currentInvestments": []any{"Stocks", "Gold"},
		}}
		record, err := mapRecord(doc)
		require.NoError(t, err)
		assert.Equal(t, []string{"Stocks", "Gold"}, record.CurrentInvestments)
	})

	t.Run("malformed legacy value is dropped", func(t *testing.T) {
		doc := &docstore.Document{ID: "r", Fields: map[string]any{
			"currentInvestments": "Stocks",
		}}
		record, err := mapRecord(doc)
		require.NoError(t, err)
		assert.Nil(t, record.CurrentInvestments)
	})
}

func TestMapRecordCopiesAttribution(t *testing.T) {
	doc := &docstore.Document{ID: "reg-attr", Fields: map[string]any{
		"firstName":    "Farah",
		"referredBy":   "Farah nofal",
		"influencerId": "FN6C4T9R1VXZ",
		"createdAt":    int64(1700000000001),
		"updatedAt":    float64(1700000000001),
	}}
	record, err := mapRecord(doc)
	require.NoError(t, err)
	assert.Equal(t, "Farah nofal", record.ReferredBy)
	assert.Equal(t, "FN6C4T9R1VXZ", record.InfluencerID)
	assert.Equal(t, int64(1700000000001), record.CreatedAt)
	assert.Equal(t, int64(1700000000001), record.UpdatedAt)
}
