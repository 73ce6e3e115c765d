package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogPublisherEmit(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	publisher := NewLogPublisher(logger)

	err := publisher.Emit(context.Background(), Event{
		Timestamp: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
		Action:    ActionRegistrationCreated,
		Subject:   "reg-1",
		Detail:    "CCG",
	})
	require.NoError(t, err)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, ActionRegistrationCreated, line["action"])
	assert.Equal(t, "reg-1", line["subject"])
}

func TestEventJSONShape(t *testing.T) {
	raw, err := json.Marshal(Event{
		Timestamp: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
		Action:    ActionRegistrationDeleted,
		Subject:   "reg-2",
	})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, ActionRegistrationDeleted, decoded["action"])
	assert.Equal(t, "reg-2", decoded["subject"])
	assert.Contains(t, decoded, "timestamp")
}
