package schema_test

import (
	"testing"
	"time"

	"github.com/entrain-io/entrain/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func textEvent(id string, role schema.Role, offset time.Duration, text string) schema.InteractionEvent {
	return schema.InteractionEvent{
		ID:             id,
		ConversationID: "conv_1",
		Timestamp:      baseTime.Add(offset),
		Role:           role,
		TextContent:    text,
	}
}

func TestConversationRoleFilters(t *testing.T) {
	conv := schema.Conversation{
		ID:     "conv_1",
		Source: "generic",
		Events: []schema.InteractionEvent{
			textEvent("e1", schema.UserRole, 0, "Hello"),
			textEvent("e2", schema.AssistantRole, time.Minute, "Hi there"),
			textEvent("e3", schema.UserRole, 2*time.Minute, "How are you?"),
		},
	}

	users := conv.UserEvents()
	assistants := conv.AssistantEvents()

	require.Len(t, users, 2)
	require.Len(t, assistants, 1)
	assert.Equal(t, "e1", users[0].ID)
	assert.Equal(t, "e3", users[1].ID)
	assert.Equal(t, "e2", assistants[0].ID)
}

func TestConversationDuration(t *testing.T) {
	tests := []struct {
		name     string
		events   []schema.InteractionEvent
		expected time.Duration
		ok       bool
	}{
		{
			name: "Two Events",
			events: []schema.InteractionEvent{
				textEvent("e1", schema.UserRole, 0, "Hello"),
				textEvent("e2", schema.AssistantRole, 5*time.Minute, "Hi"),
			},
			expected: 5 * time.Minute,
			ok:       true,
		},
		{
			name: "Single Event",
			events: []schema.InteractionEvent{
				textEvent("e1", schema.UserRole, 0, "Hello"),
			},
			ok: false,
		},
		{
			name: "No Events",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conv := schema.Conversation{ID: "conv_1", Events: tt.events}
			dur, ok := conv.Duration()
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, dur)
			}
		})
	}
}

func TestConversationModalityChecks(t *testing.T) {
	textOnly := schema.Conversation{
		ID: "conv_1",
		Events: []schema.InteractionEvent{
			textEvent("e1", schema.UserRole, 0, "Hello"),
		},
	}
	assert.True(t, textOnly.HasTextContent())
	assert.False(t, textOnly.HasAudioFeatures())

	withAudio := schema.Conversation{
		ID: "conv_2",
		Events: []schema.InteractionEvent{
			{
				ID:        "e1",
				Timestamp: baseTime,
				Role:      schema.UserRole,
				AudioFeatures: &schema.AudioFeatures{
					PitchMean: 180.0,
				},
			},
		},
	}
	assert.False(t, withAudio.HasTextContent())
	assert.True(t, withAudio.HasAudioFeatures())
}

func TestNewCorpusDateRange(t *testing.T) {
	convs := []schema.Conversation{
		{
			ID: "conv_1",
			Events: []schema.InteractionEvent{
				textEvent("e1", schema.UserRole, 0, "Hello"),
				textEvent("e2", schema.AssistantRole, time.Minute, "Hi"),
			},
		},
		{
			ID: "conv_2",
			Events: []schema.InteractionEvent{
				textEvent("e3", schema.UserRole, 48*time.Hour, "Back again"),
			},
		},
	}

	corpus := schema.NewCorpus(convs, "test_user_123")

	require.NotNil(t, corpus.DateRange)
	assert.Equal(t, baseTime, corpus.DateRange.Start)
	assert.Equal(t, baseTime.Add(48*time.Hour), corpus.DateRange.End)
	assert.Equal(t, "test_user_123", corpus.UserID)
	assert.Equal(t, 3, corpus.EventCount())
}

func TestNewCorpusEmpty(t *testing.T) {
	corpus := schema.NewCorpus(nil, "")
	assert.Nil(t, corpus.DateRange)
	assert.Equal(t, 0, corpus.EventCount())
}
