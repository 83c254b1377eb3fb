package parse

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrain-io/entrain/schema"
)

// TestChatGPTCanParse accepts conversations.json and ZIPs containing it.
func TestChatGPTCanParse(t *testing.T) {
	parser := NewChatGPTParser()

	assert.True(t, parser.CanParse(writeFile(t, "conversations.json", "[]")))
	assert.True(t, parser.CanParse(writeZip(t, "export.zip", map[string]string{
		"conversations.json": "[]",
		"user.json":          "{}",
	})))
	assert.False(t, parser.CanParse(writeZip(t, "export.zip", map[string]string{"user.json": "{}"})))
	assert.False(t, parser.CanParse(writeFile(t, "other.json", "[]")))
	assert.False(t, parser.CanParse(writeFile(t, "export.zip", "not a zip")))
	assert.False(t, parser.CanParse(filepath.Join(t.TempDir(), "conversations.json")))
}

// TestChatGPTParseMappingTree flattens the node tree into chronological
// events, dropping system nodes and empty conversations. Node keys are
// chosen so alphabetical order disagrees with create_time order.
func TestChatGPTParseMappingTree(t *testing.T) {
	payload := []any{
		map[string]any{
			"id":          "conv-1",
			"title":       "Travel plans",
			"create_time": 1700000000.0,
			"update_time": 1700000400.0,
			"mapping": map[string]any{
				"aaa-assistant": map[string]any{
					"message": map[string]any{
						"id":          "msg-2",
						"author":      map[string]any{"role": "assistant"},
						"create_time": 1700000200.0,
						"content": map[string]any{"parts": []any{
							"That sounds hard.",
							map[string]any{"text": "Here are some options."},
						}},
						"metadata": map[string]any{
							"model_slug":     "gpt-4o",
							"finish_details": map[string]any{"type": "stop"},
						},
					},
				},
				"bbb-user": map[string]any{
					"message": map[string]any{
						"id":          "msg-1",
						"author":      map[string]any{"role": "user", "name": "traveler"},
						"create_time": 1700000100.0,
						"content":     map[string]any{"parts": []any{"Should I quit my job?"}},
					},
				},
				"ccc-root": map[string]any{"message": nil},
				"ddd-system": map[string]any{
					"message": map[string]any{
						"id":          "msg-0",
						"author":      map[string]any{"role": "system"},
						"create_time": 1700000050.0,
						"content":     map[string]any{"parts": []any{"You are helpful."}},
					},
				},
			},
		},
		map[string]any{"id": "conv-empty", "mapping": map[string]any{}},
	}

	corpus, err := NewChatGPTParser().Parse(writeJSON(t, "conversations.json", payload))
	require.NoError(t, err)
	require.Len(t, corpus.Conversations, 1)
	require.NotNil(t, corpus.DateRange)
	assert.Equal(t, epochTime(1700000100), corpus.DateRange.Start)
	assert.Equal(t, epochTime(1700000200), corpus.DateRange.End)

	conv := corpus.Conversations[0]
	assert.Equal(t, "conv-1", conv.ID)
	assert.Equal(t, "chatgpt", conv.Source)
	assert.Equal(t, "Travel plans", conv.Metadata["title"])
	assert.Equal(t, 1700000000.0, conv.Metadata["create_time"])

	require.Len(t, conv.Events, 2)
	first, second := conv.Events[0], conv.Events[1]
	assert.Equal(t, "msg-1", first.ID)
	assert.Equal(t, "conv-1", first.ConversationID)
	assert.Equal(t, schema.UserRole, first.Role)
	assert.Equal(t, "Should I quit my job?", first.TextContent)
	assert.Equal(t, epochTime(1700000100), first.Timestamp)
	assert.Equal(t, "traveler", first.Metadata["author_name"])
	assert.Equal(t, "", first.Metadata["model"])

	assert.Equal(t, schema.AssistantRole, second.Role)
	assert.Equal(t, "That sounds hard.\nHere are some options.", second.TextContent)
	assert.Equal(t, "gpt-4o", second.Metadata["model"])
	assert.Equal(t, "stop", second.Metadata["finish_reason"])
	assert.Equal(t, "", second.Metadata["author_name"])
}

// TestChatGPTParseZip reads conversations.json out of the export ZIP.
func TestChatGPTParseZip(t *testing.T) {
	raw, err := json.Marshal([]any{map[string]any{
		"id": "conv-z",
		"mapping": map[string]any{
			"n1": map[string]any{"message": map[string]any{
				"author":      map[string]any{"role": "user"},
				"content":     map[string]any{"parts": []any{"zipped hello"}},
				"create_time": 1700000000.0,
			}},
		},
	}})
	require.NoError(t, err)

	path := writeZip(t, "export.zip", map[string]string{
		"conversations.json":    string(raw),
		"message_feedback.json": "[]",
	})
	corpus, err := NewChatGPTParser().Parse(path)
	require.NoError(t, err)
	require.Len(t, corpus.Conversations, 1)
	assert.Equal(t, "zipped hello", corpus.Conversations[0].Events[0].TextContent)
}

// TestChatGPTParseErrors rejects missing files and non-array payloads.
func TestChatGPTParseErrors(t *testing.T) {
	parser := NewChatGPTParser()

	_, err := parser.Parse(filepath.Join(t.TempDir(), "conversations.json"))
	assert.ErrorContains(t, err, "export file not found")

	_, err = parser.Parse(writeFile(t, "conversations.json", `{"not": "a list"}`))
	assert.ErrorContains(t, err, "invalid ChatGPT export")
}

// TestChatGPTParseSkipsBadEntries keeps going past entries that are not
// conversation objects and falls back to positional event ids.
func TestChatGPTParseSkipsBadEntries(t *testing.T) {
	payload := []any{
		"garbage",
		map[string]any{
			"id": "conv-1",
			"mapping": map[string]any{
				"n1": map[string]any{"message": map[string]any{
					"author":      map[string]any{"role": "user"},
					"content":     map[string]any{"parts": []any{"hi"}},
					"create_time": 1700000000.0,
				}},
			},
		},
	}
	corpus, err := NewChatGPTParser().Parse(writeJSON(t, "conversations.json", payload))
	require.NoError(t, err)
	require.Len(t, corpus.Conversations, 1)
	assert.Equal(t, "conv-1_0", corpus.Conversations[0].Events[0].ID)
}

// TestChatGPTMissingCreateTime falls back to the ingestion time.
func TestChatGPTMissingCreateTime(t *testing.T) {
	payload := []any{map[string]any{
		"id": "conv-1",
		"mapping": map[string]any{
			"n1": map[string]any{"message": map[string]any{
				"author":  map[string]any{"role": "user"},
				"content": map[string]any{"parts": []any{"no clock"}},
			}},
		},
	}}
	corpus, err := NewChatGPTParser().Parse(writeJSON(t, "conversations.json", payload))
	require.NoError(t, err)
	event := corpus.Conversations[0].Events[0]
	assert.WithinDuration(t, time.Now(), event.Timestamp, time.Minute)
}

// TestTextFromParts covers the content part shapes seen in exports.
func TestTextFromParts(t *testing.T) {
	for _, tc := range []struct {
		name  string
		parts []any
		want  string
	}{
		{"strings", []any{"a", "b"}, "a\nb"},
		{"text object", []any{map[string]any{"text": "from object"}}, "from object"},
		{"content object", []any{map[string]any{"content": 42.0}}, "42"},
		{"object without text", []any{map[string]any{"kind": "image"}}, ""},
		{"null part", []any{nil, "tail"}, "tail"},
		{"number part", []any{12.5}, "12.5"},
		{"empty", nil, ""},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, textFromParts(tc.parts))
		})
	}
}
