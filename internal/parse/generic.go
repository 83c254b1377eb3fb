package parse

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/entrain-io/entrain/schema"
)

var (
	genericRoleFields    = []string{"role", "sender", "author", "from"}
	genericContentFields = []string{"content", "text", "message", "msg", "body"}

	genericTimeLayouts = []string{
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006/01/02 15:04:05",
		"02/01/2006 15:04:05",
		"01/02/2006 15:04:05",
		"2006-01-02",
		"02/01/2006",
		"01/02/2006",
	}

	// knownEventFields are consumed into typed event attributes;
	// anything else a row carries passes through into event metadata.
	knownEventFields = map[string]struct{}{
		"role": {}, "sender": {}, "author": {}, "from": {},
		"content": {}, "text": {}, "message": {}, "msg": {}, "body": {},
		"timestamp": {}, "time": {}, "date": {}, "created_at": {},
		"id": {}, "message_id": {},
		"conversation_id": {}, "conv_id": {}, "chat_id": {},
		"audio_features": {},
	}
)

// GenericParser ingests user-structured CSV and JSON message lists from
// platforms without a dedicated parser. Rows need at least a role and a
// content column; a conversation id column splits rows into separate
// conversations, and unrecognized columns become event metadata.
type GenericParser struct{}

var _ Parser = &GenericParser{}

// NewGenericParser returns the fallback parser for custom exports.
func NewGenericParser() *GenericParser {
	return &GenericParser{}
}

// SourceName returns the platform identifier.
func (p *GenericParser) SourceName() schema.SourceFormat {
	return schema.GenericSource
}

// CanParse accepts CSV files with role and content columns, and JSON
// arrays of message objects that no platform parser claims.
func (p *GenericParser) CanParse(path string) bool {
	if !fileExists(path) {
		return false
	}
	switch filepath.Ext(path) {
	case ".csv":
		return p.validateCSV(path)
	case ".json":
		return p.validateJSON(path)
	}
	return false
}

func (p *GenericParser) validateCSV(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	headers, err := csv.NewReader(f).Read()
	if err != nil {
		return false
	}
	return hasAnyHeader(headers, genericRoleFields) && hasAnyHeader(headers, genericContentFields)
}

func (p *GenericParser) validateJSON(path string) bool {
	raw, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	var data []any
	if err := json.Unmarshal(raw, &data); err != nil {
		return false
	}
	// Empty arrays are valid and parse to an empty corpus.
	if len(data) == 0 {
		return true
	}
	first := asMap(data[0])
	if first == nil {
		return false
	}
	if !hasAnyKey(first, genericRoleFields) || !hasAnyKey(first, genericContentFields) {
		return false
	}
	// Platform-specific markers mean a dedicated parser owns the file.
	for _, field := range []string{"mapping", "character", "character_name", "histories", "swipes"} {
		if hasKey(first, field) {
			return false
		}
	}
	return true
}

func hasAnyHeader(headers, candidates []string) bool {
	for _, h := range headers {
		if slices.Contains(candidates, strings.ToLower(h)) {
			return true
		}
	}
	return false
}

func hasAnyKey(m map[string]any, candidates []string) bool {
	for key := range m {
		if slices.Contains(candidates, strings.ToLower(key)) {
			return true
		}
	}
	return false
}

// Parse reads a generic CSV or JSON export into a corpus.
func (p *GenericParser) Parse(path string) (*schema.Corpus, error) {
	if !fileExists(path) {
		return nil, fmt.Errorf("export file not found: %s", path)
	}
	switch filepath.Ext(path) {
	case ".csv":
		return p.parseCSV(path)
	case ".json":
		return p.parseJSON(path)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}
}

func (p *GenericParser) parseCSV(path string) (*schema.Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return schema.NewCorpus(nil, ""), nil
	}

	headers := records[0]
	rows := make([]map[string]any, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]any, len(headers))
		for i, header := range headers {
			if i < len(record) {
				row[header] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return schema.NewCorpus(p.groupIntoConversations(rows), ""), nil
}

func (p *GenericParser) parseJSON(path string) (*schema.Corpus, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("invalid JSON export: %w", err)
	}
	items, ok := data.([]any)
	if !ok {
		return nil, errors.New("JSON must be an array of message objects")
	}

	var rows []map[string]any
	for _, item := range items {
		if msg := asMap(item); msg != nil {
			rows = append(rows, msg)
		}
	}
	return schema.NewCorpus(p.groupIntoConversations(rows), ""), nil
}

// groupIntoConversations splits rows by conversation id, keeping first
// appearance order. Rows without one share a single conversation.
func (p *GenericParser) groupIntoConversations(rows []map[string]any) []schema.Conversation {
	grouped := make(map[string][]map[string]any)
	var order []string
	for _, row := range rows {
		convID := firstString(row, "conversation_id", "conv_id", "chat_id")
		if convID == "" {
			convID = "conversation_0"
		}
		if _, ok := grouped[convID]; !ok {
			order = append(order, convID)
		}
		grouped[convID] = append(grouped[convID], row)
	}

	var conversations []schema.Conversation
	for _, convID := range order {
		if conv := p.parseMessageRows(grouped[convID], convID); conv != nil {
			conversations = append(conversations, *conv)
		}
	}
	return conversations
}

func (p *GenericParser) parseMessageRows(rows []map[string]any, convID string) *schema.Conversation {
	var events []schema.InteractionEvent
	for idx, msg := range rows {
		role, ok := genericRole(firstString(msg, genericRoleFields...))
		if !ok {
			continue
		}

		content := strings.TrimSpace(firstString(msg, genericContentFields...))
		if content == "" {
			continue
		}

		timestamp := eventTime(msg,
			[]string{"timestamp", "time", "date", "created_at"},
			genericTimeLayouts, true)

		id := firstString(msg, "id", "message_id")
		if id == "" {
			id = fmt.Sprintf("%s_%d", convID, idx)
		}

		events = append(events, schema.InteractionEvent{
			ID:             id,
			ConversationID: convID,
			Timestamp:      timestamp,
			Role:           role,
			TextContent:    content,
			AudioFeatures:  audioFeaturesFrom(msg),
			Metadata:       extraFields(msg),
		})
	}
	sortEventsByTime(events)
	if len(events) == 0 {
		return nil
	}
	return &schema.Conversation{
		ID:       convID,
		Source:   string(schema.GenericSource),
		Events:   events,
		Metadata: map[string]any{"title": fmt.Sprintf("Conversation %s", convID)},
	}
}

// genericRole folds the role spellings down to the two analyzed sides.
// System rows count as assistant output.
func genericRole(role string) (schema.Role, bool) {
	switch strings.ToLower(role) {
	case "user", "human", "you":
		return schema.UserRole, true
	case "assistant", "ai", "bot", "system":
		return schema.AssistantRole, true
	default:
		return "", false
	}
}

// extraFields collects columns that are not consumed into typed event
// attributes. Empty values are dropped.
func extraFields(msg map[string]any) map[string]any {
	metadata := map[string]any{}
	for key, value := range msg {
		if _, known := knownEventFields[key]; known {
			continue
		}
		if truthy(value) {
			metadata[key] = value
		}
	}
	return metadata
}

// audioFeaturesFrom decodes an attached audio_features object, the
// ingestion hook for voice transcripts annotated by an upstream
// acoustic extraction pass.
func audioFeaturesFrom(msg map[string]any) *schema.AudioFeatures {
	obj := asMap(msg["audio_features"])
	if obj == nil {
		return nil
	}
	raw, err := json.Marshal(obj)
	if err != nil {
		return nil
	}
	features := &schema.AudioFeatures{}
	if err := json.Unmarshal(raw, features); err != nil {
		return nil
	}
	return features
}
