package parse

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/entrain-io/entrain/internal/contract"
	"github.com/entrain-io/entrain/schema"
)

var claudeTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02 15:04:05",
}

// ClaudeParser ingests Claude conversation exports: claude.ai data
// export ZIPs, Claude Code JSONL transcripts and the JSON shapes
// produced by browser extensions. The exact variant is auto-detected.
type ClaudeParser struct{}

var _ Parser = &ClaudeParser{}

// NewClaudeParser returns a parser for Claude export formats.
func NewClaudeParser() *ClaudeParser {
	return &ClaudeParser{}
}

// SourceName returns the platform identifier.
func (p *ClaudeParser) SourceName() schema.SourceFormat {
	return schema.ClaudeSource
}

// CanParse accepts JSONL files, ZIPs with Claude-looking members and
// JSON files whose structure matches a known Claude export shape.
func (p *ClaudeParser) CanParse(path string) bool {
	if !fileExists(path) {
		return false
	}
	switch filepath.Ext(path) {
	case ".zip":
		zr, err := zip.OpenReader(path)
		if err != nil {
			return false
		}
		defer zr.Close()
		for _, f := range zr.File {
			if strings.Contains(strings.ToLower(f.Name), "claude") ||
				strings.HasSuffix(f.Name, ".jsonl") ||
				strings.HasSuffix(f.Name, "conversations.json") {
				return true
			}
		}
		return false
	case ".jsonl":
		return true
	case ".json":
		raw, err := os.ReadFile(path)
		if err != nil {
			return false
		}
		var data any
		if err := json.Unmarshal(raw, &data); err != nil {
			return false
		}
		return isClaudeShape(data)
	}
	return false
}

// isClaudeShape heuristically detects a Claude export structure.
func isClaudeShape(data any) bool {
	switch t := data.(type) {
	case map[string]any:
		for _, key := range []string{"claude_version", "anthropic", "model", "conversation_id", "uuid"} {
			if hasKey(t, key) {
				return true
			}
		}
		if messages := asList(t["messages"]); len(messages) > 0 {
			if first := asMap(messages[0]); first != nil && hasKey(first, "role") {
				return true
			}
		}
		return hasKey(t, "conversation") || hasKey(t, "chat")
	case []any:
		first := asMap(firstItem(t))
		if first == nil {
			return false
		}
		if hasKey(first, "role") && hasKey(first, "content") {
			return true
		}
		return hasKey(first, "messages") || hasKey(first, "conversation")
	}
	return false
}

// Parse reads a Claude export into a corpus.
func (p *ClaudeParser) Parse(path string) (*schema.Corpus, error) {
	if !fileExists(path) {
		return nil, fmt.Errorf("export file not found: %s", path)
	}
	switch filepath.Ext(path) {
	case ".zip":
		return p.parseZip(path)
	case ".jsonl":
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return schema.NewCorpus(p.parseJSONLContent(string(raw)), ""), nil
	default:
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var data any
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("invalid Claude export: %w", err)
		}
		return schema.NewCorpus(p.parseJSONData(data), ""), nil
	}
}

// parseZip walks every JSON and JSONL member of the archive. Members
// that fail to decode are skipped with a warning.
func (p *ClaudeParser) parseZip(path string) (*schema.Corpus, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var conversations []schema.Conversation
	for _, f := range zr.File {
		if !strings.HasSuffix(f.Name, ".json") && !strings.HasSuffix(f.Name, ".jsonl") {
			continue
		}
		raw, err := readZipFile(f)
		if err != nil {
			contract.LogWarn(fmt.Sprintf("Failed to parse %s", f.Name), err)
			continue
		}
		if strings.HasSuffix(f.Name, ".jsonl") {
			conversations = append(conversations, p.parseJSONLContent(string(raw))...)
			continue
		}
		var data any
		if err := json.Unmarshal(raw, &data); err != nil {
			contract.LogWarn(fmt.Sprintf("Failed to parse %s", f.Name), err)
			continue
		}
		conversations = append(conversations, p.parseJSONData(data)...)
	}
	return schema.NewCorpus(conversations, ""), nil
}

// parseJSONLContent decodes one conversation per line, the Claude Code
// transcript layout.
func (p *ClaudeParser) parseJSONLContent(content string) []schema.Conversation {
	var conversations []schema.Conversation
	for i, line := range strings.Split(strings.TrimSpace(content), "\n") {
		lineNum := i + 1
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var data any
		if err := json.Unmarshal([]byte(line), &data); err != nil {
			contract.LogWarn(fmt.Sprintf("Invalid JSON on line %d", lineNum), err)
			continue
		}
		obj := asMap(data)
		if obj == nil {
			continue
		}
		if conv := p.parseConversationObject(obj, fmt.Sprintf("line_%d", lineNum)); conv != nil {
			conversations = append(conversations, *conv)
		}
	}
	return conversations
}

// parseJSONData handles the JSON layout variants: an array of
// conversation objects, a bare message array, a container with a
// conversations key, or a single conversation object.
func (p *ClaudeParser) parseJSONData(data any) []schema.Conversation {
	var conversations []schema.Conversation
	appendConv := func(conv *schema.Conversation) {
		if conv != nil && len(conv.Events) > 0 {
			conversations = append(conversations, *conv)
		}
	}

	switch t := data.(type) {
	case []any:
		first := asMap(firstItem(t))
		if first == nil {
			return nil
		}
		if hasKey(first, "messages") || hasKey(first, "conversation") {
			for idx, item := range t {
				if obj := asMap(item); obj != nil {
					appendConv(p.parseConversationObject(obj, fmt.Sprintf("conv_%d", idx)))
				}
			}
		} else if hasKey(first, "role") && hasKey(first, "content") {
			appendConv(p.parseMessageArray(t, "conversation_0"))
		}
	case map[string]any:
		if hasKey(t, "conversations") {
			for idx, item := range asList(t["conversations"]) {
				if obj := asMap(item); obj != nil {
					appendConv(p.parseConversationObject(obj, fmt.Sprintf("conv_%d", idx)))
				}
			}
		} else {
			appendConv(p.parseConversationObject(t, "conversation_0"))
		}
	}
	return conversations
}

func (p *ClaudeParser) parseConversationObject(conv map[string]any, defaultID string) *schema.Conversation {
	convID := firstString(conv, "id", "uuid")
	if convID == "" {
		convID = defaultID
	}
	title := firstString(conv, "title", "name")
	if title == "" {
		title = "Untitled"
	}

	metadata := map[string]any{
		"title":      title,
		"created_at": firstTruthy(conv, "created_at", "timestamp"),
		"updated_at": conv["updated_at"],
	}
	if v, ok := conv["model"]; ok {
		metadata["model"] = v
	}

	events := p.parseMessages(asList(firstTruthy(conv, "messages", "chat")), convID)
	if len(events) == 0 {
		return nil
	}
	return &schema.Conversation{
		ID:       convID,
		Source:   string(schema.ClaudeSource),
		Events:   events,
		Metadata: metadata,
	}
}

func (p *ClaudeParser) parseMessageArray(messages []any, convID string) *schema.Conversation {
	events := p.parseMessages(messages, convID)
	if len(events) == 0 {
		return nil
	}
	return &schema.Conversation{
		ID:       convID,
		Source:   string(schema.ClaudeSource),
		Events:   events,
		Metadata: map[string]any{"title": "Untitled"},
	}
}

func (p *ClaudeParser) parseMessages(messages []any, convID string) []schema.InteractionEvent {
	var events []schema.InteractionEvent
	for idx, item := range messages {
		msg := asMap(item)
		if msg == nil {
			continue
		}

		role, ok := claudeRole(firstTruthy(msg, "role", "sender", "author"))
		if !ok {
			continue
		}

		content := claudeContent(firstTruthy(msg, "content", "text", "message"))
		if content == "" {
			continue
		}

		timestamp := eventTime(msg,
			[]string{"timestamp", "created_at", "time", "date"},
			claudeTimeLayouts, false)

		id := firstString(msg, "id", "uuid")
		if id == "" {
			id = fmt.Sprintf("%s_%d", convID, idx)
		}

		metadata := map[string]any{}
		if v, ok := msg["model"]; ok {
			metadata["model"] = v
		}
		if hasKey(msg, "attachments") {
			metadata["has_attachments"] = true
		}

		events = append(events, schema.InteractionEvent{
			ID:             id,
			ConversationID: convID,
			Timestamp:      timestamp,
			Role:           role,
			TextContent:    content,
			Metadata:       metadata,
		})
	}
	sortEventsByTime(events)
	return events
}

// claudeRole normalizes the role spellings seen across Claude export
// tools. System and unrecognized roles are dropped.
func claudeRole(v any) (schema.Role, bool) {
	role, _ := v.(string)
	switch role {
	case "human", "user", "User":
		return schema.UserRole, true
	case "assistant", "claude", "Claude", "ai", "bot":
		return schema.AssistantRole, true
	default:
		return "", false
	}
}

// claudeContent flattens the content variants: plain strings, part
// arrays holding text objects, or anything else rendered as text.
func claudeContent(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, part := range t {
			if obj := asMap(part); obj != nil {
				if text, ok := obj["text"]; ok {
					parts = append(parts, stringify(text))
				} else {
					parts = append(parts, stringify(obj))
				}
				continue
			}
			parts = append(parts, stringify(part))
		}
		return strings.TrimSpace(strings.Join(parts, "\n"))
	default:
		return strings.TrimSpace(stringify(v))
	}
}
