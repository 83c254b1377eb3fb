package parse

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/entrain-io/entrain/schema"
)

var characterAITimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02 15:04:05",
	"02/01/2006 15:04:05",
}

// characterInfo is the persona attached to a Character.AI export.
type characterInfo struct {
	name        string
	description string
	greeting    string
}

// CharacterAIParser ingests Character.AI exports: the official data
// export, CAI Tools browser extension dumps and third-party tool
// formats, including regenerated (swiped) responses.
type CharacterAIParser struct{}

var _ Parser = &CharacterAIParser{}

// NewCharacterAIParser returns a parser for Character.AI export formats.
func NewCharacterAIParser() *CharacterAIParser {
	return &CharacterAIParser{}
}

// SourceName returns the platform identifier.
func (p *CharacterAIParser) SourceName() schema.SourceFormat {
	return schema.CharacterAISource
}

// CanParse accepts JSON files whose structure matches a known
// Character.AI export shape.
func (p *CharacterAIParser) CanParse(path string) bool {
	if !fileExists(path) || filepath.Ext(path) != ".json" {
		return false
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return false
	}
	return isCharacterAIShape(data)
}

// isCharacterAIShape heuristically detects a Character.AI export
// structure by its persona and history fields.
func isCharacterAIShape(data any) bool {
	switch t := data.(type) {
	case map[string]any:
		for _, key := range []string{
			"character", "char", "bot", "character_name", "bot_name",
			"greeting", "histories", "chats", "participants",
		} {
			if hasKey(t, key) {
				return true
			}
		}
		return hasKey(t, "messages") &&
			strings.Contains(strings.ToLower(fmt.Sprintf("%v", t)), "character")
	case []any:
		first := asMap(firstItem(t))
		if first == nil {
			return false
		}
		for _, key := range []string{"character", "bot", "histories", "character_name"} {
			if hasKey(first, key) {
				return true
			}
		}
	}
	return false
}

// Parse reads a Character.AI export into a corpus. Unlike the other
// parsers, an export that yields no conversations is an error here:
// the heuristic detection means an empty result is almost always an
// unsupported format variant.
func (p *CharacterAIParser) Parse(path string) (*schema.Corpus, error) {
	if !fileExists(path) {
		return nil, fmt.Errorf("export file not found: %s", path)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("invalid Character.AI export: %w", err)
	}

	conversations := p.parseJSONData(data)
	if len(conversations) == 0 {
		return nil, errors.New("no valid conversations found in Character.AI export, file may be empty or in an unsupported format")
	}
	return schema.NewCorpus(conversations, ""), nil
}

// parseJSONData handles the layout variants: a character object with
// chat histories, a single conversation, an array of character chats,
// or a bare message array.
func (p *CharacterAIParser) parseJSONData(data any) []schema.Conversation {
	var conversations []schema.Conversation
	appendConv := func(conv *schema.Conversation) {
		if conv != nil && len(conv.Events) > 0 {
			conversations = append(conversations, *conv)
		}
	}

	switch t := data.(type) {
	case map[string]any:
		character := characterProfile(t)
		if histories := asList(firstTruthy(t, "histories", "chats", "conversations")); len(histories) > 0 {
			for idx, history := range histories {
				appendConv(p.parseHistory(history, fmt.Sprintf("char_%s_%d", character.name, idx), character))
			}
		} else if hasKey(t, "messages") || hasKey(t, "msgs") {
			appendConv(p.parseSingleConversation(t, character))
		}
	case []any:
		first := asMap(firstItem(t))
		if first == nil {
			return nil
		}
		if hasKey(first, "character") || hasKey(first, "character_name") {
			for idx, item := range t {
				obj := asMap(item)
				if obj == nil {
					continue
				}
				name := firstString(obj, "character_name", "name")
				if name == "" {
					name = fmt.Sprintf("Character_%d", idx)
				}
				appendConv(p.parseSingleConversation(obj, characterInfo{
					name:        name,
					description: getOr(obj, "description", ""),
					greeting:    getOr(obj, "greeting", ""),
				}))
			}
		} else {
			appendConv(p.parseMessageArray(t, "conversation_0"))
		}
	}
	return conversations
}

// characterProfile pulls the character identity fields, checking the
// flat and nested spellings the export tools use.
func characterProfile(data map[string]any) characterInfo {
	char := asMap(data["character"])
	info := characterInfo{
		name:        firstString(data, "character_name", "char_name", "name"),
		description: firstString(data, "description", "char_description"),
		greeting:    firstString(data, "greeting", "first_mes"),
	}
	if info.name == "" {
		info.name = stringify(char["name"])
	}
	if info.name == "" {
		info.name = "Unknown Character"
	}
	if info.description == "" {
		info.description = stringify(char["description"])
	}
	if info.greeting == "" {
		info.greeting = stringify(char["greeting"])
	}
	return info
}

// parseHistory handles one chat history, either an object with its own
// message list or a bare message array.
func (p *CharacterAIParser) parseHistory(history any, convID string, character characterInfo) *schema.Conversation {
	var messages []any
	historyID := convID
	switch t := history.(type) {
	case map[string]any:
		messages = asList(firstTruthy(t, "messages", "msgs"))
		if id := firstString(t, "id", "history_id"); id != "" {
			historyID = id
		}
	case []any:
		messages = t
	default:
		return nil
	}

	events := p.parseMessages(messages, historyID, character.name)
	if len(events) == 0 {
		return nil
	}
	return &schema.Conversation{
		ID:       historyID,
		Source:   string(schema.CharacterAISource),
		Events:   events,
		Metadata: characterMetadata(character),
	}
}

func (p *CharacterAIParser) parseSingleConversation(conv map[string]any, character characterInfo) *schema.Conversation {
	convID := firstString(conv, "id", "conversation_id")
	if convID == "" {
		convID = fmt.Sprintf("char_%s_0", character.name)
	}

	events := p.parseMessages(asList(firstTruthy(conv, "messages", "msgs")), convID, character.name)
	if len(events) == 0 {
		return nil
	}
	return &schema.Conversation{
		ID:       convID,
		Source:   string(schema.CharacterAISource),
		Events:   events,
		Metadata: characterMetadata(character),
	}
}

func (p *CharacterAIParser) parseMessageArray(messages []any, convID string) *schema.Conversation {
	events := p.parseMessages(messages, convID, "Character")
	if len(events) == 0 {
		return nil
	}
	return &schema.Conversation{
		ID:       convID,
		Source:   string(schema.CharacterAISource),
		Events:   events,
		Metadata: map[string]any{"character_name": "Character"},
	}
}

func characterMetadata(character characterInfo) map[string]any {
	return map[string]any{
		"character_name":        character.name,
		"character_description": character.description,
		"character_greeting":    character.greeting,
	}
}

func (p *CharacterAIParser) parseMessages(messages []any, convID, characterName string) []schema.InteractionEvent {
	var events []schema.InteractionEvent
	for idx, item := range messages {
		msg := asMap(item)
		if msg == nil {
			continue
		}

		role := characterAIRole(msg)

		content := firstString(msg, "text", "content", "message")
		// Swiped responses store the alternatives; take the selected one.
		if swipes := asList(msg["swipes"]); len(swipes) > 0 {
			selected := intAt(msg, "swipe_id")
			if selected < 0 || selected >= len(swipes) {
				selected = 0
			}
			content = stringify(swipes[selected])
		}
		content = strings.TrimSpace(content)
		if content == "" {
			continue
		}

		timestamp := eventTime(msg,
			[]string{"timestamp", "created_at", "send_date", "time"},
			characterAITimeLayouts, true)

		id := firstString(msg, "id", "message_id", "uuid")
		if id == "" {
			id = fmt.Sprintf("%s_%d", convID, idx)
		}

		metadata := map[string]any{"character_name": characterName}
		if swipes := asList(msg["swipes"]); swipes != nil {
			metadata["swipe_count"] = len(swipes)
			metadata["selected_swipe"] = intAt(msg, "swipe_id")
		}
		if v, ok := msg["candidate_id"]; ok {
			metadata["candidate_id"] = v
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

// characterAIRole resolves who spoke. Exports disagree on how to mark
// the human side, so detection tries is_human, then src, then the
// name and author fields, defaulting to the character.
func characterAIRole(msg map[string]any) schema.Role {
	if v, ok := msg["is_human"]; ok {
		if truthy(v) {
			return schema.UserRole
		}
		return schema.AssistantRole
	}
	if v, ok := msg["src"]; ok {
		if src := strings.ToLower(stringify(v)); src == "human" || src == "user" {
			return schema.UserRole
		}
		return schema.AssistantRole
	}
	if hasKey(msg, "name") || hasKey(msg, "author") {
		name := strings.ToLower(firstString(msg, "name", "author"))
		if name == "user" || name == "human" || name == "you" {
			return schema.UserRole
		}
		return schema.AssistantRole
	}
	return schema.AssistantRole
}
