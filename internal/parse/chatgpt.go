package parse

import (
	"archive/zip"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/entrain-io/entrain/internal/contract"
	"github.com/entrain-io/entrain/schema"
)

// chatGPTExportFile is the conversation dump inside a ChatGPT data export.
const chatGPTExportFile = "conversations.json"

var errNotAnObject = errors.New("conversation entry is not an object")

// ChatGPTParser ingests ChatGPT data exports: either conversations.json
// directly or the export ZIP that contains it. Each conversation stores
// its messages as a tree of mapping nodes keyed by node id.
type ChatGPTParser struct{}

var _ Parser = &ChatGPTParser{}

// NewChatGPTParser returns a parser for ChatGPT data exports.
func NewChatGPTParser() *ChatGPTParser {
	return &ChatGPTParser{}
}

// SourceName returns the platform identifier.
func (p *ChatGPTParser) SourceName() schema.SourceFormat {
	return schema.ChatGPTSource
}

// CanParse accepts conversations.json or a ZIP containing one.
func (p *ChatGPTParser) CanParse(path string) bool {
	if !fileExists(path) {
		return false
	}
	if filepath.Ext(path) == ".zip" {
		zr, err := zip.OpenReader(path)
		if err != nil {
			return false
		}
		defer zr.Close()
		for _, f := range zr.File {
			if f.Name == chatGPTExportFile {
				return true
			}
		}
		return false
	}
	return filepath.Base(path) == chatGPTExportFile
}

// Parse reads a ChatGPT export into a corpus. Conversations that fail
// to decode are skipped with a warning; empty ones are dropped.
func (p *ChatGPTParser) Parse(path string) (*schema.Corpus, error) {
	if !fileExists(path) {
		return nil, fmt.Errorf("export file not found: %s", path)
	}

	var raw []byte
	var err error
	if filepath.Ext(path) == ".zip" {
		raw, err = readZipMember(path, chatGPTExportFile)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	var items []any
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("invalid ChatGPT export: %w", err)
	}

	var conversations []schema.Conversation
	for _, item := range items {
		conv := asMap(item)
		if conv == nil {
			contract.LogWarn("Failed to parse conversation unknown", errNotAnObject)
			continue
		}
		if parsed := p.parseConversation(conv); len(parsed.Events) > 0 {
			conversations = append(conversations, *parsed)
		}
	}
	return schema.NewCorpus(conversations, ""), nil
}

func (p *ChatGPTParser) parseConversation(conv map[string]any) *schema.Conversation {
	convID := getOr(conv, "id", "unknown")
	title := getOr(conv, "title", "Untitled")

	metadata := map[string]any{
		"title":       title,
		"create_time": conv["create_time"],
		"update_time": conv["update_time"],
	}

	var events []schema.InteractionEvent
	for _, node := range flattenMessageTree(asMap(conv["mapping"])) {
		message := asMap(node["message"])
		if message == nil {
			continue
		}

		author := asMap(message["author"])
		role := stringify(author["role"])
		// System and tool messages carry no analyzable dialogue.
		if role != string(schema.UserRole) && role != string(schema.AssistantRole) {
			continue
		}

		text := textFromParts(asList(asMap(message["content"])["parts"]))
		if text == "" {
			continue
		}

		timestamp := time.Now()
		if ct, ok := message["create_time"].(float64); ok && ct != 0 {
			timestamp = epochTime(ct)
		}

		msgMeta := asMap(message["metadata"])
		id := stringify(message["id"])
		if id == "" {
			id = fmt.Sprintf("%s_%d", convID, len(events))
		}

		events = append(events, schema.InteractionEvent{
			ID:             id,
			ConversationID: convID,
			Timestamp:      timestamp,
			Role:           schema.Role(role),
			TextContent:    text,
			Metadata: map[string]any{
				"model":         getOr(msgMeta, "model_slug", ""),
				"finish_reason": getOr(asMap(msgMeta["finish_details"]), "type", ""),
				"author_name":   stringify(author["name"]),
			},
		})
	}
	sortEventsByTime(events)

	return &schema.Conversation{
		ID:       convID,
		Source:   string(schema.ChatGPTSource),
		Events:   events,
		Metadata: metadata,
	}
}

// flattenMessageTree linearizes the mapping node tree. Nodes carrying a
// message are collected and ordered by create_time; ties keep node key
// order so repeated parses stay deterministic.
func flattenMessageTree(mapping map[string]any) []map[string]any {
	keys := make([]string, 0, len(mapping))
	for key := range mapping {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	nodes := make([]map[string]any, 0, len(keys))
	for _, key := range keys {
		node := asMap(mapping[key])
		if node != nil && truthy(node["message"]) {
			nodes = append(nodes, node)
		}
	}
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodeCreateTime(nodes[i]) < nodeCreateTime(nodes[j])
	})
	return nodes
}

func nodeCreateTime(node map[string]any) float64 {
	ct, _ := asMap(node["message"])["create_time"].(float64)
	return ct
}

// textFromParts joins the text carried in a content parts array. Parts
// may be plain strings, structured objects or null.
func textFromParts(parts []any) string {
	var texts []string
	for _, part := range parts {
		switch t := part.(type) {
		case string:
			texts = append(texts, t)
		case map[string]any:
			if v, ok := t["text"]; ok {
				texts = append(texts, stringify(v))
			} else if v, ok := t["content"]; ok {
				texts = append(texts, stringify(v))
			}
		case nil:
		default:
			texts = append(texts, stringify(t))
		}
	}
	return strings.TrimSpace(strings.Join(texts, "\n"))
}
