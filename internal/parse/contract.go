// Package parse ingests chat platform export files into the normalized
// corpus model. Each parser recognizes one platform's export layout; a
// registry probes them in order, with the permissive generic CSV/JSON
// parser registered last as the fallback.
package parse

import (
	"fmt"
	"strings"

	"github.com/entrain-io/entrain/schema"
)

// Parser is implemented by every platform export parser.
type Parser interface {
	// SourceName returns the platform identifier, e.g. schema.ChatGPTSource.
	SourceName() schema.SourceFormat

	// CanParse reports whether the file at path looks like this
	// platform's export format.
	CanParse(path string) bool

	// Parse reads the export at path into a corpus. Individual
	// conversations that fail to decode are skipped with a warning;
	// errors are reserved for unreadable files and unusable top-level
	// structure.
	Parse(path string) (*schema.Corpus, error)
}

// Registry resolves export files to parsers in registration order.
type Registry struct {
	parsers []Parser
}

// NewRegistry returns a registry with all built-in parsers. Platform
// parsers come first so the generic parser only catches files nothing
// else claims.
func NewRegistry() *Registry {
	r := &Registry{}
	r.Register(NewChatGPTParser())
	r.Register(NewClaudeParser())
	r.Register(NewCharacterAIParser())
	r.Register(NewGenericParser())
	return r
}

// Register appends a parser to the probe order.
func (r *Registry) Register(p Parser) {
	r.parsers = append(r.parsers, p)
}

// SourceNames returns the registered platform identifiers in probe order.
func (r *Registry) SourceNames() []schema.SourceFormat {
	names := make([]schema.SourceFormat, 0, len(r.parsers))
	for _, p := range r.parsers {
		names = append(names, p.SourceName())
	}
	return names
}

// FindParser returns the first parser that recognizes path, or nil.
func (r *Registry) FindParser(path string) Parser {
	for _, p := range r.parsers {
		if p.CanParse(path) {
			return p
		}
	}
	return nil
}

// ParserFor returns the parser registered under source.
func (r *Registry) ParserFor(source schema.SourceFormat) (Parser, error) {
	for _, p := range r.parsers {
		if p.SourceName() == source {
			return p, nil
		}
	}
	return nil, fmt.Errorf("no parser registered for source %q", source)
}

// ParseAuto detects the format of path and parses it.
func (r *Registry) ParseAuto(path string) (*schema.Corpus, error) {
	parser := r.FindParser(path)
	if parser == nil {
		names := make([]string, 0, len(r.parsers))
		for _, name := range r.SourceNames() {
			names = append(names, string(name))
		}
		return nil, fmt.Errorf("no parser found for %s, supported formats: %s",
			path, strings.Join(names, ", "))
	}
	return parser.Parse(path)
}

// Parse loads the export at path. AutoSource probes every parser in
// order; any other source selects that platform's parser directly.
func (r *Registry) Parse(path string, source schema.SourceFormat) (*schema.Corpus, error) {
	if source == schema.AutoSource {
		return r.ParseAuto(path)
	}
	parser, err := r.ParserFor(source)
	if err != nil {
		return nil, err
	}
	return parser.Parse(path)
}
