// Package feature has text, temporal and audio feature extraction for
// the dimension analyzers.
package feature

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"github.com/entrain-io/entrain/schema"
)

//go:embed data/*.json
var lexiconFS embed.FS

// contextWindow is the number of characters kept around a pattern match.
const contextWindow = 30

var (
	wordPattern     = regexp.MustCompile(`\b[a-z]+\b`)
	tokenPattern    = regexp.MustCompile(`\b\w+\b`)
	sentenceSplit   = regexp.MustCompile(`[.!?]+`)
	numberedPattern = regexp.MustCompile(`(?m)^\s*\d+\.`)
	bulletPattern   = regexp.MustCompile(`(?m)^\s*[-*•]`)
	headerPattern   = regexp.MustCompile(`(?m)^#+\s`)
)

// TextExtractor extracts linguistic features from conversational text.
// Lexicon-based scans use pattern files rather than hardcoded lists so
// patterns can be updated as research evolves.
type TextExtractor struct {
	hedgingPatterns     []string
	validationPhrases   []string
	attributionPatterns []string
}

// NewTextExtractor returns an extractor backed by the embedded lexicons.
func NewTextExtractor() *TextExtractor {
	sub, err := fs.Sub(lexiconFS, "data")
	if err != nil {
		panic(err)
	}
	e, err := loadLexicons(sub)
	if err != nil {
		panic(err)
	}
	return e
}

// NewTextExtractorFromDir returns an extractor loading lexicons from a
// directory, overriding the embedded defaults.
func NewTextExtractorFromDir(dir string) (*TextExtractor, error) {
	return loadLexicons(os.DirFS(dir))
}

// loadLexicons reads the three pattern files from the given filesystem.
func loadLexicons(fsys fs.FS) (*TextExtractor, error) {
	hedging, err := loadWordList(fsys, "hedging_patterns.json", "patterns")
	if err != nil {
		return nil, err
	}
	validation, err := loadWordList(fsys, "validation_phrases.json", "phrases")
	if err != nil {
		return nil, err
	}
	attribution, err := loadWordList(fsys, "attribution_patterns.json", "patterns")
	if err != nil {
		return nil, err
	}
	return &TextExtractor{
		hedgingPatterns:     hedging,
		validationPhrases:   validation,
		attributionPatterns: attribution,
	}, nil
}

// loadWordList parses one lexicon file and returns the named string list.
func loadWordList(fsys fs.FS, name, key string) ([]string, error) {
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read lexicon %s: %w", name, err)
	}
	var data map[string]json.RawMessage
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse lexicon %s: %w", name, err)
	}
	var list []string
	if err := json.Unmarshal(data[key], &list); err != nil {
		return nil, fmt.Errorf("parse lexicon %s key %q: %w", name, key, err)
	}
	return list, nil
}

// HedgingPatterns returns the loaded hedging lexicon.
func (e *TextExtractor) HedgingPatterns() []string { return e.hedgingPatterns }

// ValidationPhrases returns the loaded validation lexicon.
func (e *TextExtractor) ValidationPhrases() []string { return e.validationPhrases }

// AttributionPatterns returns the loaded attribution lexicon.
func (e *TextExtractor) AttributionPatterns() []string { return e.attributionPatterns }

// HedgingMatches finds hedging phrases, which indicate uncertainty or
// qualification.
func (e *TextExtractor) HedgingMatches(text string) []schema.PatternMatch {
	return scanPhrases(text, e.hedgingPatterns)
}

// ValidationMatches finds validation phrases, which indicate uncritical
// affirmation of the user.
func (e *TextExtractor) ValidationMatches(text string) []schema.PatternMatch {
	return scanPhrases(text, e.validationPhrases)
}

// AttributionMatches finds language attributing human qualities such as
// understanding, caring or remembering to the AI.
func (e *TextExtractor) AttributionMatches(text string) []schema.PatternMatch {
	return scanPhrases(text, e.attributionPatterns)
}

// scanPhrases runs a case-insensitive substring scan for every phrase,
// capturing the surrounding context from the original text.
func scanPhrases(text string, phrases []string) []schema.PatternMatch {
	var matches []schema.PatternMatch
	lower := strings.ToLower(text)

	for _, phrase := range phrases {
		phraseLower := strings.ToLower(phrase)
		pos := 0
		for {
			idx := strings.Index(lower[pos:], phraseLower)
			if idx == -1 {
				break
			}
			pos += idx

			start := max(0, pos-contextWindow)
			end := min(len(text), pos+len(phrase)+contextWindow)
			matches = append(matches, schema.PatternMatch{
				Pattern:  phrase,
				Position: pos,
				Context:  text[start:end],
			})

			pos += len(phraseLower)
		}
	}
	return matches
}

// Tokenize lowercases the text and returns its alphabetic words.
func Tokenize(text string) []string {
	return wordPattern.FindAllString(strings.ToLower(text), -1)
}

// Vocabulary returns the set of unique lowercase words in the text.
func Vocabulary(text string) map[string]struct{} {
	vocab := make(map[string]struct{})
	for _, word := range Tokenize(text) {
		vocab[word] = struct{}{}
	}
	return vocab
}

// SentenceLengths returns the word count of each sentence, splitting on
// terminal punctuation and skipping empty sentences.
func SentenceLengths(text string) []int {
	var lengths []int
	for _, sent := range sentenceSplit.Split(text, -1) {
		if words := len(tokenPattern.FindAllString(sent, -1)); words > 0 {
			lengths = append(lengths, words)
		}
	}
	return lengths
}

// TypeTokenRatio returns unique words over total words, a measure of
// lexical diversity. Returns 0.0 for text without words.
func TypeTokenRatio(text string) float64 {
	words := Tokenize(text)
	if len(words) == 0 {
		return 0.0
	}
	unique := make(map[string]struct{}, len(words))
	for _, w := range words {
		unique[w] = struct{}{}
	}
	return float64(len(unique)) / float64(len(words))
}

var (
	decisionQuestionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`what should i do`),
		regexp.MustCompile(`should i \w+`),
		regexp.MustCompile(`do you think i should`),
		regexp.MustCompile(`would you recommend`),
		regexp.MustCompile(`what would you do`),
		regexp.MustCompile(`tell me what to do`),
	}
	optionsQuestionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`what are (?:the|my) options`),
		regexp.MustCompile(`what are the possibilities`),
		regexp.MustCompile(`what could i do`),
		regexp.MustCompile(`what might happen if`),
		regexp.MustCompile(`what would be the`),
	}
	factualQuestionPattern       = regexp.MustCompile(`what is|who is|where is|when is|how does`)
	clarificationQuestionPattern = regexp.MustCompile(`what do you mean|can you explain|could you clarify`)
)

// QuestionTypes classifies the questions found in a user turn. A turn
// can yield multiple types; a turn with no recognized question yields
// the single type "other".
func QuestionTypes(text string) []schema.QuestionType {
	lower := strings.ToLower(text)
	var questions []schema.QuestionType

	for _, pattern := range decisionQuestionPatterns {
		if pattern.MatchString(lower) {
			questions = append(questions, schema.WhatShouldIDoQuestion)
		}
	}
	for _, pattern := range optionsQuestionPatterns {
		if pattern.MatchString(lower) {
			questions = append(questions, schema.WhatAreOptionsQuestion)
		}
	}
	if factualQuestionPattern.MatchString(lower) {
		questions = append(questions, schema.FactualQuestion)
	}
	if clarificationQuestionPattern.MatchString(lower) {
		questions = append(questions, schema.ClarificationQuestion)
	}

	if len(questions) == 0 {
		return []schema.QuestionType{schema.OtherQuestion}
	}
	return questions
}

var (
	decisionIntentPhrases = []string{
		"what should i",
		"should i",
		"do you think i should",
		"would you recommend",
		"what do you recommend",
		"which would you recommend",
		"tell me what to do",
		"make a decision",
		"is this a good",
		"is that a good",
		"does that make sense",
		"does this make sense",
		"which is better",
		"which one should",
		"which option",
		"what would you do",
		"how would you",
		"what's the best way",
		"which approach",
	}
	informationIntentPhrases = []string{
		"what are",
		"can you explain",
		"tell me about",
		"what information",
		"help me understand",
		"how does",
		"what is",
		"who is",
		"where is",
	}
	informationExclusions = []string{"should", "recommend", "better", "best"}
	collaborativePhrases  = []string{
		"let's think",
		"help me think",
		"work through",
		"what if we",
		"how might we",
	}
)

// ClassifyTurnIntent classifies what a user turn asks of the assistant.
// Decision requests take precedence over information requests, which in
// turn take precedence over collaborative reasoning.
func ClassifyTurnIntent(text string) schema.TurnIntent {
	lower := strings.ToLower(text)

	if containsAny(lower, decisionIntentPhrases) {
		return schema.DecisionRequestIntent
	}
	if containsAny(lower, informationIntentPhrases) && !containsAny(lower, informationExclusions) {
		return schema.InformationRequestIntent
	}
	if containsAny(lower, collaborativePhrases) {
		return schema.CollaborativeReasoningIntent
	}
	return schema.OtherIntent
}

// containsAny reports whether the text contains any of the phrases.
func containsAny(text string, phrases []string) bool {
	for _, phrase := range phrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}

var positiveWords = map[string]struct{}{
	"good": {}, "great": {}, "excellent": {}, "happy": {}, "wonderful": {},
	"fantastic": {}, "love": {}, "amazing": {}, "perfect": {}, "best": {},
	"awesome": {}, "glad": {}, "joy": {}, "appreciate": {}, "thank": {},
	"thanks": {}, "grateful": {}, "pleased": {},
}

var negativeWords = map[string]struct{}{
	"bad": {}, "terrible": {}, "awful": {}, "hate": {}, "horrible": {},
	"worst": {}, "angry": {}, "sad": {}, "upset": {}, "disappointed": {},
	"frustrated": {}, "annoyed": {}, "worried": {}, "concerned": {},
	"problem": {}, "issue": {}, "wrong": {}, "difficult": {}, "hard": {},
}

// SentimentScore returns a rough sentiment estimate in [-1, 1] from
// positive and negative word counting. Returns 0.0 when the text has no
// words or no sentiment-bearing words.
func SentimentScore(text string) float64 {
	words := Tokenize(text)
	if len(words) == 0 {
		return 0.0
	}

	posCount, negCount := 0, 0
	for _, w := range words {
		if _, ok := positiveWords[w]; ok {
			posCount++
		}
		if _, ok := negativeWords[w]; ok {
			negCount++
		}
	}

	if posCount+negCount == 0 {
		return 0.0
	}
	return float64(posCount-negCount) / float64(len(words))
}

var emotionalWords = map[string]struct{}{
	"feel": {}, "feeling": {}, "felt": {}, "emotion": {}, "scared": {},
	"afraid": {}, "anxious": {}, "lonely": {}, "alone": {}, "sad": {},
	"happy": {}, "angry": {}, "frustrated": {}, "worried": {},
	"concerned": {}, "love": {}, "hate": {}, "hurt": {}, "pain": {},
	"cry": {}, "crying": {}, "depressed": {}, "stress": {},
	"overwhelm": {}, "exhausted": {}, "tired": {},
}

// functionalWords are matched per token, so the multi-word entries can
// never match; they are kept for lexicon parity.
var functionalWords = map[string]struct{}{
	"how to": {}, "calculate": {}, "create": {}, "make": {}, "build": {},
	"code": {}, "program": {}, "write": {}, "analyze": {}, "explain": {},
	"define": {}, "what is": {}, "how does": {}, "summarize": {},
	"list": {}, "format": {}, "convert": {},
}

// EmotionalContentRatio returns emotional words over emotional plus
// functional words, in [0, 1]. A higher ratio suggests the interaction
// serves emotional needs rather than task completion. Returns 0.0 when
// neither kind appears.
func EmotionalContentRatio(text string) float64 {
	words := Tokenize(text)
	if len(words) == 0 {
		return 0.0
	}

	emotionalCount, functionalCount := 0, 0
	for _, w := range words {
		if _, ok := emotionalWords[w]; ok {
			emotionalCount++
		}
		if _, ok := functionalWords[w]; ok {
			functionalCount++
		}
	}

	total := emotionalCount + functionalCount
	if total == 0 {
		return 0.0
	}
	return float64(emotionalCount) / float64(total)
}

// StructuralCounts holds counts of AI-characteristic formatting elements.
type StructuralCounts struct {
	NumberedLists int `json:"numbered_lists"`
	BulletPoints  int `json:"bullet_points"`
	Headers       int `json:"headers"`
}

// Total returns the combined count of all formatting elements.
func (c StructuralCounts) Total() int {
	return c.NumberedLists + c.BulletPoints + c.Headers
}

// CountStructuralFormatting counts numbered lists, bullet points and
// markdown headers in the text.
func CountStructuralFormatting(text string) StructuralCounts {
	return StructuralCounts{
		NumberedLists: len(numberedPattern.FindAllString(text, -1)),
		BulletPoints:  len(bulletPattern.FindAllString(text, -1)),
		Headers:       len(headerPattern.FindAllString(text, -1)),
	}
}
