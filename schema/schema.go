// Package schema has the conversation model, report contracts and shared
// constants for all parts of entrain.
package schema

import "time"

// AudioFeatures is the acoustic summary for one spoken turn. Features are
// produced by an upstream extraction pass (openSMILE or librosa tooling)
// and attached to events at ingestion time; they are never computed here.
type AudioFeatures struct {
	PitchMean        float64            `json:"pitch_mean"`         // F0 mean in Hz
	PitchStd         float64            `json:"pitch_std"`          // F0 standard deviation
	PitchRange       float64            `json:"pitch_range"`        // F0 max minus min
	IntensityMean    float64            `json:"intensity_mean"`     // Mean intensity in dB
	IntensityStd     float64            `json:"intensity_std"`      // Intensity standard deviation
	SpeechRate       float64            `json:"speech_rate"`        // Syllables per second
	PauseRatio       float64            `json:"pause_ratio"`        // Silence proportion of the turn
	SpectralFeatures map[string]float64 `json:"spectral_features,omitempty"` // Timbre summary keyed by feature name
	EGeMAPS          []float64          `json:"egemaps,omitempty"`           // Optional raw eGeMAPS vector
}

// SpectralCentroidMean is the spectral feature key used for timbre convergence.
const SpectralCentroidMean = "spectral_centroid_mean"

// InteractionEvent is one conversational turn. Events are created by a
// parser at ingestion time and are immutable afterwards. An event with
// neither text nor audio features is inert: no analyzer can use it.
type InteractionEvent struct {
	ID             string         `json:"id"`
	ConversationID string         `json:"conversation_id"`
	Timestamp      time.Time      `json:"timestamp"`
	Role           Role           `json:"role"`
	TextContent    string         `json:"text_content,omitempty"`
	AudioFeatures  *AudioFeatures `json:"audio_features,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// HasText reports whether the event carries usable text content.
func (e *InteractionEvent) HasText() bool {
	return e.TextContent != ""
}

// HasAudio reports whether the event carries acoustic features.
func (e *InteractionEvent) HasAudio() bool {
	return e.AudioFeatures != nil
}

// Conversation is an ordered sequence of events from one dialogue.
// Events are sorted by timestamp ascending. Role alternation is NOT
// guaranteed; consecutive same-role events are legal.
type Conversation struct {
	ID       string             `json:"id"`
	Source   string             `json:"source"`
	Events   []InteractionEvent `json:"events"`
	Metadata map[string]any     `json:"metadata,omitempty"`
}

// UserEvents returns the user-authored subsequence in order.
func (c *Conversation) UserEvents() []InteractionEvent {
	var out []InteractionEvent
	for _, e := range c.Events {
		if e.Role == UserRole {
			out = append(out, e)
		}
	}
	return out
}

// AssistantEvents returns the assistant-authored subsequence in order.
func (c *Conversation) AssistantEvents() []InteractionEvent {
	var out []InteractionEvent
	for _, e := range c.Events {
		if e.Role == AssistantRole {
			out = append(out, e)
		}
	}
	return out
}

// Duration returns the span between the first and last event. The second
// return is false when the conversation has fewer than two events, where
// duration is undefined.
func (c *Conversation) Duration() (time.Duration, bool) {
	if len(c.Events) < 2 {
		return 0, false
	}
	first := c.Events[0].Timestamp
	last := c.Events[len(c.Events)-1].Timestamp
	return last.Sub(first), true
}

// StartTime returns the first event timestamp. The second return is false
// for an empty conversation.
func (c *Conversation) StartTime() (time.Time, bool) {
	if len(c.Events) == 0 {
		return time.Time{}, false
	}
	return c.Events[0].Timestamp, true
}

// HasTextContent reports whether any event in the conversation has text.
func (c *Conversation) HasTextContent() bool {
	for _, e := range c.Events {
		if e.HasText() {
			return true
		}
	}
	return false
}

// HasAudioFeatures reports whether any event has acoustic features.
func (c *Conversation) HasAudioFeatures() bool {
	for _, e := range c.Events {
		if e.HasAudio() {
			return true
		}
	}
	return false
}

// DateRange is the min/max event timestamp across a corpus.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Corpus is the full set of one subject's conversations under analysis.
type Corpus struct {
	Conversations []Conversation `json:"conversations"`
	UserID        string         `json:"user_id,omitempty"`
	DateRange     *DateRange     `json:"date_range,omitempty"`
}

// NewCorpus builds a corpus and derives its date range from the union of
// all event timestamps. The range is nil when no events exist.
func NewCorpus(conversations []Conversation, userID string) *Corpus {
	corpus := &Corpus{Conversations: conversations, UserID: userID}
	var rng *DateRange
	for _, conv := range conversations {
		for _, e := range conv.Events {
			if rng == nil {
				rng = &DateRange{Start: e.Timestamp, End: e.Timestamp}
				continue
			}
			if e.Timestamp.Before(rng.Start) {
				rng.Start = e.Timestamp
			}
			if e.Timestamp.After(rng.End) {
				rng.End = e.Timestamp
			}
		}
	}
	corpus.DateRange = rng
	return corpus
}

// EventCount returns the total number of events across all conversations.
func (c *Corpus) EventCount() int {
	total := 0
	for _, conv := range c.Conversations {
		total += len(conv.Events)
	}
	return total
}
