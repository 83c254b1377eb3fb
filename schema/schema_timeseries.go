package schema

// ConversationTrendPoint is one conversation's dimension scores. A
// sequence of points in corpus order shows how measurements evolve
// across a user's conversation history.
type ConversationTrendPoint struct {
	// Index is the zero-based position of the conversation in the corpus
	Index int `json:"index"`

	// ConversationID from the source export
	ConversationID string `json:"conversation_id"`

	// Scores is the mean indicator value per analyzed dimension
	Scores map[Dimension]float64 `json:"scores"`
}
