package schema

// AssessmentOutput bundles a finished report with the per-conversation
// score series that produced it.
type AssessmentOutput struct {
	// Report is the assembled assessment
	Report *EntrainReport `json:"report"`

	// Trend holds per-conversation dimension scores in corpus order.
	// Empty for corpus-scope runs and single-conversation exports.
	Trend []ConversationTrendPoint `json:"trend,omitempty"`
}
