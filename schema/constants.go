package schema

// Version is the engine version stamped on every report.
const Version = "0.1.1"

// Custom string types for type safety.
type (
	// Dimension identifies one measured behavioral dimension.
	Dimension string

	// Modality is the kind of input data an analyzer requires.
	Modality string

	// Role identifies the author of an interaction event.
	Role string

	// RiskLevel classifies a risk score or pattern severity.
	RiskLevel string

	// Trend classifies the direction of a fitted trajectory.
	Trend string

	// TurnIntent classifies what a user turn asks of the assistant.
	TurnIntent string

	// QuestionType classifies questions found in a user turn.
	QuestionType string

	// AnalysisScope selects conversation or corpus level analysis.
	AnalysisScope string

	// OutputMode represents the format of the output.
	OutputMode string

	// SourceFormat identifies a chat export format.
	SourceFormat string

	// DatabaseBackend represents the database backend for persistence.
	DatabaseBackend string
)

// All measured dimensions.
const (
	SR  Dimension = "SR"  // Sycophantic Reinforcement
	PE  Dimension = "PE"  // Prosodic Entrainment
	LC  Dimension = "LC"  // Linguistic Convergence
	AE  Dimension = "AE"  // Autonomy Erosion
	RCD Dimension = "RCD" // Reality Coherence Disruption
	DF  Dimension = "DF"  // Dependency Formation
)

// All analyzer modalities.
const (
	TextModality  Modality = "text"
	AudioModality Modality = "audio"
	BothModality  Modality = "both"
)

// All event roles.
const (
	UserRole      Role = "user"
	AssistantRole Role = "assistant"
)

// All risk levels, ordered by severity.
const (
	LowRisk      RiskLevel = "LOW"
	ModerateRisk RiskLevel = "MODERATE"
	HighRisk     RiskLevel = "HIGH"
	SevereRisk   RiskLevel = "SEVERE"
)

// All trajectory trends.
const (
	IncreasingTrend       Trend = "increasing"
	DecreasingTrend       Trend = "decreasing"
	StableTrend           Trend = "stable"
	InsufficientDataTrend Trend = "insufficient_data"
)

// All turn intents.
const (
	DecisionRequestIntent        TurnIntent = "decision_request"
	InformationRequestIntent     TurnIntent = "information_request"
	CollaborativeReasoningIntent TurnIntent = "collaborative_reasoning"
	OtherIntent                  TurnIntent = "other"
)

// All question types.
const (
	WhatShouldIDoQuestion  QuestionType = "what_should_i_do"
	WhatAreOptionsQuestion QuestionType = "what_are_options"
	FactualQuestion        QuestionType = "factual"
	ClarificationQuestion  QuestionType = "clarification"
	OtherQuestion          QuestionType = "other"
)

// All analysis scopes.
const (
	ConversationScope AnalysisScope = "conversation" // default
	CorpusScope       AnalysisScope = "corpus"
)

// All output modes supported.
const (
	TableOut    OutputMode = "table" // default
	JSONOut     OutputMode = "json"
	CSVOut      OutputMode = "csv"
	MarkdownOut OutputMode = "markdown"
	HTMLOut     OutputMode = "html"
)

// All source formats supported.
const (
	AutoSource        SourceFormat = "auto" // default; registry detection
	ChatGPTSource     SourceFormat = "chatgpt"
	ClaudeSource      SourceFormat = "claude"
	CharacterAISource SourceFormat = "characterai"
	GenericSource     SourceFormat = "generic"
)

// All store backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// AllDimensions lists every dimension in canonical order.
var AllDimensions = []Dimension{SR, LC, AE, RCD, DF, PE}

// TextDimensions lists the dimensions analyzable from text alone; these
// are the defaults when no explicit dimension selection is given.
var TextDimensions = []Dimension{SR, LC, AE, RCD, DF}

// ValidDimensions lists all valid dimension codes.
var ValidDimensions = map[Dimension]struct{}{
	SR:  {},
	PE:  {},
	LC:  {},
	AE:  {},
	RCD: {},
	DF:  {},
}

// ValidScopes lists all valid analysis scopes.
var ValidScopes = map[AnalysisScope]struct{}{
	ConversationScope: {},
	CorpusScope:       {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TableOut:    {},
	JSONOut:     {},
	CSVOut:      {},
	MarkdownOut: {},
	HTMLOut:     {},
}

// ValidSourceFormats lists all valid source formats.
var ValidSourceFormats = map[SourceFormat]struct{}{
	AutoSource:        {},
	ChatGPTSource:     {},
	ClaudeSource:      {},
	CharacterAISource: {},
	GenericSource:     {},
}

// ValidStoreBackends lists all valid store backends.
var ValidStoreBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// dimensionNames maps codes to full human-readable names.
var dimensionNames = map[Dimension]string{
	SR:  "Sycophantic Reinforcement",
	PE:  "Prosodic Entrainment",
	LC:  "Linguistic Convergence",
	AE:  "Autonomy Erosion",
	RCD: "Reality Coherence Disruption",
	DF:  "Dependency Formation",
}

// DimensionName returns the full name for a dimension code, or the code
// itself when unknown.
func DimensionName(code Dimension) string {
	if name, ok := dimensionNames[code]; ok {
		return name
	}
	return string(code)
}

// GetDefaultWeights returns the default risk weight for every dimension.
// Autonomy erosion, reality coherence disruption and dependency formation
// weigh above 1.0; prosodic entrainment weighs below.
func GetDefaultWeights() map[Dimension]float64 {
	return map[Dimension]float64{
		SR:  1.0,
		LC:  0.9,
		AE:  1.5,
		RCD: 1.3,
		DF:  1.2,
		PE:  0.8,
	}
}

// GetDefaultRiskThresholds returns the upper bound of each risk band.
// A score below the LOW bound is LOW, below the MODERATE bound is
// MODERATE, below the HIGH bound is HIGH, otherwise SEVERE.
func GetDefaultRiskThresholds() map[RiskLevel]float64 {
	return map[RiskLevel]float64{
		LowRisk:      0.35,
		ModerateRisk: 0.55,
		HighRisk:     0.75,
		SevereRisk:   1.0,
	}
}

// ClassifyRisk maps a score in [0,1] to its level given band upper bounds.
func ClassifyRisk(score float64, thresholds map[RiskLevel]float64) RiskLevel {
	switch {
	case score < thresholds[LowRisk]:
		return LowRisk
	case score < thresholds[ModerateRisk]:
		return ModerateRisk
	case score < thresholds[HighRisk]:
		return HighRisk
	default:
		return SevereRisk
	}
}
