package contract

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/entrain-io/entrain/schema"
)

// Default values for configuration.
const (
	DefaultHistoryLimit = 10
	MaxHistoryLimit     = 1000
	DefaultUserID       = "default_user"
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// WeightsRawInput holds custom dimension weight overrides from the YAML config file.
// Use float64 pointers so absent dimensions keep their default weight.
type WeightsRawInput struct {
	SR  *float64 `mapstructure:"sr"`
	LC  *float64 `mapstructure:"lc"`
	AE  *float64 `mapstructure:"ae"`
	RCD *float64 `mapstructure:"rcd"`
	DF  *float64 `mapstructure:"df"`
	PE  *float64 `mapstructure:"pe"`
}

// ThresholdsRawInput holds risk band bound overrides from the YAML config file.
type ThresholdsRawInput struct {
	Low      *float64 `mapstructure:"low"`
	Moderate *float64 `mapstructure:"moderate"`
	High     *float64 `mapstructure:"high"`
	Severe   *float64 `mapstructure:"severe"`
}

// Config holds the runtime configuration for an assessment.
// This struct remains the "final, validated" config.
type Config struct {
	InputPath string
	Source    schema.SourceFormat
	UserID    string

	Dimensions       []schema.Dimension
	Scope            schema.AnalysisScope
	CrossDimensional bool
	Workers          int
	NoCache          bool

	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)

	HistoryLimit int
	RunUUID      string

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	AssessmentBackend   schema.DatabaseBackend
	AssessmentDBConnect string // Please use env var as this is plaintext

	// Weights is the final per-dimension risk weight map, computed from
	// defaults + config file overrides + flag overrides
	Weights map[schema.Dimension]float64

	// RiskThresholds is the final upper bound of each risk band
	RiskThresholds map[schema.RiskLevel]float64

	UseEmojis bool // Enable emojis in output headers
	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	InputPathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	Source              string `mapstructure:"source"`
	User                string `mapstructure:"user"`
	Output              string `mapstructure:"output"`
	OutputFile          string `mapstructure:"file"`
	Workers             int    `mapstructure:"workers"`
	Width               int    `mapstructure:"width"`
	CacheBackend        string `mapstructure:"cache-backend"`
	CacheDBConnect      string `mapstructure:"cache-db-connect"`
	AssessmentBackend   string `mapstructure:"assessment-backend"`
	AssessmentDBConnect string `mapstructure:"assessment-db-connect"`
	Emoji               string `mapstructure:"emoji"`
	Color               string `mapstructure:"color"`

	// --- Fields from analyzeCmd.Flags() ---
	Dims                  string `mapstructure:"dim"`
	Corpus                bool   `mapstructure:"corpus"`
	CrossDimensional      bool   `mapstructure:"cross-dimensional"`
	NoCache               bool   `mapstructure:"no-cache"`
	WeightsOverrideStr    string `mapstructure:"weights-override"`
	ThresholdsOverrideStr string `mapstructure:"thresholds-override"`

	// --- Fields from historyCmd.Flags() ---
	Limit int    `mapstructure:"limit"`
	Run   string `mapstructure:"run"`

	// --- Custom weights from config file ---
	Weights WeightsRawInput `mapstructure:"weights"`

	// --- Risk band bounds from config file ---
	Thresholds ThresholdsRawInput `mapstructure:"thresholds"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Dimensions != nil {
		clone.Dimensions = make([]schema.Dimension, len(c.Dimensions))
		copy(clone.Dimensions, c.Dimensions)
	}
	if c.Weights != nil {
		clone.Weights = make(map[schema.Dimension]float64)
		maps.Copy(clone.Weights, c.Weights)
	}
	if c.RiskThresholds != nil {
		clone.RiskThresholds = make(map[schema.RiskLevel]float64)
		maps.Copy(clone.RiskThresholds, c.RiskThresholds)
	}
	return &clone
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	// All validation functions read from 'input' and populate 'cfg'.
	if err := ProcessAndValidateSettings(cfg, input); err != nil {
		return err
	}
	if err := resolveInputPath(cfg, input); err != nil {
		return err
	}
	return nil
}

// ProcessAndValidateSettings runs every validation step except export
// path resolution. Commands that operate on stored data or serve paths
// per-request (history, dimensions, mcp) use this directly.
func ProcessAndValidateSettings(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processDimensions(cfg, input); err != nil {
		return err
	}
	if err := processWeights(cfg, input); err != nil {
		return err
	}
	if err := processRiskThresholds(cfg, input); err != nil {
		return err
	}
	return nil
}

// RevalidateAssessment re-validates tool-supplied analysis parameters on
// a cloned config. MCP handlers override individual fields after Clone,
// bypassing the normal flag pipeline, so enum fields need a second check
// here. An empty dims string keeps the base dimension selection.
func RevalidateAssessment(cfg *Config, dims string) error {
	if cfg.InputPath == "" {
		return errors.New("input_path is required")
	}
	if _, ok := schema.ValidSourceFormats[cfg.Source]; !ok {
		return fmt.Errorf("invalid source '%s'. must be auto, chatgpt, claude, characterai or generic", cfg.Source)
	}
	if _, ok := schema.ValidScopes[cfg.Scope]; !ok {
		return fmt.Errorf("invalid scope '%s'. must be conversation or corpus", cfg.Scope)
	}
	if strings.TrimSpace(dims) != "" {
		input := &ConfigRawInput{Dims: dims}
		if err := processDimensions(cfg, input); err != nil {
			return err
		}
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and assessment backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidStoreBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	// --- Assessment Backend Validation ---
	cfg.AssessmentBackend = schema.DatabaseBackend(strings.ToLower(input.AssessmentBackend))
	if cfg.AssessmentBackend != "" {
		if _, ok := schema.ValidStoreBackends[cfg.AssessmentBackend]; !ok {
			return fmt.Errorf("invalid assessment backend '%s'. must be sqlite, mysql, postgresql, none", input.AssessmentBackend)
		}
		cfg.AssessmentDBConnect = input.AssessmentDBConnect
		if err := ValidateDatabaseConnectionString(cfg.AssessmentBackend, cfg.AssessmentDBConnect); err != nil {
			return err
		}

		// Validate that cache and assessment use different databases
		if cfg.CacheBackend == cfg.AssessmentBackend && cfg.CacheBackend != schema.NoneBackend {
			// For SQLite, resolve to actual file paths to catch default path conflicts
			if cfg.CacheBackend == schema.SQLiteBackend {
				cacheDBPath := cfg.CacheDBConnect
				if cacheDBPath == "" {
					cacheDBPath = GetCacheDBFilePath()
				}
				assessmentDBPath := cfg.AssessmentDBConnect
				if assessmentDBPath == "" {
					assessmentDBPath = GetAssessmentDBFilePath()
				}
				if cacheDBPath == assessmentDBPath {
					return fmt.Errorf("cache and assessment storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
				}
			}
		}
	}

	return nil
}

// validateSimpleInputs processes and validates all non-path related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.OutputFile = input.OutputFile
	cfg.CrossDimensional = input.CrossDimensional
	cfg.NoCache = input.NoCache
	cfg.Width = input.Width
	cfg.RunUUID = strings.TrimSpace(input.Run)

	cfg.UserID = strings.TrimSpace(input.User)
	if cfg.UserID == "" {
		cfg.UserID = DefaultUserID
	}

	// Parse emoji flag
	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	// Parse color flag
	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. HistoryLimit Validation ---
	if input.Limit <= 0 || input.Limit > MaxHistoryLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxHistoryLimit, input.Limit)
	}
	cfg.HistoryLimit = input.Limit

	// --- 2. Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 3. Source Validation ---
	cfg.Source = schema.SourceFormat(strings.ToLower(input.Source))
	if _, ok := schema.ValidSourceFormats[cfg.Source]; !ok {
		return fmt.Errorf("invalid source '%s'. must be auto, chatgpt, claude, characterai, generic", input.Source)
	}

	// --- 4. Scope and Output Validation ---
	if input.Corpus {
		cfg.Scope = schema.CorpusScope
	} else {
		cfg.Scope = schema.ConversationScope
	}

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be table, json, csv, markdown, html", cfg.Output)
	}

	// --- 5. Backend Validation ---
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}

	return nil
}

// processDimensions converts the raw --dim list into validated dimension codes.
// An empty list selects the text dimensions; "all" adds prosodic entrainment,
// which needs pre-extracted audio features.
func processDimensions(cfg *Config, input *ConfigRawInput) error {
	raw := strings.TrimSpace(input.Dims)
	if strings.EqualFold(raw, "all") {
		cfg.Dimensions = append([]schema.Dimension{}, schema.AllDimensions...)
		return nil
	}

	seen := make(map[schema.Dimension]struct{})
	var dims []schema.Dimension

	parts := strings.SplitSeq(raw, ",")
	for part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		dim := schema.Dimension(strings.ToUpper(part))
		if _, ok := schema.ValidDimensions[dim]; !ok {
			return fmt.Errorf("invalid dimension '%s'. must be SR, LC, AE, RCD, DF, PE or all", part)
		}
		if _, ok := seen[dim]; ok {
			continue
		}
		seen[dim] = struct{}{}
		dims = append(dims, dim)
	}

	if len(dims) == 0 {
		dims = append([]schema.Dimension{}, schema.TextDimensions...)
	}
	cfg.Dimensions = dims
	return nil
}

// processWeights computes the final per-dimension weight map from defaults,
// config file overrides and the --weights-override flag, then validates it.
func processWeights(cfg *Config, input *ConfigRawInput) error {
	weights := schema.GetDefaultWeights()

	// Override with config file values if provided
	fileOverrides := map[schema.Dimension]*float64{
		schema.SR:  input.Weights.SR,
		schema.LC:  input.Weights.LC,
		schema.AE:  input.Weights.AE,
		schema.RCD: input.Weights.RCD,
		schema.DF:  input.Weights.DF,
		schema.PE:  input.Weights.PE,
	}
	for dim, value := range fileOverrides {
		if value != nil {
			weights[dim] = *value
		}
	}

	// Override with command-line flag if provided (takes precedence)
	if input.WeightsOverrideStr != "" {
		parsed, err := parseWeightsString(input.WeightsOverrideStr)
		if err != nil {
			return fmt.Errorf("invalid --weights-override format: %w", err)
		}
		maps.Copy(weights, parsed)
	}

	// Validate weights
	for dim, weight := range weights {
		if weight <= 0.0 || weight > 10.0 {
			return fmt.Errorf("weight for dimension %s must be greater than 0.0 and cannot exceed 10.0 (received %.2f)", dim, weight)
		}
	}

	cfg.Weights = weights
	return nil
}

// processRiskThresholds computes the final risk band bounds from defaults,
// config file overrides and the --thresholds-override flag, then validates them.
func processRiskThresholds(cfg *Config, input *ConfigRawInput) error {
	thresholds := schema.GetDefaultRiskThresholds()

	// Override with config file values if provided
	if input.Thresholds.Low != nil {
		thresholds[schema.LowRisk] = *input.Thresholds.Low
	}
	if input.Thresholds.Moderate != nil {
		thresholds[schema.ModerateRisk] = *input.Thresholds.Moderate
	}
	if input.Thresholds.High != nil {
		thresholds[schema.HighRisk] = *input.Thresholds.High
	}
	if input.Thresholds.Severe != nil {
		thresholds[schema.SevereRisk] = *input.Thresholds.Severe
	}

	// Override with command-line flag if provided (takes precedence)
	if input.ThresholdsOverrideStr != "" {
		parsed, err := parseRiskThresholdsString(input.ThresholdsOverrideStr)
		if err != nil {
			return fmt.Errorf("invalid --thresholds-override format: %w", err)
		}
		maps.Copy(thresholds, parsed)
	}

	// Validate thresholds
	for level, bound := range thresholds {
		if bound <= 0.0 || bound > 1.0 {
			return fmt.Errorf("risk threshold for level %s must be greater than 0.0 and cannot exceed 1.0 (received %.2f)", level, bound)
		}
	}
	if thresholds[schema.LowRisk] >= thresholds[schema.ModerateRisk] ||
		thresholds[schema.ModerateRisk] >= thresholds[schema.HighRisk] ||
		thresholds[schema.HighRisk] > thresholds[schema.SevereRisk] {
		return fmt.Errorf("risk thresholds must increase from low to severe (received low=%.2f moderate=%.2f high=%.2f severe=%.2f)",
			thresholds[schema.LowRisk], thresholds[schema.ModerateRisk], thresholds[schema.HighRisk], thresholds[schema.SevereRisk])
	}

	cfg.RiskThresholds = thresholds
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// resolveInputPath resolves the conversation export path to an absolute file path.
func resolveInputPath(cfg *Config, input *ConfigRawInput) error {
	searchPath := strings.TrimSpace(input.InputPathStr)
	if searchPath == "" {
		return errors.New("a conversation export path is required")
	}

	absPath, err := filepath.Abs(searchPath)
	if err != nil {
		return err
	}
	absPath = filepath.Clean(absPath)

	info, err := os.Stat(absPath)
	if err != nil {
		return fmt.Errorf("cannot access input path: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("input path %s is a directory, expected a conversation export file", absPath)
	}

	cfg.InputPath = absPath
	return nil
}

// parseWeightsString parses a string like "SR:1.0,AE:1.5" into a map of
// Dimension to float64.
func parseWeightsString(s string) (map[schema.Dimension]float64, error) {
	weights := make(map[schema.Dimension]float64)

	if s == "" {
		return weights, nil
	}

	parts := strings.SplitSeq(s, ",")
	for part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		keyValue := strings.Split(part, ":")
		if len(keyValue) != 2 {
			return nil, fmt.Errorf("invalid weight format '%s', expected 'DIM:value'", part)
		}

		dimStr := strings.TrimSpace(keyValue[0])
		valueStr := strings.TrimSpace(keyValue[1])

		dim := schema.Dimension(strings.ToUpper(dimStr))
		if _, ok := schema.ValidDimensions[dim]; !ok {
			return nil, fmt.Errorf("invalid dimension '%s', must be SR, LC, AE, RCD, DF, or PE", dimStr)
		}

		value, err := strconv.ParseFloat(valueStr, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid weight value '%s' for dimension %s: %w", valueStr, dim, err)
		}

		weights[dim] = value
	}

	return weights, nil
}

// parseRiskThresholdsString parses a string like "low:0.35,moderate:0.55,high:0.75,severe:1.0"
// into a map of RiskLevel to float64.
func parseRiskThresholdsString(s string) (map[schema.RiskLevel]float64, error) {
	thresholds := make(map[schema.RiskLevel]float64)

	if s == "" {
		return thresholds, nil
	}

	parts := strings.SplitSeq(s, ",")
	for part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		keyValue := strings.Split(part, ":")
		if len(keyValue) != 2 {
			return nil, fmt.Errorf("invalid threshold format '%s', expected 'level:value'", part)
		}

		levelStr := strings.TrimSpace(keyValue[0])
		valueStr := strings.TrimSpace(keyValue[1])

		var level schema.RiskLevel
		switch strings.ToLower(levelStr) {
		case "low":
			level = schema.LowRisk
		case "moderate":
			level = schema.ModerateRisk
		case "high":
			level = schema.HighRisk
		case "severe":
			level = schema.SevereRisk
		default:
			return nil, fmt.Errorf("invalid level '%s', must be low, moderate, high, or severe", levelStr)
		}

		value, err := strconv.ParseFloat(valueStr, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid threshold value '%s' for level %s: %w", valueStr, level, err)
		}

		thresholds[level] = value
	}

	return thresholds, nil
}
