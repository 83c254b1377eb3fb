package contract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrain-io/entrain/schema"
)

// writeTempExport creates a small export file so path resolution succeeds.
func writeTempExport(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "conversations.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"messages": []}`), 0o644))
	return path
}

// validRawInput returns a raw input that passes every validation step.
func validRawInput(path string) *ConfigRawInput {
	return &ConfigRawInput{
		InputPathStr: path,
		Source:       string(schema.AutoSource),
		Output:       string(schema.TableOut),
		Workers:      4,
		Limit:        DefaultHistoryLimit,
		Emoji:        "yes",
		Color:        "yes",
		CacheBackend: string(schema.SQLiteBackend),
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError bool
		check       func(*testing.T, *Config)
	}{
		{
			name:        "valid minimal config",
			mutate:      func(_ *ConfigRawInput) {},
			expectError: false,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, schema.TextDimensions, cfg.Dimensions)
				assert.Equal(t, schema.ConversationScope, cfg.Scope)
				assert.Equal(t, DefaultUserID, cfg.UserID)
				assert.Equal(t, schema.GetDefaultWeights(), cfg.Weights)
				assert.Equal(t, schema.GetDefaultRiskThresholds(), cfg.RiskThresholds)
			},
		},
		{
			name: "all dimensions selected",
			mutate: func(in *ConfigRawInput) {
				in.Dims = "all"
			},
			expectError: false,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, schema.AllDimensions, cfg.Dimensions)
			},
		},
		{
			name: "explicit dimension list with duplicates",
			mutate: func(in *ConfigRawInput) {
				in.Dims = "sr, ae,SR"
			},
			expectError: false,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []schema.Dimension{schema.SR, schema.AE}, cfg.Dimensions)
			},
		},
		{
			name: "corpus flag selects corpus scope",
			mutate: func(in *ConfigRawInput) {
				in.Corpus = true
			},
			expectError: false,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, schema.CorpusScope, cfg.Scope)
			},
		},
		{
			name: "invalid dimension",
			mutate: func(in *ConfigRawInput) {
				in.Dims = "SR,XX"
			},
			expectError: true,
		},
		{
			name: "invalid source",
			mutate: func(in *ConfigRawInput) {
				in.Source = "telegram"
			},
			expectError: true,
		},
		{
			name: "invalid output format",
			mutate: func(in *ConfigRawInput) {
				in.Output = "invalid_format"
			},
			expectError: true,
		},
		{
			name: "invalid limit (zero)",
			mutate: func(in *ConfigRawInput) {
				in.Limit = 0
			},
			expectError: true,
		},
		{
			name: "invalid limit (too large)",
			mutate: func(in *ConfigRawInput) {
				in.Limit = MaxHistoryLimit + 1
			},
			expectError: true,
		},
		{
			name: "invalid workers (zero)",
			mutate: func(in *ConfigRawInput) {
				in.Workers = 0
			},
			expectError: true,
		},
		{
			name: "weights override flag",
			mutate: func(in *ConfigRawInput) {
				in.WeightsOverrideStr = "SR:2.0,pe:1.1"
			},
			expectError: false,
			check: func(t *testing.T, cfg *Config) {
				assert.InDelta(t, 2.0, cfg.Weights[schema.SR], 1e-9)
				assert.InDelta(t, 1.1, cfg.Weights[schema.PE], 1e-9)
				// Untouched dimensions keep defaults
				assert.InDelta(t, 1.5, cfg.Weights[schema.AE], 1e-9)
			},
		},
		{
			name: "config file weights overridden by flag",
			mutate: func(in *ConfigRawInput) {
				v := 0.5
				in.Weights.SR = &v
				in.WeightsOverrideStr = "SR:2.5"
			},
			expectError: false,
			check: func(t *testing.T, cfg *Config) {
				assert.InDelta(t, 2.5, cfg.Weights[schema.SR], 1e-9)
			},
		},
		{
			name: "invalid weight (negative)",
			mutate: func(in *ConfigRawInput) {
				in.WeightsOverrideStr = "SR:-1.0"
			},
			expectError: true,
		},
		{
			name: "invalid weight format",
			mutate: func(in *ConfigRawInput) {
				in.WeightsOverrideStr = "SR=1.0"
			},
			expectError: true,
		},
		{
			name: "thresholds override flag",
			mutate: func(in *ConfigRawInput) {
				in.ThresholdsOverrideStr = "low:0.25,high:0.70"
			},
			expectError: false,
			check: func(t *testing.T, cfg *Config) {
				assert.InDelta(t, 0.25, cfg.RiskThresholds[schema.LowRisk], 1e-9)
				assert.InDelta(t, 0.70, cfg.RiskThresholds[schema.HighRisk], 1e-9)
				assert.InDelta(t, 0.55, cfg.RiskThresholds[schema.ModerateRisk], 1e-9)
			},
		},
		{
			name: "thresholds out of order",
			mutate: func(in *ConfigRawInput) {
				in.ThresholdsOverrideStr = "low:0.60,moderate:0.40"
			},
			expectError: true,
		},
		{
			name: "threshold above one",
			mutate: func(in *ConfigRawInput) {
				in.ThresholdsOverrideStr = "severe:1.5"
			},
			expectError: true,
		},
		{
			name: "invalid cache backend",
			mutate: func(in *ConfigRawInput) {
				in.CacheBackend = "invalid_backend"
			},
			expectError: true,
		},
		{
			name: "mysql backend without connection string",
			mutate: func(in *ConfigRawInput) {
				in.CacheBackend = string(schema.MySQLBackend)
			},
			expectError: true,
		},
		{
			name: "mysql backend with connection string",
			mutate: func(in *ConfigRawInput) {
				in.CacheBackend = string(schema.MySQLBackend)
				in.CacheDBConnect = "user:pass@tcp(localhost:3306)/entrain"
			},
			expectError: false,
		},
		{
			name: "postgresql backend without connection string",
			mutate: func(in *ConfigRawInput) {
				in.CacheBackend = string(schema.PostgreSQLBackend)
			},
			expectError: true,
		},
		{
			name: "none backend",
			mutate: func(in *ConfigRawInput) {
				in.CacheBackend = string(schema.NoneBackend)
			},
			expectError: false,
		},
		{
			name: "assessment backend conflicting with cache sqlite file",
			mutate: func(in *ConfigRawInput) {
				in.AssessmentBackend = string(schema.SQLiteBackend)
				in.CacheDBConnect = "/tmp/same.db"
				in.AssessmentDBConnect = "/tmp/same.db"
			},
			expectError: true,
		},
		{
			name: "missing input path",
			mutate: func(in *ConfigRawInput) {
				in.InputPathStr = ""
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validRawInput(writeTempExport(t))
			tt.mutate(input)

			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)

			if tt.expectError {
				assert.Error(t, err, "contract.ProcessAndValidate should return an error for %s", tt.name)
			} else {
				assert.NoError(t, err, "contract.ProcessAndValidate should not return an error for %s", tt.name)
				if tt.check != nil {
					tt.check(t, cfg)
				}
			}
		})
	}
}

func TestProcessAndValidateRejectsDirectoryInput(t *testing.T) {
	input := validRawInput("")
	input.InputPathStr = t.TempDir()

	cfg := &Config{}
	err := ProcessAndValidate(cfg, input)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "directory")
}

func TestParseWeightsString(t *testing.T) {
	t.Run("valid pairs", func(t *testing.T) {
		weights, err := parseWeightsString("SR:1.0, ae:1.5")
		require.NoError(t, err)
		assert.InDelta(t, 1.0, weights[schema.SR], 1e-9)
		assert.InDelta(t, 1.5, weights[schema.AE], 1e-9)
	})

	t.Run("empty string", func(t *testing.T) {
		weights, err := parseWeightsString("")
		require.NoError(t, err)
		assert.Empty(t, weights)
	})

	t.Run("bad dimension", func(t *testing.T) {
		_, err := parseWeightsString("XX:1.0")
		assert.Error(t, err)
	})

	t.Run("bad value", func(t *testing.T) {
		_, err := parseWeightsString("SR:abc")
		assert.Error(t, err)
	})
}

func TestParseRiskThresholdsString(t *testing.T) {
	t.Run("valid pairs", func(t *testing.T) {
		thresholds, err := parseRiskThresholdsString("low:0.3,severe:0.95")
		require.NoError(t, err)
		assert.InDelta(t, 0.3, thresholds[schema.LowRisk], 1e-9)
		assert.InDelta(t, 0.95, thresholds[schema.SevereRisk], 1e-9)
	})

	t.Run("bad level", func(t *testing.T) {
		_, err := parseRiskThresholdsString("extreme:0.9")
		assert.Error(t, err)
	})

	t.Run("bad format", func(t *testing.T) {
		_, err := parseRiskThresholdsString("low")
		assert.Error(t, err)
	})
}

func TestConfigClone(t *testing.T) {
	original := &Config{
		InputPath:  "/tmp/conversations.json",
		Dimensions: []schema.Dimension{schema.SR, schema.LC},
		Weights: map[schema.Dimension]float64{
			schema.SR: 1.0,
		},
		RiskThresholds: map[schema.RiskLevel]float64{
			schema.LowRisk: 0.35,
		},
	}

	clone := original.Clone()
	clone.Dimensions[0] = schema.PE
	clone.Weights[schema.SR] = 9.0
	clone.RiskThresholds[schema.LowRisk] = 0.1

	// Mutating the clone must not touch the original
	assert.Equal(t, schema.SR, original.Dimensions[0])
	assert.InDelta(t, 1.0, original.Weights[schema.SR], 1e-9)
	assert.InDelta(t, 0.35, original.RiskThresholds[schema.LowRisk], 1e-9)
}
