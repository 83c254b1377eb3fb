package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/entrain-io/entrain/internal/contract"
	"github.com/entrain-io/entrain/schema"
)

// getDisplayNameForDimension returns the display name with emoji for a dimension code.
func getDisplayNameForDimension(dim schema.Dimension) string {
	switch dim {
	case schema.SR:
		return "🪞 SR"
	case schema.LC:
		return "🗣️  LC"
	case schema.AE:
		return "🧭 AE"
	case schema.RCD:
		return "🌫️  RCD"
	case schema.DF:
		return "🔗 DF"
	case schema.PE:
		return "🎙️  PE"
	default:
		return strings.ToUpper(string(dim))
	}
}

// PrintDimensionDefinitions displays the formal definitions of all dimensions.
// This is a static display that does not require any conversation analysis.
func PrintDimensionDefinitions(weights map[schema.Dimension]float64, platforms []string, cfg *contract.Config) error {
	// Build the complete render model with all processed data
	renderModel := BuildDimensionRenderModel(weights, platforms)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, renderModel)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVDimensions(w, renderModel)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeDimensionsText(w, renderModel, cfg)
		}, "Wrote text")
	}
}

// writeDimensionsText displays dimensions in human-readable text format.
func writeDimensionsText(w io.Writer, renderModel *schema.DimensionRenderModel, cfg *contract.Config) error {
	title := fmt.Sprintf("%s (v%s)", renderModel.Title, renderModel.Version)
	if cfg.UseEmojis {
		title = "🧠 " + title
	}
	lines := []string{
		title,
		strings.Repeat("=", len([]rune(title))),
		"",
		renderModel.Description,
		"",
	}
	for _, info := range renderModel.Dimensions {
		displayName := string(info.Code)
		if cfg.UseEmojis {
			displayName = getDisplayNameForDimension(info.Code)
		}
		lines = append(lines,
			fmt.Sprintf("%s: %s [%s, weight %.2f]", displayName, info.Name, info.Modality, info.Weight),
			fmt.Sprintf("   Purpose: %s", info.Purpose),
			fmt.Sprintf("   Indicators: %s", strings.Join(info.Indicators, ", ")),
			"")
	}
	if len(renderModel.Platforms) > 0 {
		lines = append(lines, fmt.Sprintf("Supported platforms: %s", strings.Join(renderModel.Platforms, ", ")))
	}
	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}

// writeCSVDimensions writes dimension definitions in CSV format.
func writeCSVDimensions(w io.Writer, renderModel *schema.DimensionRenderModel) error {
	header := []string{"code", "name", "modality", "weight", "purpose", "indicators"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, info := range renderModel.Dimensions {
			rec := []string{
				string(info.Code),
				info.Name,
				string(info.Modality),
				fmt.Sprintf("%.2f", info.Weight),
				info.Purpose,
				strings.Join(info.Indicators, "|"),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// BuildDimensionRenderModel constructs the complete render model with all processed data.
func BuildDimensionRenderModel(weights map[schema.Dimension]float64, platforms []string) *schema.DimensionRenderModel {
	infos := []schema.DimensionInfo{
		{
			Code:       schema.SR,
			Name:       schema.DimensionName(schema.SR),
			Modality:   schema.TextModality,
			Purpose:    "Agreement and validation outpacing challenge in assistant replies",
			Indicators: []string{"action_endorsement_rate", "perspective_mention_rate", "challenge_frequency", "validation_language_density"},
		},
		{
			Code:       schema.LC,
			Name:       schema.DimensionName(schema.LC),
			Modality:   schema.TextModality,
			Purpose:    "User language drifting toward the assistant's style over time",
			Indicators: []string{"vocabulary_overlap_trajectory", "hedging_pattern_adoption", "sentence_length_convergence", "structural_formatting_adoption", "type_token_ratio_trajectory"},
		},
		{
			Code:       schema.AE,
			Name:       schema.DimensionName(schema.AE),
			Modality:   schema.TextModality,
			Purpose:    "Decision delegation and declining critical engagement",
			Indicators: []string{"decision_delegation_ratio", "critical_engagement_rate", "cognitive_offloading_trajectory"},
		},
		{
			Code:       schema.RCD,
			Name:       schema.DimensionName(schema.RCD),
			Modality:   schema.TextModality,
			Purpose:    "Human-like attribution and boundary confusion toward the assistant",
			Indicators: []string{"attribution_language_frequency", "boundary_confusion_indicators", "relational_framing"},
		},
		{
			Code:       schema.DF,
			Name:       schema.DimensionName(schema.DF),
			Modality:   schema.TextModality,
			Purpose:    "Usage habits consistent with emotional or practical reliance",
			Indicators: []string{"interaction_frequency_trend", "session_duration_trend", "emotional_content_ratio", "time_of_day_distribution", "self_disclosure_depth_trajectory"},
		},
		{
			Code:       schema.PE,
			Name:       schema.DimensionName(schema.PE),
			Modality:   schema.AudioModality,
			Purpose:    "Vocal characteristics converging toward the assistant's voice",
			Indicators: []string{"pitch_convergence", "speech_rate_alignment", "intensity_convergence", "spectral_similarity", "overall_prosodic_convergence", "convergence_trend"},
		},
	}

	active := weights
	if active == nil {
		active = schema.GetDefaultWeights()
	}

	withWeights := make([]schema.DimensionInfoWithWeight, len(infos))
	for i, info := range infos {
		withWeights[i] = schema.DimensionInfoWithWeight{
			DimensionInfo: info,
			Weight:        active[info.Code],
		}
	}

	return &schema.DimensionRenderModel{
		Title:       "Entrain Measurement Dimensions",
		Description: "Six behavioral dimensions measured from conversation exports.",
		Version:     schema.Version,
		Dimensions:  withWeights,
		Platforms:   platforms,
	}
}
