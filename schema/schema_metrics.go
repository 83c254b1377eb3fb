package schema

// DimensionInfo describes one measurement dimension for display purposes.
type DimensionInfo struct {
	Code       Dimension `json:"code"`
	Name       string    `json:"name"`
	Modality   Modality  `json:"modality"`
	Purpose    string    `json:"purpose"`
	Indicators []string  `json:"indicators"`
}

// DimensionInfoWithWeight extends DimensionInfo with the active risk weight.
type DimensionInfoWithWeight struct {
	DimensionInfo
	Weight float64 `json:"weight"`
}

// DimensionRenderModel contains all processed data needed for displaying
// dimension definitions.
type DimensionRenderModel struct {
	Title       string                    `json:"title"`
	Description string                    `json:"description"`
	Version     string                    `json:"version"`
	Dimensions  []DimensionInfoWithWeight `json:"dimensions"`
	Platforms   []string                  `json:"platforms,omitempty"`
}
