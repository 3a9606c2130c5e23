package domain

import "math"

// Confidence weights. Documentation quality dominates, followed by type
// coverage and the reliability of the evidence source.
const (
	weightDocumentation = 0.35
	weightTypes         = 0.25
	weightExamples      = 0.15
	weightSource        = 0.25
)

// sourceReliability is the fixed per-source reliability lookup. Protocol
// introspection reads declared definitions and is fully trusted; the
// universal fallback is generic boilerplate.
var sourceReliability = map[SourceType]float64{
	SourceIntrospect: 1.0,
	SourceOpenAPI:    0.95,
	SourceGraphQL:    0.9,
	SourceGRPC:       0.9,
	SourceCode:       0.8,
	SourceTests:      0.7,
	SourceDocs:       0.6,
	SourceExamples:   0.5,
	SourceReadme:     0.4,
	SourceUniversal:  0.3,
}

// SourceReliability returns the fixed reliability for a source type.
func SourceReliability(s SourceType) float64 {
	r, ok := sourceReliability[s]
	if !ok {
		return sourceReliability[SourceUniversal]
	}
	return r
}

// ConfidenceFactors are the sub-scores combined into a tool's confidence.
// Each factor is in [0,1].
type ConfidenceFactors struct {
	Documentation float64 `json:"documentation"`
	Types         float64 `json:"types"`
	Examples      float64 `json:"examples"`
	Source        float64 `json:"source"`
}

// Score combines the factors into a single confidence value, clamped to
// [0,1] and rounded to two decimals so identical input is byte-identical
// in serialized output.
func (f ConfidenceFactors) Score() float64 {
	score := weightDocumentation*f.Documentation +
		weightTypes*f.Types +
		weightExamples*f.Examples +
		weightSource*f.Source
	return round2(clamp01(score))
}

// DocSignals are the raw counts extracted from a structured doc block,
// used to derive confidence factors.
type DocSignals struct {
	DescriptionLen  int
	ParamCount      int
	DocumentedParams int
	TypedParams     int
	HasReturnDoc    bool
	ExampleCount    int
}

// FactorsFromSignals derives confidence factors from doc signals and the
// evidence source.
func FactorsFromSignals(sig DocSignals, source SourceType) ConfidenceFactors {
	doc := 0.0
	if sig.DescriptionLen > 10 {
		doc += 0.4
	}
	if sig.ParamCount > 0 {
		doc += 0.3 * float64(sig.DocumentedParams) / float64(sig.ParamCount)
	}
	if sig.HasReturnDoc {
		doc += 0.2
	}

	// Vacuously true for zero-parameter tools.
	allTyped := sig.TypedParams == sig.ParamCount
	if allTyped {
		doc += 0.1
	}

	types := 0.2
	switch {
	case allTyped:
		types = 1.0
	case sig.TypedParams > 0:
		types = 0.8
	}

	examples := 0.0
	if sig.ExampleCount > 0 {
		examples = 1.0
	}

	return ConfidenceFactors{
		Documentation: clamp01(doc),
		Types:         types,
		Examples:      examples,
		Source:        SourceReliability(source),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
