// Package model wraps the frozen default-risk model behind a thin prediction
// port: load the artifact once at startup, then pure inference and additive
// attribution. No retraining, no mutation.
package model

import (
	"fmt"
	"strconv"

	"github.com/beevik/etree"
	"github.com/danarta/loan-decision-service/internal/features"
)

// ModelUnavailableError indicates the model artifact could not be loaded.
// The process must refuse to serve predictions without it.
type ModelUnavailableError struct {
	Path   string
	Reason string
}

func (e *ModelUnavailableError) Error() string {
	return fmt.Sprintf("model artifact unavailable (%s): %s", e.Path, e.Reason)
}

// TermKind distinguishes numeric from categorical scorecard terms.
type TermKind int

const (
	NumericTerm TermKind = iota
	CategoricalTerm
)

// Term is one feature's entry in the logistic scorecard. A numeric term
// contributes weight*(value-mean) to the log-odds; a categorical term
// contributes the weight of the observed level, or the default weight for
// unseen levels.
type Term struct {
	Feature string
	Kind    TermKind
	Weight  float64
	Mean    float64
	Levels  map[string]float64
	Default float64
}

// Artifact is the frozen model: an additive logistic scorecard with a
// versioned feature-schema contract.
type Artifact struct {
	ModelType     string
	Version       string
	SchemaVersion string
	Intercept     float64
	Terms         []Term
}

func parseFloatAttr(el *etree.Element, attr string) (float64, error) {
	raw := el.SelectAttrValue(attr, "")
	if raw == "" {
		return 0, fmt.Errorf("element <%s> missing attribute %q", el.Tag, attr)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("element <%s> attribute %q: %w", el.Tag, attr, err)
	}
	return v, nil
}

// parseArtifact decodes a <scorecard> document.
func parseArtifact(doc *etree.Document) (*Artifact, error) {
	root := doc.SelectElement("scorecard")
	if root == nil {
		return nil, fmt.Errorf("no <scorecard> root element")
	}

	a := &Artifact{
		ModelType:     root.SelectAttrValue("model", "scorecard"),
		Version:       root.SelectAttrValue("version", ""),
		SchemaVersion: root.SelectAttrValue("schema", ""),
	}
	if a.Version == "" {
		return nil, fmt.Errorf("scorecard missing version attribute")
	}
	if a.SchemaVersion == "" {
		return nil, fmt.Errorf("scorecard missing schema attribute")
	}

	interceptEl := root.SelectElement("intercept")
	if interceptEl == nil {
		return nil, fmt.Errorf("scorecard missing <intercept>")
	}
	intercept, err := strconv.ParseFloat(interceptEl.Text(), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid intercept: %w", err)
	}
	a.Intercept = intercept

	termsEl := root.SelectElement("terms")
	if termsEl == nil {
		return nil, fmt.Errorf("scorecard missing <terms>")
	}

	for _, el := range termsEl.ChildElements() {
		feature := el.SelectAttrValue("feature", "")
		if feature == "" {
			return nil, fmt.Errorf("term <%s> missing feature attribute", el.Tag)
		}

		switch el.Tag {
		case "numeric":
			weight, err := parseFloatAttr(el, "weight")
			if err != nil {
				return nil, err
			}
			mean, err := parseFloatAttr(el, "mean")
			if err != nil {
				return nil, err
			}
			a.Terms = append(a.Terms, Term{
				Feature: feature, Kind: NumericTerm, Weight: weight, Mean: mean,
			})
		case "categorical":
			def, err := parseFloatAttr(el, "default")
			if err != nil {
				return nil, err
			}
			levels := map[string]float64{}
			for _, lv := range el.SelectElements("level") {
				value := lv.SelectAttrValue("value", "")
				if value == "" {
					return nil, fmt.Errorf("categorical term %q has a level without a value", feature)
				}
				weight, err := parseFloatAttr(lv, "weight")
				if err != nil {
					return nil, err
				}
				levels[value] = weight
			}
			a.Terms = append(a.Terms, Term{
				Feature: feature, Kind: CategoricalTerm, Levels: levels, Default: def,
			})
		default:
			return nil, fmt.Errorf("unknown term element <%s>", el.Tag)
		}
	}

	if len(a.Terms) == 0 {
		return nil, fmt.Errorf("scorecard has no terms")
	}
	return a, nil
}

// validateSchema checks the artifact's feature contract against the
// assembler's schema. A mismatch is a build/versioning defect and fatal.
func validateSchema(a *Artifact) error {
	if a.SchemaVersion != features.SchemaVersion {
		return &ModelUnavailableError{
			Reason: fmt.Sprintf("artifact trained against feature schema %q, assembler provides %q",
				a.SchemaVersion, features.SchemaVersion),
		}
	}
	for _, term := range a.Terms {
		if !features.SchemaHas(term.Feature) {
			return &features.FeatureSchemaError{
				Reason: fmt.Sprintf("model expects feature %q which the assembler does not produce", term.Feature),
			}
		}
	}
	return nil
}

// LoadArtifact reads and validates the frozen model artifact. Called once at
// process start; any failure means the pipeline must not serve predictions.
func LoadArtifact(path string) (*Artifact, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, &ModelUnavailableError{Path: path, Reason: err.Error()}
	}

	a, err := parseArtifact(doc)
	if err != nil {
		return nil, &ModelUnavailableError{Path: path, Reason: err.Error()}
	}
	if err := validateSchema(a); err != nil {
		return nil, err
	}
	return a, nil
}

// ParseArtifact decodes an artifact from raw XML and validates its schema
// contract.
func ParseArtifact(raw []byte) (*Artifact, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, &ModelUnavailableError{Reason: err.Error()}
	}
	a, err := parseArtifact(doc)
	if err != nil {
		return nil, &ModelUnavailableError{Reason: err.Error()}
	}
	if err := validateSchema(a); err != nil {
		return nil, err
	}
	return a, nil
}
