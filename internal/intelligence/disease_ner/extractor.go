package disease_ner

import (
	"context"
	"sort"

	"github.com/turtacn/MedCode-Intelligence/internal/domain/terminology"
	"github.com/turtacn/MedCode-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MedCode-Intelligence/pkg/errors"
)

// DefaultDiseaseLabel is the tagger label denoting a disease-type entity.
const DefaultDiseaseLabel = "DISEASE"

// Extractor turns raw biomedical text into a unique, sorted list of disease
// mentions using dual-pass tagging: the tagger runs once over the raw text
// and once over its normalized form, which improves recall for
// abbreviations and minor orthographic variants the model only recognizes
// in one of the two.
type Extractor struct {
	tagger Tagger
	label  string
	logger logging.Logger
}

// NewExtractor wires an Extractor to its tagger. An empty label selects
// DefaultDiseaseLabel.
func NewExtractor(tagger Tagger, label string, logger logging.Logger) (*Extractor, error) {
	if tagger == nil {
		return nil, errors.InvalidParam("tagger is required")
	}
	if label == "" {
		label = DefaultDiseaseLabel
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Extractor{
		tagger: tagger,
		label:  label,
		logger: logger.Named("disease_ner"),
	}, nil
}

// ExtractMentions returns the unique disease mentions found in text, sorted
// lexicographically by their original surface form.
//
// Both tagging passes contribute mentions in order, raw pass first. The
// merged list is deduplicated by normalized form, keeping the first
// occurrence; mentions whose normalized form contains no alphanumeric
// character are dropped without claiming their normalized form. Tagger
// errors propagate unmodified.
func (e *Extractor) ExtractMentions(ctx context.Context, text string) ([]string, error) {
	e.logger.Debug("tagging raw text", logging.Int("chars", len(text)))
	rawEntities, err := e.tagger.Tag(ctx, text)
	if err != nil {
		return nil, err
	}

	normalized := terminology.Normalize(text)
	e.logger.Debug("tagging normalized text", logging.Int("chars", len(normalized)))
	normEntities, err := e.tagger.Tag(ctx, normalized)
	if err != nil {
		return nil, err
	}

	merged := make([]string, 0, len(rawEntities)+len(normEntities))
	for _, ent := range rawEntities {
		if ent.Label == e.label {
			merged = append(merged, ent.Text)
		}
	}
	for _, ent := range normEntities {
		if ent.Label == e.label {
			merged = append(merged, ent.Text)
		}
	}

	seen := make(map[string]struct{}, len(merged))
	unique := make([]string, 0, len(merged))
	for _, mention := range merged {
		norm := terminology.Normalize(mention)
		if _, dup := seen[norm]; dup {
			continue
		}
		if !terminology.IsValidMention(mention) {
			continue
		}
		seen[norm] = struct{}{}
		unique = append(unique, mention)
	}
	sort.Strings(unique)

	e.logger.Debug("extracted mentions",
		logging.Int("raw_spans", len(rawEntities)),
		logging.Int("normalized_spans", len(normEntities)),
		logging.Int("unique", len(unique)))

	return unique, nil
}
