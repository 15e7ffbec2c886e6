package assets

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/turtacn/MedCode-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MedCode-Intelligence/pkg/errors"
)

// Loader reads the prepared JSON lookup tables from an assets directory.
// It satisfies the terminology source contract: each table is read exactly
// once, at dictionary-store construction, and any failure is fatal there.
type Loader struct {
	dir    string
	logger logging.Logger
}

// NewLoader returns a Loader rooted at the assets directory.
func NewLoader(dir string, logger logging.Logger) *Loader {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Loader{dir: dir, logger: logger.Named("assets")}
}

// TermToConcepts reads term_to_cuis.json.
func (l *Loader) TermToConcepts() (map[string][]string, error) {
	return l.readMapping(TermToCUIsFile)
}

// ConceptToCodes reads cui_to_icd.json.
func (l *Loader) ConceptToCodes() (map[string][]string, error) {
	return l.readMapping(CUIToICDFile)
}

func (l *Loader) readMapping(name string) (map[string][]string, error) {
	path := filepath.Join(l.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(err, errors.ErrCodeAssetMissing,
				name+" not found in "+l.dir+" (run prepare-assets first)")
		}
		return nil, errors.Wrap(err, errors.ErrCodeAssetMissing, "reading "+name)
	}

	var mapping map[string][]string
	if err := json.Unmarshal(data, &mapping); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeAssetMalformed, "parsing "+name)
	}

	l.logger.Debug("asset loaded", logging.String("file", name), logging.Int("entries", len(mapping)))
	return mapping, nil
}
