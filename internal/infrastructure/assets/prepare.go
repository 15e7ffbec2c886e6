// Package assets builds and loads the two JSON lookup tables the resolver
// depends on: term_to_cuis.json (normalized disease term → UMLS concept
// identifiers) and cui_to_icd.json (concept identifier → ICD-10-CM codes).
//
// The tables are prepared offline from the UMLS MRSTY.RRF and MRCONSO.RRF
// distribution files and shipped in the configured assets directory.
package assets

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/turtacn/MedCode-Intelligence/internal/domain/terminology"
	"github.com/turtacn/MedCode-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MedCode-Intelligence/pkg/errors"
)

// Asset file names under the assets directory.
const (
	TermToCUIsFile = "term_to_cuis.json"
	CUIToICDFile   = "cui_to_icd.json"
)

// DiseaseTUIs are the UMLS semantic types treated as disease-like:
// T033 Finding, T047 Disease or Syndrome, T191 Neoplastic Process.
var DiseaseTUIs = map[string]struct{}{
	"T033": {},
	"T047": {},
	"T191": {},
}

// MRCONSO.RRF and MRSTY.RRF are pipe-delimited without quoting; the column
// indices below follow the UMLS .ctl layouts.
const (
	mrstyColCUI = 0
	mrstyColTUI = 1

	mrconsoColCUI  = 0
	mrconsoColLAT  = 1
	mrconsoColSAB  = 11
	mrconsoColCode = 13
	mrconsoColSTR  = 14
)

// Preparer turns UMLS RRF files into the JSON lookup assets.
type Preparer struct {
	logger logging.Logger
}

// NewPreparer returns a Preparer.
func NewPreparer(logger logging.Logger) *Preparer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Preparer{logger: logger.Named("assets")}
}

// Prepare reads MRSTY.RRF and MRCONSO.RRF and writes term_to_cuis.json and
// cui_to_icd.json into outputDir, creating the directory if needed.
func (p *Preparer) Prepare(mrstyPath, mrconsoPath, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "creating assets output directory")
	}

	diseaseCUIs, err := p.loadDiseaseCUIs(mrstyPath)
	if err != nil {
		return err
	}
	p.logger.Info("disease CUIs selected", logging.Int("count", len(diseaseCUIs)))

	termToCUIs, err := p.buildTermToCUIs(mrconsoPath, diseaseCUIs)
	if err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(outputDir, TermToCUIsFile), termToCUIs); err != nil {
		return err
	}
	p.logger.Info("term index written", logging.Int("terms", len(termToCUIs)))

	cuiToICD, err := p.buildCUIToICD(mrconsoPath, diseaseCUIs)
	if err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(outputDir, CUIToICDFile), cuiToICD); err != nil {
		return err
	}
	p.logger.Info("code index written", logging.Int("cuis", len(cuiToICD)))

	return nil
}

// loadDiseaseCUIs collects the CUIs whose semantic type is disease-like.
func (p *Preparer) loadDiseaseCUIs(mrstyPath string) (map[string]struct{}, error) {
	f, err := os.Open(mrstyPath)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeAssetMissing, "opening MRSTY.RRF")
	}
	defer f.Close()

	cuis := make(map[string]struct{})
	scanner := newRRFScanner(f)
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), "|")
		if len(fields) <= mrstyColTUI+1 {
			continue
		}
		if _, ok := DiseaseTUIs[fields[mrstyColTUI]]; ok {
			cuis[fields[mrstyColCUI]] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRRFFormat, "reading MRSTY.RRF")
	}
	return cuis, nil
}

// buildTermToCUIs maps each normalized English term string to the disease
// CUIs it names.
func (p *Preparer) buildTermToCUIs(mrconsoPath string, diseaseCUIs map[string]struct{}) (map[string][]string, error) {
	f, err := os.Open(mrconsoPath)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeAssetMissing, "opening MRCONSO.RRF")
	}
	defer f.Close()

	terms := make(map[string]map[string]struct{})
	scanner := newRRFScanner(f)
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), "|")
		if len(fields) <= mrconsoColSTR {
			continue
		}
		cui := fields[mrconsoColCUI]
		if _, ok := diseaseCUIs[cui]; !ok {
			continue
		}
		if fields[mrconsoColLAT] != "ENG" {
			continue
		}
		norm := terminology.Normalize(fields[mrconsoColSTR])
		set, ok := terms[norm]
		if !ok {
			set = make(map[string]struct{})
			terms[norm] = set
		}
		set[cui] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRRFFormat, "reading MRCONSO.RRF")
	}
	return sortedValues(terms), nil
}

// buildCUIToICD maps each disease CUI to its ICD-10-CM codes.
func (p *Preparer) buildCUIToICD(mrconsoPath string, diseaseCUIs map[string]struct{}) (map[string][]string, error) {
	f, err := os.Open(mrconsoPath)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeAssetMissing, "opening MRCONSO.RRF")
	}
	defer f.Close()

	codes := make(map[string]map[string]struct{})
	scanner := newRRFScanner(f)
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), "|")
		if len(fields) <= mrconsoColCode {
			continue
		}
		cui := fields[mrconsoColCUI]
		if _, ok := diseaseCUIs[cui]; !ok {
			continue
		}
		if fields[mrconsoColSAB] != "ICD10CM" || fields[mrconsoColCode] == "" {
			continue
		}
		set, ok := codes[cui]
		if !ok {
			set = make(map[string]struct{})
			codes[cui] = set
		}
		set[fields[mrconsoColCode]] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRRFFormat, "reading MRCONSO.RRF")
	}
	return sortedValues(codes), nil
}

// newRRFScanner sizes the scanner for long MRCONSO rows.
func newRRFScanner(f *os.File) *bufio.Scanner {
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	return scanner
}

func sortedValues(sets map[string]map[string]struct{}) map[string][]string {
	out := make(map[string][]string, len(sets))
	for key, set := range sets {
		values := make([]string, 0, len(set))
		for v := range set {
			values = append(values, v)
		}
		sort.Strings(values)
		out[key] = values
	}
	return out
}

// writeJSON writes the mapping with sorted keys and 4-space indentation so
// prepared assets diff cleanly between UMLS releases.
func writeJSON(path string, mapping map[string][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "creating "+filepath.Base(path))
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(mapping); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "writing "+filepath.Base(path))
	}
	return nil
}
