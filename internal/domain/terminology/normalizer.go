// Package terminology implements the canonical representation of disease
// terms and the immutable dictionary tables they resolve against.
//
// Every comparison in the platform (dictionary lookup, fuzzy ranking,
// mention deduplication) happens on the canonical form produced by
// Normalize, so the exact rewrite order below is load-bearing: abbreviation
// expansion must run on lowercased, punctuation-light text, and plural
// reduction must run after expansion because expansions can introduce the
// plural forms the table targets.
package terminology

import (
	"regexp"
	"strings"
	"unicode"
)

// rewriteRule rewrites every whole-word occurrence of a token.
type rewriteRule struct {
	pattern     *regexp.Regexp
	replacement string
}

func wholeWord(token, replacement string) rewriteRule {
	return rewriteRule{
		pattern:     regexp.MustCompile(`\b` + token + `\b`),
		replacement: replacement,
	}
}

// abbreviationRules expands common clinical shorthand to the full disease
// name. Applied in declaration order; whole-word matches only, so "cad"
// is never rewritten by the "ca" rule.
var abbreviationRules = []rewriteRule{
	wholeWord("afib", "atrial fibrillation"),
	wholeWord("ca", "cancer"),
	wholeWord("cad", "coronary artery disease"),
	wholeWord("ckd", "chronic kidney disease"),
	wholeWord("copd", "chronic obstructive pulmonary disease"),
	wholeWord("dm", "diabetes"),
	wholeWord("dvt", "deep vein thrombosis"),
	wholeWord("dz", "disease"),
	wholeWord("hf", "heart failure"),
	wholeWord("htn", "hypertension"),
	wholeWord("mi", "myocardial infarction"),
	wholeWord("pe", "pulmonary embolism"),
	wholeWord("tb", "tuberculosis"),
	wholeWord("uti", "urinary tract infection"),
}

// pluralRules reduces the irregular plurals that appear in terminology
// sources to their singular dictionary form. Applied after abbreviation
// expansion.
var pluralRules = []rewriteRule{
	wholeWord("cancers", "cancer"),
	wholeWord("diseases", "disease"),
	wholeWord("failures", "failure"),
	wholeWord("findings", "finding"),
	wholeWord("infarctions", "infarction"),
	wholeWord("syndromes", "syndrome"),
	wholeWord("tumors", "tumor"),
}

// Normalize maps a raw term or mention to its canonical form: lowercase,
// punctuation stripped except period and hyphen, whitespace collapsed,
// abbreviations expanded, irregular plurals singularized.
//
// Normalize is pure and total: it never fails, and normalizing an already
// canonical term returns it unchanged. Callers that need to reject
// punctuation-only noise should use IsValidMention rather than inspecting
// the (possibly empty) result.
func Normalize(term string) string {
	lowered := strings.ToLower(term)

	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		switch {
		case unicode.IsLetter(r), unicode.IsNumber(r), unicode.IsSpace(r), r == '.', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}

	norm := strings.Join(strings.Fields(b.String()), " ")

	for _, rule := range abbreviationRules {
		norm = rule.pattern.ReplaceAllLiteralString(norm, rule.replacement)
	}
	for _, rule := range pluralRules {
		norm = rule.pattern.ReplaceAllLiteralString(norm, rule.replacement)
	}
	return norm
}

// IsValidMention reports whether the canonical form of term contains at
// least one alphanumeric rune. It filters extraction noise such as bullets,
// dashes, and stray symbols that survive tagging.
func IsValidMention(term string) bool {
	for _, r := range Normalize(term) {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return true
		}
	}
	return false
}
