package pipeline

import (
	"strings"
	"unicode"

	"github.com/siherrmann/linker/model"
)

// greekLetters maps spelled-out Greek letters commonly found in gene and
// drug synonyms to a single canonical token.
var greekLetters = map[string]string{
	"alpha":   "A",
	"beta":    "B",
	"gamma":   "G",
	"delta":   "D",
	"epsilon": "E",
	"kappa":   "K",
	"lambda":  "L",
	"sigma":   "S",
	"omega":   "O",
}

// DefaultNormalizer returns the deterministic string normalizer used to
// compute Entity.MatchNorm and curation term norms. Symbol heavy classes
// (gene) keep their token structure, everything else is case folded with
// punctuation collapsed to spaces.
func DefaultNormalizer() model.NormalizeFunc {
	return func(text string, entityClass string) string {
		switch entityClass {
		case "gene":
			return normalizeSymbolic(text)
		default:
			return normalizeDefault(text)
		}
	}
}

func normalizeDefault(text string) string {
	var b strings.Builder
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func normalizeSymbolic(text string) string {
	fields := strings.Fields(normalizeDefault(text))
	for i, field := range fields {
		if replacement, ok := greekLetters[strings.ToLower(field)]; ok {
			fields[i] = replacement
		}
	}
	return strings.Join(fields, " ")
}
