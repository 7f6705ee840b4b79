package pairing

import (
	"path/filepath"
	"strings"
	"unicode"
)

const (
	jaccardWeight = 0.7
	prefixWeight  = 0.3

	// neutralMetadataScore is kept intentionally at 0.5: with no
	// correlation signal the metadata factor neither rewards nor
	// penalizes a candidate.
	neutralMetadataScore = 0.5
)

// filenameSimilarity scores two filenames by the Jaccard similarity of
// their numeric tokens combined with a shared-prefix bonus on the stems.
func filenameSimilarity(source, candidate string) float64 {
	if source == "" || candidate == "" {
		return 0
	}
	return jaccardWeight*numericTokenJaccard(source, candidate) +
		prefixWeight*prefixBonus(source, candidate)
}

// numericTokenJaccard compares the sets of numeric runs in two filenames.
// Leading zeros are insignificant, so "001" and "1" are the same token.
func numericTokenJaccard(a, b string) float64 {
	setA := numericTokens(a)
	setB := numericTokens(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for token := range setA {
		if setB[token] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func numericTokens(filename string) map[string]bool {
	tokens := make(map[string]bool)
	var run strings.Builder
	flush := func() {
		if run.Len() > 0 {
			tokens[normalizeNumeric(run.String())] = true
			run.Reset()
		}
	}
	for _, r := range stem(filename) {
		if unicode.IsDigit(r) {
			run.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return tokens
}

func normalizeNumeric(token string) string {
	trimmed := strings.TrimLeft(token, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}

// prefixBonus is the length of the shared stem prefix relative to the
// shorter stem.
func prefixBonus(a, b string) float64 {
	sa, sb := stem(a), stem(b)
	shorter := min(len(sa), len(sb))
	if shorter == 0 {
		return 0
	}

	common := 0
	for common < shorter && sa[common] == sb[common] {
		common++
	}
	return float64(common) / float64(shorter)
}

// metadataCorrelation scores how many of the source stem's tokens appear
// as substrings of the candidate's description and provenance fields.
// With no tokens or no candidate text there is no signal and the neutral
// score applies.
func metadataCorrelation(sourceFilename, description, provenance string) float64 {
	tokens := stemTokens(sourceFilename)
	haystack := strings.ToLower(description + " " + provenance)
	if len(tokens) == 0 || strings.TrimSpace(haystack) == "" {
		return neutralMetadataScore
	}

	matched := 0
	for _, token := range tokens {
		if strings.Contains(haystack, token) {
			matched++
		}
	}
	return float64(matched) / float64(len(tokens))
}

// stem strips the directory and extension from a filename.
func stem(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// stemTokens splits a filename stem into lowercase alphanumeric runs.
func stemTokens(filename string) []string {
	var tokens []string
	var run strings.Builder
	flush := func() {
		if run.Len() > 0 {
			tokens = append(tokens, run.String())
			run.Reset()
		}
	}
	for _, r := range strings.ToLower(stem(filename)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			run.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return tokens
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
