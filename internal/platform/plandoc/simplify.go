package plandoc

import "regexp"

// clinicalSubstitutions rewrites clinical register into plain language for
// patient-facing goal descriptions. Matching is case-insensitive; the
// replacement order is fixed so output stays deterministic.
var clinicalSubstitutions = []struct {
	pattern *regexp.Regexp
	to      string
}{
	{caseFold("reduction in"), "reducing"},
	{caseFold("amelioration of"), "improving"},
	{caseFold("symptomatology"), "symptoms"},
	{caseFold("cognitive restructuring"), "changing thinking patterns"},
	{caseFold("behavioral activation"), "getting more active"},
}

func caseFold(phrase string) *regexp.Regexp {
	return regexp.MustCompile("(?i)" + regexp.QuoteMeta(phrase))
}

// SimplifyClinicalDescription derives a patient-facing description from a
// clinical goal description by phrase substitution, truncated to
// ClientDescriptionMaxLen characters. Used when a new goal arrives without
// an explicit client description.
func SimplifyClinicalDescription(clinical string) string {
	out := clinical
	for _, sub := range clinicalSubstitutions {
		out = sub.pattern.ReplaceAllLiteralString(out, sub.to)
	}
	runes := []rune(out)
	if len(runes) > ClientDescriptionMaxLen {
		out = string(runes[:ClientDescriptionMaxLen])
	}
	return out
}
