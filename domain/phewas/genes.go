package phewas

import "strings"

// ParseGeneList splits comma- or newline-separated input into upper-case tokens
func ParseGeneList(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, ",", "\n")
	var genes []string
	for _, line := range strings.Split(text, "\n") {
		g := strings.TrimSpace(line)
		if g == "" {
			continue
		}
		genes = append(genes, strings.ToUpper(g))
	}
	return genes
}

// IsEnsemblID reports whether token looks like a stable Ensembl gene identifier
func IsEnsemblID(token string) bool {
	return len(token) >= 4 && strings.EqualFold(token[:4], "ENSG")
}
