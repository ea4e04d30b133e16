package loaders

import (
	"strings"

	"MarginSight/api/constants"
	"MarginSight/api/mpa/model"
)

// NormalizeContractCode canonicalizes a raw contract code for consistent
// joins: trim, replace non-breaking spaces, collapse internal whitespace.
// Case is preserved because codes are case-sensitive. Empty or missing input
// is a fatal input error.
func NormalizeContractCode(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, constants.NBSP, " ")
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return "", model.Inputf("contract code is empty after normalization")
	}
	return s, nil
}

// normalizeCell trims, removes non-breaking spaces and collapses whitespace
func normalizeCell(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, constants.NBSP, " ")
	return strings.Join(strings.Fields(s), " ")
}
