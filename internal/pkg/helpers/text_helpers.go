package helpers

import (
	"strings"

	"golang.org/x/text/cases"
)

// ContainsFold reports whether substr is within s under Unicode case folding.
// An empty or blank substr always matches.
func ContainsFold(s, substr string) bool {
	substr = strings.TrimSpace(substr)
	if substr == "" {
		return true
	}
	fold := cases.Fold()
	return strings.Contains(fold.String(s), fold.String(substr))
}

// AnyContainsFold reports whether any of values contains substr under case folding.
func AnyContainsFold(substr string, values ...string) bool {
	if strings.TrimSpace(substr) == "" {
		return true
	}
	for _, v := range values {
		if ContainsFold(v, substr) {
			return true
		}
	}
	return false
}
