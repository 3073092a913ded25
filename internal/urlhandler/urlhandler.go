package urlhandler

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// SortUnique returns the lexicographically sorted set of lines. The input is
// not modified. Applying it twice yields the same result as applying it once.
func SortUnique(lines []string) []string {
	out := slices.Clone(lines)
	slices.Sort(out)
	return slices.Compact(out)
}

// FilterSubset keeps the candidates that belong to allowed, sorted and
// deduplicated, and returns the rejected ones separately.
func FilterSubset(candidates, allowed []string) (kept, rejected []string) {
	set := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		set[a] = struct{}{}
	}
	for _, c := range candidates {
		if _, ok := set[c]; ok {
			kept = append(kept, c)
		} else {
			rejected = append(rejected, c)
		}
	}
	return SortUnique(kept), rejected
}

// ValidateURLFormat validates URL format using net/url parsing
func ValidateURLFormat(rawURL string) error {
	trimmedURL := strings.TrimSpace(rawURL)
	if trimmedURL == "" {
		return fmt.Errorf("URL is empty")
	}

	_, err := url.ParseRequestURI(trimmedURL)
	if err != nil {
		return fmt.Errorf("invalid URL format '%s': %w", trimmedURL, err)
	}

	return nil
}
