package slug

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/procurement-tracker/constants"
	"github.com/joseph-ayodele/procurement-tracker/internal/utils"
)

var reNonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Derive builds a URL slug from the document identifier and an optional authority
// abbreviation: "264/2025" + "SEPLAG-MG" -> "264-2025-seplag-mg".
func Derive(identifier, sigla string) string {
	s := strings.TrimSpace(identifier)
	if sig := strings.TrimSpace(sigla); sig != "" {
		s += " " + sig
	}
	s = strings.ToLower(utils.StripAccents(s))
	s = reNonAlnum.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	return capLen(s, constants.MaxSlugLen)
}

// ExistsFunc reports whether a slug is already taken.
type ExistsFunc func(ctx context.Context, slug string) (bool, error)

// Unique returns base when it is free, otherwise base suffixed with the Unix timestamp
// of now. The result never exceeds the slug length cap.
func Unique(ctx context.Context, base string, exists ExistsFunc, now time.Time) (string, error) {
	if base == "" {
		base = "document"
	}
	taken, err := exists(ctx, base)
	if err != nil {
		return "", fmt.Errorf("check slug: %w", err)
	}
	if !taken {
		return base, nil
	}
	for _, suffix := range []string{strconv.FormatInt(now.Unix(), 10), strconv.FormatInt(now.UnixNano(), 10)} {
		candidate := withSuffix(base, suffix)
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check slug: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("slug %q: no free variant", base)
}

func withSuffix(base, suffix string) string {
	keep := constants.MaxSlugLen - len(suffix) - 1
	return capLen(base, keep) + "-" + suffix
}

// capLen cuts s to n bytes (slugs are ASCII) without leaving a trailing hyphen.
func capLen(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.TrimRight(s[:n], "-")
}
