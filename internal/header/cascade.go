package header

import (
	"regexp"
	"strings"
)

// rule is one (pattern, extractor) pair. pick defaults to capture group 1.
type rule struct {
	re   *regexp.Regexp
	pick func(m []string) string
}

// cascade is an ordered list of rules for one field. The first rule that matches
// wins and later rules are never consulted.
type cascade []rule

func newCascade(patterns ...string) cascade {
	c := make(cascade, 0, len(patterns))
	for _, p := range patterns {
		c = append(c, rule{re: regexp.MustCompile(p)})
	}
	return c
}

// first returns the value of the first matching rule and its index, or ("", -1).
func (c cascade) first(text string) (string, int) {
	for i, r := range c {
		m := r.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		var v string
		if r.pick != nil {
			v = r.pick(m)
		} else if len(m) > 1 {
			v = m[1]
		}
		v = cleanValue(v)
		if v == "" {
			continue
		}
		return v, i
	}
	return "", -1
}

var (
	reSpaces   = regexp.MustCompile(`[ \t\x{00A0}\x{2007}\x{202F}]+`)
	reNewlines = regexp.MustCompile(`\n{3,}`)
)

// normalizeText unifies line endings and collapses horizontal whitespace so patterns
// only need single-space separators.
func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = reSpaces.ReplaceAllString(s, " ")
	s = reNewlines.ReplaceAllString(s, "\n\n")
	return s
}

func cleanValue(s string) string {
	s = reSpaces.ReplaceAllString(strings.TrimSpace(s), " ")
	return strings.TrimRight(s, " ,;:-–")
}

func mustCompile(p string) *regexp.Regexp { return regexp.MustCompile(p) }
