// Package sanitize rejects request input that carries markup or SQL
// injection probes. Queries are parameterised everywhere, so this is a
// filter on noise, not the line of defence.
package sanitize

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

var ErrSuspicious = errors.New("request contains disallowed content")

var patterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<\s*/?\s*(script|iframe|object|embed|svg)\b`),
	regexp.MustCompile(`(?i)javascript\s*:`),
	regexp.MustCompile(`(?i)\bon(error|load|click|mouseover)\s*=`),
	regexp.MustCompile(`(?i)\bunion\b[\s/*]+(all\s+)?select\b`),
	regexp.MustCompile(`(?i);\s*(drop|delete|truncate|alter|insert|update)\s`),
	regexp.MustCompile(`(?i)'\s*or\s+'?\d+'?\s*=\s*'?\d+`),
}

// sqlComments only apply to query strings. Prose such as review comments
// may legitimately end in "--" or contain "/* */".
var sqlComments = []*regexp.Regexp{
	regexp.MustCompile(`--\s*$`),
	regexp.MustCompile(`/\*.*\*/`),
}

// Suspicious reports whether s carries markup or an injection probe.
func Suspicious(s string) bool {
	return matchAny(patterns, s)
}

func suspiciousParam(s string) bool {
	return matchAny(patterns, s) || matchAny(sqlComments, s)
}

func matchAny(list []*regexp.Regexp, s string) bool {
	if s == "" {
		return false
	}
	for _, p := range list {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// Query checks every key and value of a parsed query string.
func Query(q url.Values) error {
	for key, values := range q {
		if suspiciousParam(key) {
			return ErrSuspicious
		}
		for _, v := range values {
			if suspiciousParam(v) {
				return ErrSuspicious
			}
		}
	}
	return nil
}

// Text trims s and reports ErrSuspicious when it should be refused.
func Text(s string) (string, error) {
	s = strings.TrimSpace(s)
	if Suspicious(s) {
		return "", ErrSuspicious
	}
	return s, nil
}
