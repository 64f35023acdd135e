// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

package memory

import "regexp"

// identifierPattern pairs a compiled regexp with the placeholder its
// matches are replaced with. Patterns mirror the direct-identifier
// classes a PII detector flags as high severity: email, phone, and
// government identifiers, which is the minimum the anonymization step
// of scope-escalation compliance must strip before a memory can be
// promoted above user scope.
type identifierPattern struct {
	re          *regexp.Regexp
	placeholder string
}

var identifierPatterns = []identifierPattern{
	{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), "[EMAIL]"},
	{regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`), "[SSN]"},
	{regexp.MustCompile(`\b(?:\+?1[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}\b`), "[PHONE]"},
	{regexp.MustCompile(`\b(?:\d[ -]*?){13,19}\b`), "[CARD]"},
}

// Anonymize replaces direct principal identifiers in text with type
// placeholders and reports how many replacements were made. It is the
// first gate a memory must pass before it may be written at department
// or plant scope.
func Anonymize(text string) (string, int) {
	replaced := 0
	out := text
	for _, p := range identifierPatterns {
		out = p.re.ReplaceAllStringFunc(out, func(match string) string {
			replaced++
			return p.placeholder
		})
	}
	return out, replaced
}

// ContainsIdentifier reports whether text still carries a direct
// principal identifier, for use as a pre-store assertion after
// Anonymize has run.
func ContainsIdentifier(text string) bool {
	for _, p := range identifierPatterns {
		if p.re.MatchString(text) {
			return true
		}
	}
	return false
}
