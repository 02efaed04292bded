// Package urllist reads and writes the URL list file.
//
// The file holds one registration per line in the form
//
//	<url>,<tag>
//
// split on the first comma with both fields trimmed. Blank lines are
// skipped. Any other line that does not match is reported and skipped;
// decoding always continues.
package urllist

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/custodia-labs/tagvault/internal/core/domain"
)

// MaxLineLength bounds one line of the file. Longer lines are reported
// and skipped like any other malformed line.
const MaxLineLength = 1 << 20

// Decode parses data into entries, in file order. Lines that cannot be
// decoded are returned as problems.
func Decode(data []byte) ([]domain.URLListEntry, []domain.MalformedLine) {
	entries := []domain.URLListEntry{}
	var problems []domain.MalformedLine

	lineNo := 0
	for len(data) > 0 {
		var next []byte
		next, data, _ = bytes.Cut(data, []byte{'\n'})
		lineNo++

		if len(next) > MaxLineLength {
			problems = append(problems, domain.MalformedLine{
				Line:   lineNo,
				Text:   string(next[:80]) + "...",
				Reason: fmt.Sprintf("line longer than %d bytes", MaxLineLength),
			})
			continue
		}

		raw := strings.TrimSuffix(string(next), "\r")
		line := strings.TrimSpace(raw)
		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		if line == "" {
			continue
		}

		entry, reason := decodeLine(line)
		if reason != "" {
			problems = append(problems, domain.MalformedLine{Line: lineNo, Text: raw, Reason: reason})
			continue
		}
		entries = append(entries, entry)
	}

	return entries, problems
}

func decodeLine(line string) (domain.URLListEntry, string) {
	rawURL, tag, ok := strings.Cut(line, ",")
	if !ok {
		return domain.URLListEntry{}, "expected <url>,<tag>"
	}
	rawURL = strings.TrimSpace(rawURL)
	tag = strings.TrimSpace(tag)

	switch {
	case rawURL == "":
		return domain.URLListEntry{}, "url is empty"
	case tag == "":
		return domain.URLListEntry{}, "tag is empty"
	}
	return domain.URLListEntry{URL: rawURL, Tag: tag}, ""
}

// Encode serialises entries, one line each, newline terminated.
func Encode(entries []domain.URLListEntry) []byte {
	var buf bytes.Buffer
	for _, e := range entries {
		buf.WriteString(e.URL)
		buf.WriteByte(',')
		buf.WriteString(e.Tag)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// Merge builds the new list from discovered URLs. The result replaces the
// whole list: existing entries that were not rediscovered are dropped.
// Discovered URLs are trimmed, blanks skipped and duplicates removed by
// exact string, keeping the first occurrence.
func Merge(existing []domain.URLListEntry, discovered []string, tag string) domain.MergeResult {
	registered := make(map[string]bool, len(existing))
	for _, e := range existing {
		registered[e.URL] = true
	}

	result := domain.MergeResult{
		Entries: []domain.URLListEntry{},
		Added:   []string{},
		Kept:    []string{},
		Dropped: []string{},
	}

	seen := make(map[string]bool, len(discovered))
	for _, u := range discovered {
		u = strings.TrimSpace(u)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true

		result.Entries = append(result.Entries, domain.URLListEntry{URL: u, Tag: tag})
		if registered[u] {
			result.Kept = append(result.Kept, u)
		} else {
			result.Added = append(result.Added, u)
		}
	}

	dropped := make(map[string]bool)
	for _, e := range existing {
		if !seen[e.URL] && !dropped[e.URL] {
			dropped[e.URL] = true
			result.Dropped = append(result.Dropped, e.URL)
		}
	}

	return result
}
