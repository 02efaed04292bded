package domain

import "fmt"

// URLListEntry is one registration record of the URL list file.
type URLListEntry struct {
	URL string `json:"url"`
	Tag string `json:"tag"`
}

// MergeResult describes the outcome of registering discovered URLs.
type MergeResult struct {
	// Entries is the complete new URL list content.
	Entries []URLListEntry `json:"entries"`

	// Added are discovered URLs that were not registered before.
	Added []string `json:"added"`

	// Kept are discovered URLs that were already registered.
	Kept []string `json:"kept"`

	// Dropped are previously registered URLs that were not rediscovered.
	Dropped []string `json:"dropped"`
}

// MalformedLine reports a URL list line that could not be decoded.
// It unwraps to ErrMalformedURLListEntry.
type MalformedLine struct {
	// Line is the 1-based line number.
	Line int `json:"line"`

	// Text is the raw line content.
	Text string `json:"text"`

	// Reason describes what is wrong with the line.
	Reason string `json:"reason"`
}

// Error implements error.
func (m MalformedLine) Error() string {
	return fmt.Sprintf("line %d: %s", m.Line, m.Reason)
}

// Unwrap returns ErrMalformedURLListEntry.
func (m MalformedLine) Unwrap() error {
	return ErrMalformedURLListEntry
}
