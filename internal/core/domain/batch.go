package domain

// IngestRequest is one item of a batch ingestion.
type IngestRequest struct {
	Source string `json:"source"`
	Tag    string `json:"tag"`
}

// BatchItemResult records the outcome of one batch item.
type BatchItemResult struct {
	Source string `json:"source"`
	Tag    string `json:"tag"`
	Chunks int    `json:"chunks,omitempty"`
	Kind   string `json:"kind,omitempty"`
	Error  string `json:"error,omitempty"`
}

// BatchSummary reports every item of a batch. Failures never abort the batch.
type BatchSummary struct {
	Succeeded []BatchItemResult `json:"succeeded"`
	Failed    []BatchItemResult `json:"failed"`
}

// Total returns the number of items processed.
func (s BatchSummary) Total() int {
	return len(s.Succeeded) + len(s.Failed)
}

// ChunksWritten returns the number of chunks written by successful items.
func (s BatchSummary) ChunksWritten() int {
	n := 0
	for _, r := range s.Succeeded {
		n += r.Chunks
	}
	return n
}
