package types

// ParseResult represents the output of reading a dict.cc dump file
type ParseResult struct {
	Path string

	// Metadata is only meaningful when HasMetadata is true
	Metadata    DictionaryMetadata
	HasMetadata bool

	// Lines holds every non-comment line after the two header lines,
	// in input order. Its length is the total used for progress.
	Lines []string

	// CommentLines counts skipped "#" lines
	CommentLines int
}

// Total returns the number of raw entry lines
func (pr *ParseResult) Total() int {
	return len(pr.Lines)
}
