package types

// WordForm is one side of a bilingual pair after the {gender} and
// [qualifier] annotations have been stripped from the raw token.
// Empty Gender or Qualifier means the annotation was absent.
type WordForm struct {
	Word      string
	Gender    string // e.g. "(n)"
	Qualifier string // e.g. "[housing]", brackets kept
}

// Entry is one translation pair of a dictionary
type Entry struct {
	ID       int64 // 1-based input line position, comment lines excluded
	Left     WordForm
	Right    WordForm
	Category string
}
