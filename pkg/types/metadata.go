package types

import "regexp"

var languagePairPattern = regexp.MustCompile(`^[A-Z]{2}-[A-Z]{2}$`)

// DictionaryMetadata identifies the dump a store was loaded from.
// One instance exists per language pair.
type DictionaryMetadata struct {
	LanguagePair  string // e.g. "EN-DE"
	Timestamp     string // minute precision, compared as an opaque string
	SchemaVersion int    // metadataVersion at the time of import
}

// Validate checks if the metadata describes a dictionary dump
func (m *DictionaryMetadata) Validate() error {
	if m.LanguagePair == "" {
		return ErrMissingLanguagePair
	}
	if !languagePairPattern.MatchString(m.LanguagePair) {
		return ErrInvalidLanguagePair
	}
	if m.Timestamp == "" {
		return ErrMissingTimestamp
	}
	return nil
}

// IsCurrent reports whether a store holding m already contains the dump
// described by incoming. Timestamps are compared byte for byte.
func (m *DictionaryMetadata) IsCurrent(incoming DictionaryMetadata, currentVersion int) bool {
	if m.SchemaVersion < currentVersion {
		return false
	}
	return m.Timestamp == incoming.Timestamp
}
