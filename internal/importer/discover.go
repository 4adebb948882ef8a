package importer

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// archivePattern matches dict.cc download names such as
// "ende-1234-abcdefgh.zip". It is searched, not anchored.
var archivePattern = regexp.MustCompile(`\w+-\d+-\w+\.zip`)

// IsArchiveName reports whether name looks like a dict.cc download
func IsArchiveName(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".zip") && archivePattern.MatchString(name)
}

// DiscoverArchives lists the dict.cc archives directly inside dir in
// directory order. Other files are ignored.
func DiscoverArchives(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	var archives []string
	for _, e := range entries {
		if !e.Type().IsRegular() || !IsArchiveName(e.Name()) {
			continue
		}
		archives = append(archives, filepath.Join(dir, e.Name()))
	}
	return archives, nil
}

// EnsureDirectory creates path and returns it. When creation fails the
// fallback is created and returned instead; if that fails too, path is
// returned unchanged and later writes report their own errors.
func EnsureDirectory(path, fallback string, log *slog.Logger) string {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	err := os.MkdirAll(path, 0o755)
	if err == nil {
		return path
	}
	log.Warn("directory_create_failed", slog.String("path", path), slog.String("error", err.Error()))

	if fallback == "" || fallback == path {
		return path
	}
	if err := os.MkdirAll(fallback, 0o755); err != nil {
		log.Warn("directory_create_failed", slog.String("path", fallback), slog.String("error", err.Error()))
		return path
	}
	return fallback
}
