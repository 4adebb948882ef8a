package importer

//go:generate mockgen -source=extract.go -destination=../mocks/importer/mock_extractor.go -package=mock_importer

import (
	"archive/zip"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Extractor unpacks an archive into destDir and returns the paths of the
// extracted files. Failures are reported by returning fewer (or no) paths.
type Extractor interface {
	Extract(archivePath, destDir string) []string
}

// ZipExtractor extracts zip archives
type ZipExtractor struct {
	Log *slog.Logger
}

// Extract implements Extractor
func (z ZipExtractor) Extract(archivePath, destDir string) []string {
	log := z.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	r, err := zip.OpenReader(archivePath)
	if err != nil {
		log.Warn("archive_open_failed", slog.String("archive", archivePath), slog.String("error", err.Error()))
		return nil
	}
	defer func() { _ = r.Close() }()

	var files []string
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		target, err := safeJoin(destDir, f.Name)
		if err != nil {
			log.Warn("archive_entry_rejected", slog.String("archive", archivePath), slog.String("entry", f.Name))
			continue
		}
		if err := extractFile(f, target); err != nil {
			log.Warn("archive_entry_failed",
				slog.String("archive", archivePath),
				slog.String("entry", f.Name),
				slog.String("error", err.Error()))
			continue
		}
		files = append(files, target)
	}
	return files
}

// safeJoin joins name under dir and rejects names escaping it
func safeJoin(dir, name string) (string, error) {
	root := filepath.Clean(dir)
	target := filepath.Join(root, name)
	if !strings.HasPrefix(target, root+string(os.PathSeparator)) {
		return "", fmt.Errorf("entry %q escapes %s", name, dir)
	}
	return target, nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	src, err := f.Open()
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return err
	}
	return dst.Close()
}
