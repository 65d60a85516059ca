package site

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	ferrors "github.com/docsmith/docsmith/internal/foundation/errors"
)

// SourceFile is one discovered source file before parsing.
type SourceFile struct {
	// SourcePath is the absolute location on disk.
	SourcePath string
	// Path is the site-relative page identifier (slashes, extension stripped)
	// for Markdown files, or the output-relative path for assets.
	Path string
	// IsAsset is true for non-Markdown files, copied through verbatim.
	IsAsset bool
}

// Discover walks the source directory and returns all page sources and
// assets in deterministic (lexical walk) order. Dotfiles, underscore-prefixed
// directories (layout/partial conventions), and the output dir are skipped.
// Pass an empty outputDir when no output exclusion applies.
func Discover(sourceDir, outputDir string) ([]SourceFile, error) {
	var files []SourceFile

	var skipOutput string
	if outputDir != "" {
		if abs, err := filepath.Abs(outputDir); err == nil {
			skipOutput = abs
		}
	}

	err := filepath.WalkDir(sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != sourceDir && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
				return filepath.SkipDir
			}
			if path != sourceDir && skipOutput != "" {
				if abs, err := filepath.Abs(path); err == nil && abs == skipOutput {
					return filepath.SkipDir
				}
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}

		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if pagePath, ok := pagePathFor(rel); ok {
			files = append(files, SourceFile{SourcePath: path, Path: pagePath})
		} else {
			files = append(files, SourceFile{SourcePath: path, Path: rel, IsAsset: true})
		}
		return nil
	})
	if err != nil {
		return nil, ferrors.FileSystemError(err, "walk source directory").
			WithContext("source", sourceDir).
			Build()
	}

	// WalkDir is already lexical; keep the invariant explicit for callers
	// relying on stable input order for unordered nav entries.
	sort.SliceStable(files, func(i, j int) bool { return files[i].SourcePath < files[j].SourcePath })

	return files, nil
}

// pagePathFor maps a source-relative file name to its page path.
// Non-Markdown extensions are not pages.
func pagePathFor(rel string) (string, bool) {
	low := strings.ToLower(rel)
	switch {
	case strings.HasSuffix(low, ".md"):
		return rel[:len(rel)-len(".md")], true
	case strings.HasSuffix(low, ".markdown"):
		return rel[:len(rel)-len(".markdown")], true
	default:
		return "", false
	}
}
