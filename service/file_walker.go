package service

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/reviewrabbit/rrscan/domain"
)

// FileWalker collects analysis candidates under a root path. A file is a
// candidate iff it matches at least one include pattern and no exclude
// pattern. Candidates are returned in byte-sorted path order so that any
// later truncation is reproducible.
type FileWalker struct {
	includePatterns  []string
	excludePatterns  []string
	respectGitignore bool
}

// NewFileWalker creates a walker with the given selection patterns
func NewFileWalker(includePatterns, excludePatterns []string, respectGitignore bool) *FileWalker {
	return &FileWalker{
		includePatterns:  includePatterns,
		excludePatterns:  excludePatterns,
		respectGitignore: respectGitignore,
	}
}

// Collect walks the tree rooted at root and returns the sorted candidate
// paths. A missing or unreadable root is the only fatal error.
func (w *FileWalker) Collect(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, domain.NewFileNotFoundError(root, err)
	}

	// An explicitly named file skips include matching but not excludes
	if !info.IsDir() {
		if w.isExcluded(root) {
			return nil, nil
		}
		return []string{root}, nil
	}

	var matcher *ignore.GitIgnore
	if w.respectGitignore {
		if gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore")); err == nil {
			matcher = gi
		}
	}

	var candidates []string
	walkErr := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			// Unreadable subtrees are skipped, not fatal
			return nil
		}

		if info.IsDir() {
			if path != root && w.isExcludedDir(filepath.Base(path)) {
				return filepath.SkipDir
			}
			return nil
		}

		if !w.matchesInclude(path) || w.isExcluded(path) {
			return nil
		}
		if matcher != nil {
			if rel, relErr := filepath.Rel(root, path); relErr == nil && matcher.MatchesPath(rel) {
				return nil
			}
		}

		candidates = append(candidates, path)
		return nil
	})
	if walkErr != nil {
		return nil, domain.NewFileNotFoundError(root, walkErr)
	}

	sort.Strings(candidates)
	return candidates, nil
}

func (w *FileWalker) matchesInclude(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range w.includePatterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}

func (w *FileWalker) isExcluded(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range w.excludePatterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
		if strings.Contains(path, string(filepath.Separator)+pattern+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (w *FileWalker) isExcludedDir(dirName string) bool {
	for _, pattern := range w.excludePatterns {
		if pattern == dirName {
			return true
		}
		if matched, _ := filepath.Match(pattern, dirName); matched {
			return true
		}
	}
	return false
}
