package lib

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/denormal/go-gitignore"
)

// IgnoreFilename is an optional file at a data root holding gitignore-style
// patterns for directories the walks (extract-all, publish) must not
// descend into.
const IgnoreFilename = ".tilewardenignore"

// defaultIgnorePatterns always apply, whether or not an ignore file exists.
// Underscore-prefixed directories are this tool's own working state
// (staging); lost+found appears on freshly formatted volumes.
var defaultIgnorePatterns = []string{
	"_*/**",
	"_*",
	"lost+found/**",
	"lost+found",
	IgnoreFilename,
}

var (
	// ignoreCache stores compiled matchers keyed by the canonical absolute
	// path of a data root, so the ignore file is read and parsed once per
	// root. A global mutex serializes access; the gitignore library is not
	// safe for concurrent use.
	ignoreCache = make(map[string]gitignore.GitIgnore)
	cacheMutex  = &sync.Mutex{}
)

// IsPathIgnored reports whether path, relative to rootDir, is excluded from
// directory walks by the default patterns or the root's ignore file.
func IsPathIgnored(rootDir, path string) bool {
	cacheMutex.Lock()
	defer cacheMutex.Unlock()

	canonicalRoot, err := filepath.EvalSymlinks(rootDir)
	if err != nil {
		canonicalRoot = rootDir
	}

	matcher, found := ignoreCache[canonicalRoot]
	if !found {
		matcher = loadIgnoreMatcher(canonicalRoot)
		ignoreCache[canonicalRoot] = matcher
	}

	canonicalPath, err := filepath.EvalSymlinks(path)
	if err != nil {
		canonicalPath = path
	}

	relativePath, err := filepath.Rel(canonicalRoot, canonicalPath)
	if err != nil {
		// If the relative path cannot be determined, it is safest not to ignore.
		return false
	}

	// The gitignore library expects forward-slash separators.
	match := matcher.Match(filepath.ToSlash(relativePath))
	if match == nil {
		match = matcher.Match(canonicalPath)
	}
	if match == nil {
		return false
	}
	return match.Ignore()
}

// loadIgnoreMatcher compiles the default patterns plus any operator-provided
// ignore file at the root into a single matcher.
func loadIgnoreMatcher(rootDir string) gitignore.GitIgnore {
	rawPatterns := make([]string, len(defaultIgnorePatterns))
	copy(rawPatterns, defaultIgnorePatterns)

	ignoreFilePath := filepath.Join(rootDir, IgnoreFilename)
	if content, err := os.ReadFile(ignoreFilePath); err == nil {
		rawPatterns = append(rawPatterns, strings.Split(string(content), "\n")...)
	}

	var finalPatterns []string
	for _, p := range rawPatterns {
		trimmed := strings.TrimSpace(p)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		// Directory patterns become glob patterns for the gitignore library.
		if strings.HasSuffix(trimmed, "/") && !strings.HasSuffix(trimmed, "**/") {
			trimmed += "**"
		}
		finalPatterns = append(finalPatterns, trimmed)
	}

	matcher := gitignore.New(
		strings.NewReader(strings.Join(finalPatterns, "\n")),
		rootDir,
		func(err gitignore.Error) bool { return false },
	)
	if matcher == nil {
		// Null matcher that ignores nothing.
		return gitignore.New(strings.NewReader(""), "", nil)
	}
	return matcher
}

// ResetIgnoreState clears the ignore cache. This is used for testing.
func ResetIgnoreState() {
	cacheMutex.Lock()
	defer cacheMutex.Unlock()
	ignoreCache = make(map[string]gitignore.GitIgnore)
}
