// Package secscan scans repository text files against a fixed list of
// credential-shaped regular expressions and reports matches with the
// matched text masked.
package secscan

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// maxFileSize skips anything too large to be a source or config file.
const maxFileSize = 1 << 20 // 1MB

// scanWorkers bounds concurrent file reads.
const scanWorkers = 8

// skipDirs are directory names never descended into.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	".idea":        true,
	".vscode":      true,
}

// skipExtensions are file extensions treated as binary without reading.
var skipExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true,
	".ico": true, ".pdf": true, ".zip": true, ".gz": true, ".tar": true,
	".exe": true, ".so": true, ".dylib": true, ".a": true, ".o": true,
	".woff": true, ".woff2": true, ".ttf": true, ".mp3": true, ".mp4": true,
}

// Finding is one pattern match in one file.
type Finding struct {
	File   string
	Line   int
	Rule   string
	Masked string
}

// Scanner applies the rule catalog over file trees.
type Scanner struct {
	rules []Rule
	log   *zap.Logger
}

// New creates a Scanner with the given rules; nil means DefaultRules.
func New(rules []Rule, log *zap.Logger) *Scanner {
	if rules == nil {
		rules = DefaultRules()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Scanner{rules: rules, log: log}
}

// Scan walks the given roots and returns every match, one finding per
// regex match, ordered by file then line.
func (s *Scanner) Scan(ctx context.Context, roots []string) ([]Finding, error) {
	var files []string
	for _, root := range roots {
		collected, err := collectFiles(root)
		if err != nil {
			return nil, err
		}
		files = append(files, collected...)
	}

	var (
		mu       sync.Mutex
		findings []Finding
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(scanWorkers)

	for _, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			found, err := s.scanFile(file)
			if err != nil {
				// Unreadable files are reported, not fatal: the scan's
				// verdict must come from file contents only.
				s.log.Warn("skipping unreadable file",
					zap.String("file", file), zap.Error(err))
				return nil
			}
			if len(found) > 0 {
				mu.Lock()
				findings = append(findings, found...)
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(findings, func(i, j int) bool {
		if findings[i].File != findings[j].File {
			return findings[i].File < findings[j].File
		}
		return findings[i].Line < findings[j].Line
	})
	return findings, nil
}

// collectFiles gathers scannable file paths under root.
func collectFiles(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("cannot scan %s: %w", root, err)
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if skipExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		if fi, err := d.Info(); err == nil && fi.Size() > maxFileSize {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk failed for %s: %w", root, err)
	}
	return files, nil
}

// scanFile applies every rule line by line.
func (s *Scanner) scanFile(path string) ([]Finding, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if isBinary(data) {
		return nil, nil
	}

	var findings []Finding
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), maxFileSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		for _, rule := range s.rules {
			for _, match := range rule.Pattern.FindAllString(line, -1) {
				findings = append(findings, Finding{
					File:   path,
					Line:   lineNo,
					Rule:   rule.Name,
					Masked: Mask(match),
				})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return findings, nil
}

// isBinary treats a NUL byte in the leading chunk as binary content.
func isBinary(data []byte) bool {
	chunk := data
	if len(chunk) > 512 {
		chunk = chunk[:512]
	}
	return bytes.IndexByte(chunk, 0) >= 0
}

// Mask hides a matched secret: everything but the first and last four
// characters, or the whole thing when it is ten characters or shorter.
func Mask(secret string) string {
	if len(secret) <= 10 {
		return strings.Repeat("*", len(secret))
	}
	return secret[:4] + strings.Repeat("*", len(secret)-8) + secret[len(secret)-4:]
}

// FormatReport renders findings for the terminal.
func FormatReport(findings []Finding) string {
	if len(findings) == 0 {
		return "No secrets found.\n"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d potential secret(s):\n\n", len(findings))
	for _, f := range findings {
		fmt.Fprintf(&sb, "  %s:%d  [%s]  %s\n", f.File, f.Line, f.Rule, f.Masked)
	}
	return sb.String()
}
