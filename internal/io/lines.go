package io

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ReadLines returns the non-blank lines of a text file, trimmed. Lines
// starting with # are skipped.
func ReadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("[ReadLines] failed to open %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("[ReadLines] failed to read %s: %w", path, err)
	}

	return lines, nil
}

// WriteLines writes one entry per line.
func WriteLines(path string, lines []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("[WriteLines] failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return fmt.Errorf("[WriteLines] failed to write %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("[WriteLines] failed to write %s: %w", path, err)
	}

	return f.Close()
}
