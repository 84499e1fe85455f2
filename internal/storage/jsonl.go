// Package storage handles library persistence in JSONL and SQLite formats.
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/matsen/paperref/internal/reference"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// ReadAll reads all library papers from a JSONL file.
// A missing file is an empty library.
func ReadAll(path string) ([]reference.Paper, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening library file: %w", err)
	}
	defer f.Close()

	var papers []reference.Paper
	scanner := bufio.NewScanner(f)

	// Increase buffer size for long lines
	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue // Skip empty lines
		}

		var p reference.Paper
		if err := json.Unmarshal(line, &p); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		papers = append(papers, p)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading library file: %w", err)
	}

	return papers, nil
}

// Append adds a paper to the end of a JSONL file.
func Append(path string, p reference.Paper) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening library file for append: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding paper: %w", err)
	}

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing paper: %w", err)
	}
	return nil
}

// WriteAll writes all papers to a JSONL file, replacing existing content.
// The file is written to a temporary sibling first and renamed into place.
func WriteAll(path string, papers []reference.Paper) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating library file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	for i, p := range papers {
		data, err := json.Marshal(p)
		if err != nil {
			tmp.Close()
			return fmt.Errorf("encoding paper %d: %w", i, err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			tmp.Close()
			return fmt.Errorf("writing paper %d: %w", i, err)
		}
	}

	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("flushing library file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing library file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing library file: %w", err)
	}
	return nil
}

// FindByDOI searches for a paper by DOI, ignoring case.
func FindByDOI(papers []reference.Paper, doi string) (int, bool) {
	if doi == "" {
		return -1, false
	}
	for i, p := range papers {
		if strings.EqualFold(p.DOI, doi) {
			return i, true
		}
	}
	return -1, false
}

// FindByID searches for a paper by library ID.
func FindByID(papers []reference.Paper, id string) (int, bool) {
	for i, p := range papers {
		if p.ID == id {
			return i, true
		}
	}
	return -1, false
}
