// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package corpus

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/topical/core"
)

// Source-document names that never contain bookmark items.
var skippedNames = map[string]bool{
	"histogram.json":       true,
	"histogram_array.json": true,
}

var monthDirRe = regexp.MustCompile(`^[0-1][0-9]$`)

// rawItem is the wire shape of one entry in a source document.
type rawItem struct {
	Title string `json:"title"`
	Link  string `json:"link"`
	Date  string `json:"date"`
}

// Loader reads a year's source documents into deduplicated records.
type Loader struct {
	root     string
	poolSize int
	logger   *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithPoolSize sets the worker pool size for concurrent document parsing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(l *Loader) {
		if size < 1 {
			size = 1
		}
		l.poolSize = size
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger == nil {
			logger = slog.Default()
		}
		l.logger = logger
	}
}

// NewLoader creates a loader rooted at the given data directory. Source
// documents for a year live under <root>/<year>/<month>/*.json.
func NewLoader(root string, opts ...Option) *Loader {
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	l := &Loader{
		root:     root,
		poolSize: poolSize,
		logger:   slog.Default().With("component", "corpus-loader"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads all source documents for a year and returns the deduplicated,
// ordered record list. Titles are deduplicated by exact match across all
// documents; the first occurrence wins and later duplicates only increment
// DupCount. Ids are dense from 0 in first-seen order.
//
// A limit > 0 caps the number of distinct titles retained; ingestion halts
// as soon as the cap is reached. Unreadable or malformed documents are
// skipped and surfaced as a count, never an error.
func (l *Loader) Load(year, limit int) ([]*core.Record, error) {
	files, err := l.sourceFiles(year)
	if err != nil {
		return nil, err
	}

	parsed, skipped := l.parseAll(files)

	seen := make(map[string]*core.Record)
	records := []*core.Record{}
	nextID := 0

merge:
	for idx, items := range parsed {
		for _, item := range items {
			title := strings.TrimSpace(item.Title)
			if title == "" {
				continue
			}
			if rec, ok := seen[title]; ok {
				rec.DupCount++
				continue
			}
			rec := &core.Record{
				Id:       nextID,
				Title:    title,
				Link:     strings.TrimSpace(item.Link),
				Date:     strings.TrimSpace(item.Date),
				Source:   files[idx],
				DupCount: 1,
			}
			seen[title] = rec
			records = append(records, rec)
			nextID++
			if limit > 0 && nextID >= limit {
				break merge
			}
		}
		if (idx+1)%50 == 0 || idx+1 == len(files) {
			l.logger.Info("loading corpus",
				"files", idx+1, "totalFiles", len(files), "titles", nextID)
		}
	}

	l.logger.Info("corpus loaded",
		"year", year, "records", len(records), "files", len(files), "skippedFiles", skipped)

	return records, nil
}

// sourceFiles resolves the year's source documents in deterministic
// lexicographic order: sorted two-digit month directories, then sorted
// file names within each.
func (l *Loader) sourceFiles(year int) ([]string, error) {
	yearDir := filepath.Join(l.root, strconv.Itoa(year))
	entries, err := os.ReadDir(yearDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var months []string
	for _, e := range entries {
		if e.IsDir() && monthDirRe.MatchString(e.Name()) {
			months = append(months, e.Name())
		}
	}
	sort.Strings(months)

	var files []string
	for _, month := range months {
		monthDir := filepath.Join(yearDir, month)
		monthEntries, err := os.ReadDir(monthDir)
		if err != nil {
			l.logger.Warn("cannot read month directory", "dir", monthDir, "err", err)
			continue
		}

		var names []string
		for _, e := range monthEntries {
			name := e.Name()
			if e.IsDir() || !strings.HasSuffix(name, ".json") {
				continue
			}
			// Skip non-bookmark data
			if strings.HasSuffix(name, ".ai.json") || strings.HasSuffix(name, ".amazon.json") {
				continue
			}
			if skippedNames[name] {
				continue
			}
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			files = append(files, filepath.Join(monthDir, name))
		}
	}
	return files, nil
}

// parseAll reads and parses every document on the worker pool. The result
// slice is indexed by file position so the caller can merge in order; a
// nil entry means the document was skipped. Returns the skip count.
func (l *Loader) parseAll(files []string) ([][]rawItem, int) {
	parsed := make([][]rawItem, len(files))
	var skipped int64
	var mu sync.Mutex
	var wg sync.WaitGroup

	pool, err := ants.NewPool(l.poolSize)
	if err != nil {
		// Pool creation only fails on invalid sizes; fall back to inline parsing.
		for i, path := range files {
			items, ok := l.parseFile(path)
			if !ok {
				skipped++
				continue
			}
			parsed[i] = items
		}
		return parsed, int(skipped)
	}
	defer pool.Release()

	for i, path := range files {
		i, path := i, path
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			items, ok := l.parseFile(path)
			if !ok {
				mu.Lock()
				skipped++
				mu.Unlock()
				return
			}
			parsed[i] = items
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			skipped++
			mu.Unlock()
		}
	}
	wg.Wait()

	return parsed, int(skipped)
}

func (l *Loader) parseFile(path string) ([]rawItem, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		l.logger.Warn("skipping unreadable document", "path", path, "err", err)
		return nil, false
	}
	var items []rawItem
	if err := json.Unmarshal(data, &items); err != nil {
		l.logger.Warn("skipping malformed document", "path", path, "err", err)
		return nil, false
	}
	return items, true
}
