// Package memory is an in-memory adapter used for local development and
// tests. It implements the same ports as the Google Sheets client.
package memory

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"finsight/internal/core"
	ports "finsight/internal/sheets"
)

type Store struct {
	mu      sync.Mutex
	records []core.Record
	digests []ports.Digest
}

var (
	_ ports.TransactionSource = (*Store)(nil)
	_ ports.TransactionWriter = (*Store)(nil)
	_ ports.DigestWriter      = (*Store)(nil)
	_ ports.CategorySource    = (*Store)(nil)
)

func New(records []core.Record) *Store {
	return &Store{records: append([]core.Record(nil), records...)}
}

// NewFromFile seeds the store from a CSV-ish text file with one
// "date,category,amount,description" line per transaction. A missing file
// yields an empty store.
func NewFromFile(path string) *Store {
	return New(readSeedRecords(path))
}

// ListTransactions returns a copy of the stored transactions.
func (s *Store) ListTransactions(_ context.Context) ([]core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Record(nil), s.records...), nil
}

// AppendTransaction stores the record and returns a synthetic row reference.
func (s *Store) AppendTransaction(_ context.Context, r core.Record) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, r)
	return fmt.Sprintf("mem:%d", len(s.records)), nil
}

// AppendDigest stores the digest and returns a synthetic row reference.
func (s *Store) AppendDigest(_ context.Context, d ports.Digest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.digests = append(s.digests, d)
	return fmt.Sprintf("mem:digest:%d", len(s.digests)), nil
}

// ListCategories returns distinct category names in first-seen order.
func (s *Store) ListCategories(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := map[string]struct{}{}
	var categories []string
	for _, r := range s.records {
		if _, ok := seen[r.Category]; ok {
			continue
		}
		seen[r.Category] = struct{}{}
		categories = append(categories, r.Category)
	}
	return categories, nil
}

// Digests returns the archived digests, oldest first.
func (s *Store) Digests() []ports.Digest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ports.Digest(nil), s.digests...)
}

func readSeedRecords(path string) []core.Record {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil
	}
	defer f.Close()

	var records []core.Record
	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		parts := strings.SplitN(text, ",", 4)
		if len(parts) < 3 {
			continue
		}

		record := core.Record{ID: fmt.Sprintf("seed:%d", line)}
		date, ok := parseSeedDate(parts[0])
		if !ok {
			continue
		}
		record.Date = date
		record.Category = strings.TrimSpace(parts[1])

		cents, err := core.ParseAmountCents(strings.TrimSpace(parts[2]))
		if err != nil {
			continue
		}
		record.Amount = core.AmountFromCents(cents)

		if len(parts) == 4 {
			record.Description = strings.TrimSpace(parts[3])
		}
		if record.Validate() != nil {
			continue
		}
		records = append(records, record)
	}
	return records
}

func parseSeedDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02", "02/01/2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
