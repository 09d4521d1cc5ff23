// Package history tracks executed searches and word-level term frequency
// for popular-search ranking. It is append-mostly, safe for concurrent use,
// and never fails the caller's search: malformed input records nothing.
package history

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rmachado/go-faceted-search/model"
)

const (
	historyDataFile = "history.json"

	// defaultMaxRecords caps retained records so history does not grow
	// without bound.
	defaultMaxRecords = 10000

	// minTokenLength excludes short stop-ish tokens from term counters.
	// Tokens of length <= 2 are ignored.
	minTokenLength = 3

	// counterShards spreads term counters across independently locked
	// shards so concurrent searches do not contend on one mutex.
	counterShards = 16
)

type termCounter struct {
	count     int
	firstSeen uint64 // Monotonic sequence for deterministic tie-breaking
}

type counterShard struct {
	mu    sync.Mutex
	terms map[string]*termCounter
}

// Tracker records search history and term frequency. The zero value is not
// usable; construct with NewTracker.
type Tracker struct {
	mu         sync.RWMutex
	records    []model.SearchRecord
	maxRecords int
	dataDir    string

	shards [counterShards]*counterShard

	seqMu sync.Mutex
	seq   uint64
}

// NewTracker creates a tracker persisting its records under dataDir. An
// empty dataDir disables persistence. maxRecords <= 0 selects the default
// retention cap.
func NewTracker(dataDir string, maxRecords int) *Tracker {
	if maxRecords <= 0 {
		maxRecords = defaultMaxRecords
	}
	t := &Tracker{
		records:    make([]model.SearchRecord, 0),
		maxRecords: maxRecords,
		dataDir:    dataDir,
	}
	for i := range t.shards {
		t.shards[i] = &counterShard{terms: make(map[string]*termCounter)}
	}

	if dataDir != "" {
		if err := t.loadData(); err != nil {
			log.Printf("Warning: Failed to load search history: %v", err)
		}
	}
	return t
}

// Record appends a search record and updates term counters from its query
// text. Empty or whitespace-only queries update no counters. Record never
// returns an error to the caller.
func (t *Tracker) Record(record model.SearchRecord) {
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}

	t.mu.Lock()
	t.records = append(t.records, record)
	if len(t.records) > t.maxRecords {
		t.records = t.records[len(t.records)-t.maxRecords:]
	}
	t.mu.Unlock()

	t.countTerms(record.Query)

	if t.dataDir != "" {
		go func() {
			if err := t.saveData(); err != nil {
				log.Printf("Warning: Failed to save search history: %v", err)
			}
		}()
	}
}

// countTerms tokenizes the free-text query on whitespace, lowercases the
// tokens, and increments the counter of every token longer than two
// characters.
func (t *Tracker) countTerms(query string) {
	for _, token := range strings.Fields(query) {
		token = strings.ToLower(token)
		if len(token) < minTokenLength {
			continue
		}

		shard := t.shards[shardIndex(token)]
		shard.mu.Lock()
		counter, exists := shard.terms[token]
		if !exists {
			counter = &termCounter{firstSeen: t.nextSeq()}
			shard.terms[token] = counter
		}
		counter.count++
		shard.mu.Unlock()
	}
}

func (t *Tracker) nextSeq() uint64 {
	t.seqMu.Lock()
	defer t.seqMu.Unlock()
	t.seq++
	return t.seq
}

func shardIndex(token string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(token))
	return int(h.Sum32() % counterShards)
}

// History returns a copy of the retained search records, oldest first.
func (t *Tracker) History() []model.SearchRecord {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]model.SearchRecord, len(t.records))
	copy(out, t.records)
	return out
}

// Stats summarizes the retained records.
func (t *Tracker) Stats() model.SearchStats {
	t.mu.RLock()
	records := t.records
	var totalTook time.Duration
	byIndex := make(map[string]int)
	for _, r := range records {
		totalTook += r.Took
		byIndex[r.IndexName]++
	}
	total := len(records)
	t.mu.RUnlock()

	stats := model.SearchStats{
		TotalSearches:   total,
		SearchesByIndex: byIndex,
	}
	if total > 0 {
		stats.AvgResponseTime = (totalTook / time.Duration(total)).Milliseconds()
	}

	for _, shard := range t.shards {
		shard.mu.Lock()
		stats.UniqueTerms += len(shard.terms)
		shard.mu.Unlock()
	}
	return stats
}

// PopularSearches returns the top-N terms by frequency. Ties are broken by
// first-seen order so the ranking is deterministic.
func (t *Tracker) PopularSearches(limit int) []model.PopularSearch {
	if limit <= 0 {
		return []model.PopularSearch{}
	}

	type entry struct {
		term      string
		count     int
		firstSeen uint64
	}

	var entries []entry
	for _, shard := range t.shards {
		shard.mu.Lock()
		for term, counter := range shard.terms {
			entries = append(entries, entry{term: term, count: counter.count, firstSeen: counter.firstSeen})
		}
		shard.mu.Unlock()
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].firstSeen < entries[j].firstSeen
	})

	if limit > len(entries) {
		limit = len(entries)
	}
	popular := make([]model.PopularSearch, 0, limit)
	for _, e := range entries[:limit] {
		popular = append(popular, model.PopularSearch{Term: e.term, SearchCount: e.count})
	}
	return popular
}

// PopularTerms returns every tracked term in first-seen order, for the
// suggestion lookup.
func (t *Tracker) PopularTerms() []string {
	type entry struct {
		term      string
		firstSeen uint64
	}
	var entries []entry
	for _, shard := range t.shards {
		shard.mu.Lock()
		for term, counter := range shard.terms {
			entries = append(entries, entry{term: term, firstSeen: counter.firstSeen})
		}
		shard.mu.Unlock()
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].firstSeen < entries[j].firstSeen })

	terms := make([]string, 0, len(entries))
	for _, e := range entries {
		terms = append(terms, e.term)
	}
	return terms
}

func (t *Tracker) dataFilePath() string {
	return filepath.Join(t.dataDir, historyDataFile)
}

func (t *Tracker) loadData() error {
	path := t.dataFilePath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path is derived from the configured data dir
	if err != nil {
		return fmt.Errorf("failed to read history file: %w", err)
	}

	var records []model.SearchRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("failed to unmarshal history data: %w", err)
	}

	t.mu.Lock()
	t.records = records
	if len(t.records) > t.maxRecords {
		t.records = t.records[len(t.records)-t.maxRecords:]
	}
	t.mu.Unlock()

	// Rebuild term counters so popularity survives restarts.
	for _, r := range records {
		t.countTerms(r.Query)
	}
	return nil
}

func (t *Tracker) saveData() error {
	if err := os.MkdirAll(t.dataDir, 0750); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	t.mu.RLock()
	data, err := json.MarshalIndent(t.records, "", "  ")
	t.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal history data: %w", err)
	}

	if err := os.WriteFile(t.dataFilePath(), data, 0600); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}
	return nil
}
