// Package missing records queries that matched nothing in either corpus, so
// the dish database can be extended later.
package missing

import (
	"encoding/json"
	"os"
	"strings"
	"sync"
	"time"

	"calorie-chat/internal/pkg/common"

	"go.uber.org/zap"
)

// Entry is one logged unresolved query
type Entry struct {
	Query            string    `json:"query"`
	Country          string    `json:"country"`
	Timestamp        time.Time `json:"timestamp"`
	FallbackResponse string    `json:"fallback_response,omitempty"`
	Resolved         bool      `json:"resolved"`
}

// Log is a JSON-file-backed missing-dish log. Entries are deduplicated per
// (query, country); writes are serialized by an internal lock.
type Log struct {
	mu      sync.Mutex
	path    string
	entries []Entry
}

// NewLog loads the existing log file if present
func NewLog(path string) *Log {
	l := &Log{path: path}

	data, err := os.ReadFile(path)
	if err == nil {
		if err := json.Unmarshal(data, &l.entries); err != nil {
			common.LogWarn("missing-dish log unreadable, starting fresh",
				zap.String("path", path),
				zap.Error(err),
			)
			l.entries = nil
		}
	}
	return l
}

// Record logs an unresolved query once per (query, country)
func (l *Log) Record(query, country, fallbackResponse string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, e := range l.entries {
		if strings.EqualFold(e.Query, query) && e.Country == country {
			return
		}
	}

	l.entries = append(l.entries, Entry{
		Query:            query,
		Country:          country,
		Timestamp:        time.Now().UTC(),
		FallbackResponse: fallbackResponse,
	})
	l.save()

	common.LogInfo("logged missing dish",
		zap.String("query", query),
		zap.String("country", country),
	)
}

// Unresolved returns all entries not yet marked resolved
func (l *Log) Unresolved() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []Entry
	for _, e := range l.entries {
		if !e.Resolved {
			out = append(out, e)
		}
	}
	return out
}

// MarkResolved flags all entries matching (query, country) as handled
func (l *Log) MarkResolved(query, country string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	changed := false
	for i := range l.entries {
		if strings.EqualFold(l.entries[i].Query, query) && l.entries[i].Country == country {
			l.entries[i].Resolved = true
			changed = true
		}
	}
	if changed {
		l.save()
	}
}

// save persists the log; failures are logged, never fatal
func (l *Log) save() {
	data, err := json.MarshalIndent(l.entries, "", "  ")
	if err != nil {
		common.LogError("failed to marshal missing-dish log", zap.Error(err))
		return
	}
	if err := os.WriteFile(l.path, data, 0644); err != nil {
		common.LogError("failed to write missing-dish log",
			zap.String("path", l.path),
			zap.Error(err),
		)
	}
}
