package places

import (
	"log/slog"
	"sort"
	"sync"
)

// LogRecorder logs unrecognized place text and keeps occurrence counts so the
// most frequent misses can be added to the lexicon.
type LogRecorder struct {
	logger *slog.Logger

	mu     sync.Mutex
	counts map[string]int
}

func NewLogRecorder(logger *slog.Logger) *LogRecorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogRecorder{logger: logger, counts: make(map[string]int)}
}

func (r *LogRecorder) RecordUnrecognized(text string) {
	if text == "" {
		return
	}
	r.mu.Lock()
	r.counts[text]++
	n := r.counts[text]
	r.mu.Unlock()
	r.logger.Info("unrecognized place", "text", text, "occurrences", n)
}

// MissCount is one entry of the Top report.
type MissCount struct {
	Text  string `json:"text"`
	Count int    `json:"count"`
}

// Top returns up to n unrecognized texts, most frequent first.
func (r *LogRecorder) Top(n int) []MissCount {
	r.mu.Lock()
	out := make([]MissCount, 0, len(r.counts))
	for text, c := range r.counts {
		out = append(out, MissCount{Text: text, Count: c})
	}
	r.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Text < out[j].Text
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
