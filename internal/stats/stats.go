// Package stats aggregates audit entries into service-level counters.
package stats

import (
	"sort"
	"strings"
	"time"

	"fortio.org/safecast"

	"veil/internal/audit"
)

// Stats is the aggregate view served on /status and by veilctl stats.
type Stats struct {
	Status        string        `json:"status"`
	Version       string        `json:"version,omitempty"`
	UptimeSeconds int64         `json:"uptime_seconds,omitempty"`
	Documents     DocumentStats `json:"documents"`
	Redacted      RedactedStats `json:"redacted"`
	LatencyMs     float64       `json:"latency_ms"`
	TopTags       []TagStats    `json:"top_tags,omitempty"`
}

// DocumentStats counts processed documents by outcome.
type DocumentStats struct {
	Total  int `json:"total"`
	Failed int `json:"failed"`
}

// RedactedStats counts redacted annotations.
type RedactedStats struct {
	Total int            `json:"total"`
	ByTag map[string]int `json:"by_tag"`
}

// TagStats is one tag's redaction count.
type TagStats struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// Options parameterizes collection.
type Options struct {
	Status  string
	Version string
	Uptime  time.Duration
	TopN    int
}

// Collect aggregates the entries.
func Collect(entries []audit.Entry, opts Options) Stats {
	topN := opts.TopN
	if topN <= 0 {
		topN = 5
	}

	out := Stats{
		Status:        opts.Status,
		Version:       opts.Version,
		UptimeSeconds: safecast.MustRound[int64](opts.Uptime.Seconds()),
		Redacted:      RedactedStats{ByTag: map[string]int{}},
	}
	if out.Status == "" {
		out.Status = "stopped"
	}

	var durSum float64
	var durCount int
	for _, e := range entries {
		out.Documents.Total++
		if e.Outcome != audit.OutcomeOK && e.Outcome != "" {
			out.Documents.Failed++
		}
		for tag, n := range e.TagCounts {
			tag = strings.ToUpper(strings.TrimSpace(tag))
			if tag == "" || n <= 0 {
				continue
			}
			out.Redacted.ByTag[tag] += n
			out.Redacted.Total += n
		}
		if e.DurationMs > 0 {
			durSum += e.DurationMs
			durCount++
		}
	}
	if durCount > 0 {
		out.LatencyMs = durSum / float64(durCount)
	}

	for tag, n := range out.Redacted.ByTag {
		out.TopTags = append(out.TopTags, TagStats{Tag: tag, Count: n})
	}
	sort.Slice(out.TopTags, func(i, j int) bool {
		if out.TopTags[i].Count == out.TopTags[j].Count {
			return out.TopTags[i].Tag < out.TopTags[j].Tag
		}
		return out.TopTags[i].Count > out.TopTags[j].Count
	})
	if len(out.TopTags) > topN {
		out.TopTags = out.TopTags[:topN]
	}
	return out
}
