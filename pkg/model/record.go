package model

import (
	"fmt"
	"sort"
)

// RecordKind identifies the two record families the store accepts.
// The kind doubles as the durable-log file category.
type RecordKind string

const (
	KindConversation RecordKind = "conversation"
	KindOperational  RecordKind = "operational"
)

// Validate checks if the record kind is valid
func (k RecordKind) Validate() error {
	switch k {
	case KindConversation, KindOperational:
		return nil
	default:
		return ErrInvalidRecordKind
	}
}

type MemoryID string

// NewMemoryID derives the identifier of a stored record from its primary
// key and timestamp. The derivation is deterministic: re-storing a record
// with the same key and timestamp overwrites the previous index entry,
// which is accepted (millisecond granularity makes it rare).
func NewMemoryID(primaryKey string, timestamp int64) MemoryID {
	return MemoryID(fmt.Sprintf("%s_%d", primaryKey, timestamp))
}

// SearchResult is a single hit from either search backend.
//
// Distance is a dissimilarity score (0 = identical). Callers convert to
// similarity via 1 - Distance. When the result comes from the fallback
// engine, Distance is the constant FallbackDistance and carries no metric
// meaning; fallback results are ordered by recency, not relevance.
type SearchResult struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata"`
	Distance float64           `json:"distance"`
	Kind     RecordKind        `json:"kind"`
}

// FallbackDistance is the sentinel distance attached to substring-match
// results. It is not a true metric; tests must not assume ranking.
const FallbackDistance = 0.5

// SessionContext summarizes the stored history of one session.
type SessionContext struct {
	SessionID    string   `json:"sessionId"`
	MessageCount int      `json:"messageCount"`
	Domains      []string `json:"domains"`
	CommonTags   []string `json:"commonTags"`
	LastActivity int64    `json:"lastActivity"`
}

// NewSessionContext aggregates conversation records into a summary.
// An empty record list yields a zero-message summary, not an error.
func NewSessionContext(sessionID string, records []*ConversationRecord) *SessionContext {
	summary := &SessionContext{
		SessionID:  sessionID,
		Domains:    []string{},
		CommonTags: []string{},
	}

	domains := map[string]struct{}{}
	tags := map[string]struct{}{}

	for _, rec := range records {
		summary.MessageCount++
		if rec.Domain != "" {
			domains[rec.Domain] = struct{}{}
		}
		for _, tag := range rec.Tags {
			tags[tag] = struct{}{}
		}
		if rec.Timestamp > summary.LastActivity {
			summary.LastActivity = rec.Timestamp
		}
	}

	for d := range domains {
		summary.Domains = append(summary.Domains, d)
	}
	for t := range tags {
		summary.CommonTags = append(summary.CommonTags, t)
	}
	sort.Strings(summary.Domains)
	sort.Strings(summary.CommonTags)

	return summary
}
