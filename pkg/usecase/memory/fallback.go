package memory

import (
	"context"
	"strconv"
	"strings"

	"github.com/kevin-biot/mcp-memory/pkg/model"
	"github.com/kevin-biot/mcp-memory/pkg/repository"
)

// fallbackSearch is the degraded search path: a case-insensitive
// substring match of query against the serialized records in the durable
// log, scanning the most recent 2x limit files newest-first. Results are
// recency-biased, not relevance-ranked, and carry the constant
// model.FallbackDistance.
func (u *UseCase) fallbackSearch(ctx context.Context, kind model.RecordKind, query string, limit int, where map[string]string) ([]*model.SearchResult, error) {
	entries, err := u.repo.ScanRecent(ctx, kind, 2*limit)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)

	var results []*model.SearchResult
	for _, entry := range entries {
		if len(results) >= limit {
			break
		}
		if !matchFields(entry, where) {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(string(entry.Raw)), needle) {
			continue
		}

		result, err := fallbackResult(entry, kind)
		if err != nil {
			continue
		}
		results = append(results, result)
	}

	return results, nil
}

// matchFields applies the exact-match filter conjunction against the
// decoded record fields. Unlike the index path, filters here refer to the
// record's own JSON keys.
func matchFields(entry *repository.Entry, where map[string]string) bool {
	for key, want := range where {
		got, ok := entry.Fields[key].(string)
		if !ok || got != want {
			return false
		}
	}
	return true
}

func fallbackResult(entry *repository.Entry, kind model.RecordKind) (*model.SearchResult, error) {
	switch kind {
	case model.KindConversation:
		var rec model.ConversationRecord
		if err := entry.Decode(&rec); err != nil {
			return nil, err
		}
		return &model.SearchResult{
			Content: rec.Document(),
			Metadata: map[string]string{
				"sessionId": rec.SessionID,
				"domain":    rec.Domain,
				"timestamp": strconv.FormatInt(rec.Timestamp, 10),
				"tags":      strings.Join(rec.Tags, ","),
			},
			Distance: model.FallbackDistance,
			Kind:     kind,
		}, nil

	default:
		var rec model.OperationalRecord
		if err := entry.Decode(&rec); err != nil {
			return nil, err
		}
		return &model.SearchResult{
			Content: rec.Document(),
			Metadata: map[string]string{
				"incidentId":  rec.IncidentID,
				"environment": string(rec.Environment),
				"domain":      rec.Domain,
				"timestamp":   strconv.FormatInt(rec.Timestamp, 10),
				"tags":        strings.Join(rec.Tags, ","),
			},
			Distance: model.FallbackDistance,
			Kind:     kind,
		}, nil
	}
}
