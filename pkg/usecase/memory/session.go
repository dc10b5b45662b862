package memory

import (
	"context"
	"strconv"
	"strings"

	"github.com/kevin-biot/mcp-memory/pkg/model"
)

// GetSessionContext aggregates up to 50 of a session's conversation
// records into a summary: message count, distinct domains, union of tags,
// and the most recent timestamp. An unknown session yields a zero-message
// summary, not an error.
func (u *UseCase) GetSessionContext(ctx context.Context, sessionID string) *model.SessionContext {
	results := u.SearchConversations(ctx, "", sessionContextCap, ConversationFilter{SessionID: sessionID})

	records := make([]*model.ConversationRecord, 0, len(results))
	for _, res := range results {
		rec := &model.ConversationRecord{
			SessionID: sessionID,
			Domain:    res.Metadata["domain"],
		}
		if ts, err := strconv.ParseInt(res.Metadata["timestamp"], 10, 64); err == nil {
			rec.Timestamp = ts
		}
		if tags := res.Metadata["tags"]; tags != "" {
			rec.Tags = strings.Split(tags, ",")
		}
		records = append(records, rec)
	}

	return model.NewSessionContext(sessionID, records)
}
