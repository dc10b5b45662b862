package memory

import (
	"context"

	"github.com/kevin-biot/mcp-memory/pkg/model"
	"github.com/kevin-biot/mcp-memory/pkg/utils/logging"
)

// ConversationFilter restricts conversation search to exact field matches.
// Zero values mean "no constraint".
type ConversationFilter struct {
	SessionID string
}

func (f ConversationFilter) where() map[string]string {
	where := map[string]string{}
	if f.SessionID != "" {
		where["sessionId"] = f.SessionID
	}
	return where
}

// OperationalFilter restricts operational search to exact field matches.
// Zero values mean "no constraint".
type OperationalFilter struct {
	Environment model.Environment
	Domain      string
}

func (f OperationalFilter) where() map[string]string {
	where := map[string]string{}
	if f.Environment != "" {
		where["environment"] = string(f.Environment)
	}
	if f.Domain != "" {
		where["domain"] = f.Domain
	}
	return where
}

// SearchConversations finds conversation records similar to query. It
// never fails on backend unavailability: a broken backend degrades to the
// substring fallback, and an empty result list is a valid outcome.
//
// An empty query is a recency listing served from the durable log; there
// is nothing to embed.
func (u *UseCase) SearchConversations(ctx context.Context, query string, limit int, filter ConversationFilter) []*model.SearchResult {
	return u.search(ctx, model.KindConversation, query, limit, filter.where())
}

// SearchOperational finds incident reports similar to query, with the
// same degradation contract as SearchConversations.
func (u *UseCase) SearchOperational(ctx context.Context, query string, limit int, filter OperationalFilter) []*model.SearchResult {
	return u.search(ctx, model.KindOperational, query, limit, filter.where())
}

func (u *UseCase) search(ctx context.Context, kind model.RecordKind, query string, limit int, where map[string]string) []*model.SearchResult {
	if limit <= 0 {
		return nil
	}

	if query != "" && u.backendReady(ctx) {
		hits, err := u.index.Query(ctx, kind, query, limit, where)
		if err == nil {
			results := make([]*model.SearchResult, 0, len(hits))
			for _, hit := range hits {
				results = append(results, &model.SearchResult{
					Content:  hit.Content,
					Metadata: hit.Metadata,
					Distance: hit.Distance,
					Kind:     kind,
				})
			}
			return results
		}
		u.degrade(ctx, err)
	}

	results, err := u.fallbackSearch(ctx, kind, query, limit, where)
	if err != nil {
		// Callers cannot distinguish "no matches" from "search broke";
		// log loudly and return the valid empty result.
		logging.From(ctx).Error("fallback search failed", "kind", kind, "error", err)
		return nil
	}
	return results
}
