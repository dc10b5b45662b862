package memory

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/kevin-biot/mcp-memory/pkg/extract"
	"github.com/kevin-biot/mcp-memory/pkg/model"
	"github.com/kevin-biot/mcp-memory/pkg/utils/logging"
)

// StoreConversation validates, stamps, and persists a conversational
// exchange. The durable write is the strong guarantee: an index failure
// is logged and swallowed, the call still succeeds. When autoExtract is
// set, tags and context derived from the exchange are merged into the
// caller-supplied ones.
//
// The returned record is the normalized copy that was persisted; its
// MemoryID method yields the stored identifier.
func (u *UseCase) StoreConversation(ctx context.Context, rec *model.ConversationRecord, autoExtract bool) (*model.ConversationRecord, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	stored := *rec
	stored.Domain = u.domain
	if stored.Timestamp == 0 {
		stored.Timestamp = time.Now().UnixMilli()
	}
	if autoExtract {
		text := stored.UserMessage + "\n" + stored.AssistantResponse
		stored.Tags = extract.Merge(stored.Tags, extract.Tags(text))
		stored.Context = extract.Merge(stored.Context, extract.Context(stored.UserMessage, stored.AssistantResponse))
	}

	if _, err := u.repo.Append(ctx, model.KindConversation, &stored); err != nil {
		return nil, err
	}

	u.indexRecord(ctx, model.KindConversation, stored.MemoryID(), stored.Document(), map[string]string{
		"sessionId": stored.SessionID,
		"domain":    stored.Domain,
		"timestamp": strconv.FormatInt(stored.Timestamp, 10),
		"tags":      strings.Join(stored.Tags, ","),
	})

	return &stored, nil
}

// StoreOperational validates, stamps, and persists an incident report.
// Same durability contract as StoreConversation. Tags are always enriched
// from the symptom and resolution text.
func (u *UseCase) StoreOperational(ctx context.Context, rec *model.OperationalRecord) (*model.OperationalRecord, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	stored := *rec
	stored.Domain = u.domain
	if stored.Timestamp == 0 {
		stored.Timestamp = time.Now().UnixMilli()
	}
	stored.Tags = extract.Merge(stored.Tags, extract.Tags(stored.Document()))

	if _, err := u.repo.Append(ctx, model.KindOperational, &stored); err != nil {
		return nil, err
	}

	u.indexRecord(ctx, model.KindOperational, stored.MemoryID(), stored.Document(), map[string]string{
		"incidentId":  stored.IncidentID,
		"environment": string(stored.Environment),
		"domain":      stored.Domain,
		"timestamp":   strconv.FormatInt(stored.Timestamp, 10),
		"tags":        strings.Join(stored.Tags, ","),
	})

	return &stored, nil
}

// indexRecord adds the record to the similarity index when the backend is
// healthy. Failures degrade the manager; they never fail the store call.
func (u *UseCase) indexRecord(ctx context.Context, kind model.RecordKind, id model.MemoryID, document string, metadata map[string]string) {
	if !u.backendReady(ctx) {
		return
	}

	if err := u.index.Add(ctx, kind, id, document, metadata); err != nil {
		u.degrade(ctx, err)
		return
	}

	logging.From(ctx).Debug("indexed record", "kind", kind, "id", id)
}
