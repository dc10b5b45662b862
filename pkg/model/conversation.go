package model

import (
	"fmt"

	"github.com/m-mizutani/goerr/v2"
)

// ConversationRecord is a free-form conversational exchange within a
// session. Records are immutable once stored; updates are new records.
type ConversationRecord struct {
	SessionID         string   `json:"sessionId"`
	Timestamp         int64    `json:"timestamp"`
	UserMessage       string   `json:"userMessage"`
	AssistantResponse string   `json:"assistantResponse"`
	Context           []string `json:"context,omitempty"`
	Tags              []string `json:"tags,omitempty"`
	Domain            string   `json:"domain"`
}

// Validate checks required fields before any write happens
func (r *ConversationRecord) Validate() error {
	if r.SessionID == "" {
		return goerr.Wrap(ErrInvalidRecord, "sessionId is required")
	}
	return nil
}

// MemoryID returns the derived identifier of the record. Valid only after
// the timestamp has been stamped.
func (r *ConversationRecord) MemoryID() MemoryID {
	return NewMemoryID(r.SessionID, r.Timestamp)
}

// Document renders the record as the text that gets embedded and indexed.
func (r *ConversationRecord) Document() string {
	return fmt.Sprintf("User: %s\nAssistant: %s", r.UserMessage, r.AssistantResponse)
}
