package model_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/kevin-biot/mcp-memory/pkg/model"
)

func TestEnvironmentValidate(t *testing.T) {
	for _, env := range []model.Environment{model.EnvDev, model.EnvTest, model.EnvStaging, model.EnvProd} {
		gt.NoError(t, env.Validate())
	}

	err := model.Environment("qa").Validate()
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrInvalidEnvironment))
}

func TestConversationValidate(t *testing.T) {
	rec := &model.ConversationRecord{
		SessionID:   "s1",
		UserMessage: "hello",
	}
	gt.NoError(t, rec.Validate())

	rec.SessionID = ""
	err := rec.Validate()
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrInvalidRecord))
}

func TestOperationalValidate(t *testing.T) {
	rec := &model.OperationalRecord{
		IncidentID:  "inc-1",
		Symptoms:    []string{"pods restarting"},
		Environment: model.EnvProd,
	}
	gt.NoError(t, rec.Validate())

	t.Run("missing incident id", func(t *testing.T) {
		bad := *rec
		bad.IncidentID = ""
		gt.True(t, errors.Is(bad.Validate(), model.ErrInvalidRecord))
	})

	t.Run("empty symptoms", func(t *testing.T) {
		bad := *rec
		bad.Symptoms = nil
		gt.True(t, errors.Is(bad.Validate(), model.ErrInvalidRecord))
	})

	t.Run("unknown environment", func(t *testing.T) {
		bad := *rec
		bad.Environment = "qa"
		gt.True(t, errors.Is(bad.Validate(), model.ErrInvalidRecord))
	})
}

func TestMemoryID(t *testing.T) {
	conv := &model.ConversationRecord{SessionID: "s1", Timestamp: 1700000000123}
	gt.Equal(t, conv.MemoryID(), model.MemoryID("s1_1700000000123"))

	op := &model.OperationalRecord{IncidentID: "inc-9", Timestamp: 42}
	gt.Equal(t, op.MemoryID(), model.MemoryID("inc-9_42"))
}

func TestSessionContextAggregation(t *testing.T) {
	records := []*model.ConversationRecord{
		{SessionID: "s1", Domain: "a", Tags: []string{"pod"}, Timestamp: 100},
		{SessionID: "s1", Domain: "b", Tags: []string{"crash"}, Timestamp: 300},
		{SessionID: "s1", Domain: "a", Tags: []string{"pod", "crash"}, Timestamp: 200},
	}

	summary := model.NewSessionContext("s1", records)
	gt.Equal(t, summary.MessageCount, 3)
	gt.Equal(t, summary.Domains, []string{"a", "b"})
	gt.Equal(t, summary.CommonTags, []string{"crash", "pod"})
	gt.Equal(t, summary.LastActivity, int64(300))
}

func TestSessionContextEmpty(t *testing.T) {
	summary := model.NewSessionContext("unknown-session", nil)
	gt.Equal(t, summary.MessageCount, 0)
	gt.Equal(t, summary.LastActivity, int64(0))
	gt.A(t, summary.Domains).Length(0)
	gt.A(t, summary.CommonTags).Length(0)
}
