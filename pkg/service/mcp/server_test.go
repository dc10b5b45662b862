package mcp_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kevin-biot/mcp-memory/pkg/repository"
	mcpservice "github.com/kevin-biot/mcp-memory/pkg/service/mcp"
	"github.com/kevin-biot/mcp-memory/pkg/usecase/memory"
)

// setupSession connects a client to the tool server over in-memory
// transports, backed by a fallback-only manager on a temp directory.
func setupSession(t *testing.T) *sdk.ClientSession {
	ctx := context.Background()

	repo, err := repository.NewFilesystem(t.TempDir())
	gt.NoError(t, err)
	uc := memory.New(repo, "devops")
	gt.NoError(t, uc.Initialize(ctx))

	server := mcpservice.New(uc)
	clientTransport, serverTransport := sdk.NewInMemoryTransports()

	serverSession, err := server.Connect(ctx, serverTransport)
	gt.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	client := sdk.NewClient(&sdk.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	gt.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })

	return session
}

func textContent(t *testing.T, res *sdk.CallToolResult) string {
	gt.A(t, res.Content).Length(1)
	text, ok := res.Content[0].(*sdk.TextContent)
	gt.True(t, ok)
	return text.Text
}

func TestListTools(t *testing.T) {
	ctx := context.Background()
	session := setupSession(t)

	tools, err := session.ListTools(ctx, nil)
	gt.NoError(t, err)
	gt.A(t, tools.Tools).Length(5)

	names := map[string]bool{}
	for _, tool := range tools.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{
		"store_conversation_memory",
		"store_operational_memory",
		"search_conversation_memory",
		"search_operational_memory",
		"get_session_context",
	} {
		gt.True(t, names[want]).Describe("missing tool: " + want)
	}
}

func TestStoreConversationTool(t *testing.T) {
	ctx := context.Background()
	session := setupSession(t)

	res, err := session.CallTool(ctx, &sdk.CallToolParams{
		Name: "store_conversation_memory",
		Arguments: map[string]any{
			"sessionId":         "s1",
			"userMessage":       "Pod CrashLoopBackOff in prod",
			"assistantResponse": "check the liveness probe",
		},
	})
	gt.NoError(t, err)
	gt.False(t, res.IsError)

	var out struct {
		MemoryID         string   `json:"memoryId"`
		ExtractedTags    []string `json:"extractedTags"`
		ExtractedContext []string `json:"extractedContext"`
	}
	gt.NoError(t, json.Unmarshal([]byte(textContent(t, res)), &out))
	gt.S(t, out.MemoryID).Contains("s1_")

	tags := map[string]bool{}
	for _, tag := range out.ExtractedTags {
		tags[tag] = true
	}
	gt.True(t, tags["pod"] && tags["crash"] && tags["prod"])
}

func TestStoreAndSearchRoundTrip(t *testing.T) {
	ctx := context.Background()
	session := setupSession(t)

	_, err := session.CallTool(ctx, &sdk.CallToolParams{
		Name: "store_conversation_memory",
		Arguments: map[string]any{
			"sessionId":         "s1",
			"userMessage":       "the ingress keeps returning 502",
			"assistantResponse": "backend service is crashing",
		},
	})
	gt.NoError(t, err)

	res, err := session.CallTool(ctx, &sdk.CallToolParams{
		Name: "search_conversation_memory",
		Arguments: map[string]any{
			"query": "crash",
		},
	})
	gt.NoError(t, err)
	gt.False(t, res.IsError)

	var out struct {
		Results []struct {
			Content    string            `json:"content"`
			Metadata   map[string]string `json:"metadata"`
			Similarity float64           `json:"similarity"`
			Kind       string            `json:"kind"`
		} `json:"results"`
	}
	gt.NoError(t, json.Unmarshal([]byte(textContent(t, res)), &out))
	gt.A(t, out.Results).Length(1)
	gt.Equal(t, out.Results[0].Kind, "conversation")
	gt.Equal(t, out.Results[0].Similarity, 0.5) // 1 - fallback sentinel distance
	gt.S(t, out.Results[0].Content).Contains("crashing")
}

func TestStoreOperationalToolValidation(t *testing.T) {
	ctx := context.Background()
	session := setupSession(t)

	res, err := session.CallTool(ctx, &sdk.CallToolParams{
		Name: "store_operational_memory",
		Arguments: map[string]any{
			"incidentId":  "inc-1",
			"symptoms":    []string{"latency spike"},
			"environment": "qa",
		},
	})
	gt.NoError(t, err)
	gt.True(t, res.IsError).Describe("environment outside the enum must fail validation")
}

func TestStoreOperationalTool(t *testing.T) {
	ctx := context.Background()
	session := setupSession(t)

	res, err := session.CallTool(ctx, &sdk.CallToolParams{
		Name: "store_operational_memory",
		Arguments: map[string]any{
			"incidentId":  "inc-7",
			"symptoms":    []string{"pods OOMKilled"},
			"environment": "prod",
			"rootCause":   "memory limit too low",
		},
	})
	gt.NoError(t, err)
	gt.False(t, res.IsError)

	var out struct {
		MemoryID string `json:"memoryId"`
	}
	gt.NoError(t, json.Unmarshal([]byte(textContent(t, res)), &out))
	gt.S(t, out.MemoryID).Contains("inc-7_")
}

func TestGetSessionContextTool(t *testing.T) {
	ctx := context.Background()
	session := setupSession(t)

	for _, msg := range []string{"first message", "second message"} {
		_, err := session.CallTool(ctx, &sdk.CallToolParams{
			Name: "store_conversation_memory",
			Arguments: map[string]any{
				"sessionId":         "s9",
				"userMessage":       msg,
				"assistantResponse": "ok",
				"autoExtract":       false,
			},
		})
		gt.NoError(t, err)
		time.Sleep(2 * time.Millisecond) // distinct log file names
	}

	res, err := session.CallTool(ctx, &sdk.CallToolParams{
		Name: "get_session_context",
		Arguments: map[string]any{
			"sessionId": "s9",
		},
	})
	gt.NoError(t, err)
	gt.False(t, res.IsError)

	var out struct {
		SessionID    string `json:"sessionId"`
		MessageCount int    `json:"messageCount"`
	}
	gt.NoError(t, json.Unmarshal([]byte(textContent(t, res)), &out))
	gt.Equal(t, out.SessionID, "s9")
	gt.Equal(t, out.MessageCount, 2)
}

func TestGetSessionContextToolEmpty(t *testing.T) {
	ctx := context.Background()
	session := setupSession(t)

	res, err := session.CallTool(ctx, &sdk.CallToolParams{
		Name: "get_session_context",
		Arguments: map[string]any{
			"sessionId": "never-seen",
		},
	})
	gt.NoError(t, err)
	gt.False(t, res.IsError)

	var out struct {
		MessageCount int `json:"messageCount"`
	}
	gt.NoError(t, json.Unmarshal([]byte(textContent(t, res)), &out))
	gt.Equal(t, out.MessageCount, 0)
}
