// Package mcp exposes the memory manager to a host process through the
// fixed five-operation tool-call contract.
package mcp

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kevin-biot/mcp-memory/pkg/model"
	"github.com/kevin-biot/mcp-memory/pkg/usecase/memory"
)

const defaultSearchLimit = 5

// Server wires the memory use case into an MCP server.
type Server struct {
	memory *memory.UseCase
	server *mcp.Server
}

// New builds the tool server around an initialized memory manager.
func New(uc *memory.UseCase) *Server {
	s := &Server{
		memory: uc,
		server: mcp.NewServer(&mcp.Implementation{
			Name:    "mcp-memory",
			Version: "1.0.0",
		}, nil),
	}

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "store_conversation_memory",
		Description: "Store a conversational exchange in persistent memory with automatic tag and context extraction",
	}, s.storeConversation)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "store_operational_memory",
		Description: "Store a structured incident report (symptoms, root cause, resolution) in persistent memory",
	}, s.storeOperational)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_conversation_memory",
		Description: "Search stored conversations by semantic similarity (substring match when the vector backend is unavailable)",
	}, s.searchConversations)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_operational_memory",
		Description: "Search stored incident reports by semantic similarity with optional environment and domain filters",
	}, s.searchOperational)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_session_context",
		Description: "Summarize the stored history of a session: message count, domains, tags, last activity",
	}, s.getSessionContext)

	return s
}

// Run serves the tool contract until the context ends or the transport
// closes. The serve command uses the stdio transport.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	return s.server.Run(ctx, transport)
}

// Connect attaches the server to a transport and returns the session.
// Used by tests with in-memory transports.
func (s *Server) Connect(ctx context.Context, transport mcp.Transport) (*mcp.ServerSession, error) {
	return s.server.Connect(ctx, transport, nil)
}

type storeConversationParams struct {
	SessionID         string   `json:"sessionId" jsonschema:"Session identifier grouping exchanges"`
	UserMessage       string   `json:"userMessage" jsonschema:"The user's message"`
	AssistantResponse string   `json:"assistantResponse" jsonschema:"The assistant's response"`
	Context           []string `json:"context,omitempty" jsonschema:"Contextual tokens; merged with extracted ones"`
	Tags              []string `json:"tags,omitempty" jsonschema:"Categorical tags; merged with extracted ones"`
	AutoExtract       *bool    `json:"autoExtract,omitempty" jsonschema:"Extract tags and context automatically (default true)"`
}

type storeConversationResult struct {
	MemoryID         model.MemoryID `json:"memoryId"`
	ExtractedTags    []string       `json:"extractedTags"`
	ExtractedContext []string       `json:"extractedContext"`
}

func (s *Server) storeConversation(ctx context.Context, req *mcp.CallToolRequest, params *storeConversationParams) (*mcp.CallToolResult, any, error) {
	autoExtract := true
	if params.AutoExtract != nil {
		autoExtract = *params.AutoExtract
	}

	stored, err := s.memory.StoreConversation(ctx, &model.ConversationRecord{
		SessionID:         params.SessionID,
		UserMessage:       params.UserMessage,
		AssistantResponse: params.AssistantResponse,
		Context:           params.Context,
		Tags:              params.Tags,
	}, autoExtract)
	if err != nil {
		return nil, nil, err
	}

	return jsonResult(storeConversationResult{
		MemoryID:         stored.MemoryID(),
		ExtractedTags:    emptyIfNil(stored.Tags),
		ExtractedContext: emptyIfNil(stored.Context),
	})
}

type storeOperationalParams struct {
	IncidentID        string   `json:"incidentId" jsonschema:"Incident identifier"`
	Symptoms          []string `json:"symptoms" jsonschema:"Observed symptoms (at least one)"`
	Environment       string   `json:"environment" jsonschema:"One of dev, test, staging, prod"`
	RootCause         string   `json:"rootCause,omitempty" jsonschema:"Root cause, if known"`
	Resolution        string   `json:"resolution,omitempty" jsonschema:"Resolution, if applied"`
	AffectedResources []string `json:"affectedResources,omitempty" jsonschema:"Affected resources"`
	DiagnosticSteps   []string `json:"diagnosticSteps,omitempty" jsonschema:"Diagnostic steps taken"`
	Tags              []string `json:"tags,omitempty" jsonschema:"Categorical tags"`
}

type storeOperationalResult struct {
	MemoryID model.MemoryID `json:"memoryId"`
}

func (s *Server) storeOperational(ctx context.Context, req *mcp.CallToolRequest, params *storeOperationalParams) (*mcp.CallToolResult, any, error) {
	stored, err := s.memory.StoreOperational(ctx, &model.OperationalRecord{
		IncidentID:        params.IncidentID,
		Symptoms:          params.Symptoms,
		Environment:       model.Environment(params.Environment),
		RootCause:         params.RootCause,
		Resolution:        params.Resolution,
		AffectedResources: params.AffectedResources,
		DiagnosticSteps:   params.DiagnosticSteps,
		Tags:              params.Tags,
	})
	if err != nil {
		return nil, nil, err
	}

	return jsonResult(storeOperationalResult{MemoryID: stored.MemoryID()})
}

type searchConversationParams struct {
	Query     string `json:"query" jsonschema:"Search query"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Maximum results (default 5)"`
	SessionID string `json:"sessionId,omitempty" jsonschema:"Restrict to one session"`
}

type searchOperationalParams struct {
	Query       string `json:"query" jsonschema:"Search query"`
	Limit       int    `json:"limit,omitempty" jsonschema:"Maximum results (default 5)"`
	Environment string `json:"environment,omitempty" jsonschema:"Restrict to one environment tier"`
	Domain      string `json:"domain,omitempty" jsonschema:"Restrict to one owning domain"`
}

type searchHit struct {
	Content    string            `json:"content"`
	Metadata   map[string]string `json:"metadata"`
	Similarity float64           `json:"similarity"`
	Kind       model.RecordKind  `json:"kind"`
}

type searchResponse struct {
	Results []searchHit `json:"results"`
}

func (s *Server) searchConversations(ctx context.Context, req *mcp.CallToolRequest, params *searchConversationParams) (*mcp.CallToolResult, any, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	results := s.memory.SearchConversations(ctx, params.Query, limit, memory.ConversationFilter{
		SessionID: params.SessionID,
	})

	return jsonResult(toSearchResponse(results))
}

func (s *Server) searchOperational(ctx context.Context, req *mcp.CallToolRequest, params *searchOperationalParams) (*mcp.CallToolResult, any, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	env := model.Environment(params.Environment)
	if env != "" {
		if err := env.Validate(); err != nil {
			return nil, nil, err
		}
	}

	results := s.memory.SearchOperational(ctx, params.Query, limit, memory.OperationalFilter{
		Environment: env,
		Domain:      params.Domain,
	})

	return jsonResult(toSearchResponse(results))
}

type sessionContextParams struct {
	SessionID string `json:"sessionId" jsonschema:"Session identifier to summarize"`
}

func (s *Server) getSessionContext(ctx context.Context, req *mcp.CallToolRequest, params *sessionContextParams) (*mcp.CallToolResult, any, error) {
	if params.SessionID == "" {
		return nil, nil, model.ErrInvalidRecord
	}

	return jsonResult(s.memory.GetSessionContext(ctx, params.SessionID))
}

func toSearchResponse(results []*model.SearchResult) searchResponse {
	resp := searchResponse{Results: []searchHit{}}
	for _, res := range results {
		resp.Results = append(resp.Results, searchHit{
			Content:    res.Content,
			Metadata:   res.Metadata,
			Similarity: 1 - res.Distance,
			Kind:       res.Kind,
		})
	}
	return resp
}

func jsonResult(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(data)},
		},
	}, nil, nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
