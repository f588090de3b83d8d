package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mukkarapavankumar/Thought-organizer-v2/internal/llm"
	"github.com/mukkarapavankumar/Thought-organizer-v2/internal/services"
	"github.com/mukkarapavankumar/Thought-organizer-v2/pkg/models"
)

type Server struct {
	mcpServer *server.MCPServer
	sections  *services.SectionService
	thoughts  *services.ThoughtService
	providers *llm.Registry
}

func NewServer(sections *services.SectionService, thoughts *services.ThoughtService, providers *llm.Registry) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"Thought Organizer",
			"2.0.0",
			server.WithToolCapabilities(true),
		),
		sections:  sections,
		thoughts:  thoughts,
		providers: providers,
	}

	s.registerTools()
	return s
}

func (s *Server) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"add_thought",
			mcp.WithDescription("Capture a thought in a section and analyze it with the section workflow"),
			mcp.WithString("section_id", mcp.Required(), mcp.Description("The ID of the section")),
			mcp.WithString("content", mcp.Required(), mcp.Description("The text of the thought")),
		),
		s.handleAddThought,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"analyze_thought",
			mcp.WithDescription("Run the section workflow again for an existing thought"),
			mcp.WithString("section_id", mcp.Required(), mcp.Description("The ID of the section")),
			mcp.WithString("thought_id", mcp.Required(), mcp.Description("The ID of the thought")),
		),
		s.handleAnalyzeThought,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"list_thoughts",
			mcp.WithDescription("List the thoughts of a section"),
			mcp.WithString("section_id", mcp.Required(), mcp.Description("The ID of the section")),
			mcp.WithString("sort", mcp.Description("date, marketImpact, viability or totalScore")),
		),
		s.handleListThoughts,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"list_sections",
			mcp.WithDescription("List all sections and their workflows"),
		),
		s.handleListSections,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"select_provider",
			mcp.WithDescription("Switch the active AI provider"),
			mcp.WithString("provider", mcp.Required(), mcp.Description("ollama, openai or perplexity")),
		),
		s.handleSelectProvider,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"select_model",
			mcp.WithDescription("Change the default model of an AI provider"),
			mcp.WithString("provider", mcp.Required(), mcp.Description("ollama, openai or perplexity")),
			mcp.WithString("model", mcp.Required(), mcp.Description("Model name; for ollama it must be installed")),
		),
		s.handleSelectModel,
	)
}

func arguments(request mcp.CallToolRequest) (map[string]interface{}, *mcp.CallToolResult) {
	if request.Params.Arguments == nil {
		return map[string]interface{}{}, nil
	}
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, mcp.NewToolResultError("Invalid arguments type")
	}
	return args, nil
}

func requiredString(args map[string]interface{}, name string) (string, *mcp.CallToolResult) {
	v, ok := args[name].(string)
	if !ok || v == "" {
		return "", mcp.NewToolResultError("Missing required parameter: " + name)
	}
	return v, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleAddThought(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, res := arguments(request)
	if res != nil {
		return res, nil
	}
	sectionID, res := requiredString(args, "section_id")
	if res != nil {
		return res, nil
	}
	content, res := requiredString(args, "content")
	if res != nil {
		return res, nil
	}

	thought, err := s.thoughts.Add(ctx, sectionID, content)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to add thought: %v", err)), nil
	}
	return jsonResult(thought)
}

func (s *Server) handleAnalyzeThought(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, res := arguments(request)
	if res != nil {
		return res, nil
	}
	sectionID, res := requiredString(args, "section_id")
	if res != nil {
		return res, nil
	}
	thoughtID, res := requiredString(args, "thought_id")
	if res != nil {
		return res, nil
	}

	thought, err := s.thoughts.Retry(ctx, sectionID, thoughtID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to analyze thought: %v", err)), nil
	}
	return jsonResult(thought)
}

func (s *Server) handleListThoughts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, res := arguments(request)
	if res != nil {
		return res, nil
	}
	sectionID, res := requiredString(args, "section_id")
	if res != nil {
		return res, nil
	}
	sortBy, _ := args["sort"].(string)

	thoughts, err := s.thoughts.List(ctx, sectionID, models.SortOption(sortBy), 0)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list thoughts: %v", err)), nil
	}
	return jsonResult(thoughts)
}

func (s *Server) handleListSections(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sections, err := s.sections.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list sections: %v", err)), nil
	}
	return jsonResult(sections)
}

func (s *Server) handleSelectProvider(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, res := arguments(request)
	if res != nil {
		return res, nil
	}
	provider, res := requiredString(args, "provider")
	if res != nil {
		return res, nil
	}

	active, err := s.providers.SelectProvider(ctx, provider)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to select provider: %v", err)), nil
	}
	if active != provider {
		return mcp.NewToolResultText(fmt.Sprintf("%s is unavailable, using %s instead", provider, active)), nil
	}
	return mcp.NewToolResultText("Active provider: " + active), nil
}

func (s *Server) handleSelectModel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, res := arguments(request)
	if res != nil {
		return res, nil
	}
	provider, res := requiredString(args, "provider")
	if res != nil {
		return res, nil
	}
	model, res := requiredString(args, "model")
	if res != nil {
		return res, nil
	}

	if err := s.providers.SetDefaultModel(ctx, provider, model); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to select model: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Default model for %s: %s", provider, model)), nil
}

func MountHTTPHandlers(mux *http.ServeMux, mcpServer *server.MCPServer) {
	// Use SSE server for /mcp/sse and /mcp/message endpoints
	sseServer := server.NewSSEServer(mcpServer, server.WithStaticBasePath("/mcp"))

	mux.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		// Direct POST for tool calls
		if r.Method == http.MethodPost {
			sseServer.ServeHTTP(w, r)
			return
		}
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	// SSE endpoints
	mux.HandleFunc("/mcp/sse", sseServer.ServeHTTP)
	mux.HandleFunc("/mcp/message", sseServer.ServeHTTP)
}
