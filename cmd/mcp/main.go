package main

import (
	"context"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/akepally/ScholarRAG/internal/adapter"
	"github.com/akepally/ScholarRAG/internal/api"
	"github.com/akepally/ScholarRAG/internal/catalog"
	"github.com/akepally/ScholarRAG/internal/catalog/queryparse"
	"github.com/akepally/ScholarRAG/internal/config"
	"github.com/akepally/ScholarRAG/internal/data/store"
	"github.com/akepally/ScholarRAG/internal/domain/paper"
	"github.com/akepally/ScholarRAG/internal/rag"
	"github.com/akepally/ScholarRAG/internal/rag/embedding"
	"github.com/akepally/ScholarRAG/internal/rag/embedding/googleEmbedding"
	"github.com/akepally/ScholarRAG/internal/rag/embedding/openaiEmbedding"
	"github.com/akepally/ScholarRAG/internal/rag/llm"
	"github.com/akepally/ScholarRAG/internal/rag/llm/gemini"
	"github.com/akepally/ScholarRAG/internal/rag/llm/openaiLLM"
	"github.com/akepally/ScholarRAG/internal/rag/vectorstore/qdrantStore"
	"github.com/akepally/ScholarRAG/pkg/logging"
)

const serverVersion = "1.0.0"

// toolServer exposes the engine and catalog to MCP clients. Same engine
// construction as cmd/api, no HTTP surface and no worker pool: every
// tool call runs synchronously on the caller's request.
type toolServer struct {
	engine  rag.Service
	catalog *catalog.Store
	parser  *queryparse.Parser
}

type askInput struct {
	Question       string   `json:"question" jsonschema:"the question to answer from the paper collection"`
	UseHybrid      *bool    `json:"use_hybrid,omitempty" jsonschema:"combine semantic and keyword retrieval (default true)"`
	SemanticWeight *float64 `json:"semantic_weight,omitempty" jsonschema:"weight of the semantic branch"`
	BM25Weight     *float64 `json:"bm25_weight,omitempty" jsonschema:"weight of the keyword branch"`
	TopK           int      `json:"top_k,omitempty" jsonschema:"number of supporting chunks to retrieve"`
}

type askOutput struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

type searchInput struct {
	Query string `json:"query" jsonschema:"natural-language filter, e.g. 'diffusion papers from CVPR since 2023'"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of papers to return"`
}

type searchOutput struct {
	Papers []api.PaperSummary `json:"papers"`
	Count  int                `json:"count"`
}

type statusInput struct{}

func main() {
	_ = godotenv.Load()

	//stdout carries the MCP protocol, logs go to stderr
	logging.InitStderr()
	logger := logging.NewLogger("mcp")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	catalogStore, err := catalog.NewStore(config.GetDataDir())
	if err != nil {
		logger.Error("Could not open the paper catalog. Shutting down.", "error", err)
		return
	}
	defer catalogStore.Close()

	embedder := buildEmbedder(ctx)
	generator := buildGenerator(ctx)
	if embedder == nil || generator == nil {
		logger.Error("One or more providers failed to initialize. Shutting down.")
		return
	}
	if redisVectors := store.GetRedisEmbedCache(ctx); redisVectors != nil {
		embedder = embedding.NewCached(embedder, redisVectors)
	} else if config.FALLBACK_REDIS_TO_INTERNALSTORE {
		embedder = embedding.NewCached(embedder, store.InitInMemoryEmbedCache())
	}

	deps := rag.Dependencies{Embedder: embedder, Generator: generator}
	if config.GetVectorBackend() == "qdrant" {
		qs := qdrantStore.GetQdrantStore(ctx)
		if qs == nil {
			logger.Error("Qdrant backend requested but unreachable. Shutting down.")
			return
		}
		deps.Remote = qs
	}

	engine, err := rag.NewRagService(deps, rag.Options{})
	if err != nil {
		logger.Error("Could not initialize the rag engine. Shutting down.", "error", err)
		return
	}

	ts := &toolServer{
		engine:  engine,
		catalog: catalogStore,
		parser:  queryparse.New(generator),
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{Name: "scholar-rag", Version: serverVersion}, nil)
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "ask_papers",
		Description: "Answer a question from the indexed paper collection, with the sources used",
	}, ts.handleAsk)
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "search_papers",
		Description: "Search the paper catalog with a natural-language filter",
	}, ts.handleSearch)
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "status",
		Description: "Report the state of the question-answering engine and its index",
	}, ts.handleStatus)

	logger.Info("MCP server listening on stdio")
	if err := mcpServer.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		logger.Error("MCP server stopped", "error", err)
	}

	if err := engine.Close(context.Background()); err != nil {
		logger.Error("closing engine", "error", err)
	}
}

func (ts *toolServer) handleAsk(ctx context.Context, _ *mcp.CallToolRequest, input askInput) (*mcp.CallToolResult, askOutput, error) {
	result, err := ts.engine.Ask(ctx, adapter.ToEngineAsk(api.AskRequest{
		Question:       input.Question,
		UseHybrid:      input.UseHybrid,
		SemanticWeight: input.SemanticWeight,
		BM25Weight:     input.BM25Weight,
		TopK:           input.TopK,
	}))
	if err != nil {
		return nil, askOutput{}, err
	}
	return nil, askOutput{Answer: result.Answer, Sources: result.Sources}, nil
}

func (ts *toolServer) handleSearch(ctx context.Context, _ *mcp.CallToolRequest, input searchInput) (*mcp.CallToolResult, searchOutput, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		//degrade to a plain listing, like the HTTP surface does for
		//unparseable queries
		papers, err := ts.catalog.List(ctx, input.Limit, 0)
		if err != nil {
			return nil, searchOutput{}, err
		}
		return nil, toSearchOutput(papers), nil
	}

	filter := ts.parser.Parse(ctx, query)
	filter.Limit = input.Limit
	papers, err := ts.catalog.Search(ctx, filter)
	if err != nil {
		return nil, searchOutput{}, err
	}
	return nil, toSearchOutput(papers), nil
}

func (ts *toolServer) handleStatus(ctx context.Context, _ *mcp.CallToolRequest, _ statusInput) (*mcp.CallToolResult, rag.EngineStatus, error) {
	return nil, ts.engine.Status(), nil
}

func toSearchOutput(papers []paper.Paper) searchOutput {
	out := make([]api.PaperSummary, 0, len(papers))
	for _, p := range papers {
		out = append(out, adapter.ToPaperSummary(p))
	}
	return searchOutput{Papers: out, Count: len(out)}
}

func buildEmbedder(ctx context.Context) embedding.Embedder {
	switch config.GetEmbedProvider() {
	case "openai":
		return openaiEmbedding.GetOpenAIEmbeddingClient(config.OpenAIEmbeddingModel, config.GetOpenAIAPIKey())
	default:
		return googleEmbedding.GetGoogleEmbeddingClient(ctx, config.GoogleEmbeddingModel, config.GetGeminiAPIKey())
	}
}

func buildGenerator(ctx context.Context) llm.Provider {
	switch config.GetLLMProvider() {
	case "openai":
		return openaiLLM.GetOpenAIClient(config.OpenAIModelName, config.GetOpenAIAPIKey())
	default:
		return gemini.GetGeminiClient(ctx, config.GeminiModelName, config.GetGeminiAPIKey())
	}
}
