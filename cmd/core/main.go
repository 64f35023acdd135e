// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

// Command core is the Agent Execution Core's entrypoint: it wires
// configuration, persistence, the model router's providers, and every
// domain service into one process and serves the HTTP API, following
// the orchestrator command's mux/cors/prometheus wiring style.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"agentcore/platform/audit"
	"agentcore/platform/common/usage"
	"agentcore/platform/config"
	"agentcore/platform/connectorproxy"
	"agentcore/platform/connectors/base"
	"agentcore/platform/connectors/registry"
	"agentcore/platform/connectors/sdk"
	"agentcore/platform/dispatch"
	"agentcore/platform/domain"
	"agentcore/platform/memory"
	"agentcore/platform/modelrouter"
	"agentcore/platform/policy"
	"agentcore/platform/reasoning"
	"agentcore/platform/retrieval"
	"agentcore/platform/shared/logger"
	"agentcore/platform/store"
	"agentcore/platform/worker"
	"agentcore/platform/writegateway"
)

func main() {
	log := logger.New("core")

	cfg, err := config.Load(os.Getenv("AGENTCORE_ENV_FILE"), os.Getenv("AGENTCORE_CONFIG_FILE"))
	if err != nil {
		log.Error("", "", "failed to load configuration", errFields(err))
		os.Exit(1)
	}

	db, dbURL, err := openDatabase()
	if err != nil {
		log.Error("", "", "failed to open database", errFields(err))
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()
	if err := applySchema(ctx, db); err != nil {
		log.Error("", "", "failed to apply schema", errFields(err))
		os.Exit(1)
	}

	auditWriter := audit.NewWriter(audit.NewPostgresStore(db), 100, 10000, 5*time.Second)
	defer func() {
		if err := auditWriter.Close(context.Background()); err != nil {
			log.Error("", "", "failed to flush audit writer", errFields(err))
		}
	}()

	documentRepo := store.NewDocumentRepository(db)
	chunkStore := store.NewChunkStore(db)
	semanticIndex := store.NewSemanticIndex(chunkStore)
	lexicalIndex := store.NewLexicalIndex(chunkStore)
	memoryRepo := store.NewMemoryRepository(db)
	writeOpRepo := store.NewWriteOperationRepository(db)

	embedder := store.NewHTTPEmbedder(os.Getenv("AGENTCORE_EMBEDDING_BASE_URL"), os.Getenv("AGENTCORE_EMBEDDING_API_KEY"), envDefault("AGENTCORE_EMBEDDING_MODEL", "text-embedding-3-small"))
	batchEmbedder := store.NewBatchEmbedder(embedder)

	lightProvider := store.NewHTTPChatProvider("light", os.Getenv("AGENTCORE_LIGHT_BASE_URL"), os.Getenv("AGENTCORE_LIGHT_API_KEY"), envDefault("AGENTCORE_LIGHT_MODEL", "gpt-4o-mini"))
	standardProvider := store.NewHTTPChatProvider("standard", os.Getenv("AGENTCORE_STANDARD_BASE_URL"), os.Getenv("AGENTCORE_STANDARD_API_KEY"), envDefault("AGENTCORE_STANDARD_MODEL", "gpt-4o"))
	heavyProvider := store.NewHTTPChatProvider("heavy", os.Getenv("AGENTCORE_HEAVY_BASE_URL"), os.Getenv("AGENTCORE_HEAVY_API_KEY"), envDefault("AGENTCORE_HEAVY_MODEL", "gpt-4o"))

	classifier := store.NewLightModelClassifier(lightProvider)
	budgetLedger := store.NewBudgetLedger(db, cfg.TokenBudgetDaily, cfg.TokenBudgetMonthly)

	router := modelrouter.NewRouter(map[modelrouter.Tier]modelrouter.Provider{
		modelrouter.TierLight:    lightProvider,
		modelrouter.TierStandard: standardProvider,
		modelrouter.TierHeavy:    heavyProvider,
	}, budgetLedger, classifier, modelrouter.DefaultConfig()).WithUsageRecorder(usage.NewUsageRecorder(db))

	lightCompleter := store.NewLightCompleter(lightProvider)
	memService := memory.NewService(memoryRepo, embedder, lightCompleter, memory.DefaultConfig(), nil)

	retrievalEngine := retrieval.NewEngine(embedder, semanticIndex, lexicalIndex, nil, documentRepo, cfg.RetrievalConfig())

	policyGate := policy.NewGate(policy.DefaultPermissions(), auditWriter)

	connectorRegistry, err := registry.NewRegistryWithStorage(dbURL)
	if err != nil {
		log.Warn("", "", "connector registry falling back to in-memory storage", errFields(err))
		connectorRegistry = registry.NewRegistry()
	}
	connectorRegistry.SetFactory(registry.NewConnectorInstance)
	connectorCache := connectorproxy.NewMemoryCache(1024)
	rateLimiter := sdk.NewMultiTenantRateLimiter(float64(cfg.RateLimitPerMinute)/60.0, cfg.RateLimitPerMinute)
	idempotencyStore := connectorproxy.NewMemoryIdempotencyStore()
	connectorProxy := connectorproxy.New(connectorRegistry, connectorCache, rateLimiter, idempotencyStore, auditWriter, cfg.ConnectorProxyConfig())

	writeGateway := writegateway.New(writeOpRepo, policyGate, connectorProxy, nil, store.StaticTenantPolicy{AutoApproveLowRiskDefault: false}, auditWriter, cfg.WriteGatewayConfig())

	dispatcher := dispatch.New(policyGate, store.UUIDGenerator{}, cfg.RequestDeadline())

	specialist := store.NewRouterSpecialist("standard-router", router, "")
	planBuilder := store.NewSingleSpecialistPlanBuilder(specialist)

	pipeline := reasoning.New(reasoning.Deps{
		Memories:         memService,
		Retriever:        retrievalEngine,
		IntentClassifier: classifier,
		Complexity:       classifier,
		PlanBuilder:      planBuilder,
		WriteProposer:    writeGateway,
		Extractor:        memService,
		Storer:           memService,
		ChunkFeedback:    documentRepo,
	})

	contentFetcher := store.NewHTTPContentFetcher()
	ingestor := worker.NewDocumentIngestor(contentFetcher, batchEmbedder, chunkStore, documentRepo, store.UUIDGenerator{}, cfg.ChunkSizeTokens, cfg.ChunkOverlapTokens)

	collector := worker.NewCollector(prometheus.DefaultRegisterer)
	pool := worker.New(cfg.WorkerPoolConfig(), ingestor, writeGateway, memService, documentRepo, nil, collector)
	if err := pool.Start(ctx); err != nil {
		log.Error("", "", "failed to start worker pool", errFields(err))
		os.Exit(1)
	}

	srv := newServer(dispatcher, pipeline, connectorRegistry, log)

	go func() {
		log.Info("", "", "agent execution core listening", map[string]interface{}{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("", "", "server stopped unexpectedly", errFields(err))
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("", "", "shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := pool.Stop(shutdownCtx); err != nil {
		log.Error("", "", "failed to stop worker pool cleanly", errFields(err))
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("", "", "failed to shut down http server cleanly", errFields(err))
	}
}

func errFields(err error) map[string]interface{} {
	return map[string]interface{}{"error": err.Error()}
}

// openDatabase builds a connection string the same way the teacher's
// orchestrator does: discrete DATABASE_HOST/PORT/NAME/USER/PASSWORD
// env vars take precedence, with DATABASE_URL as a legacy fallback.
func openDatabase() (*sql.DB, string, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if host := os.Getenv("DATABASE_HOST"); host != "" {
		port := envDefault("DATABASE_PORT", "5432")
		name := envDefault("DATABASE_NAME", "agentcore")
		user := envDefault("DATABASE_USER", "agentcore_app")
		sslMode := envDefault("DATABASE_SSLMODE", "require")
		dbURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
			url.QueryEscape(user), url.QueryEscape(os.Getenv("DATABASE_PASSWORD")), host, port, name, sslMode)
	}
	if dbURL == "" {
		return nil, "", fmt.Errorf("core: DATABASE_URL or DATABASE_HOST/DATABASE_PASSWORD must be set")
	}
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, "", fmt.Errorf("core: failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, "", fmt.Errorf("core: failed to reach database: %w", err)
	}
	return db, dbURL, nil
}

func applySchema(ctx context.Context, db *sql.DB) error {
	if err := store.EnsureSchema(ctx, db); err != nil {
		return err
	}
	if err := store.EnsureWriteOperationSchema(ctx, db); err != nil {
		return err
	}
	return audit.NewPostgresStore(db).EnsureSchema(ctx)
}

func envDefault(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func newServer(dispatcher *dispatch.Dispatcher, pipeline *reasoning.Pipeline, connectorRegistry *registry.Registry, log *logger.Logger) *http.Server {
	r := mux.NewRouter()
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	r.HandleFunc("/health", healthHandler).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/api/v1/turns", turnHandler(dispatcher, pipeline, log)).Methods("POST")
	r.HandleFunc("/api/v1/connectors", installConnectorHandler(connectorRegistry, log)).Methods("POST")

	port := envDefault("PORT", "8081")
	return &http.Server{
		Addr:         ":" + port,
		Handler:      c.Handler(r),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// connectorInstallRequest mirrors the teacher's ConnectorInstallRequest:
// a tenant names a connector type, gives it an instance name, and
// supplies the options/credentials that type needs to Connect.
type connectorInstallRequest struct {
	ConnectorType string                 `json:"connector_type"`
	Name          string                 `json:"name"`
	TenantID      string                 `json:"tenant_id"`
	ConnectionURL string                 `json:"connection_url"`
	Options       map[string]interface{} `json:"options"`
	Credentials   map[string]string      `json:"credentials"`
}

func installConnectorHandler(connectorRegistry *registry.Registry, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req connectorInstallRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.TenantID == "" || req.Name == "" || req.ConnectorType == "" {
			http.Error(w, "tenant_id, name, and connector_type are required", http.StatusBadRequest)
			return
		}

		connector, err := registry.NewConnectorInstance(req.ConnectorType)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		config := &base.ConnectorConfig{
			Name:          req.Name,
			Type:          req.ConnectorType,
			ConnectionURL: req.ConnectionURL,
			Options:       req.Options,
			Credentials:   req.Credentials,
			TenantID:      req.TenantID,
			Timeout:       30 * time.Second,
		}

		connectorID := req.TenantID + ":" + req.Name
		if err := connectorRegistry.Register(connectorID, connector, config); err != nil {
			log.Error(req.TenantID, "", "failed to install connector", errFields(err))
			http.Error(w, "failed to install connector: "+err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"connector_id": connectorID,
			"name":         req.Name,
			"type":         req.ConnectorType,
		})
	}
}

type turnRequest struct {
	TenantID       string `json:"tenant_id"`
	PrincipalID    string `json:"principal_id"`
	Role           string `json:"role"`
	ConversationID string `json:"conversation_id"`
	UserTurn       string `json:"user_turn"`
}

// turnHandler decodes the inbound turn and hands it to the Request
// Dispatcher, which authorizes the principal and attaches request-
// scoped context before the reasoning pipeline ever runs. A policy
// denial surfaces as 403, mirroring the orchestrator's own
// policy-blocked response.
func turnHandler(dispatcher *dispatch.Dispatcher, pipeline *reasoning.Pipeline, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req turnRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.TenantID == "" || req.UserTurn == "" {
			http.Error(w, "tenant_id and user_turn are required", http.StatusBadRequest)
			return
		}

		role := domain.Role(req.Role)
		if role == "" {
			role = domain.RoleOperator
		}

		ctx, cancel, dispatched, err := dispatcher.Dispatch(r.Context(), dispatch.TurnRequest{
			TenantID: req.TenantID,
			Principal: domain.Principal{
				ID:       req.PrincipalID,
				TenantID: req.TenantID,
				Role:     role,
			},
			ConversationID: req.ConversationID,
			UserTurn:       req.UserTurn,
			ContextWindow:  4096,
		})
		defer cancel()
		if err != nil {
			log.Warn(req.TenantID, "", "turn rejected by policy gate", errFields(err))
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		}

		turn, err := pipeline.Run(ctx, dispatched)
		if err != nil {
			log.Error(req.TenantID, "", "turn failed", errFields(err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(turn)
	}
}
