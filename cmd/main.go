package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/joho/godotenv"

	"recipe-genie/internal/handler"
	"recipe-genie/internal/integrations/mealdb"
	"recipe-genie/internal/integrations/openai"
	"recipe-genie/internal/integrations/paramstore"
	"recipe-genie/internal/llm"
	"recipe-genie/internal/repository"
	"recipe-genie/internal/server"
	"recipe-genie/internal/usecase"
)

func main() {
	ctx := context.Background()
	_ = godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	// ---- Configuration (read only here) ----
	port := envOr("PORT", "8080")
	chatTable := mustEnv("CHAT_TABLE")
	openaiModel := envOr("OPENAI_MODEL", llm.DefaultModel)
	staticDir := envOr("STATIC_DIR", "./static")
	openaiTimeout := time.Duration(envInt("OPENAI_TIMEOUT_SECONDS", 30)) * time.Second

	// ---- AWS SDK config ----
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		log.Error("failed to load AWS config", "err", err)
		os.Exit(1)
	}

	// ---- API key: environment first, SSM parameter store second ----
	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if apiKey == "" {
		prefix := strings.TrimSpace(os.Getenv("PARAM_PREFIX"))
		if prefix == "" {
			log.Error("either OPENAI_API_KEY or PARAM_PREFIX must be set")
			os.Exit(1)
		}
		ssmClient, err := paramstore.New(awsssm.NewFromConfig(cfg))
		if err != nil {
			log.Error("failed to create SSM client", "err", err)
			os.Exit(1)
		}
		apiKey, err = paramstore.ResolveAPIKey(ctx, ssmClient, prefix)
		if err != nil {
			log.Error("failed to resolve OpenAI API key from SSM", "err", err)
			os.Exit(1)
		}
	}

	// ---- Clients ----
	storeClient, err := repository.New(awsdynamodb.NewFromConfig(cfg), chatTable)
	if err != nil {
		log.Error("failed to create conversation store", "err", err)
		os.Exit(1)
	}

	openaiOpts := []openai.Option{
		openai.WithHTTPClient(&http.Client{Timeout: openaiTimeout}),
	}
	openaiClient, err := openai.NewClient(apiKey, openaiOpts...)
	if err != nil {
		log.Error("failed to create OpenAI client", "err", err)
		os.Exit(1)
	}

	assistant, err := llm.New(openaiClient, openaiModel, log)
	if err != nil {
		log.Error("failed to create assistant gateway", "err", err)
		os.Exit(1)
	}

	mealOpts := []mealdb.Option{}
	if base := strings.TrimSpace(os.Getenv("MEALDB_BASE_URL")); base != "" {
		mealOpts = append(mealOpts, mealdb.WithBaseURL(base))
	}
	mealClient := mealdb.NewClient(mealOpts...)

	// ---- Services ----
	chatService, err := usecase.NewChatService(storeClient, assistant)
	if err != nil {
		log.Error("failed to create chat service", "err", err)
		os.Exit(1)
	}
	recipeService, err := usecase.NewRecipeService(assistant, mealClient)
	if err != nil {
		log.Error("failed to create recipe service", "err", err)
		os.Exit(1)
	}

	// ---- HTTP ----
	chatHandler, err := handler.NewChatHandler(chatService, recipeService, log)
	if err != nil {
		log.Error("failed to create chat handler", "err", err)
		os.Exit(1)
	}

	if _, err := os.Stat(staticDir); err != nil {
		log.Warn("static dir not found, SPA serving disabled", "dir", staticDir)
		staticDir = ""
	}

	router := server.NewRouter(server.RouterConfig{
		ChatHandler: chatHandler,
		StaticDir:   staticDir,
	})

	log.Info("starting server", "port", port, "table", chatTable, "model", openaiModel)
	if err := router.Run(":" + port); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		slog.Error("required environment variable is not set", "key", key)
		os.Exit(1)
	}
	return v
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
