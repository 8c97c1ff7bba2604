package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"

	"github.com/mayowa-kalejaiye/docstream/internal/config"
	"github.com/mayowa-kalejaiye/docstream/internal/core"
	"github.com/mayowa-kalejaiye/docstream/internal/core/ingestion"
	"github.com/mayowa-kalejaiye/docstream/internal/core/llm"
	objectclient "github.com/mayowa-kalejaiye/docstream/internal/core/object-client"
	"github.com/mayowa-kalejaiye/docstream/internal/core/search"
	"github.com/mayowa-kalejaiye/docstream/internal/core/statusstore"
)

// App owns every constructed client and the processor they feed. All
// collaborators are built once here and injected; nothing global.
type App struct {
	AwsCfg    aws.Config
	Objects   core.ObjectStore
	Statuses  core.StatusStore
	Indexer   core.Indexer
	Processor *ingestion.Processor

	// opensearch is set only when that backend is selected; it carries the
	// index bootstrap the generic Indexer interface does not.
	opensearch *search.OpenSearchClient
	closers    []io.Closer
}

func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	a := &App{}

	// The retry posture lives in the client layer: throttled model and
	// storage calls back off here rather than in the pipeline.
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AwsRegion),
		awsconfig.WithRetryMaxAttempts(5),
		awsconfig.WithRetryMode(aws.RetryModeStandard),
	}
	if cfg.AwsAccessKey != "" && cfg.AwsSecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AwsAccessKey, cfg.AwsSecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	a.AwsCfg = awsCfg

	a.Objects = objectclient.NewS3Client(awsCfg)

	var model core.GenerativeModel
	var embedder core.EmbeddingProvider
	switch cfg.ModelProvider {
	case "gemini":
		gm, err := llm.NewGeminiConverse(ctx, cfg.GeminiAPIKey, cfg.GeminiGenModel)
		if err != nil {
			return nil, fmt.Errorf("init gemini model: %w", err)
		}
		a.closers = append(a.closers, gm)
		ge, err := llm.NewGeminiEmbedder(ctx, cfg.GeminiAPIKey, cfg.GeminiEmbedModel)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("init gemini embedder: %w", err)
		}
		a.closers = append(a.closers, ge)
		model, embedder = gm, ge
	case "bedrock":
		model = llm.NewBedrockConverse(awsCfg, cfg.GenModel)
		embedder = llm.NewTitanEmbedder(awsCfg, cfg.EmbedModel)
	default:
		return nil, fmt.Errorf("unknown MODEL_PROVIDER %q", cfg.ModelProvider)
	}

	switch cfg.IndexBackend {
	case "pgvector":
		store, err := search.NewPgVectorStore(ctx, cfg.DatabaseURL, cfg.EmbedDim)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("init pgvector store: %w", err)
		}
		a.closers = append(a.closers, store)
		a.Indexer = store
	case "opensearch":
		if cfg.CollectionEndpoint == "" {
			a.Close()
			return nil, fmt.Errorf("COLLECTION_ENDPOINT not set")
		}
		osc := search.NewOpenSearchClient(awsCfg, cfg.CollectionEndpoint, cfg.IndexName, cfg.EmbedDim, logger)
		a.opensearch = osc
		a.Indexer = osc
	default:
		a.Close()
		return nil, fmt.Errorf("unknown INDEX_BACKEND %q", cfg.IndexBackend)
	}

	if cfg.DocumentTable != "" {
		a.Statuses = statusstore.NewDynamoStatusStore(awsCfg, cfg.DocumentTable)
	} else {
		a.Statuses = statusstore.NoopStatusStore{}
	}

	a.Processor = ingestion.NewProcessor(
		ingestion.NewDocconvExtractor(logger),
		model,
		embedder,
		a.Indexer,
		ingestion.Config{
			SegmentSize:   cfg.SegmentSize,
			BatchSize:     cfg.BatchSize,
			EnableContext: cfg.EnableContext,
		},
		logger,
	)

	return a, nil
}

// EnsureIndex bootstraps the search index when the backend requires it.
func (a *App) EnsureIndex(ctx context.Context) error {
	if a.opensearch == nil {
		return nil
	}
	return a.opensearch.EnsureIndex(ctx)
}

func (a *App) Close() {
	for _, c := range a.closers {
		_ = c.Close()
	}
}
