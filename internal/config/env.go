package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string

	CollectionEndpoint string
	IndexName          string
	DataBucket         string
	QueueURL           string
	DocumentTable      string

	SegmentSize   int
	BatchSize     int
	EnableContext bool

	ModelProvider string // "bedrock" or "gemini"
	GenModel      string
	EmbedModel    string
	EmbedDim      int

	GeminiAPIKey     string
	GeminiGenModel   string
	GeminiEmbedModel string

	IndexBackend string // "opensearch" or "pgvector"
	DatabaseURL  string

	WorkerConcurrency int
}

// LoadConfig loads the environment variables and returns config
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		AwsAccessKey: getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey: getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:    getEnv("AWS_REGION", "us-west-2"),

		CollectionEndpoint: getEnv("COLLECTION_ENDPOINT", ""),
		IndexName:          getEnv("CR_INDEX_NAME", "chatbot-rag-index"),
		DataBucket:         getEnv("DATA_BUCKET", ""),
		QueueURL:           getEnv("SQS_QUEUE_URL", ""),
		DocumentTable:      getEnv("DOCUMENT_TABLE", ""),

		SegmentSize:   getEnvInt("SEGMENT_SIZE", 2000),
		BatchSize:     getEnvInt("INDEX_BATCH_SIZE", 20),
		EnableContext: getEnvBool("ENABLE_CONTEXT", true),

		ModelProvider: getEnv("MODEL_PROVIDER", "bedrock"),
		GenModel:      getEnv("GEN_MODEL", "anthropic.claude-3-5-haiku-20241022-v1:0"),
		EmbedModel:    getEnv("EMBED_MODEL", "amazon.titan-embed-text-v2:0"),
		EmbedDim:      getEnvInt("EMBED_DIM", 1024),

		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		GeminiGenModel:   getEnv("GEMINI_GEN_MODEL", "gemini-1.5-flash"),
		GeminiEmbedModel: getEnv("GEMINI_EMBED_MODEL", "text-embedding-004"),

		IndexBackend: getEnv("INDEX_BACKEND", "opensearch"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),

		WorkerConcurrency: getEnvInt("WORKER_CONCURRENCY", 1),
	}

	return cfg
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}

func getEnvBool(key string, def bool) bool {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("WARN: %s=%q not a bool, using default %t", key, v, def)
		return def
	}
	return b
}
