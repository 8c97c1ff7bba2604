package config

import "testing"

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := LoadConfig()

	if cfg.SegmentSize != 2000 {
		t.Errorf("expected default segment size 2000, got %d", cfg.SegmentSize)
	}
	if cfg.BatchSize != 20 {
		t.Errorf("expected default batch size 20, got %d", cfg.BatchSize)
	}
	if !cfg.EnableContext {
		t.Error("context enhancement should default to enabled")
	}
	if cfg.ModelProvider != "bedrock" {
		t.Errorf("expected default provider bedrock, got %q", cfg.ModelProvider)
	}
	if cfg.IndexBackend != "opensearch" {
		t.Errorf("expected default backend opensearch, got %q", cfg.IndexBackend)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("SEGMENT_SIZE", "1000")
	t.Setenv("ENABLE_CONTEXT", "false")
	t.Setenv("CR_INDEX_NAME", "my-index")

	cfg := LoadConfig()

	if cfg.SegmentSize != 1000 {
		t.Errorf("expected segment size 1000, got %d", cfg.SegmentSize)
	}
	if cfg.EnableContext {
		t.Error("expected context enhancement disabled")
	}
	if cfg.IndexName != "my-index" {
		t.Errorf("expected index name my-index, got %q", cfg.IndexName)
	}
}

func TestLoadConfig_BadIntFallsBack(t *testing.T) {
	t.Setenv("INDEX_BATCH_SIZE", "lots")

	if cfg := LoadConfig(); cfg.BatchSize != 20 {
		t.Errorf("expected fallback batch size 20, got %d", cfg.BatchSize)
	}
}
