package models

// Document processing statuses as written to the status store.
const (
	StatusIngesting = "INGESTING"
	StatusProcessed = "PROCESSED"
	StatusError     = "ERROR"
)

// Segment is one bounded span of document text, the unit of retrieval.
// Positions are 1-based and contiguous within a document.
type Segment struct {
	ID       string `json:"id"`
	Content  string `json:"content"`
	Position int    `json:"position"`

	// EnhancedContent is set by the context enhancer for every segment,
	// falling back to Content when the model call fails.
	EnhancedContent string     `json:"enhanced_content,omitempty"`
	TokenUsage      TokenUsage `json:"token_usage,omitempty"`
}

// IndexedContent returns the text that should be embedded and indexed.
func (s *Segment) IndexedContent() string {
	if s.EnhancedContent != "" {
		return s.EnhancedContent
	}
	return s.Content
}

// TokenUsage accounts for one or more generative model calls.
// The zero value is the identity for Add.
type TokenUsage struct {
	InputTokens           int `json:"input_tokens" dynamodbav:"input_tokens"`
	OutputTokens          int `json:"output_tokens" dynamodbav:"output_tokens"`
	CacheReadInputTokens  int `json:"cache_read_input_tokens" dynamodbav:"cache_read_input_tokens"`
	CacheWriteInputTokens int `json:"cache_write_input_tokens" dynamodbav:"cache_write_input_tokens"`
}

// Add returns the field-wise sum of u and other.
func (u TokenUsage) Add(other TokenUsage) TokenUsage {
	return TokenUsage{
		InputTokens:           u.InputTokens + other.InputTokens,
		OutputTokens:          u.OutputTokens + other.OutputTokens,
		CacheReadInputTokens:  u.CacheReadInputTokens + other.CacheReadInputTokens,
		CacheWriteInputTokens: u.CacheWriteInputTokens + other.CacheWriteInputTokens,
	}
}

// ModelReply is the text and usage returned by one generative model call.
type ModelReply struct {
	Text  string
	Usage TokenUsage
}

// IndexDocument is the wire shape written to the search collection.
// Derived 1:1 from a segment at index time; not mutated afterwards.
type IndexDocument struct {
	Content          string       `json:"content"`
	ContentEmbedding []float32    `json:"content_embedding"`
	Metadata         IndexDocMeta `json:"metadata"`
}

// IndexDocMeta identifies where an indexed segment came from.
type IndexDocMeta struct {
	Source    string `json:"source"`
	DocID     string `json:"doc_id"`
	ChunkID   string `json:"chunk_id"`
	Timestamp string `json:"timestamp"`
}

// RunTotals aggregates a sequential run over a whole collection.
type RunTotals struct {
	FilesProcessed  int        `json:"filesProcessed"`
	SegmentsIndexed int        `json:"segmentsIndexed"`
	TokenUsage      TokenUsage `json:"tokenUsage"`
}
