package search

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"

	"github.com/mayowa-kalejaiye/docstream/internal/core"
	"github.com/mayowa-kalejaiye/docstream/internal/models"
)

// signingService is the SigV4 service name for OpenSearch Serverless.
const signingService = "aoss"

// OpenSearchClient writes to an OpenSearch Serverless collection over its
// HTTP API with SigV4-signed requests.
type OpenSearchClient struct {
	endpoint  string
	indexName string
	region    string
	embedDim  int
	creds     aws.CredentialsProvider
	signer    *v4.Signer
	http      *http.Client
	logger    *slog.Logger
}

func NewOpenSearchClient(awsCfg aws.Config, endpoint, indexName string, embedDim int, logger *slog.Logger) *OpenSearchClient {
	if logger == nil {
		logger = slog.Default()
	}
	if embedDim <= 0 {
		embedDim = 1024
	}
	return &OpenSearchClient{
		endpoint:  strings.TrimRight(endpoint, "/"),
		indexName: indexName,
		region:    awsCfg.Region,
		embedDim:  embedDim,
		creds:     awsCfg.Credentials,
		signer:    v4.NewSigner(),
		http:      &http.Client{Timeout: 2 * time.Minute},
		logger:    logger,
	}
}

// IndexBatch writes all documents in one newline-delimited _bulk request:
// an action line naming the index, then the document body, per document.
// A response status >= 400 or an item-level error flag fails the whole
// batch; the error never carries partial success.
func (c *OpenSearchClient) IndexBatch(ctx context.Context, docs []models.IndexDocument) error {
	if len(docs) == 0 {
		return nil
	}

	var body bytes.Buffer
	action, _ := json.Marshal(map[string]any{"index": map[string]string{"_index": c.indexName}})
	for i := range docs {
		doc, err := json.Marshal(&docs[i])
		if err != nil {
			return fmt.Errorf("marshal bulk document: %w", err)
		}
		body.Write(action)
		body.WriteByte('\n')
		body.Write(doc)
		body.WriteByte('\n')
	}

	resp, err := c.do(ctx, http.MethodPost, "/_bulk", "application/x-ndjson", body.Bytes())
	if err != nil {
		return fmt.Errorf("bulk request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode >= 400 {
		c.logger.Error("bulk indexing error", "status", resp.StatusCode, "body", string(respBody))
		return fmt.Errorf("bulk indexing failed with status code %d", resp.StatusCode)
	}

	var result struct {
		Errors bool `json:"errors"`
	}
	if err := json.Unmarshal(respBody, &result); err == nil && result.Errors {
		c.logger.Error("bulk indexing item errors", "body", string(respBody))
		return fmt.Errorf("bulk indexing reported item errors")
	}

	c.logger.Info("indexed documents", "count", len(docs), "index", c.indexName)
	return nil
}

// EnsureIndex creates the knn index with its mapping if it does not exist.
func (c *OpenSearchClient) EnsureIndex(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodHead, "/"+c.indexName, "", nil)
	if err == nil {
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			c.logger.Info("index already exists", "index", c.indexName)
			return nil
		}
	} else {
		c.logger.Error("index existence check failed", "index", c.indexName, "error", err)
	}

	mapping := map[string]any{
		"settings": map[string]any{
			"index.knn":                      true,
			"index.knn.algo_param.ef_search": 512,
		},
		"mappings": map[string]any{
			"properties": map[string]any{
				"content": map[string]any{
					"type":     "text",
					"analyzer": "standard",
				},
				"content_embedding": map[string]any{
					"type":      "knn_vector",
					"dimension": c.embedDim,
					"method": map[string]any{
						"engine": "faiss",
						"name":   "hnsw",
						"parameters": map[string]any{
							"ef_construction": 512,
							"m":               16,
						},
						"space_type": "l2",
					},
				},
			},
		},
	}
	body, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("marshal index mapping: %w", err)
	}

	resp, err = c.do(ctx, http.MethodPut, "/"+c.indexName, "application/json", body)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode >= 400 {
		return fmt.Errorf("create index %s: status %d: %s", c.indexName, resp.StatusCode, string(respBody))
	}

	c.logger.Info("created index", "index", c.indexName)
	return nil
}

// do signs and issues one request against the collection endpoint.
func (c *OpenSearchClient) do(ctx context.Context, method, path, contentType string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	hash := sha256.Sum256(body)
	creds, err := c.creds.Retrieve(ctx)
	if err != nil {
		return nil, fmt.Errorf("retrieve credentials: %w", err)
	}
	if err := c.signer.SignHTTP(ctx, creds, req, hex.EncodeToString(hash[:]), signingService, c.region, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("sign request: %w", err)
	}

	return c.http.Do(req)
}

var _ core.Indexer = (*OpenSearchClient)(nil)
