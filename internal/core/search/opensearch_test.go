package search

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mayowa-kalejaiye/docstream/internal/models"
)

func testAwsConfig() aws.Config {
	return aws.Config{
		Region:      "us-west-2",
		Credentials: credentials.NewStaticCredentialsProvider("AKID", "SECRET", ""),
	}
}

func testDocs(n int) []models.IndexDocument {
	docs := make([]models.IndexDocument, n)
	for i := range docs {
		docs[i] = models.IndexDocument{
			Content:          "segment content",
			ContentEmbedding: []float32{0.1, 0.2},
			Metadata: models.IndexDocMeta{
				Source:  "s3://bucket/doc.pdf",
				DocID:   "doc.pdf",
				ChunkID: "doc.pdf_segment_1",
			},
		}
	}
	return docs
}

func TestIndexBatch_SendsSignedBulkRequest(t *testing.T) {
	var gotPath, gotContentType, gotAuth string
	var lines []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		gotAuth = r.Header.Get("Authorization")

		sc := bufio.NewScanner(r.Body)
		for sc.Scan() {
			lines = append(lines, sc.Text())
		}
		_, _ = io.WriteString(w, `{"took":5,"errors":false,"items":[]}`)
	}))
	defer srv.Close()

	client := NewOpenSearchClient(testAwsConfig(), srv.URL, "kb-index", 1024, nil)
	err := client.IndexBatch(context.Background(), testDocs(2))
	require.NoError(t, err)

	assert.Equal(t, "/_bulk", gotPath)
	assert.Equal(t, "application/x-ndjson", gotContentType)
	assert.Contains(t, gotAuth, "AWS4-HMAC-SHA256")

	// Action line plus document body per document.
	require.Len(t, lines, 4)
	var action struct {
		Index struct {
			Name string `json:"_index"`
		} `json:"index"`
	}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &action))
	assert.Equal(t, "kb-index", action.Index.Name)

	var doc models.IndexDocument
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &doc))
	assert.Equal(t, "segment content", doc.Content)
	assert.Equal(t, "doc.pdf_segment_1", doc.Metadata.ChunkID)
}

func TestIndexBatch_StatusErrorFailsBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewOpenSearchClient(testAwsConfig(), srv.URL, "kb-index", 1024, nil)
	err := client.IndexBatch(context.Background(), testDocs(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestIndexBatch_ItemErrorsFailBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"took":5,"errors":true,"items":[{"index":{"error":{"type":"mapper_parsing_exception"}}}]}`)
	}))
	defer srv.Close()

	client := NewOpenSearchClient(testAwsConfig(), srv.URL, "kb-index", 1024, nil)
	err := client.IndexBatch(context.Background(), testDocs(1))
	require.Error(t, err)
}

func TestIndexBatch_TransportErrorFailsBatch(t *testing.T) {
	client := NewOpenSearchClient(testAwsConfig(), "http://127.0.0.1:1", "kb-index", 1024, nil)
	err := client.IndexBatch(context.Background(), testDocs(1))
	require.Error(t, err)
}

func TestIndexBatch_EmptyBatchIsNoop(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an empty batch")
	}))
	defer srv.Close()

	client := NewOpenSearchClient(testAwsConfig(), srv.URL, "kb-index", 1024, nil)
	require.NoError(t, client.IndexBatch(context.Background(), nil))
}

func TestEnsureIndex_CreatesMissingIndex(t *testing.T) {
	var putBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodHead:
			w.WriteHeader(http.StatusNotFound)
		case http.MethodPut:
			require.Equal(t, "/kb-index", r.URL.Path)
			putBody, _ = io.ReadAll(r.Body)
			_, _ = io.WriteString(w, `{"acknowledged":true}`)
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	}))
	defer srv.Close()

	client := NewOpenSearchClient(testAwsConfig(), srv.URL, "kb-index", 1024, nil)
	require.NoError(t, client.EnsureIndex(context.Background()))

	var mapping map[string]any
	require.NoError(t, json.Unmarshal(putBody, &mapping))
	assert.Contains(t, mapping, "settings")

	body := string(putBody)
	assert.True(t, strings.Contains(body, `"knn_vector"`), "mapping missing knn_vector field")
	assert.True(t, strings.Contains(body, `"dimension":1024`), "mapping missing embedding dimension")
}

func TestEnsureIndex_ExistingIndexNotRecreated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("unexpected method %s", r.Method)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewOpenSearchClient(testAwsConfig(), srv.URL, "kb-index", 1024, nil)
	require.NoError(t, client.EnsureIndex(context.Background()))
}
