package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"golang.org/x/sync/errgroup"

	"github.com/mayowa-kalejaiye/docstream/internal/core"
	"github.com/mayowa-kalejaiye/docstream/internal/models"
)

// SQSAPI is the slice of the SQS client the consumer needs.
type SQSAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// ingestMessage is the queue payload naming one document to process.
type ingestMessage struct {
	S3Bucket   string `json:"s3Bucket"`
	S3Key      string `json:"s3Key"`
	DocumentID string `json:"documentId"`
}

// QueueConsumerConfig holds construction parameters for the consumer.
type QueueConsumerConfig struct {
	Queue       SQSAPI
	QueueURL    string
	Objects     core.ObjectStore
	Processor   core.DocumentProcessor
	Statuses    core.StatusStore
	Logger      *slog.Logger
	Concurrency int
}

// QueueConsumer long-polls the ingest queue and processes exactly one
// document per message. Concurrency, if any, lives here; each document
// still runs through the pipeline sequentially and in isolation. A failed
// document is reported to the status store and its message deleted anyway,
// so a poisoned PDF cannot wedge the queue.
type QueueConsumer struct {
	queue       SQSAPI
	queueURL    string
	objects     core.ObjectStore
	processor   core.DocumentProcessor
	statuses    core.StatusStore
	logger      *slog.Logger
	concurrency int
}

func NewQueueConsumer(cfg QueueConsumerConfig) *QueueConsumer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	return &QueueConsumer{
		queue:       cfg.Queue,
		queueURL:    cfg.QueueURL,
		objects:     cfg.Objects,
		processor:   cfg.Processor,
		statuses:    cfg.Statuses,
		logger:      logger,
		concurrency: concurrency,
	}
}

// Run blocks until ctx is cancelled, consuming messages with the configured
// number of pollers.
func (c *QueueConsumer) Run(ctx context.Context) error {
	c.logger.Info("queue consumer starting", "queue_url", c.queueURL, "concurrency", c.concurrency)

	g, gctx := errgroup.WithContext(ctx)
	for i := 1; i <= c.concurrency; i++ {
		id := i
		g.Go(func() error {
			c.consumeLoop(gctx, id)
			return nil
		})
	}
	return g.Wait()
}

func (c *QueueConsumer) consumeLoop(ctx context.Context, id int) {
	logger := c.logger.With("poller", id)

	for {
		if ctx.Err() != nil {
			logger.Info("poller shutting down")
			return
		}

		out, err := c.queue.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(c.queueURL),
			MaxNumberOfMessages: 1,
			WaitTimeSeconds:     20,
		})
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("poller shutting down")
				return
			}
			logger.Error("receive message failed", "error", err)
			select {
			case <-time.After(5 * time.Second):
			case <-ctx.Done():
			}
			continue
		}

		for _, msg := range out.Messages {
			c.handleMessage(ctx, aws.ToString(msg.Body))

			// Delete regardless of outcome: reprocessing is triggered by
			// re-uploading, not by queue redelivery.
			if _, err := c.queue.DeleteMessage(ctx, &sqs.DeleteMessageInput{
				QueueUrl:      aws.String(c.queueURL),
				ReceiptHandle: msg.ReceiptHandle,
			}); err != nil {
				logger.Error("delete message failed", "error", err)
			}
		}
	}
}

// handleMessage processes one document end to end. Every failure path ends
// in a status update and a return, never a panic or a propagated error.
func (c *QueueConsumer) handleMessage(ctx context.Context, body string) {
	var msg ingestMessage
	if err := json.Unmarshal([]byte(body), &msg); err != nil {
		c.logger.Error("malformed queue message", "error", err)
		return
	}
	if msg.S3Bucket == "" || msg.S3Key == "" {
		c.logger.Error("queue message missing bucket or key", "body", body)
		return
	}

	logger := c.logger.With("document", msg.S3Key, "document_id", msg.DocumentID)
	logger.Info("processing document", "bucket", msg.S3Bucket)

	c.setStatus(ctx, msg.DocumentID, models.StatusIngesting, models.TokenUsage{}, "Document ingestion started")

	content, err := c.objects.GetFile(ctx, msg.S3Bucket, msg.S3Key)
	if err != nil {
		logger.Error("fetch document failed", "error", err)
		c.setStatus(ctx, msg.DocumentID, models.StatusError, models.TokenUsage{},
			fmt.Sprintf("Error processing document: %v", err))
		return
	}

	sourceURI := fmt.Sprintf("s3://%s/%s", msg.S3Bucket, msg.S3Key)
	indexed, usage := c.processor.ProcessDocument(ctx, content, msg.S3Key, sourceURI)

	logger.Info("document processed",
		"segments_indexed", indexed,
		"input_tokens", usage.InputTokens,
		"output_tokens", usage.OutputTokens,
	)
	c.setStatus(ctx, msg.DocumentID, models.StatusProcessed, usage,
		fmt.Sprintf("Document processed successfully. Indexed %d segments.", indexed))
}

// setStatus is best-effort: failures are logged, never propagated.
func (c *QueueConsumer) setStatus(ctx context.Context, documentID, status string, usage models.TokenUsage, message string) {
	if documentID == "" {
		return
	}
	if err := c.statuses.UpdateStatus(ctx, documentID, status, usage, message); err != nil {
		c.logger.Error("status update failed", "document_id", documentID, "status", status, "error", err)
	}
}
