package statusstore

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/mayowa-kalejaiye/docstream/internal/core"
	"github.com/mayowa-kalejaiye/docstream/internal/models"
)

// DynamoStatusStore records per-document processing status in the document
// table, where the polling API reads it.
type DynamoStatusStore struct {
	client *dynamodb.Client
	table  string
}

func NewDynamoStatusStore(awsCfg aws.Config, table string) *DynamoStatusStore {
	return &DynamoStatusStore{
		client: dynamodb.NewFromConfig(awsCfg),
		table:  table,
	}
}

// UpdateStatus upserts status, lastUpdated and tokenUsage on the document
// record, plus statusMessage when message is non-empty.
func (s *DynamoStatusStore) UpdateStatus(ctx context.Context, documentID, status string, usage models.TokenUsage, message string) error {
	usageAttr, err := attributevalue.Marshal(usage)
	if err != nil {
		return fmt.Errorf("marshal token usage: %w", err)
	}

	update := "SET #status = :status, lastUpdated = :time, #tokenUsage = :tokenUsage"
	names := map[string]string{
		"#status":     "status",
		"#tokenUsage": "tokenUsage",
	}
	values := map[string]types.AttributeValue{
		":status":     &types.AttributeValueMemberS{Value: status},
		":time":       &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
		":tokenUsage": usageAttr,
	}
	if message != "" {
		update += ", statusMessage = :message"
		values[":message"] = &types.AttributeValueMemberS{Value: message}
	}

	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.table),
		Key:                       map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: documentID}},
		UpdateExpression:          aws.String(update),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	if err != nil {
		return fmt.Errorf("update document %s status: %w", documentID, err)
	}
	return nil
}

var _ core.StatusStore = (*DynamoStatusStore)(nil)
