package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	appconfig "github.com/epw80/message-board/pkg/config"
	"github.com/epw80/message-board/pkg/message"
)

// DynamoDBAPI is the subset of the DynamoDB client used by the store
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// maxItemSize is the DynamoDB per-item limit. The whole board lives in one
// item, so it also caps the size of the collection.
const maxItemSize = 400 * 1024

// ErrItemTooLarge is returned when the collection no longer fits in one item
var ErrItemTooLarge = errors.New("board exceeds the DynamoDB 400 KB item limit")

// boardItem is the single item holding a board's whole collection
type boardItem struct {
	BoardID   string            `dynamodbav:"BoardID"`
	Messages  []message.Message `dynamodbav:"Messages"`
	UpdatedAt time.Time         `dynamodbav:"UpdatedAt"`
}

// DynamoDBStore keeps the collection as one DynamoDB item
type DynamoDBStore struct {
	client  DynamoDBAPI
	table   string
	boardID string
	logger  *slog.Logger
}

// NewDynamoDBClient builds a DynamoDB client from the application config.
// A configured endpoint (DynamoDB Local) uses static credentials; without one
// the client talks to AWS through the default credential chain.
func NewDynamoDBClient(ctx context.Context, cfg *appconfig.Config) (*dynamodb.Client, error) {
	var awsCfg aws.Config
	var err error

	if cfg.DynamoDBEndpoint != "" {
		awsCfg, err = config.LoadDefaultConfig(ctx,
			config.WithRegion(cfg.DynamoDBRegion),
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				cfg.AWSAccessKey,
				cfg.AWSSecretKey,
				"",
			)),
		)
	} else {
		// Use default AWS credentials chain for production
		awsCfg, err = config.LoadDefaultConfig(ctx,
			config.WithRegion(cfg.DynamoDBRegion),
		)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.DynamoDBEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoDBEndpoint)
		}
	})
	return client, nil
}

// NewDynamoDBStore verifies the table and seeds an empty board item when
// none exists yet
func NewDynamoDBStore(ctx context.Context, client DynamoDBAPI, table string, logger *slog.Logger) (*DynamoDBStore, error) {
	s := &DynamoDBStore{
		client:  client,
		table:   GetTableSchema(table).TableName,
		boardID: DefaultBoardID,
		logger:  logger,
	}

	if err := s.HealthCheck(ctx); err != nil {
		return nil, err
	}
	if err := s.init(ctx); err != nil {
		return nil, err
	}

	logger.Info("DynamoDB store initialized",
		slog.String("table", s.table),
		slog.String("boardId", s.boardID))

	return s, nil
}

func (s *DynamoDBStore) init(ctx context.Context) error {
	item, err := s.marshalItem([]message.Message{})
	if err != nil {
		return err
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(#boardId)"),
		ExpressionAttributeNames: map[string]string{
			"#boardId": AttrBoardID,
		},
	})

	var exists *types.ConditionalCheckFailedException
	if errors.As(err, &exists) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to seed board item: %w", err)
	}

	s.logger.Info("Data file created",
		slog.String("table", s.table),
		slog.String("boardId", s.boardID))
	return nil
}

func (s *DynamoDBStore) key() map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		AttrBoardID: &types.AttributeValueMemberS{Value: s.boardID},
	}
}

func (s *DynamoDBStore) marshalItem(msgs []message.Message) (map[string]types.AttributeValue, error) {
	if msgs == nil {
		msgs = []message.Message{}
	}

	item, err := attributevalue.MarshalMap(boardItem{
		BoardID:   s.boardID,
		Messages:  msgs,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal board item: %w", err)
	}
	return item, nil
}

// ReadAll fetches the board item with a consistent read
func (s *DynamoDBStore) ReadAll(ctx context.Context) ([]message.Message, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            s.key(),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get board item: %w", err)
	}

	if len(out.Item) == 0 {
		return []message.Message{}, nil
	}

	var item boardItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal board item: %w", err)
	}
	if item.Messages == nil {
		item.Messages = []message.Message{}
	}

	s.logger.Debug("retrieved board from DynamoDB",
		slog.String("boardId", s.boardID),
		slog.Int("count", len(item.Messages)))

	return item.Messages, nil
}

// WriteAll replaces the board item
func (s *DynamoDBStore) WriteAll(ctx context.Context, msgs []message.Message) error {
	item, err := s.marshalItem(msgs)
	if err != nil {
		return err
	}

	if size := itemSize(item); size > maxItemSize {
		s.logger.Error("board item too large for DynamoDB",
			slog.String("boardId", s.boardID),
			slog.Int("count", len(msgs)),
			slog.Int("size", size),
			slog.Int("limit", maxItemSize))
		return fmt.Errorf("%w: %d bytes for %d messages", ErrItemTooLarge, size, len(msgs))
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put board item: %w", err)
	}
	return nil
}

// itemSize approximates the size DynamoDB charges against the item limit:
// attribute names plus values, with a small overhead per list or map.
func itemSize(item map[string]types.AttributeValue) int {
	size := 0
	for name, av := range item {
		size += len(name) + attributeSize(av)
	}
	return size
}

func attributeSize(av types.AttributeValue) int {
	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		return len(v.Value)
	case *types.AttributeValueMemberN:
		return len(v.Value)
	case *types.AttributeValueMemberB:
		return len(v.Value)
	case *types.AttributeValueMemberBOOL, *types.AttributeValueMemberNULL:
		return 1
	case *types.AttributeValueMemberL:
		size := 3
		for _, e := range v.Value {
			size += 1 + attributeSize(e)
		}
		return size
	case *types.AttributeValueMemberM:
		size := 3
		for name, e := range v.Value {
			size += 1 + len(name) + attributeSize(e)
		}
		return size
	case *types.AttributeValueMemberSS:
		size := 0
		for _, e := range v.Value {
			size += len(e)
		}
		return size
	default:
		return 0
	}
}

// HealthCheck verifies DynamoDB is accessible
func (s *DynamoDBStore) HealthCheck(ctx context.Context) error {
	_, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(s.table),
	})
	if err != nil {
		return fmt.Errorf("DynamoDB health check failed: %w", err)
	}
	return nil
}

// Close releases resources (DynamoDB client doesn't need explicit cleanup)
func (s *DynamoDBStore) Close() error {
	s.logger.Info("DynamoDB store closed")
	return nil
}
