package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	appconfig "github.com/epw80/message-board/pkg/config"
	"github.com/epw80/message-board/pkg/logging"
	"github.com/epw80/message-board/pkg/storage"
	"github.com/joho/godotenv"
)

const tableWaitTimeout = 60 * time.Second

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(os.Stdout, cfg.LogLevel)

	if err := run(context.Background(), cfg, logger); err != nil {
		logger.Error("DynamoDB initialization failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *appconfig.Config, logger *slog.Logger) error {
	logger.Info("Initializing DynamoDB table",
		slog.String("endpoint", cfg.DynamoDBEndpoint),
		slog.String("region", cfg.DynamoDBRegion))

	client, err := storage.NewDynamoDBClient(ctx, cfg)
	if err != nil {
		return err
	}

	schema := storage.GetTableSchema(cfg.DynamoDBTable)

	// An existing table already holds a board; leave it alone
	_, err = client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(schema.TableName),
	})
	if err == nil {
		logger.Info("Table already exists", slog.String("table", schema.TableName))
		return nil
	}
	var notFound *types.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return fmt.Errorf("failed to describe table: %w", err)
	}

	logger.Info("Creating DynamoDB table", slog.String("table", schema.TableName))

	_, err = client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(schema.TableName),
		AttributeDefinitions: []types.AttributeDefinition{
			{
				AttributeName: aws.String(schema.PartitionKey),
				AttributeType: types.ScalarAttributeTypeS,
			},
		},
		KeySchema: []types.KeySchemaElement{
			{
				AttributeName: aws.String(schema.PartitionKey),
				KeyType:       types.KeyTypeHash,
			},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	waiter := dynamodb.NewTableExistsWaiter(client)
	err = waiter.Wait(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(schema.TableName),
	}, tableWaitTimeout)
	if err != nil {
		return fmt.Errorf("failed waiting for table creation: %w", err)
	}

	output, err := client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(schema.TableName),
	})
	if err != nil {
		return fmt.Errorf("failed to describe table: %w", err)
	}

	logger.Info("Table created successfully",
		slog.String("table", aws.ToString(output.Table.TableName)),
		slog.String("status", string(output.Table.TableStatus)),
		slog.String("partitionKey", schema.PartitionKey))

	return nil
}
