package storage

const (
	// DefaultTableName is the DynamoDB table holding board collections
	DefaultTableName = "message-board"

	// AttrBoardID is the partition key attribute
	AttrBoardID = "BoardID"

	// DefaultBoardID is the partition key of the single board item
	DefaultBoardID = "default"
)

// TableSchema returns the DynamoDB table creation parameters
type TableSchema struct {
	TableName    string
	PartitionKey string
}

// GetTableSchema returns the schema configuration for the board table
func GetTableSchema(tableName string) TableSchema {
	if tableName == "" {
		tableName = DefaultTableName
	}
	return TableSchema{
		TableName:    tableName,
		PartitionKey: AttrBoardID,
	}
}
