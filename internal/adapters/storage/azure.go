package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
)

// Error codes returned by the table service
const (
	azureTableNotFound       = "TableNotFound"
	azureTableAlreadyExists  = "TableAlreadyExists"
	azureEntityAlreadyExists = "EntityAlreadyExists"
)

// Reserved property names of the table service wire format
const (
	azurePartitionKey = "PartitionKey"
	azureRowKey       = "RowKey"
	azureTimestamp    = "Timestamp"
	azureETag         = "odata.etag"
)

// AzureTableClient implements TableClient on top of Azure Table Storage
type AzureTableClient struct {
	client *aztables.Client
	name   string
}

// NewAzureTableClient creates a client for the named table from a storage account connection string.
// Retries and timeouts are those of the SDK pipeline.
func NewAzureTableClient(connectionString, tableName string) (*AzureTableClient, error) {
	if connectionString == "" {
		return nil, fmt.Errorf("connection string is required")
	}
	if tableName == "" {
		return nil, fmt.Errorf("table name is required")
	}

	service, err := aztables.NewServiceClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create table service client: %w", err)
	}

	return &AzureTableClient{
		client: service.NewClient(tableName),
		name:   tableName,
	}, nil
}

// TableName implements TableClient.TableName
func (a *AzureTableClient) TableName() string {
	return a.name
}

// CreateTable implements TableClient.CreateTable
func (a *AzureTableClient) CreateTable(ctx context.Context) error {
	_, err := a.client.CreateTable(ctx, nil)
	if err == nil {
		return nil
	}

	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) && respErr.ErrorCode == azureTableAlreadyExists {
		return nil
	}
	return translateAzureError("CreateTable", a.name, "", err)
}

// GetEntity implements TableClient.GetEntity
func (a *AzureTableClient) GetEntity(ctx context.Context, partitionKey, rowKey string) (*Entity, error) {
	if partitionKey == "" || rowKey == "" {
		return nil, NewStorageError("GetEntity", a.name, rowKey, ErrInvalidKey)
	}

	resp, err := a.client.GetEntity(ctx, partitionKey, rowKey, nil)
	if err != nil {
		return nil, translateAzureError("GetEntity", a.name, rowKey, err)
	}

	entity, err := decodeAzureEntity(resp.Value)
	if err != nil {
		return nil, NewStorageError("GetEntity", a.name, rowKey, err)
	}
	return entity, nil
}

// ListEntities implements TableClient.ListEntities.
// Pages are fetched from the service only as the sequence is consumed.
func (a *AzureTableClient) ListEntities(ctx context.Context) iter.Seq2[*Entity, error] {
	return func(yield func(*Entity, error) bool) {
		pager := a.client.NewListEntitiesPager(nil)
		for pager.More() {
			page, err := pager.NextPage(ctx)
			if err != nil {
				yield(nil, translateAzureError("ListEntities", a.name, "", err))
				return
			}

			for _, raw := range page.Entities {
				entity, err := decodeAzureEntity(raw)
				if err != nil {
					yield(nil, NewStorageError("ListEntities", a.name, "", err))
					return
				}
				if !yield(entity, nil) {
					return
				}
			}
		}
	}
}

// CreateEntity implements TableClient.CreateEntity
func (a *AzureTableClient) CreateEntity(ctx context.Context, entity *Entity) error {
	payload, err := encodeAzureEntity(entity)
	if err != nil {
		return NewStorageError("CreateEntity", a.name, "", err)
	}

	if _, err := a.client.AddEntity(ctx, payload, nil); err != nil {
		return translateAzureError("CreateEntity", a.name, entity.RowKey, err)
	}
	return nil
}

// UpdateEntity implements TableClient.UpdateEntity.
// The row is replaced unconditionally but must already exist.
func (a *AzureTableClient) UpdateEntity(ctx context.Context, entity *Entity) error {
	payload, err := encodeAzureEntity(entity)
	if err != nil {
		return NewStorageError("UpdateEntity", a.name, "", err)
	}

	etag := azcore.ETagAny
	_, err = a.client.UpdateEntity(ctx, payload, &aztables.UpdateEntityOptions{
		IfMatch:    &etag,
		UpdateMode: aztables.UpdateModeReplace,
	})
	if err != nil {
		return translateAzureError("UpdateEntity", a.name, entity.RowKey, err)
	}
	return nil
}

// DeleteEntity implements TableClient.DeleteEntity
func (a *AzureTableClient) DeleteEntity(ctx context.Context, partitionKey, rowKey string) error {
	if partitionKey == "" || rowKey == "" {
		return NewStorageError("DeleteEntity", a.name, rowKey, ErrInvalidKey)
	}

	etag := azcore.ETagAny
	_, err := a.client.DeleteEntity(ctx, partitionKey, rowKey, &aztables.DeleteEntityOptions{IfMatch: &etag})
	if err != nil {
		return translateAzureError("DeleteEntity", a.name, rowKey, err)
	}
	return nil
}

// Close implements TableClient.Close
func (a *AzureTableClient) Close() error {
	return nil
}

// translateAzureError maps service responses onto the package sentinels.
// The original error stays in the chain so callers can still inspect the response.
func translateAzureError(op, table, key string, err error) error {
	var respErr *azcore.ResponseError
	if !errors.As(err, &respErr) {
		return NewStorageError(op, table, key, err)
	}

	switch {
	case respErr.StatusCode == http.StatusNotFound && respErr.ErrorCode == azureTableNotFound:
		return NewStorageError(op, table, key, errors.Join(ErrTableNotFound, err))
	case respErr.StatusCode == http.StatusNotFound:
		return NewStorageError(op, table, key, errors.Join(ErrEntityNotFound, err))
	case respErr.StatusCode == http.StatusConflict && respErr.ErrorCode == azureEntityAlreadyExists:
		return NewStorageError(op, table, key, errors.Join(ErrEntityAlreadyExists, err))
	case respErr.StatusCode == http.StatusTooManyRequests || respErr.StatusCode >= http.StatusInternalServerError:
		return NewStorageError(op, table, key, errors.Join(ErrStorageUnavailable, err))
	default:
		return NewStorageError(op, table, key, err)
	}
}

// encodeAzureEntity renders an entity in the table service JSON format
func encodeAzureEntity(entity *Entity) ([]byte, error) {
	if entity == nil {
		return nil, ErrInvalidEntity
	}
	if entity.PartitionKey == "" || entity.RowKey == "" {
		return nil, ErrInvalidKey
	}

	doc := make(map[string]any, len(entity.Properties)+2)
	for name, value := range entity.Properties {
		doc[name] = value
	}
	doc[azurePartitionKey] = entity.PartitionKey
	doc[azureRowKey] = entity.RowKey

	return json.Marshal(doc)
}

// decodeAzureEntity parses a table service JSON entity, dropping OData annotations
func decodeAzureEntity(raw []byte) (*Entity, error) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntity, err)
	}

	entity := &Entity{Properties: make(map[string]any, len(doc))}
	for name, value := range doc {
		switch {
		case name == azurePartitionKey:
			entity.PartitionKey, _ = value.(string)
		case name == azureRowKey:
			entity.RowKey, _ = value.(string)
		case name == azureTimestamp:
			if s, ok := value.(string); ok {
				entity.Timestamp, _ = time.Parse(time.RFC3339Nano, s)
			}
		case name == azureETag:
			entity.ETag, _ = value.(string)
		case strings.HasPrefix(name, "odata."), strings.Contains(name, "@odata."):
			// metadata annotations
		default:
			entity.Properties[name] = value
		}
	}

	return entity, nil
}
