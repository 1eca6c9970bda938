package scanner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/rs/zerolog"
)

// TableStore is the durable row store the scanner reconciles against.
// IsNotFound classifies provider errors so the upsert logic never has to
// inspect provider-specific error text itself.
type TableStore interface {
	EnsureTable(ctx context.Context) error
	UpdateEntity(ctx context.Context, item TopologyItem) error
	InsertEntity(ctx context.Context, item TopologyItem) error
	IsNotFound(err error) bool
}

// AzureTableStore implements TableStore against Azure Table Storage.
type AzureTableStore struct {
	service *aztables.ServiceClient
	client  *aztables.Client
	table   string
	logger  zerolog.Logger
}

// NewAzureTableStore creates a store for the given table name. The table
// is not resolved until EnsureTable is called.
func NewAzureTableStore(service *aztables.ServiceClient, table string, logger zerolog.Logger) *AzureTableStore {
	return &AzureTableStore{
		service: service,
		client:  service.NewClient(table),
		table:   table,
		logger:  logger,
	}
}

// EnsureTable creates the table if it does not exist. A concurrent create
// racing ahead of us surfaces as TableAlreadyExists and counts as success.
func (s *AzureTableStore) EnsureTable(ctx context.Context) error {
	_, err := s.service.CreateTable(ctx, s.table, nil)
	if err == nil {
		s.logger.Info().Str("table", s.table).Msg("table created")
		return nil
	}
	if isTableAlreadyExists(err) {
		s.logger.Debug().Str("table", s.table).Msg("table exists")
		return nil
	}
	return fmt.Errorf("create table %s: %w", s.table, err)
}

// UpdateEntity replaces the entity at the item's key. Fails with a
// not-found error (per IsNotFound) when the entity does not exist yet.
func (s *AzureTableStore) UpdateEntity(ctx context.Context, item TopologyItem) error {
	body, err := marshalEntity(item)
	if err != nil {
		return err
	}
	_, err = s.client.UpdateEntity(ctx, body, &aztables.UpdateEntityOptions{
		UpdateMode: aztables.UpdateModeReplace,
	})
	return err
}

// InsertEntity creates the entity at the item's key.
func (s *AzureTableStore) InsertEntity(ctx context.Context, item TopologyItem) error {
	body, err := marshalEntity(item)
	if err != nil {
		return err
	}
	_, err = s.client.AddEntity(ctx, body, nil)
	return err
}

// IsNotFound reports whether err signals that the addressed table or
// entity does not exist.
func (s *AzureTableStore) IsNotFound(err error) bool {
	return isNotFound(err)
}

func marshalEntity(item TopologyItem) ([]byte, error) {
	entity := aztables.EDMEntity{
		Entity: aztables.Entity{
			PartitionKey: item.PartitionKey,
			RowKey:       item.RowKey,
		},
		Properties: map[string]any{
			"kind":          string(item.Kind),
			"name":          item.Name,
			"addressPrefix": item.AddressPrefix,
			"addressSpace":  item.AddressSpace,
			"resourceGroup": item.ResourceGroup,
			"location":      item.Location,
			"observedAt":    item.ObservedAt.UTC().Format(time.RFC3339),
		},
	}
	if item.ParentName != "" {
		entity.Properties["parentName"] = item.ParentName
	}
	if item.SourceID != "" {
		entity.Properties["sourceId"] = item.SourceID
	}
	body, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("marshal entity %s: %w", item.Key(), err)
	}
	return body, nil
}

// Storage error codes as returned in the OData error body. Matched via
// the typed *azcore.ResponseError, never by message text.
const (
	codeResourceNotFound   = "ResourceNotFound"
	codeEntityNotFound     = "EntityNotFound"
	codeTableNotFound      = "TableNotFound"
	codeTableAlreadyExists = "TableAlreadyExists"
)

func isNotFound(err error) bool {
	var respErr *azcore.ResponseError
	if !errors.As(err, &respErr) {
		return false
	}
	switch respErr.ErrorCode {
	case codeResourceNotFound, codeEntityNotFound, codeTableNotFound:
		return true
	}
	return respErr.StatusCode == http.StatusNotFound
}

func isTableAlreadyExists(err error) bool {
	var respErr *azcore.ResponseError
	if !errors.As(err, &respErr) {
		return false
	}
	return respErr.ErrorCode == codeTableAlreadyExists || respErr.StatusCode == http.StatusConflict
}
