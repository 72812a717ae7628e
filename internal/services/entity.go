package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/shopspring/decimal"
)

// entity is a decoded Table Storage row.
type entity map[string]any

func decodeEntity(raw []byte) (entity, error) {
	var e entity
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("failed to decode entity: %w", err)
	}
	return e, nil
}

func (e entity) str(key string) string {
	if v, ok := e[key].(string); ok {
		return v
	}
	return ""
}

// dec reads amounts written either as strings (current rows) or as doubles (older rows).
func (e entity) dec(key string) decimal.Decimal {
	switch v := e[key].(type) {
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero
		}
		return d
	case float64:
		return decimal.NewFromFloat(v)
	}
	return decimal.Zero
}

func (e entity) boolean(key string) bool {
	switch v := e[key].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true")
	}
	return false
}

// raw returns a string property as JSON, or nil when absent.
func (e entity) raw(key string) json.RawMessage {
	if s := e.str(key); s != "" {
		return json.RawMessage(s)
	}
	return nil
}

// partitionFilter builds an OData filter on PartitionKey.
func partitionFilter(partition string) string {
	return fmt.Sprintf("PartitionKey eq '%s'", strings.ReplaceAll(partition, "'", "''"))
}

// isNotFound reports whether err is a 404 from the storage service.
func isNotFound(err error) bool {
	var azErr *azcore.ResponseError
	return errors.As(err, &azErr) && azErr.StatusCode == http.StatusNotFound
}

// isAlreadyExists reports whether err is a create conflict for an existing resource.
func isAlreadyExists(err error, code string) bool {
	var azErr *azcore.ResponseError
	return errors.As(err, &azErr) && azErr.ErrorCode == code
}
