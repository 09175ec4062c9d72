package payloadschema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed resolve_request.schema.json
var resolveRequestSchemaJSON string

//go:embed catalog.schema.json
var catalogSchemaJSON string

const (
	resolveRequestSchemaName = "resolve_request.schema.json"
	catalogSchemaName        = "catalog.schema.json"
)

// ResolveRequest is the body accepted by the batch resolve endpoint.
type ResolveRequest struct {
	URLs []string `json:"urls"`
}

type compiledSchema struct {
	once   sync.Once
	schema *jsonschema.Schema
	err    error
	source string
}

var schemas = map[string]*compiledSchema{
	resolveRequestSchemaName: {source: resolveRequestSchemaJSON},
	catalogSchemaName:        {source: catalogSchemaJSON},
}

// ErrMalformedJSON is wrapped by validators when the payload is not a single JSON value.
var ErrMalformedJSON = errors.New("malformed JSON")

func ValidateResolveRequest(payload []byte) (*ResolveRequest, error) {
	value, err := decodeStrictJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}

	schema, err := loadSchema(resolveRequestSchemaName)
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	if err := schema.Validate(value); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	normalized, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("normalize payload JSON: %w", err)
	}

	var req ResolveRequest
	if err := json.Unmarshal(normalized, &req); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	for i, raw := range req.URLs {
		req.URLs[i] = strings.TrimSpace(raw)
	}
	return &req, nil
}

// ValidateCatalogDocument checks a feed catalog, already converted to JSON,
// against the catalog schema and the URL rules the schema cannot express.
func ValidateCatalogDocument(payload []byte) error {
	value, err := decodeStrictJSON(payload)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}

	schema, err := loadSchema(catalogSchemaName)
	if err != nil {
		return fmt.Errorf("load schema: %w", err)
	}
	if err := schema.Validate(value); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	var doc struct {
		Categories []struct {
			Key   string   `json:"key"`
			Feeds []string `json:"feeds"`
		} `json:"categories"`
		RankSources []struct {
			URL string `json:"url"`
		} `json:"rank_sources"`
	}
	if err := json.Unmarshal(payload, &doc); err != nil {
		return fmt.Errorf("unmarshal catalog: %w", err)
	}

	for _, category := range doc.Categories {
		for i, feed := range category.Feeds {
			if err := validateFeedURL(fmt.Sprintf("categories[%s].feeds[%d]", category.Key, i), feed); err != nil {
				return err
			}
		}
	}
	for i, source := range doc.RankSources {
		if err := validateFeedURL(fmt.Sprintf("rank_sources[%d].url", i), source.URL); err != nil {
			return err
		}
	}
	return nil
}

func loadSchema(name string) (*jsonschema.Schema, error) {
	entry, ok := schemas[name]
	if !ok {
		return nil, fmt.Errorf("unknown schema %q", name)
	}

	entry.once.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		compiler.AssertFormat = true

		if err := compiler.AddResource(name, strings.NewReader(entry.source)); err != nil {
			entry.err = fmt.Errorf("add schema resource: %w", err)
			return
		}

		schema, err := compiler.Compile(name)
		if err != nil {
			entry.err = fmt.Errorf("compile schema: %w", err)
			return
		}
		entry.schema = schema
	})

	if entry.err != nil {
		return nil, entry.err
	}
	if entry.schema == nil {
		return nil, fmt.Errorf("schema not initialized")
	}
	return entry.schema, nil
}

func decodeStrictJSON(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("payload is empty")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("payload contains trailing content")
	}

	return value, nil
}

func validateFeedURL(fieldName, value string) error {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fmt.Errorf("%s must not be empty", fieldName)
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return fmt.Errorf("%s is not a valid URI: %w", fieldName, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must use http or https", fieldName)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s must be absolute", fieldName)
	}
	return nil
}
