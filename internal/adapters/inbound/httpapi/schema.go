package httpapi

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/sufield/todoapi/internal/domain"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const schemaBaseURL = "https://todoapi.local/schemas/"

// Request body schemas.
const (
	schemaList     = "list.json"
	schemaItem     = "item.json"
	schemaDueDate  = "due_date.json"
	schemaPriority = "priority.json"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

var errMalformed = errors.New("malformed request body")

// schemaSet holds the compiled request schemas by file name.
type schemaSet map[string]*jsonschema.Schema

func compileSchemas() (schemaSet, error) {
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return nil, fmt.Errorf("read embedded schemas: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	for _, e := range entries {
		data, err := schemaFS.ReadFile(path.Join("schemas", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", e.Name(), err)
		}
		if err := compiler.AddResource(schemaBaseURL+e.Name(), bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", e.Name(), err)
		}
	}

	set := make(schemaSet)
	for _, name := range []string{schemaList, schemaItem, schemaDueDate, schemaPriority} {
		s, err := compiler.Compile(schemaBaseURL + name)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", name, err)
		}
		set[name] = s
	}
	return set, nil
}

// validate reads body, checks it against the named schema and returns the
// raw bytes for decoding. Unparseable input yields errMalformed; schema
// violations yield a *domain.ValidationError.
func (s schemaSet) validate(name string, body io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformed, err)
	}
	if len(data) > maxBodyBytes {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", errMalformed, maxBodyBytes)
	}

	var doc any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformed, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after JSON value", errMalformed)
	}

	schema, ok := s[name]
	if !ok {
		return nil, fmt.Errorf("unknown schema %q", name)
	}
	if err := schema.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return nil, schemaViolation(ve)
		}
		return nil, err
	}
	return data, nil
}

// schemaViolation reports the first leaf cause.
func schemaViolation(ve *jsonschema.ValidationError) error {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	field := strings.TrimPrefix(ve.InstanceLocation, "/")
	if field == "" {
		field = "body"
	}
	return &domain.ValidationError{Field: strings.ReplaceAll(field, "/", "."), Reason: ve.Message}
}
