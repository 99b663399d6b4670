package contracts

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemasFS embed.FS

const (
	// EnvelopeSchema - общий конверт {success, data, message?} всех ответов бэкенда.
	EnvelopeSchema = "envelope.json"
	// PropertyListSchema - массив объявлений (статический набор данных).
	PropertyListSchema = "property-list.json"
)

var compiledSchemas = make(map[string]*jsonschema.Schema)

func init() {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	// Сначала добавляем все схемы как ресурсы, потом компилируем
	entries, err := fs.ReadDir(schemasFS, "schemas")
	if err != nil {
		log.Fatalf("failed to read embedded schemas: %v", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		raw, err := schemasFS.ReadFile("schemas/" + e.Name())
		if err != nil {
			log.Fatalf("failed to read schema %s: %v", e.Name(), err)
		}
		if err := compiler.AddResource(e.Name(), bytes.NewReader(raw)); err != nil {
			log.Fatalf("failed to add schema resource %s: %v", e.Name(), err)
		}
		names = append(names, e.Name())
	}

	for _, name := range names {
		schema, err := compiler.Compile(name)
		if err != nil {
			log.Fatalf("failed to compile schema %s: %v", name, err)
		}
		compiledSchemas[name] = schema
	}
}

// Validate проверяет JSON-документ по схеме с указанным именем.
func Validate(schemaName string, body []byte) error {
	schema, ok := compiledSchemas[schemaName]
	if !ok {
		return fmt.Errorf("schema %q is not registered", schemaName)
	}

	var doc interface{}
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	if err := decoder.Decode(&doc); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("document does not match %s: %w", schemaName, err)
	}
	return nil
}
