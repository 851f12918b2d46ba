package dashboard

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const manifestSchemaName = "manifest.schema.json"

// manifestSchema describes the accepted manifest layout. Typed decoding of the
// nested section/table mappings does not reject unknown keys, so the schema does.
const manifestSchema = `{
  "type": "object",
  "required": ["sections"],
  "additionalProperties": false,
  "properties": {
    "version": {"type": ["string", "integer"]},
    "title": {"type": "string"},
    "periodos": {"type": "array", "items": {"$ref": "#/definitions/period"}},
    "sections": {
      "type": "object",
      "minProperties": 1,
      "additionalProperties": {"$ref": "#/definitions/section"}
    }
  },
  "definitions": {
    "period": {
      "type": "object",
      "required": ["nombre", "inicio", "fin"],
      "additionalProperties": false,
      "properties": {
        "nombre": {"type": "string", "minLength": 1},
        "inicio": {"type": "integer"},
        "fin": {"type": "integer"}
      }
    },
    "section": {
      "type": "object",
      "required": ["tablas"],
      "additionalProperties": false,
      "properties": {
        "name": {"type": "string"},
        "path": {"type": "string"},
        "tablas": {
          "type": "object",
          "additionalProperties": {"$ref": "#/definitions/table"}
        }
      }
    },
    "table": {
      "type": "object",
      "required": ["tabla"],
      "additionalProperties": false,
      "properties": {
        "tabla": {"type": "string", "minLength": 1},
        "label": {"type": "string"},
        "periodos": {"type": "array", "items": {"$ref": "#/definitions/period"}},
        "metadata": {
          "type": "object",
          "additionalProperties": false,
          "properties": {
            "fuentes": {"type": "array", "items": {"type": "string"}},
            "unidad": {"type": "string"},
            "periodo": {"type": "string"},
            "notas": {"type": "string"}
          }
        }
      }
    }
  }
}`

var (
	manifestSchemaOnce     sync.Once
	compiledManifestSchema *jsonschema.Schema
	manifestSchemaErr      error
)

func manifestSchemaCompiled() (*jsonschema.Schema, error) {
	manifestSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(manifestSchemaName, strings.NewReader(manifestSchema)); err != nil {
			manifestSchemaErr = fmt.Errorf("dashboard: load manifest schema: %w", err)
			return
		}
		compiledManifestSchema, manifestSchemaErr = compiler.Compile(manifestSchemaName)
		if manifestSchemaErr != nil {
			manifestSchemaErr = fmt.Errorf("dashboard: compile manifest schema: %w", manifestSchemaErr)
		}
	})
	return compiledManifestSchema, manifestSchemaErr
}

// validateManifestSchema checks a raw decoded manifest. YAML values are
// normalized through JSON so the validator sees plain JSON types.
func validateManifestSchema(raw map[string]any) error {
	schema, err := manifestSchemaCompiled()
	if err != nil {
		return err
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("normalize manifest: %w", err)
	}
	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("normalize manifest: %w", err)
	}
	return schema.Validate(payload)
}
