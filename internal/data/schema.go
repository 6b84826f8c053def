package data

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed schema/ships.schema.json
var shipSchemaSrc string

var shipSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return jsonschema.CompileString("ships.schema.json", shipSchemaSrc)
})

// validateShipYAML checks a ship table against the embedded JSON schema. The
// YAML is round-tripped through JSON first so the validator sees JSON types.
func validateShipYAML(raw []byte) error {
	s, err := shipSchema()
	if err != nil {
		return fmt.Errorf("compile ship schema: %w", err)
	}
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return err
	}
	js, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("convert to json: %w", err)
	}
	var v any
	if err := json.Unmarshal(js, &v); err != nil {
		return err
	}
	return s.Validate(v)
}
