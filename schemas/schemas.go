// Package schemas embeds the JSON Schemas for config files, map files and
// CLI output messages.
package schemas

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

const (
	SpawnAreas = "spawn_areas.schema.json"
	Map        = "map.schema.json"
	TileList   = "tile_list.schema.json"
	SaveDump   = "save_dump.schema.json"
)

const baseURL = "https://tilespawn.dev/schemas/"

//go:embed *.schema.json
var files embed.FS

var (
	mu       sync.Mutex
	compiled = map[string]*jsonschema.Schema{}
)

// Compile returns the compiled schema for one of the embedded files.
func Compile(name string) (*jsonschema.Schema, error) {
	mu.Lock()
	defer mu.Unlock()
	if s, ok := compiled[name]; ok {
		return s, nil
	}
	raw, err := files.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", name, err)
	}
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	url := baseURL + name
	if err := c.AddResource(url, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("schema %s: %w", name, err)
	}
	s, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", name, err)
	}
	compiled[name] = s
	return s, nil
}

// ValidateJSON validates a JSON document against the named schema.
func ValidateJSON(name string, raw []byte) error {
	s, err := Compile(name)
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	return s.Validate(v)
}

// ValidateYAML validates a YAML document against the named schema. The
// document is normalized through JSON so the validator sees JSON types.
func ValidateYAML(name string, raw []byte) error {
	var v any
	if err := yaml.Unmarshal(raw, &v); err != nil {
		return err
	}
	if v == nil {
		v = map[string]any{}
	}
	b, err := json.Marshal(stringKeys(v))
	if err != nil {
		return fmt.Errorf("yaml to json: %w", err)
	}
	return ValidateJSON(name, b)
}

// stringKeys rewrites YAML mappings with non-string keys (e.g. `1:`) into
// string-keyed maps so they survive json.Marshal.
func stringKeys(v any) any {
	switch t := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = stringKeys(val)
		}
		return out
	case map[string]any:
		for k, val := range t {
			t[k] = stringKeys(val)
		}
		return t
	case []any:
		for i, val := range t {
			t[i] = stringKeys(val)
		}
		return t
	default:
		return v
	}
}
