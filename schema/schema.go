// Package schema reflects tool request structs into JSON-schema parameter
// definitions for the tool catalog. Schemas are cached per type; reflection
// only happens once per request struct.
package schema

import (
	"encoding/json"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

var (
	cache   = make(map[reflect.Type]*Schema)
	cacheMu sync.RWMutex
)

type Schema struct {
	*jsonschema.Schema
	// Parameters is the flattened top-level schema advertised in the tool
	// catalog: type/properties/required with all $refs resolved inline.
	Parameters *jsonschema.Schema
}

// New builds (or returns the cached) schema for the given type.
func New(t reflect.Type) (*Schema, error) {
	cacheMu.RLock()
	if s, ok := cache[t]; ok {
		cacheMu.RUnlock()
		return s, nil
	}
	cacheMu.RUnlock()

	s, err := buildSchema(t)
	if err != nil {
		return nil, err
	}

	cacheMu.Lock()
	cache[t] = s
	cacheMu.Unlock()
	return s, nil
}

// MustParameters returns the catalog parameters for the type, panicking on
// reflection failure. Intended for tool constructors where the request type
// is a compile-time constant.
func MustParameters(t reflect.Type) *jsonschema.Schema {
	s, err := New(t)
	if err != nil {
		panic(err)
	}
	return s.Parameters
}

func (s *Schema) String() string {
	bs, _ := json.MarshalIndent(s.Parameters, "", "  ")
	return string(bs)
}

func buildSchema(t reflect.Type) (*Schema, error) {
	sc := reflectType(t)
	params, err := toParameters(sc)
	if err != nil {
		return nil, err
	}
	return &Schema{
		Schema:     sc,
		Parameters: params,
	}, nil
}

// toParameters flattens the reflected schema into a single top-level object
// schema with every $defs reference resolved inline.
func toParameters(sc *jsonschema.Schema) (*jsonschema.Schema, error) {
	rootID := strings.TrimPrefix(sc.Ref, "#/$defs/")

	defs := make(map[string]*jsonschema.Schema)
	var root *jsonschema.Schema
	for name, def := range sc.Definitions {
		if name == rootID {
			root = def
		} else {
			defs[name] = def
		}
	}
	if root == nil {
		return nil, errors.Newf("schema: root definition %q not found", rootID)
	}

	res := &jsonschema.Schema{
		Type:       root.Type,
		Properties: root.Properties,
		Required:   root.Required,
	}
	if err := resolveRefs(res.Properties, defs); err != nil {
		return nil, err
	}
	return res, nil
}

func resolveRefs(props *orderedmap.OrderedMap[string, *jsonschema.Schema], defs map[string]*jsonschema.Schema) error {
	if props == nil {
		return nil
	}
	for pair := props.Oldest(); pair != nil; pair = pair.Next() {
		child := pair.Value
		if child.Ref != "" {
			name := strings.TrimPrefix(child.Ref, "#/$defs/")
			def, ok := defs[name]
			if !ok {
				return errors.Newf("schema: unresolved reference %q", child.Ref)
			}
			pair.Value = def
			child = def
		}
		if child.Items != nil && child.Items.Ref != "" {
			name := strings.TrimPrefix(child.Items.Ref, "#/$defs/")
			def, ok := defs[name]
			if !ok {
				return errors.Newf("schema: unresolved reference %q", child.Items.Ref)
			}
			child.Items = def
		}
		if child.Properties != nil {
			if err := resolveRefs(child.Properties, defs); err != nil {
				return err
			}
		}
	}
	return nil
}

// reflectType runs the jsonschema reflector with a namer that disambiguates
// equally named structs from different packages by hashing the full path.
func reflectType(t reflect.Type) *jsonschema.Schema {
	r := new(jsonschema.Reflector)
	r.Namer = func(t reflect.Type) string {
		name := t.Name()
		if t.Kind() == reflect.Struct {
			fullname := t.PkgPath() + "/" + t.Name()
			name = t.Name() + "@" + strconv.FormatUint(xxhash.Sum64String(fullname), 10)
		}
		return name
	}
	return r.ReflectFromType(t)
}
