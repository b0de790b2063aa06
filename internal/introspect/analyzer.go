// Package introspect discovers the ERP API's endpoint structure from its
// OpenAPI specification and caches the result between runs. The target
// schema is fetched by an explicit sync and read as immutable afterwards.
package introspect

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"erp-migrator/internal/schema"
)

// openapiSchema is the subset of an OpenAPI schema object the analyzer
// needs. A non-empty Ref supersedes the inline fields.
type openapiSchema struct {
	Ref        string                    `json:"$ref"`
	Type       string                    `json:"type"`
	Format     string                    `json:"format"`
	Properties map[string]*openapiSchema `json:"properties"`
	Items      *openapiSchema            `json:"items"`
	Required   []string                  `json:"required"`
}

type openapiOperation struct {
	Summary     string   `json:"summary"`
	Tags        []string `json:"tags"`
	RequestBody *struct {
		Content map[string]struct {
			Schema *openapiSchema `json:"schema"`
		} `json:"content"`
	} `json:"requestBody"`
}

type openapiSpec struct {
	Info struct {
		Title   string `json:"title"`
		Version string `json:"version"`
	} `json:"info"`
	Servers []struct {
		URL string `json:"url"`
	} `json:"servers"`
	Paths      map[string]map[string]json.RawMessage `json:"paths"`
	Components struct {
		Schemas map[string]*openapiSchema `json:"schemas"`
	} `json:"components"`
}

// creationMethods are the operations that accept an entity body. Only these
// become mappable endpoints.
var creationMethods = []string{"post", "put"}

// AnalyzeSpec extracts the target schema from a raw OpenAPI 3 document.
// Endpoints are emitted in path order so the result is deterministic
// regardless of JSON object iteration.
func AnalyzeSpec(raw []byte) (*schema.Target, error) {
	var spec openapiSpec
	if err := json.Unmarshal(raw, &spec); err != nil {
		return nil, fmt.Errorf("parse openapi spec: %w", err)
	}
	if len(spec.Paths) == 0 {
		return nil, fmt.Errorf("openapi spec has no paths")
	}

	target := &schema.Target{
		Title:   spec.Info.Title,
		Version: spec.Info.Version,
	}
	if len(spec.Servers) > 0 {
		target.BaseURL = spec.Servers[0].URL
	}

	paths := make([]string, 0, len(spec.Paths))
	for p := range spec.Paths {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	r := resolver{defs: spec.Components.Schemas}

	for _, path := range paths {
		for _, method := range creationMethods {
			rawOp, ok := spec.Paths[path][method]
			if !ok {
				continue
			}

			var op openapiOperation
			if err := json.Unmarshal(rawOp, &op); err != nil {
				return nil, fmt.Errorf("parse operation %s %s: %w", method, path, err)
			}

			ep, ok := r.endpoint(path, method, &op)
			if ok {
				target.Endpoints = append(target.Endpoints, ep)
			}
		}
	}

	if len(target.Endpoints) == 0 {
		return nil, fmt.Errorf("openapi spec has no entity-creation endpoints")
	}

	return target, nil
}

type resolver struct {
	defs map[string]*openapiSchema
}

// endpoint builds one target endpoint from a creation operation. Operations
// without a JSON request body are not mappable.
func (r resolver) endpoint(path, method string, op *openapiOperation) (schema.TargetEndpoint, bool) {
	if op.RequestBody == nil {
		return schema.TargetEndpoint{}, false
	}

	content, ok := op.RequestBody.Content["application/json"]
	if !ok || content.Schema == nil {
		return schema.TargetEndpoint{}, false
	}

	body, refName := r.resolve(content.Schema, 0)
	if body == nil || len(body.Properties) == 0 {
		return schema.TargetEndpoint{}, false
	}

	ep := schema.TargetEndpoint{
		Path:   path,
		Method: strings.ToUpper(method),
		Entity: entityName(refName, op, path),
	}

	required := make(map[string]bool, len(body.Required))
	for _, name := range body.Required {
		required[name] = true
	}

	names := make([]string, 0, len(body.Properties))
	for name := range body.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		prop, _ := r.resolve(body.Properties[name], 0)
		if prop == nil {
			continue
		}
		ep.Fields = append(ep.Fields, schema.TargetField{
			Name:     name,
			Type:     fieldType(prop),
			Format:   prop.Format,
			Required: required[name],
		})
	}

	return ep, len(ep.Fields) > 0
}

const maxRefDepth = 16

// resolve follows $ref chains, returning the concrete schema and the name
// of the last reference followed. Cycles stop at a depth limit.
func (r resolver) resolve(s *openapiSchema, depth int) (*openapiSchema, string) {
	if s == nil || depth > maxRefDepth {
		return nil, ""
	}
	if s.Ref == "" {
		return s, ""
	}

	name := s.Ref[strings.LastIndexByte(s.Ref, '/')+1:]
	def, ok := r.defs[name]
	if !ok {
		return nil, name
	}

	resolved, inner := r.resolve(def, depth+1)
	if inner != "" {
		name = inner
	}

	return resolved, name
}

func fieldType(s *openapiSchema) string {
	if s.Type == "" {
		return "object"
	}

	return s.Type
}

// entityName picks a display name for the endpoint's entity: the request
// body schema name when referenced, else the first tag, else the last path
// segment.
func entityName(refName string, op *openapiOperation, path string) string {
	if refName != "" {
		return refName
	}
	if len(op.Tags) > 0 {
		return op.Tags[0]
	}

	seg := strings.Trim(path, "/")
	if i := strings.LastIndexByte(seg, '/'); i >= 0 {
		seg = seg[i+1:]
	}

	return seg
}
