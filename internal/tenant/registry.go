// Package tenant holds the static, process-lifetime tenant data used by the
// chat pipeline: the credential registry (hotel id -> shared secret) and the
// plan table (daily model-call cap and allowed languages per tier).
package tenant

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Registry is an immutable hotel id -> secret table. It is safe for
// concurrent use.
type Registry struct {
	keys map[string]string
}

// NewRegistry copies keys into a Registry. Ids and secrets are trimmed;
// blank entries are rejected.
func NewRegistry(keys map[string]string) (*Registry, error) {
	r := &Registry{keys: make(map[string]string, len(keys))}
	for id, key := range keys {
		id, key = strings.TrimSpace(id), strings.TrimSpace(key)
		if id == "" || key == "" {
			return nil, errors.New("tenant: registry entries need an id and a key")
		}
		r.keys[id] = key
	}
	return r, nil
}

// DemoRegistry returns the two built-in demo tenants.
func DemoRegistry() *Registry {
	return &Registry{keys: map[string]string{
		"demo-hotel":     "demo_key_123",
		"olympia-athens": "olympia_secret_456",
	}}
}

type registryFile struct {
	Tenants []struct {
		ID  string `yaml:"id"`
		Key string `yaml:"key"`
	} `yaml:"tenants"`
}

// ParseRegistry decodes a YAML document of the form
//
//	tenants:
//	  - id: demo-hotel
//	    key: demo_key_123
func ParseRegistry(data []byte) (*Registry, error) {
	var f registryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("tenant: decode registry: %w", err)
	}
	if len(f.Tenants) == 0 {
		return nil, errors.New("tenant: registry is empty")
	}
	keys := make(map[string]string, len(f.Tenants))
	for _, t := range f.Tenants {
		id := strings.TrimSpace(t.ID)
		if _, dup := keys[id]; dup {
			return nil, fmt.Errorf("tenant: duplicate id %q", id)
		}
		keys[id] = t.Key
	}
	return NewRegistry(keys)
}

// LoadRegistry reads the registry from path, or returns DemoRegistry when
// path is empty.
func LoadRegistry(path string) (*Registry, error) {
	if strings.TrimSpace(path) == "" {
		return DemoRegistry(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tenant: read registry: %w", err)
	}
	return ParseRegistry(data)
}

// Secret returns the registered secret for id.
func (r *Registry) Secret(id string) (string, bool) {
	if r == nil {
		return "", false
	}
	k, ok := r.keys[id]
	return k, ok
}

// IDs lists registered hotel ids in sorted order.
func (r *Registry) IDs() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.keys))
	for id := range r.keys {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
