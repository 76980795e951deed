// Copyright 2025 PortMesh
// SPDX-License-Identifier: Apache-2.0
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"os"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"
)

// Environment is the deployment environment a manifest targets.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTest        Environment = "test"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// validEnvironments is the closed set accepted by the schema.
var validEnvironments = map[Environment]bool{
	EnvDevelopment: true,
	EnvTest:        true,
	EnvStaging:     true,
	EnvProduction:  true,
}

// AdapterDecl declares which implementation should back a port.
type AdapterDecl struct {
	AdapterRef string                 `json:"adapter"`
	Config     map[string]interface{} `json:"config"`
	Enabled    bool                   `json:"enabled"`
}

// Manifest is a validated, default-filled configuration document. It is
// immutable once produced: the loader returns a fresh value on every call and
// nothing in the core mutates it afterwards.
type Manifest struct {
	Version     string                 `json:"version"`
	Environment Environment            `json:"environment"`
	Adapters    map[string]AdapterDecl `json:"adapters"`
	Extensions  map[string]interface{} `json:"extensions,omitempty"`
}

// PortNames returns the declared port names in sorted order.
func (m *Manifest) PortNames() []string {
	names := make([]string, 0, len(m.Adapters))
	for name := range m.Adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load reads, expands and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{Path: path, Cause: err}
	}
	return Parse(data)
}

// Parse expands and validates raw manifest bytes. It is the in-memory entry
// point used by tests and by the manifest engine.
func Parse(data []byte) (*Manifest, error) {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Detail: err.Error(), Cause: err}
	}
	if doc == nil {
		return nil, &SchemaError{Field: "version", Reason: "document is empty"}
	}

	expanded, err := expandValue(doc)
	if err != nil {
		return nil, err
	}
	doc = expanded.(map[string]interface{})

	return validate(doc)
}

// envVarPattern matches the flat ${NAME} placeholder form. Bare $NAME and
// ${NAME:-default} are deliberately not supported.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandValue walks the decoded document and substitutes environment
// placeholders in every string scalar, including inside nested mappings and
// sequences. The first unset variable aborts the expansion.
func expandValue(v interface{}) (interface{}, error) {
	switch val := v.(type) {
	case string:
		return expandString(val)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, child := range val {
			expanded, err := expandValue(child)
			if err != nil {
				return nil, err
			}
			out[k] = expanded
		}
		return out, nil
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, child := range val {
			expanded, err := expandValue(child)
			if err != nil {
				return nil, err
			}
			out[i] = expanded
		}
		return out, nil
	default:
		return v, nil
	}
}

func expandString(s string) (string, error) {
	var missing *MissingEnvVarError
	out := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := match[2 : len(match)-1]
		value, ok := os.LookupEnv(name)
		if !ok {
			if missing == nil {
				missing = &MissingEnvVarError{Name: name}
			}
			return match
		}
		return value
	})
	if missing != nil {
		return "", missing
	}
	return out, nil
}

// validate checks required fields, types and the environment enum, and fills
// declared defaults for optional fields.
func validate(doc map[string]interface{}) (*Manifest, error) {
	m := &Manifest{
		Adapters:   make(map[string]AdapterDecl),
		Extensions: make(map[string]interface{}),
	}

	version, ok := doc["version"]
	if !ok {
		return nil, &SchemaError{Field: "version", Reason: "required field is missing"}
	}
	if s, ok := version.(string); ok && s != "" {
		m.Version = s
	} else {
		return nil, &SchemaError{Field: "version", Reason: "must be a non-empty string"}
	}

	environment, ok := doc["environment"]
	if !ok {
		return nil, &SchemaError{Field: "environment", Reason: "required field is missing"}
	}
	envStr, ok := environment.(string)
	if !ok {
		return nil, &SchemaError{Field: "environment", Reason: "must be a string"}
	}
	env := Environment(envStr)
	if !validEnvironments[env] {
		return nil, &SchemaError{
			Field:  "environment",
			Reason: fmt.Sprintf("%q is not one of development, test, staging, production", envStr),
		}
	}
	m.Environment = env

	if rawAdapters, ok := doc["adapters"]; ok {
		adapterMap, ok := rawAdapters.(map[string]interface{})
		if !ok {
			return nil, &SchemaError{Field: "adapters", Reason: "must be a mapping of port name to declaration"}
		}
		for port, rawDecl := range adapterMap {
			decl, err := validateDecl(port, rawDecl)
			if err != nil {
				return nil, err
			}
			m.Adapters[port] = decl
		}
	}

	// Everything else passes through as opaque extension data.
	for key, value := range doc {
		switch key {
		case "version", "environment", "adapters":
		default:
			m.Extensions[key] = value
		}
	}

	return m, nil
}

func validateDecl(port string, raw interface{}) (AdapterDecl, error) {
	field := "adapters." + port

	declMap, ok := raw.(map[string]interface{})
	if !ok {
		return AdapterDecl{}, &SchemaError{Field: field, Reason: "must be a mapping"}
	}

	decl := AdapterDecl{
		Config:  make(map[string]interface{}),
		Enabled: true,
	}

	ref, ok := declMap["adapter"]
	if !ok {
		return AdapterDecl{}, &SchemaError{Field: field + ".adapter", Reason: "required field is missing"}
	}
	refStr, ok := ref.(string)
	if !ok || refStr == "" {
		return AdapterDecl{}, &SchemaError{Field: field + ".adapter", Reason: "must be a non-empty string"}
	}
	decl.AdapterRef = refStr

	if rawCfg, ok := declMap["config"]; ok && rawCfg != nil {
		cfg, ok := rawCfg.(map[string]interface{})
		if !ok {
			return AdapterDecl{}, &SchemaError{Field: field + ".config", Reason: "must be a mapping"}
		}
		decl.Config = cfg
	}

	if rawEnabled, ok := declMap["enabled"]; ok && rawEnabled != nil {
		enabled, ok := rawEnabled.(bool)
		if !ok {
			return AdapterDecl{}, &SchemaError{Field: field + ".enabled", Reason: "must be a boolean"}
		}
		decl.Enabled = enabled
	}

	return decl, nil
}
