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

package base

import (
	"context"
	"time"
)

// Adapter is the lifecycle contract every pluggable backend implementation
// may satisfy. The core never inspects what a port actually does; it only
// needs enough surface to initialize, health-check and tear down a handle.
type Adapter interface {
	// Lifecycle Management
	Init(ctx context.Context, config *AdapterConfig) error
	Close(ctx context.Context) error
	HealthCheck(ctx context.Context) (*HealthStatus, error)

	// Metadata
	Name() string           // Unique adapter instance name (port name)
	Kind() string           // Implementation reference (e.g. "cache/redis")
	Capabilities() []string // Capability tags (cache, store, search)
}

// AdapterConfig holds the configuration handed to an adapter at Init time.
// Settings is the manifest's free-form config block for the port, with all
// environment placeholders already expanded.
type AdapterConfig struct {
	PortName   string                 `json:"port_name"`   // Port this adapter backs
	AdapterRef string                 `json:"adapter_ref"` // Implementation reference from the manifest
	Settings   map[string]interface{} `json:"settings"`    // Adapter-specific options
	Timeout    time.Duration          `json:"timeout"`     // Operation timeout (default: 30s)
}

// Setting returns a string-typed setting, or the fallback if absent or not a
// string. Adapters use this for the common case of scalar options.
func (c *AdapterConfig) Setting(key, fallback string) string {
	if c == nil || c.Settings == nil {
		return fallback
	}
	if v, ok := c.Settings[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// SettingInt returns an integer setting, accepting the numeric types YAML
// decoding may produce.
func (c *AdapterConfig) SettingInt(key string, fallback int) int {
	if c == nil || c.Settings == nil {
		return fallback
	}
	switch v := c.Settings[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return fallback
}

// HealthStatus represents the health of an adapter instance.
type HealthStatus struct {
	Healthy   bool              `json:"healthy"`
	Latency   time.Duration     `json:"latency"`
	Details   map[string]string `json:"details,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Error     string            `json:"error,omitempty"`
}

// AdapterError represents errors raised by adapter operations.
type AdapterError struct {
	Port    string
	Op      string
	Message string
	Cause   error
}

func (e *AdapterError) Error() string {
	if e.Cause != nil {
		return e.Port + "." + e.Op + ": " + e.Message + " (cause: " + e.Cause.Error() + ")"
	}
	return e.Port + "." + e.Op + ": " + e.Message
}

func (e *AdapterError) Unwrap() error {
	return e.Cause
}

// NewAdapterError creates a new AdapterError.
func NewAdapterError(port, op, message string, cause error) *AdapterError {
	return &AdapterError{
		Port:    port,
		Op:      op,
		Message: message,
		Cause:   cause,
	}
}
