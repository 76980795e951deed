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

package registry

import (
	"fmt"
	"log"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ErrPortNotFound is returned by lookups against an unregistered port name.
var ErrPortNotFound = fmt.Errorf("port not found")

// Health is the tri-state health of a port.
type Health string

const (
	Healthy   Health = "healthy"
	Unhealthy Health = "unhealthy"
	Unknown   Health = "unknown" // Port not registered
)

// Metadata carries descriptive data attached to an entry at registration.
type Metadata struct {
	Capabilities []string          `json:"capabilities,omitempty"`
	Labels       map[string]string `json:"labels,omitempty"`
}

// Entry is the resolved, registered unit for one port. Values returned by the
// registry are copies; mutating them does not affect the registry.
type Entry struct {
	PortName     string                 `json:"port_name"`
	Handle       interface{}            `json:"-"`
	Config       map[string]interface{} `json:"config,omitempty"`
	Metadata     Metadata               `json:"metadata"`
	RegisteredAt time.Time              `json:"registered_at"`
	Healthy      bool                   `json:"healthy"`
	CallCount    uint64                 `json:"call_count"`
	ErrorCount   uint64                 `json:"error_count"`
}

// Metrics is the per-port counter snapshot.
type Metrics struct {
	CallCount  uint64        `json:"call_count"`
	ErrorCount uint64        `json:"error_count"`
	ErrorRate  float64       `json:"error_rate"`
	Healthy    bool          `json:"healthy"`
	Uptime     time.Duration `json:"uptime"`
}

// CapabilityMatch is one hit from FindByCapability.
type CapabilityMatch struct {
	PortName string
	Handle   interface{}
	Config   map[string]interface{}
}

// Registry is the concurrent table of adapter entries. The zero value is not
// usable; construct with New or NewWithMetrics.
type Registry struct {
	entries map[string]*Entry
	mu      sync.RWMutex
	logger  *log.Logger
	metrics *registryMetrics
}

// New creates a registry without prometheus instrumentation.
func New() *Registry {
	return &Registry{
		entries: make(map[string]*Entry),
		logger:  log.New(os.Stdout, "[PORT_REGISTRY] ", log.LstdFlags),
	}
}

// NewWithMetrics creates a registry that exports counters to the given
// prometheus registerer. A nil registerer behaves like New.
func NewWithMetrics(reg prometheus.Registerer) *Registry {
	r := New()
	if reg != nil {
		r.metrics = newRegistryMetrics(reg)
	}
	return r
}

// Register inserts or overwrites the entry for port. The overwrite is atomic:
// registered_at resets to now, healthy to true, and both counters to zero.
func (r *Registry) Register(port string, handle interface{}, config map[string]interface{}, metadata Metadata) {
	entry := &Entry{
		PortName:     port,
		Handle:       handle,
		Config:       config,
		Metadata:     metadata,
		RegisteredAt: time.Now(),
		Healthy:      true,
	}

	r.mu.Lock()
	_, replaced := r.entries[port]
	r.entries[port] = entry
	count := len(r.entries)
	r.mu.Unlock()

	if r.metrics != nil {
		r.metrics.registrations.WithLabelValues(port).Inc()
		r.metrics.registeredPorts.Set(float64(count))
	}

	if replaced {
		r.logger.Printf("Replaced adapter for port '%s'", port)
	} else {
		r.logger.Printf("Registered adapter for port '%s'", port)
	}
}

// Get returns a copy of the entry for port, or ErrPortNotFound.
func (r *Registry) Get(port string) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[port]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", ErrPortNotFound, port)
	}
	return copyEntry(entry), nil
}

// ListPorts returns all registered port names in sorted order.
func (r *Registry) ListPorts() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Strings(names)
	return names
}

// FindByCapability returns every entry whose capability set contains cap. The
// result is a consistent snapshot; order is unspecified.
func (r *Registry) FindByCapability(cap string) []CapabilityMatch {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []CapabilityMatch
	for _, entry := range r.entries {
		for _, c := range entry.Metadata.Capabilities {
			if c == cap {
				matches = append(matches, CapabilityMatch{
					PortName: entry.PortName,
					Handle:   entry.Handle,
					Config:   entry.Config,
				})
				break
			}
		}
	}
	return matches
}

// MarkHealthy flips the healthy flag to true.
func (r *Registry) MarkHealthy(port string) error {
	return r.setHealth(port, true)
}

// MarkUnhealthy flips the healthy flag to false.
func (r *Registry) MarkUnhealthy(port string) error {
	return r.setHealth(port, false)
}

func (r *Registry) setHealth(port string, healthy bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[port]
	if !ok {
		return fmt.Errorf("%w: %q", ErrPortNotFound, port)
	}
	entry.Healthy = healthy
	return nil
}

// HealthStatus reports the health of port, Unknown if it is not registered.
func (r *Registry) HealthStatus(port string) Health {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[port]
	if !ok {
		return Unknown
	}
	if entry.Healthy {
		return Healthy
	}
	return Unhealthy
}

// RecordCall increments the call counter, and the error counter iff success
// is false. Concurrent calls against the same port never lose updates.
func (r *Registry) RecordCall(port string, success bool) error {
	r.mu.Lock()
	entry, ok := r.entries[port]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrPortNotFound, port)
	}
	entry.CallCount++
	if !success {
		entry.ErrorCount++
	}
	r.mu.Unlock()

	if r.metrics != nil {
		status := "success"
		if !success {
			status = "error"
		}
		r.metrics.calls.WithLabelValues(port, status).Inc()
	}
	return nil
}

// Metrics returns the counter snapshot for port.
func (r *Registry) Metrics(port string) (Metrics, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[port]
	if !ok {
		return Metrics{}, fmt.Errorf("%w: %q", ErrPortNotFound, port)
	}

	m := Metrics{
		CallCount:  entry.CallCount,
		ErrorCount: entry.ErrorCount,
		Healthy:    entry.Healthy,
		Uptime:     time.Since(entry.RegisteredAt),
	}
	if entry.CallCount > 0 {
		m.ErrorRate = float64(entry.ErrorCount) / float64(entry.CallCount)
	}
	return m, nil
}

// Unregister removes the entry for port. Removing an absent port is a no-op.
func (r *Registry) Unregister(port string) {
	r.mu.Lock()
	_, existed := r.entries[port]
	delete(r.entries, port)
	count := len(r.entries)
	r.mu.Unlock()

	if r.metrics != nil {
		r.metrics.registeredPorts.Set(float64(count))
	}
	if existed {
		r.logger.Printf("Unregistered adapter for port '%s'", port)
	}
}

// Clear removes all entries. Idempotent.
func (r *Registry) Clear() {
	r.mu.Lock()
	r.entries = make(map[string]*Entry)
	r.mu.Unlock()

	if r.metrics != nil {
		r.metrics.registeredPorts.Set(0)
	}
}

// Count returns the number of registered ports.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// copyEntry snapshots an entry so readers never share mutable state with the
// table. Config is shared intentionally: the manifest produced it and nothing
// mutates it after registration.
func copyEntry(e *Entry) Entry {
	out := *e
	if e.Metadata.Capabilities != nil {
		out.Metadata.Capabilities = append([]string(nil), e.Metadata.Capabilities...)
	}
	if e.Metadata.Labels != nil {
		labels := make(map[string]string, len(e.Metadata.Labels))
		for k, v := range e.Metadata.Labels {
			labels[k] = v
		}
		out.Metadata.Labels = labels
	}
	return out
}
