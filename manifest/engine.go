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

package manifest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"portmesh/platform/ports/base"
	"portmesh/platform/ports/config"
	"portmesh/platform/ports/registry"
)

// ErrNoSource is returned by Reload when the engine was started without a
// manifest source.
var ErrNoSource = errors.New("no manifest source configured")

// adapterInitTimeout bounds factory construction and Init per adapter. All
// resolution and initialization completes before the registry is touched.
const adapterInitTimeout = 30 * time.Second

// wired is one resolved port: the live handle plus the config it was built
// from.
type wired struct {
	handle interface{}
	cfg    map[string]interface{}
}

// Options configures a new Engine.
type Options struct {
	// Source is the manifest path. Optional; without it the engine starts
	// unloaded and only Load can bring it up.
	Source string

	// Registry receives resolved adapters. Required.
	Registry *registry.Registry

	// Resolver maps adapter references to factories. Required.
	Resolver *Resolver

	// Telemetry receives load/reload/error/register events. Optional.
	Telemetry Telemetry

	// Logger defaults to a stdout logger with an [MANIFEST] prefix.
	Logger *log.Logger
}

// Engine owns the currently adopted manifest and is the single writer that
// mutates the registry as a side effect of (re)loading. Loads are serialized
// through loadMu; GetManifest and GetAdapter read the adopted state through a
// separate RWMutex and never contend with an in-flight load until its final
// swap.
type Engine struct {
	registry  *registry.Registry
	resolver  *Resolver
	telemetry Telemetry
	logger    *log.Logger

	loadMu sync.Mutex // Serializes Load/Reload; at most one load in flight

	mu      sync.RWMutex // Guards source, current, wiring
	source  string
	current *config.Manifest
	wiring  map[string]wired
}

// Start creates an engine. If Options.Source is set, the initial load runs
// immediately and a failure fails Start; the engine never starts half-loaded.
func Start(opts Options) (*Engine, error) {
	if opts.Registry == nil {
		return nil, errors.New("manifest engine requires a registry")
	}
	if opts.Resolver == nil {
		return nil, errors.New("manifest engine requires a resolver")
	}

	telemetry := opts.Telemetry
	if telemetry == nil {
		telemetry = noopTelemetry{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stdout, "[MANIFEST] ", log.LstdFlags)
	}

	e := &Engine{
		registry:  opts.Registry,
		resolver:  opts.Resolver,
		telemetry: telemetry,
		logger:    logger,
		wiring:    make(map[string]wired),
	}

	if opts.Source != "" {
		if err := e.Load(opts.Source); err != nil {
			return nil, fmt.Errorf("initial manifest load: %w", err)
		}
	}

	return e, nil
}

// GetManifest returns the currently adopted manifest, or nil before the first
// successful load.
func (e *Engine) GetManifest() *config.Manifest {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.current
}

// GetAdapter is a convenience mirror of the registry for the ports declared
// in the current manifest. The registry remains the source of truth for
// health and metrics.
func (e *Engine) GetAdapter(port string) (interface{}, map[string]interface{}, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	w, ok := e.wiring[port]
	if !ok {
		return nil, nil, false
	}
	return w.handle, w.cfg, true
}

// Ports returns the ports wired by the current manifest, sorted.
func (e *Engine) Ports() []string {
	e.mu.RLock()
	ports := make([]string, 0, len(e.wiring))
	for p := range e.wiring {
		ports = append(ports, p)
	}
	e.mu.RUnlock()

	sort.Strings(ports)
	return ports
}

// Source returns the manifest path the engine reloads from, empty if none.
func (e *Engine) Source() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.source
}

// Reload re-runs the load against the original source. A failed reload leaves
// the previously adopted manifest and the registry untouched.
func (e *Engine) Reload() error {
	e.loadMu.Lock()
	defer e.loadMu.Unlock()

	e.mu.RLock()
	source := e.source
	e.mu.RUnlock()

	if source == "" {
		return ErrNoSource
	}
	return e.loadManifest(source, EventManifestReload)
}

// Load runs a full load against an arbitrary source, enabling complete
// reconfiguration at runtime. On success the engine reloads from the new
// source thereafter.
func (e *Engine) Load(source string) error {
	e.loadMu.Lock()
	defer e.loadMu.Unlock()

	if err := e.loadManifest(source, EventManifestLoaded); err != nil {
		return err
	}

	e.mu.Lock()
	e.source = source
	e.mu.Unlock()
	return nil
}

// loadManifest is the shared load path. It is transactional with respect to
// engine and registry state: every declaration is resolved and every handle
// constructed before the registry is touched, so a failing declaration leaves
// both the manifest pointer and the registry exactly as they were.
func (e *Engine) loadManifest(source, event string) error {
	loadID := uuid.New().String()
	start := time.Now()

	m, err := config.Load(source)
	if err != nil {
		e.reportError(loadID, source, err)
		return err
	}

	// Phase 1: resolve and construct everything. No registry mutation yet.
	staged, err := e.stageAdapters(m)
	if err != nil {
		e.reportError(loadID, source, err)
		return err
	}

	// Phase 2: registration cannot fail; publish every staged adapter, then
	// retire ports the new manifest no longer wires.
	e.mu.RLock()
	previous := e.wiring
	e.mu.RUnlock()

	newWiring := make(map[string]wired, len(staged))
	for _, s := range staged {
		e.registry.Register(s.port, s.handle, s.cfg, s.metadata)
		newWiring[s.port] = wired{handle: s.handle, cfg: s.cfg}
		e.telemetry.Emit(EventRegister, nil, map[string]string{
			"load_id": loadID,
			"port":    s.port,
			"adapter": s.ref,
		})
	}

	for port, old := range previous {
		replacement, stillWired := newWiring[port]
		if !stillWired {
			e.registry.Unregister(port)
		}
		if !stillWired || replacement.handle != old.handle {
			e.closeHandle(port, old.handle)
		}
	}

	// Phase 3: adopt. Readers observe the new manifest only from here on.
	e.mu.Lock()
	e.current = m
	e.wiring = newWiring
	e.mu.Unlock()

	elapsed := time.Since(start)
	e.logger.Printf("Manifest %s adopted from %s: %d adapters wired (load_id=%s, took %v)",
		m.Version, source, len(newWiring), loadID, elapsed)

	e.telemetry.Emit(event, map[string]float64{
		"adapters":    float64(len(newWiring)),
		"duration_ms": float64(elapsed.Milliseconds()),
	}, map[string]string{
		"load_id":     loadID,
		"source":      source,
		"version":     m.Version,
		"environment": string(m.Environment),
	})

	return nil
}

// stagedAdapter is a fully constructed adapter awaiting registration.
type stagedAdapter struct {
	port     string
	ref      string
	handle   interface{}
	cfg      map[string]interface{}
	metadata registry.Metadata
}

// stageAdapters resolves every enabled declaration and constructs its handle.
// Ports are processed in sorted order so failures are deterministic. Any
// failure closes the handles constructed so far and returns without touching
// the registry.
func (e *Engine) stageAdapters(m *config.Manifest) ([]stagedAdapter, error) {
	var staged []stagedAdapter

	fail := func(err error) ([]stagedAdapter, error) {
		for _, s := range staged {
			e.closeHandle(s.port, s.handle)
		}
		return nil, err
	}

	for _, port := range m.PortNames() {
		decl := m.Adapters[port]
		if !decl.Enabled {
			e.logger.Printf("Port '%s' disabled in manifest, skipping", port)
			continue
		}

		factory, err := e.resolver.Resolve(decl.AdapterRef)
		if err != nil {
			return fail(err)
		}

		adapterCfg := &base.AdapterConfig{
			PortName:   port,
			AdapterRef: decl.AdapterRef,
			Settings:   decl.Config,
			Timeout:    adapterInitTimeout,
		}

		handle, err := factory(adapterCfg)
		if err != nil {
			return fail(fmt.Errorf("construct adapter %q for port %q: %w", decl.AdapterRef, port, err))
		}

		metadata := registry.Metadata{
			Labels: map[string]string{"adapter": decl.AdapterRef},
		}

		// Adapter-aware handles get initialized here, before any registry
		// lock is in play, and contribute their capability set.
		if adapter, ok := handle.(base.Adapter); ok {
			ctx, cancel := context.WithTimeout(context.Background(), adapterInitTimeout)
			err := adapter.Init(ctx, adapterCfg)
			cancel()
			if err != nil {
				return fail(fmt.Errorf("initialize adapter %q for port %q: %w", decl.AdapterRef, port, err))
			}
			metadata.Capabilities = adapter.Capabilities()
		}

		staged = append(staged, stagedAdapter{
			port:     port,
			ref:      decl.AdapterRef,
			handle:   handle,
			cfg:      decl.Config,
			metadata: metadata,
		})
	}

	return staged, nil
}

func (e *Engine) closeHandle(port string, handle interface{}) {
	adapter, ok := handle.(base.Adapter)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := adapter.Close(ctx); err != nil {
		e.logger.Printf("Error closing adapter for port '%s': %v", port, err)
	}
}

func (e *Engine) reportError(loadID, source string, err error) {
	e.logger.Printf("Manifest load failed for %s: %v (load_id=%s)", source, err, loadID)
	e.telemetry.Emit(EventManifestError, nil, map[string]string{
		"load_id": loadID,
		"source":  source,
		"error":   err.Error(),
	})
}
