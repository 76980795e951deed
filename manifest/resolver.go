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
	"fmt"
	"sort"
	"sync"

	"portmesh/platform/ports/base"
)

// Factory creates an adapter handle from configuration. Factories should
// validate the config and return an error if invalid; they must not perform
// registration themselves.
type Factory func(config *base.AdapterConfig) (interface{}, error)

// UnresolvableAdapterError indicates a manifest referenced an implementation
// that no factory is registered for.
type UnresolvableAdapterError struct {
	Ref string
}

func (e *UnresolvableAdapterError) Error() string {
	return fmt.Sprintf("no adapter factory registered for reference %q", e.Ref)
}

// Resolver maps implementation reference strings to factories. It is
// constructor-owned so tests can build isolated resolvers; the engine queries
// it during every load. Thread-safe for concurrent access.
type Resolver struct {
	factories map[string]Factory
	mu        sync.RWMutex
}

// NewResolver creates an empty resolver.
func NewResolver() *Resolver {
	return &Resolver{
		factories: make(map[string]Factory),
	}
}

// RegisterFactory registers a factory under an implementation reference.
// Typically called from cmd wiring or an adapter package's init. An existing
// factory for the same reference is overwritten.
func (r *Resolver) RegisterFactory(ref string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[ref] = factory
}

// Resolve returns the factory for ref, or an UnresolvableAdapterError.
func (r *Resolver) Resolve(ref string) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[ref]
	if !ok {
		return nil, &UnresolvableAdapterError{Ref: ref}
	}
	return factory, nil
}

// Has returns true if a factory is registered for ref.
func (r *Resolver) Has(ref string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[ref]
	return ok
}

// List returns all registered references in sorted order.
func (r *Resolver) List() []string {
	r.mu.RLock()
	refs := make([]string, 0, len(r.factories))
	for ref := range r.factories {
		refs = append(refs, ref)
	}
	r.mu.RUnlock()

	sort.Strings(refs)
	return refs
}
