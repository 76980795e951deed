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

/*
Package registry provides the process-wide, thread-safe table of resolved
adapters, keyed by port name.

# Overview

The Registry is the runtime source of truth for which handle backs which port,
whether it is healthy, and how it is performing. It is usable independently of
the manifest engine: tests and other subsystems may register entries directly.

  - Registration is an upsert: at most one entry exists per port at any time.
  - All read operations return copies; a concurrent reader never observes a
    half-written entry.
  - Writes to the same port are serialized by a single RWMutex; concurrent
    RecordCall invocations never lose updates.

# Creating a Registry

Registries are constructor-owned, never package-level singletons, so tests can
instantiate isolated instances:

	reg := registry.New()

Pass a prometheus.Registerer to also export registration and call metrics:

	reg := registry.NewWithMetrics(prometheus.DefaultRegisterer)

# Typical Use

	reg.Register("cache", handle, cfg, registry.Metadata{
	    Capabilities: []string{"cache"},
	})

	entry, err := reg.Get("cache")
	if err != nil {
	    return err
	}
	cache := entry.Handle.(base.Cache)
*/
package registry
