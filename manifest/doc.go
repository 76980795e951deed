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
Package manifest coordinates loading, validating and wiring PortMesh
manifests into the adapter registry.

# Overview

The Engine owns the currently adopted manifest. Loading is transactional:
every declared adapter reference is resolved and every handle constructed
before the registry is mutated, so a single bad declaration leaves the
previously adopted manifest and the registry contents fully intact. The
manifest pointer swaps only after every adapter is registered.

# Lifecycle

	resolver := manifest.NewResolver()
	resolver.RegisterFactory("cache/redis", redisadapter.New)

	engine, err := manifest.Start(manifest.Options{
	    Source:   "portmesh.yaml",
	    Registry: reg,
	    Resolver: resolver,
	})
	if err != nil {
	    log.Fatal(err)
	}

	// Hot reload after editing the manifest:
	if err := engine.Reload(); err != nil {
	    log.Printf("reload rejected, previous manifest still active: %v", err)
	}

Concurrent Reload/Load calls are serialized; only one load proceeds at a
time. GetManifest and GetAdapter are served from the adopted state and do not
block behind an in-flight load.
*/
package manifest
