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

// Package main is the entry point for the PortMesh node daemon.
//
// The daemon loads an adapter manifest, wires every declared port into the
// registry and serves the management API.
//
// Usage:
//
//	./portmeshd
//
// Environment Variables:
//
//	PORT - HTTP server port (default: 8080)
//	PORTMESH_MANIFEST - manifest path (default: portmesh.yaml)
//	PORTMESH_JWT_SECRET - enables bearer-token auth on the API when set
//	PORTMESH_HEALTH_INTERVAL - adapter health probe interval (default: 30s)
package main

import (
	"portmesh/platform/node"
)

func main() {
	node.Run()
}
