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
Package base provides the shared vocabulary between the PortMesh core and the
adapters it wires: the Adapter lifecycle contract, the configuration handed to
an adapter at Init time, and health/error types.

# Overview

A "port" is a named capability contract; an "adapter" is a concrete backend
implementation of one. The manifest engine resolves adapter references to live
handles and registers them, but it never looks inside a contract. This package
holds only what the core and every adapter must agree on.

# Adapter Interface

All built-in adapters implement the Adapter interface:

	type Adapter interface {
	    Init(ctx context.Context, config *AdapterConfig) error
	    Close(ctx context.Context) error
	    HealthCheck(ctx context.Context) (*HealthStatus, error)

	    Name() string
	    Kind() string
	    Capabilities() []string
	}

Handles that do not implement Adapter can still be registered; the registry
stores them opaquely and skips lifecycle management for them.

# Capability Contracts

Concrete port contracts (Cache, Store) are declared in contracts.go. They are
consumed by application code through the registry; the core treats them as
opaque.
*/
package base
