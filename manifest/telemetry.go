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

// Telemetry event names emitted by the engine.
const (
	EventManifestLoaded = "manifest.loaded"
	EventManifestReload = "manifest.reload"
	EventManifestError  = "manifest.error"
	EventRegister       = "registry.register"
)

// Telemetry is the fire-and-forget event sink the engine reports to.
// Implementations must not block; no return value is consumed.
type Telemetry interface {
	Emit(event string, measurements map[string]float64, metadata map[string]string)
}

// noopTelemetry swallows all events. Used when no emitter is configured.
type noopTelemetry struct{}

func (noopTelemetry) Emit(string, map[string]float64, map[string]string) {}
