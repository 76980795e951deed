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
	"github.com/prometheus/client_golang/prometheus"
)

// registryMetrics exports registry activity to prometheus. Collectors are
// created per registry instance and registered on the caller's registerer so
// tests stay isolated.
type registryMetrics struct {
	registrations   *prometheus.CounterVec
	calls           *prometheus.CounterVec
	registeredPorts prometheus.Gauge
}

func newRegistryMetrics(reg prometheus.Registerer) *registryMetrics {
	m := &registryMetrics{
		registrations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portmesh_registry_registrations_total",
				Help: "Total number of adapter registrations, including overwrites",
			},
			[]string{"port"},
		),
		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portmesh_registry_calls_total",
				Help: "Total number of adapter calls recorded through the registry",
			},
			[]string{"port", "status"},
		),
		registeredPorts: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "portmesh_registry_registered_ports",
				Help: "Number of ports currently registered",
			},
		),
	}

	reg.MustRegister(m.registrations, m.calls, m.registeredPorts)
	return m
}
