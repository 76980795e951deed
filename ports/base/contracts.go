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

// Cache is the capability contract for key-value caching ports.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Store is the capability contract for document storage ports. Documents are
// opaque payloads keyed by ID within a named collection.
type Store interface {
	Put(ctx context.Context, collection, id string, payload []byte) error
	Fetch(ctx context.Context, collection, id string) ([]byte, error)
	Remove(ctx context.Context, collection, id string) error
}
