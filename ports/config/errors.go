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

package config

import "fmt"

// IOError indicates the manifest source could not be read.
type IOError struct {
	Path  string
	Cause error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("manifest source %q unreadable: %v", e.Path, e.Cause)
}

func (e *IOError) Unwrap() error { return e.Cause }

// ParseError indicates the manifest source is not well-formed YAML.
type ParseError struct {
	Detail string
	Cause  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("manifest parse failed: %s", e.Detail)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// MissingEnvVarError indicates a ${NAME} placeholder referenced an unset
// environment variable. The whole load fails; no partial substitution.
type MissingEnvVarError struct {
	Name string
}

func (e *MissingEnvVarError) Error() string {
	return fmt.Sprintf("environment variable %q referenced by manifest is not set", e.Name)
}

// SchemaError indicates a required field is missing or a field has the wrong
// type. Field is a dotted path into the document (e.g. "adapters.cache.adapter").
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("manifest schema violation at %q: %s", e.Field, e.Reason)
}
