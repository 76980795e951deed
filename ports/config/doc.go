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
Package config loads and validates PortMesh manifest files.

# Manifest Format

A manifest is a YAML document declaring which adapter backs which port:

	version: "1"
	environment: production

	adapters:
	  cache:
	    adapter: cache/redis
	    enabled: true
	    config:
	      host: ${REDIS_HOST}
	      port: 6379

	  documents:
	    adapter: store/postgres
	    config:
	      dsn: ${DATABASE_URL}

Additional top-level sections are preserved verbatim in Manifest.Extensions;
the core never interprets them.

# Environment Placeholders

Every string value may reference process environment variables with ${NAME}.
Expansion is applied recursively after parsing, including inside nested
mappings and sequences. A reference to an unset variable fails the whole load
with a MissingEnvVarError; no partially substituted manifest is ever returned.
Only the flat ${NAME} form is recognised.

# Errors

Load returns exactly one of four error kinds: IOError (unreadable source),
ParseError (malformed YAML), MissingEnvVarError, or SchemaError (missing or
mistyped field). All carry enough context to act on and support errors.As.
*/
package config
