// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

/*
Package corexerr provides the error taxonomy shared by every component of
the Agent Execution Core.

Every error that crosses a component boundary carries one of a fixed set of
kinds (VALIDATION, AUTHN, AUTHZ, COMPLIANCE, CONCURRENCY, BUDGET, TIMEOUT,
CANCELLED, UPSTREAM, INTERNAL), a stable machine-readable code, a
human-readable message, and a correlation identifier for tracing.

No layer matches errors by inspecting string content; callers use Is/As or
the As helper in this package to recover the Kind.
*/
package corexerr
