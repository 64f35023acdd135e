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

package corexerr

import (
	"errors"
	"fmt"
)

// Kind is one of the eight error taxonomy kinds from the core's error
// handling design. Kinds are not concrete types; every error in the core
// carries one as a field.
type Kind string

const (
	Validation  Kind = "VALIDATION"
	Authn       Kind = "AUTHN"
	Authz       Kind = "AUTHZ"
	Compliance  Kind = "COMPLIANCE"
	Concurrency Kind = "CONCURRENCY"
	Budget      Kind = "BUDGET"
	Timeout     Kind = "TIMEOUT"
	Cancelled   Kind = "CANCELLED"
	Upstream    Kind = "UPSTREAM"
	Internal    Kind = "INTERNAL"
)

// Retryable reports whether the core may retry an operation that failed
// with this kind without surfacing the error to the caller, bounded by the
// layer's own retry budget.
func (k Kind) Retryable() bool {
	switch k {
	case Upstream, Concurrency:
		return true
	default:
		return false
	}
}

// Error is the error type every core component returns across a trust or
// component boundary. It mirrors connectors/base.ConnectorError's
// struct-plus-Error()/Unwrap() shape, generalized to the full taxonomy.
type Error struct {
	Kind          Kind
	Code          string
	Message       string
	CorrelationID string
	Field         string // populated for Kind == Validation
	Cause         error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s[%s]: %s (field=%s)", e.Kind, e.Code, e.Message, e.Field)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s[%s]: %s: %v", e.Kind, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s[%s]: %s", e.Kind, e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New constructs an *Error of the given kind.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap constructs an *Error of the given kind wrapping cause.
func Wrap(kind Kind, code, message string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Cause: cause}
}

// WithCorrelation attaches a correlation/trace identifier and returns the
// same error for chaining.
func (e *Error) WithCorrelation(id string) *Error {
	e.CorrelationID = id
	return e
}

// WithField marks the error as pertaining to a specific input field
// (only meaningful for Kind == Validation).
func (e *Error) WithField(field string) *Error {
	e.Field = field
	return e
}

// As extracts the Kind of err if it is (or wraps) a *corexerr.Error.
func As(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// Is reports whether err is (or wraps) a *corexerr.Error of kind k.
func Is(err error, k Kind) bool {
	kind, ok := As(err)
	return ok && kind == k
}

func Validationf(field, format string, args ...interface{}) *Error {
	return New(Validation, "validation_failed", fmt.Sprintf(format, args...)).WithField(field)
}

func Authzf(format string, args ...interface{}) *Error {
	return New(Authz, "access_denied", fmt.Sprintf(format, args...))
}

func Compliancef(rule, format string, args ...interface{}) *Error {
	return New(Compliance, rule, fmt.Sprintf(format, args...))
}

func Budgetf(format string, args ...interface{}) *Error {
	return New(Budget, "budget_exhausted", fmt.Sprintf(format, args...))
}

func Internalf(format string, args ...interface{}) *Error {
	return New(Internal, "internal_error", fmt.Sprintf(format, args...))
}
