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

package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents the severity of a log entry.
type LogLevel string

const (
	DEBUG LogLevel = "DEBUG"
	INFO  LogLevel = "INFO"
	WARN  LogLevel = "WARN"
	ERROR LogLevel = "ERROR"
)

// Logger provides structured logging with multi-tenant support, backed by
// a zap.Logger configured for JSON output.
type Logger struct {
	Component  string
	InstanceID string
	Container  string

	zl *zap.Logger
}

// New creates a new Logger for the specified component.
func New(component string) *Logger {
	instanceID := os.Getenv("INSTANCE_ID")
	if instanceID == "" {
		instanceID = "unknown"
	}

	container, err := os.Hostname()
	if err != nil {
		container = "unknown"
	}

	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	cfg.EncoderConfig.MessageKey = "message"
	cfg.EncoderConfig.LevelKey = "level"

	zl, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		// zap.NewProductionConfig().Build() only fails on a malformed
		// encoder/sink configuration; fall back to a no-op core rather
		// than letting every component's startup panic on a logging bug.
		zl = zap.NewNop()
	}

	zl = zl.With(
		zap.String("component", component),
		zap.String("instance_id", instanceID),
		zap.String("container", container),
	)

	return &Logger{
		Component:  component,
		InstanceID: instanceID,
		Container:  container,
		zl:         zl,
	}
}

func toZapFields(clientID, requestID string, fields map[string]interface{}) []zap.Field {
	zfields := make([]zap.Field, 0, len(fields)+2)
	zfields = append(zfields, zap.String("client_id", clientID))
	if requestID != "" {
		zfields = append(zfields, zap.String("request_id", requestID))
	}
	for k, v := range fields {
		zfields = append(zfields, zap.Any(k, v))
	}
	return zfields
}

// Log writes a structured log entry at the given level.
func (l *Logger) Log(level LogLevel, clientID, requestID, message string, fields map[string]interface{}) {
	zfields := toZapFields(clientID, requestID, fields)
	switch level {
	case DEBUG:
		l.zl.Debug(message, zfields...)
	case WARN:
		l.zl.Warn(message, zfields...)
	case ERROR:
		l.zl.Error(message, zfields...)
	default:
		l.zl.Info(message, zfields...)
	}
}

// Info logs an informational message.
func (l *Logger) Info(clientID, requestID, message string, fields map[string]interface{}) {
	l.Log(INFO, clientID, requestID, message, fields)
}

// Error logs an error message.
func (l *Logger) Error(clientID, requestID, message string, fields map[string]interface{}) {
	l.Log(ERROR, clientID, requestID, message, fields)
}

// Warn logs a warning message.
func (l *Logger) Warn(clientID, requestID, message string, fields map[string]interface{}) {
	l.Log(WARN, clientID, requestID, message, fields)
}

// Debug logs a debug message.
func (l *Logger) Debug(clientID, requestID, message string, fields map[string]interface{}) {
	l.Log(DEBUG, clientID, requestID, message, fields)
}

// InfoWithDuration logs an info message with a duration_ms field.
func (l *Logger) InfoWithDuration(clientID, requestID, message string, durationMS float64, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields["duration_ms"] = durationMS
	l.Info(clientID, requestID, message, fields)
}

// ErrorWithCode logs an error with an HTTP-style status code.
func (l *Logger) ErrorWithCode(clientID, requestID, message string, statusCode int, err error, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields["status_code"] = statusCode
	if err != nil {
		fields["error"] = err.Error()
	}
	l.Error(clientID, requestID, message, fields)
}

// Sync flushes any buffered log entries. Components should call this
// during shutdown.
func (l *Logger) Sync() error {
	return l.zl.Sync()
}
