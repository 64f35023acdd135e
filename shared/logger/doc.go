// Copyright 2025 AgentCore
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

/*
Package logger provides structured JSON logging with multi-tenant support
for AgentCore components, built on top of go.uber.org/zap.

# Overview

The logger package wraps a zap.Logger configured for production JSON
output, adding the field conventions every component needs for
multi-tenant correlation:

  - Log level (debug, info, warn, error)
  - Component name (policy, memory, retrieval, router, ...)
  - Instance ID and container name (for distributed tracing)
  - Client ID (tenant isolation)
  - Request ID (request correlation)
  - Custom fields

# Usage

Create a logger for your component:

	log := logger.New("retrieval")

Log messages with client and request context:

	log.Info("client-123", "req-456", "processing request", map[string]interface{}{
	    "method": "POST",
	    "path":   "/api/v1/process",
	})

Log errors with status codes:

	log.ErrorWithCode("client-123", "req-456", "request failed", 500, err, map[string]interface{}{
	    "endpoint": "/api/v1/process",
	})

Log with duration tracking:

	start := time.Now()
	// ... do work ...
	log.InfoWithDuration("client-123", "req-456", "request completed",
	    float64(time.Since(start).Milliseconds()), nil)

# Output Format

Log entries are emitted as single-line JSON via zap's JSON encoder:

	{"level":"info","ts":"2025-01-15T10:30:00.123Z","msg":"processing request",
	 "component":"retrieval","instance_id":"i-abc123","container":"retrieval-xyz",
	 "client_id":"client-123","request_id":"req-456","method":"POST"}

# Environment Variables

The logger reads these environment variables:

  - INSTANCE_ID: Deployment instance identifier
  - HOSTNAME: Container hostname (auto-detected)

# Thread Safety

Logger instances wrap a zap.Logger and are safe for concurrent use from
multiple goroutines.
*/
package logger
