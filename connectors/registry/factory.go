// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

package registry

import (
	"fmt"

	"agentcore/platform/connectors/base"
	"agentcore/platform/connectors/postgres"
	"agentcore/platform/connectors/redis"
	"agentcore/platform/connectors/s3"
	"agentcore/platform/connectors/slack"
)

// NewConnectorInstance is a ConnectorFactory covering every connector
// this module carries. It is passed to Registry.SetFactory so a
// connector installed via the marketplace API is lazily reconnected
// by type on first access, the same pattern the orchestrator's
// createConnectorInstance used for its own connector set.
func NewConnectorInstance(connectorType string) (base.Connector, error) {
	switch connectorType {
	case "postgres":
		return postgres.NewPostgresConnector(), nil
	case "redis":
		return redis.NewRedisConnector(), nil
	case "s3":
		return s3.NewS3Connector(), nil
	case "slack":
		return slack.NewSlackConnector(), nil
	default:
		return nil, fmt.Errorf("unsupported connector type: %s", connectorType)
	}
}
