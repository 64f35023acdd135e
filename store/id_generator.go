// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

package store

import "github.com/google/uuid"

// UUIDGenerator implements worker.IDGenerator using random UUIDs,
// mirroring the google/uuid dependency the wider example pack already
// carries for entity identifiers.
type UUIDGenerator struct{}

// NewID implements worker.IDGenerator.
func (UUIDGenerator) NewID() string { return uuid.NewString() }
