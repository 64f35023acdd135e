// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

package worker

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestCollectorSnapshotTracksProcessedAndFailed(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.recordJob(JobIngestion, 10*time.Millisecond, nil)
	c.recordJob(JobIngestion, 10*time.Millisecond, errors.New("boom"))
	c.recordJob(JobTimeoutSweep, 5*time.Millisecond, nil)

	snap := c.Snapshot(3)
	require.Equal(t, 3, snap.QueueDepth)
	require.Equal(t, int64(1), snap.ProcessedByKind[JobIngestion])
	require.Equal(t, int64(1), snap.FailedByKind[JobIngestion])
	require.Equal(t, int64(1), snap.ProcessedByKind[JobTimeoutSweep])
	require.Equal(t, int64(0), snap.FailedByKind[JobTimeoutSweep])
}
