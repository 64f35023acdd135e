// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"agentcore/platform/domain"
)

func TestChunkStoreSaveChunksEmptyIsNoop(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewChunkStore(db)
	require.NoError(t, store.SaveChunks(context.Background(), nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestChunkStoreSaveChunksCommitsTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	chunks := []domain.DocumentChunk{
		{ID: "chunk-1", DocumentID: "doc-1", TenantID: "tenant-1", Ordinal: 0, Text: "hello", TokenCount: 1, CreatedAt: time.Now()},
		{ID: "chunk-2", DocumentID: "doc-1", TenantID: "tenant-1", Ordinal: 1, Text: "world", TokenCount: 1, CreatedAt: time.Now()},
	}

	mock.ExpectBegin()
	mock.ExpectPrepare("INSERT INTO document_chunks")
	mock.ExpectExec("INSERT INTO document_chunks").
		WithArgs(chunks[0].ID, chunks[0].DocumentID, chunks[0].TenantID, chunks[0].Ordinal, chunks[0].Text,
			chunks[0].TokenCount, sqlmock.AnyArg(), sqlmock.AnyArg(), chunks[0].CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO document_chunks").
		WithArgs(chunks[1].ID, chunks[1].DocumentID, chunks[1].TenantID, chunks[1].Ordinal, chunks[1].Text,
			chunks[1].TokenCount, sqlmock.AnyArg(), sqlmock.AnyArg(), chunks[1].CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	store := NewChunkStore(db)
	require.NoError(t, store.SaveChunks(context.Background(), chunks))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCosineSimilarity(t *testing.T) {
	require.InDelta(t, 1.0, cosineSimilarity([]float32{1, 0}, []float32{1, 0}), 1e-9)
	require.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	require.Equal(t, 0.0, cosineSimilarity(nil, []float32{1}))
	require.Equal(t, 0.0, cosineSimilarity([]float32{1, 2}, []float32{1}))
}

func TestSortDescending(t *testing.T) {
	values := []int{3, 1, 4, 1, 5, 9, 2, 6}
	sortDescending(values, func(a, b int) bool { return a > b })
	require.Equal(t, []int{9, 6, 5, 4, 3, 2, 1, 1}, values)
}
