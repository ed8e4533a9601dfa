package postgres

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retaguarda/internal/core/id"
	"retaguarda/internal/domain/audit"
)

func testEntry(snapshot string) audit.Entry {
	return audit.Entry{
		ID:         id.New(),
		EntityType: "categoria",
		EntityID:   id.New(),
		Action:     audit.ActionUpdate,
		UserID:     "u-1",
		Snapshot:   json.RawMessage(snapshot),
		CreatedAt:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestAuditStore_BuildInsert_Small(t *testing.T) {
	s, err := NewAuditStore(nil, 64)
	require.NoError(t, err)

	query, args, err := s.buildInsert(testEntry(`{"nome":"Bebidas"}`))
	require.NoError(t, err)

	assert.Equal(t,
		"INSERT INTO auditoria (id,entity_type,entity_id,action,user_id,request_id,snapshot,snapshot_compressed,compression_algo,created_at) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)",
		query)
	require.Len(t, args, 10)
	assert.Equal(t, "update", args[3])
	assert.Equal(t, []byte(`{"nome":"Bebidas"}`), args[6])
	assert.Nil(t, args[7])
	assert.Equal(t, CompressionNone, args[8])
	assert.Nil(t, args[5], "empty request id is stored as NULL")
}

func TestAuditStore_BuildInsert_CompressesLargeSnapshots(t *testing.T) {
	s, err := NewAuditStore(nil, 64)
	require.NoError(t, err)

	big := `{"descricao":"` + strings.Repeat("x", 500) + `"}`
	_, args, err := s.buildInsert(testEntry(big))
	require.NoError(t, err)

	assert.Nil(t, args[6])
	assert.Equal(t, CompressionZstd, args[8])

	compressed, ok := args[7].([]byte)
	require.True(t, ok)
	decoded, err := s.decoder.DecodeAll(compressed, nil)
	require.NoError(t, err)
	assert.Equal(t, big, string(decoded))
}
