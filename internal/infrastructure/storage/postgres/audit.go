package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/klauspost/compress/zstd"

	"retaguarda/internal/core/id"
	"retaguarda/internal/domain/audit"
)

var _ audit.Store = (*AuditStore)(nil)

// CompressionAlgo specifies the compression algorithm of a stored snapshot.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// DefaultCompressThreshold is the snapshot size above which snapshots are compressed.
const DefaultCompressThreshold = 4 * 1024

// auditRow is the storage shape of an audit entry.
type auditRow struct {
	ID                 id.ID           `db:"id"`
	EntityType         string          `db:"entity_type"`
	EntityID           id.ID           `db:"entity_id"`
	Action             string          `db:"action"`
	UserID             *string         `db:"user_id"`
	RequestID          *string         `db:"request_id"`
	Snapshot           []byte          `db:"snapshot"`
	SnapshotCompressed []byte          `db:"snapshot_compressed"`
	CompressionAlgo    CompressionAlgo `db:"compression_algo"`
	CreatedAt          time.Time       `db:"created_at"`
}

// AuditStore writes audit entries to the auditoria table.
type AuditStore struct {
	txManager         *TxManager
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

// NewAuditStore creates the postgres audit store.
// A non-positive threshold uses DefaultCompressThreshold.
func NewAuditStore(txManager *TxManager, compressThreshold int) (*AuditStore, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	if compressThreshold <= 0 {
		compressThreshold = DefaultCompressThreshold
	}

	return &AuditStore{
		txManager:         txManager,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: compressThreshold,
	}, nil
}

// Record inserts an entry, compressing large snapshots.
func (s *AuditStore) Record(ctx context.Context, entry audit.Entry) error {
	query, args, err := s.buildInsert(entry)
	if err != nil {
		return fmt.Errorf("build audit insert: %w", err)
	}
	if _, err := s.txManager.GetQuerier(ctx).Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (s *AuditStore) buildInsert(entry audit.Entry) (string, []any, error) {
	if id.IsNil(entry.ID) {
		entry.ID = id.New()
	}

	snapshot := []byte(entry.Snapshot)
	var compressed []byte
	algo := CompressionNone
	if len(snapshot) > s.compressThreshold {
		compressed = s.encoder.EncodeAll(snapshot, nil)
		snapshot = nil
		algo = CompressionZstd
	}

	return sq.Insert("auditoria").
		Columns("id", "entity_type", "entity_id", "action", "user_id", "request_id",
			"snapshot", "snapshot_compressed", "compression_algo", "created_at").
		Values(entry.ID, entry.EntityType, entry.EntityID, string(entry.Action),
			nullable(entry.UserID), nullable(entry.RequestID),
			snapshot, compressed, algo, entry.CreatedAt).
		PlaceholderFormat(sq.Dollar).
		ToSql()
}

// History returns the newest entries of an entity first, decompressing snapshots.
func (s *AuditStore) History(ctx context.Context, entityType string, entityID id.ID, limit int) ([]audit.Entry, error) {
	if limit <= 0 {
		limit = 100
	}

	query, args, err := sq.Select("id", "entity_type", "entity_id", "action", "user_id", "request_id",
		"snapshot", "snapshot_compressed", "compression_algo", "created_at").
		From("auditoria").
		Where(sq.Eq{"entity_type": entityType, "entity_id": entityID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build history query: %w", err)
	}

	var rows []auditRow
	if err := pgxscan.Select(ctx, s.txManager.GetQuerier(ctx), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}

	entries := make([]audit.Entry, 0, len(rows))
	for _, r := range rows {
		snapshot := r.Snapshot
		if r.CompressionAlgo == CompressionZstd && len(r.SnapshotCompressed) > 0 {
			snapshot, err = s.decoder.DecodeAll(r.SnapshotCompressed, nil)
			if err != nil {
				return nil, fmt.Errorf("decompress snapshot: %w", err)
			}
		}
		entries = append(entries, audit.Entry{
			ID:         r.ID,
			EntityType: r.EntityType,
			EntityID:   r.EntityID,
			Action:     audit.Action(r.Action),
			UserID:     deref(r.UserID),
			RequestID:  deref(r.RequestID),
			Snapshot:   snapshot,
			CreatedAt:  r.CreatedAt,
		})
	}
	return entries, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
