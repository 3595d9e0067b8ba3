package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"inventory-ledger-service/internal/domain"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// SQLiteRepository persists stock records and ledger entries in SQLite.
// The connection pool is capped at a single connection (Single Writer
// Principle) and WAL mode is enabled, so every UpdateWithEntries runs as one
// serialized SQL transaction.
type SQLiteRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteRepository opens (or creates) the database at path and ensures
// the schema exists.
func NewSQLiteRepository(path string, logger *zap.Logger) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=1")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // Single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	repo := &SQLiteRepository{db: db, logger: logger}
	if err := repo.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return repo, nil
}

func (r *SQLiteRepository) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS stock_records (
		id TEXT PRIMARY KEY,
		variant_id TEXT UNIQUE NOT NULL,
		sku TEXT,
		location TEXT,
		stock_quantity INTEGER NOT NULL DEFAULT 0,
		reserved_quantity INTEGER NOT NULL DEFAULT 0,
		reorder_level INTEGER NOT NULL DEFAULT 0,
		version INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		CHECK(stock_quantity >= 0),
		CHECK(reserved_quantity >= 0),
		CHECK(reserved_quantity <= stock_quantity)
	);

	CREATE TABLE IF NOT EXISTS ledger_entries (
		id TEXT PRIMARY KEY,
		seq INTEGER NOT NULL UNIQUE,
		stock_record_id TEXT NOT NULL,
		transaction_type TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		reference TEXT,
		notes TEXT,
		actor_id TEXT,
		commit_id TEXT,
		created_at TEXT NOT NULL,
		FOREIGN KEY (stock_record_id) REFERENCES stock_records(id),
		CHECK(quantity <> 0),
		CHECK(transaction_type IN ('STOCK_IN', 'STOCK_OUT', 'ADJUSTMENT', 'RESERVATION', 'RELEASE_RESERVATION'))
	);

	CREATE INDEX IF NOT EXISTS idx_stock_records_variant_id ON stock_records(variant_id);
	CREATE INDEX IF NOT EXISTS idx_stock_records_sku ON stock_records(sku);
	CREATE INDEX IF NOT EXISTS idx_ledger_entries_stock_record_id ON ledger_entries(stock_record_id, seq);
	CREATE INDEX IF NOT EXISTS idx_ledger_entries_reference ON ledger_entries(reference);
	CREATE INDEX IF NOT EXISTS idx_ledger_entries_created_at ON ledger_entries(created_at);
	`

	_, err := r.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const stockColumns = `id, variant_id, sku, location, stock_quantity, reserved_quantity, reorder_level, version, created_at, updated_at`

func (r *SQLiteRepository) Create(ctx context.Context, record *domain.StockRecord) error {
	query := `
		INSERT INTO stock_records (` + stockColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		record.ID.String(),
		record.VariantID.String(),
		record.SKU,
		record.Location,
		record.StockQuantity,
		record.ReservedQuantity,
		record.ReorderLevel,
		record.Version,
		record.CreatedAt.UTC().Format(time.RFC3339Nano),
		record.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		if sqliteErr, ok := err.(sqlite3.Error); ok && sqliteErr.Code == sqlite3.ErrConstraint {
			return domain.ErrVariantExists
		}
		return fmt.Errorf("failed to insert stock record: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.StockRecord, error) {
	return r.findOne(ctx, `SELECT `+stockColumns+` FROM stock_records WHERE id = ?`, id.String())
}

func (r *SQLiteRepository) FindByVariantID(ctx context.Context, variantID uuid.UUID) (*domain.StockRecord, error) {
	return r.findOne(ctx, `SELECT `+stockColumns+` FROM stock_records WHERE variant_id = ?`, variantID.String())
}

func (r *SQLiteRepository) FindBySKU(ctx context.Context, sku string) (*domain.StockRecord, error) {
	return r.findOne(ctx, `SELECT `+stockColumns+` FROM stock_records WHERE sku = ?`, sku)
}

func (r *SQLiteRepository) findOne(ctx context.Context, query string, arg interface{}) (*domain.StockRecord, error) {
	record, err := scanStockRecord(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find stock record: %w", err)
	}
	return record, nil
}

func (r *SQLiteRepository) List(ctx context.Context, page, pageSize int) ([]domain.StockRecord, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM stock_records`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count stock records: %w", err)
	}

	if pageSize <= 0 {
		pageSize = total
	}
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * pageSize

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+stockColumns+` FROM stock_records ORDER BY created_at, id LIMIT ? OFFSET ?`,
		pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list stock records: %w", err)
	}
	defer rows.Close()

	records := make([]domain.StockRecord, 0, pageSize)
	for rows.Next() {
		record, err := scanStockRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan stock record: %w", err)
		}
		records = append(records, *record)
	}
	return records, total, rows.Err()
}

// UpdateWithEntries writes the record counters and the new ledger entries in
// one SQL transaction. The UPDATE is guarded by the expected version; zero
// affected rows means another writer got there first.
func (r *SQLiteRepository) UpdateWithEntries(ctx context.Context, record *domain.StockRecord, expectedVersion int, entries ...*domain.LedgerEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE stock_records
		SET stock_quantity = ?, reserved_quantity = ?, version = ?, updated_at = ?
		WHERE id = ? AND version = ?
	`,
		record.StockQuantity,
		record.ReservedQuantity,
		record.Version,
		record.UpdatedAt.UTC().Format(time.RFC3339Nano),
		record.ID.String(),
		expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to update stock record: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		// Either the record is gone or the version moved underneath us.
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM stock_records WHERE id = ?`, record.ID.String()).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check stock record existence: %w", err)
		}
		if exists == 0 {
			return domain.ErrNotFound
		}
		return domain.ErrConcurrencyConflict
	}

	for _, entry := range entries {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO ledger_entries (id, seq, stock_record_id, transaction_type, quantity, reference, notes, actor_id, commit_id, created_at)
			VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM ledger_entries), ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			entry.ID.String(),
			entry.StockRecordID.String(),
			string(entry.Type),
			entry.Quantity,
			entry.Reference,
			entry.Notes,
			entry.ActorID,
			entry.CommitID,
			entry.CreatedAt.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("failed to append ledger entry: %w", err)
		}
	}

	return tx.Commit()
}

const ledgerColumns = `id, stock_record_id, transaction_type, quantity, reference, notes, actor_id, commit_id, created_at`

func (r *SQLiteRepository) FindByStockRecordID(ctx context.Context, stockRecordID uuid.UUID, page, pageSize int) ([]domain.LedgerEntry, int, error) {
	return r.Search(ctx, LedgerFilter{StockRecordID: stockRecordID, Page: page, PageSize: pageSize})
}

func (r *SQLiteRepository) FindByReference(ctx context.Context, reference string) ([]domain.LedgerEntry, error) {
	entries, _, err := r.Search(ctx, LedgerFilter{Reference: reference})
	return entries, err
}

func (r *SQLiteRepository) Search(ctx context.Context, filter LedgerFilter) ([]domain.LedgerEntry, int, error) {
	where := ` WHERE 1=1`
	args := make([]interface{}, 0, 5)
	if filter.StockRecordID != uuid.Nil {
		where += ` AND stock_record_id = ?`
		args = append(args, filter.StockRecordID.String())
	}
	if filter.Type != "" {
		where += ` AND transaction_type = ?`
		args = append(args, string(filter.Type))
	}
	if filter.Reference != "" {
		where += ` AND reference = ?`
		args = append(args, filter.Reference)
	}
	if !filter.From.IsZero() {
		where += ` AND created_at >= ?`
		args = append(args, filter.From.UTC().Format(time.RFC3339Nano))
	}
	if !filter.To.IsZero() {
		where += ` AND created_at <= ?`
		args = append(args, filter.To.UTC().Format(time.RFC3339Nano))
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ledger_entries`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count ledger entries: %w", err)
	}

	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries` + where + ` ORDER BY seq`
	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.PageSize, (page-1)*filter.PageSize)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search ledger entries: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.LedgerEntry, 0)
	for rows.Next() {
		var entry domain.LedgerEntry
		var idStr, recordIDStr, txType, createdAtStr string
		if err := rows.Scan(&idStr, &recordIDStr, &txType, &entry.Quantity,
			&entry.Reference, &entry.Notes, &entry.ActorID, &entry.CommitID, &createdAtStr); err != nil {
			return nil, 0, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entry.ID, _ = uuid.Parse(idStr)
		entry.StockRecordID, _ = uuid.Parse(recordIDStr)
		entry.Type = domain.TransactionType(txType)
		if createdAt, err := time.Parse(time.RFC3339Nano, createdAtStr); err == nil {
			entry.CreatedAt = createdAt
		}
		entries = append(entries, entry)
	}
	return entries, total, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanStockRecord(row rowScanner) (*domain.StockRecord, error) {
	var record domain.StockRecord
	var idStr, variantIDStr, createdAtStr, updatedAtStr string

	err := row.Scan(
		&idStr,
		&variantIDStr,
		&record.SKU,
		&record.Location,
		&record.StockQuantity,
		&record.ReservedQuantity,
		&record.ReorderLevel,
		&record.Version,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return nil, err
	}

	record.ID, _ = uuid.Parse(idStr)
	record.VariantID, _ = uuid.Parse(variantIDStr)
	if createdAt, err := time.Parse(time.RFC3339Nano, createdAtStr); err == nil {
		record.CreatedAt = createdAt
	}
	if updatedAt, err := time.Parse(time.RFC3339Nano, updatedAtStr); err == nil {
		record.UpdatedAt = updatedAt
	}

	return &record, nil
}
