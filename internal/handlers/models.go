package handlers

import (
	"time"

	"inventory-ledger-service/internal/domain"
)

// CreateStockRecordRequest provisions inventory for a variant.
type CreateStockRecordRequest struct {
	VariantID    string `json:"variant_id" binding:"required"`
	InitialStock int    `json:"initial_stock" binding:"min=0"`
	ReorderLevel int    `json:"reorder_level" binding:"min=0"`
	SKU          string `json:"sku"`
	Location     string `json:"location"`
}

// ApplyTransactionRequest applies one transaction to a stock record.
type ApplyTransactionRequest struct {
	Type      string `json:"type" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
	Reference string `json:"reference"`
	Notes     string `json:"notes"`
}

// ReservationRequest drives the reserve/release/commit lifecycle by variant.
type ReservationRequest struct {
	VariantID string `json:"variant_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
	Reference string `json:"reference" binding:"required"`
}

// StockRecordResponse is the read view of a stock record.
type StockRecordResponse struct {
	ID            string    `json:"id"`
	VariantID     string    `json:"variant_id"`
	SKU           string    `json:"sku"`
	Location      string    `json:"location"`
	Stock         int       `json:"stock"`
	Reserved      int       `json:"reserved"`
	Available     int       `json:"available"`
	ReorderLevel  int       `json:"reorder_level"`
	BelowReorder  bool      `json:"below_reorder"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// LedgerEntryResponse is the read view of a ledger entry.
type LedgerEntryResponse struct {
	ID            string    `json:"id"`
	StockRecordID string    `json:"stock_record_id"`
	Type          string    `json:"type"`
	Quantity      int       `json:"quantity"`
	Reference     string    `json:"reference"`
	Notes         string    `json:"notes,omitempty"`
	ActorID       string    `json:"actor_id,omitempty"`
	CommitID      string    `json:"commit_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// ListStockRecordsResponse is a paginated stock record listing.
type ListStockRecordsResponse struct {
	Records    []StockRecordResponse `json:"records"`
	Total      int                   `json:"total"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"page_size"`
	TotalPages int                   `json:"total_pages"`
}

// ListTransactionsResponse is a paginated ledger listing.
type ListTransactionsResponse struct {
	Entries    []LedgerEntryResponse `json:"entries"`
	Total      int                   `json:"total"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"page_size"`
	TotalPages int                   `json:"total_pages"`
}

// ErrorResponse documents the error payload for swagger.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details string `json:"details"`
}

func toStockRecordResponse(record *domain.StockRecord) StockRecordResponse {
	return StockRecordResponse{
		ID:           record.ID.String(),
		VariantID:    record.VariantID.String(),
		SKU:          record.SKU,
		Location:     record.Location,
		Stock:        record.StockQuantity,
		Reserved:     record.ReservedQuantity,
		Available:    record.AvailableQuantity(),
		ReorderLevel: record.ReorderLevel,
		BelowReorder: record.BelowReorderLevel(),
		CreatedAt:    record.CreatedAt,
		UpdatedAt:    record.UpdatedAt,
	}
}

func toLedgerEntryResponse(entry domain.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		ID:            entry.ID.String(),
		StockRecordID: entry.StockRecordID.String(),
		Type:          string(entry.Type),
		Quantity:      entry.Quantity,
		Reference:     entry.Reference,
		Notes:         entry.Notes,
		ActorID:       entry.ActorID,
		CommitID:      entry.CommitID,
		CreatedAt:     entry.CreatedAt,
	}
}

func totalPages(total, pageSize int) int {
	if pageSize <= 0 {
		return 1
	}
	pages := total / pageSize
	if total%pageSize != 0 {
		pages++
	}
	if pages == 0 {
		pages = 1
	}
	return pages
}
