package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"inventory-ledger-service/internal/domain"
	"inventory-ledger-service/internal/engine"
	"inventory-ledger-service/internal/query"
	"inventory-ledger-service/internal/repository"
	"inventory-ledger-service/internal/reservation"
	"inventory-ledger-service/pkg/errors"
	"inventory-ledger-service/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StockHandler exposes the accounting engine, reservation lifecycle and
// query service over HTTP.
type StockHandler struct {
	logger       *zap.Logger
	engine       *engine.Engine
	queries      *query.Service
	reservations *reservation.Service
}

// NewStockHandler creates the HTTP handler set.
func NewStockHandler(logger *zap.Logger, eng *engine.Engine, queries *query.Service, reservations *reservation.Service) *StockHandler {
	return &StockHandler{
		logger:       logger,
		engine:       eng,
		queries:      queries,
		reservations: reservations,
	}
}

// RegisterRoutes mounts all endpoints under the given group.
func (h *StockHandler) RegisterRoutes(v1 *gin.RouterGroup) {
	stock := v1.Group("/stock")
	{
		stock.POST("", h.CreateStockRecord)
		stock.GET("", h.ListStockRecords)
		stock.GET("/:id", h.GetStockRecord)
		stock.GET("/sku/:sku", h.GetStockRecordBySKU)
		stock.GET("/variant/:variantId", h.GetStockRecordByVariant)
		stock.POST("/:id/transactions", h.ApplyTransaction)
		stock.GET("/:id/transactions", h.ListStockTransactions)
		stock.GET("/:id/audit", h.AuditStockRecord)
	}

	v1.GET("/transactions", h.SearchTransactions)

	reservations := v1.Group("/reservations")
	{
		reservations.POST("/reserve", h.Reserve)
		reservations.POST("/release", h.Release)
		reservations.POST("/commit", h.Commit)
	}
}

// CreateStockRecord handles POST /api/v1/stock
// @Summary      Provision inventory for a variant
// @Description  Creates the stock record for a variant. Initial stock is recorded as a STOCK_IN ledger entry so the ledger replays to the current counters.
// @Tags         stock
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Request-ID  header    string                    false  "Request ID for idempotency"
// @Param        request       body      CreateStockRecordRequest  true   "Provisioning request"
// @Success      201  {object}  StockRecordResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse  "Variant already provisioned"
// @Router       /stock [post]
func (h *StockHandler) CreateStockRecord(c *gin.Context) {
	var req CreateStockRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	variantID, err := uuid.Parse(req.VariantID)
	if err != nil {
		c.JSON(http.StatusBadRequest, errors.NewValidationError("invalid variant id", "variant_id"))
		return
	}

	record, err := h.engine.CreateStockRecord(c.Request.Context(), engine.CreateRequest{
		VariantID:    variantID,
		InitialStock: req.InitialStock,
		ReorderLevel: req.ReorderLevel,
		SKU:          req.SKU,
		Location:     req.Location,
		ActorID:      middleware.Actor(c),
	})
	if err != nil {
		h.domainError(c, err)
		return
	}

	h.logger.Info("Stock record created",
		zap.String("stock_record_id", record.ID.String()),
		zap.String("variant_id", record.VariantID.String()),
		zap.Int("initial_stock", req.InitialStock),
	)
	c.JSON(http.StatusCreated, toStockRecordResponse(record))
}

// GetStockRecord handles GET /api/v1/stock/:id
// @Summary  Get a stock record by id
// @Tags     stock
// @Produce  json
// @Param    id   path      string  true  "Stock record ID (UUID)"
// @Success  200  {object}  StockRecordResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /stock/{id} [get]
func (h *StockHandler) GetStockRecord(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errors.NewValidationError("invalid stock record id", "id"))
		return
	}

	record, err := h.queries.GetByID(c.Request.Context(), id)
	if err != nil {
		h.domainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toStockRecordResponse(record))
}

// GetStockRecordBySKU handles GET /api/v1/stock/sku/:sku
// @Summary  Get a stock record by SKU
// @Tags     stock
// @Produce  json
// @Param    sku  path      string  true  "SKU"
// @Success  200  {object}  StockRecordResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /stock/sku/{sku} [get]
func (h *StockHandler) GetStockRecordBySKU(c *gin.Context) {
	record, err := h.queries.GetBySKU(c.Request.Context(), c.Param("sku"))
	if err != nil {
		h.domainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toStockRecordResponse(record))
}

// GetStockRecordByVariant handles GET /api/v1/stock/variant/:variantId
// @Summary  Get the stock record of a variant
// @Tags     stock
// @Produce  json
// @Param    variantId  path      string  true  "Variant ID (UUID)"
// @Success  200  {object}  StockRecordResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /stock/variant/{variantId} [get]
func (h *StockHandler) GetStockRecordByVariant(c *gin.Context) {
	variantID, err := uuid.Parse(c.Param("variantId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errors.NewValidationError("invalid variant id", "variantId"))
		return
	}

	record, err := h.queries.GetByVariantID(c.Request.Context(), variantID)
	if err != nil {
		h.domainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toStockRecordResponse(record))
}

// ListStockRecords handles GET /api/v1/stock
// @Summary  List stock records
// @Tags     stock
// @Produce  json
// @Param    page       query     int  false  "Page (1-based)"      default(1)
// @Param    page_size  query     int  false  "Page size"           default(20)
// @Success  200  {object}  ListStockRecordsResponse
// @Router   /stock [get]
func (h *StockHandler) ListStockRecords(c *gin.Context) {
	page, pageSize := pagination(c)

	records, total, err := h.queries.List(c.Request.Context(), page, pageSize)
	if err != nil {
		h.domainError(c, err)
		return
	}

	resp := ListStockRecordsResponse{
		Records:    make([]StockRecordResponse, 0, len(records)),
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}
	for i := range records {
		resp.Records = append(resp.Records, toStockRecordResponse(&records[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// ApplyTransaction handles POST /api/v1/stock/:id/transactions
// @Summary      Apply a stock transaction
// @Description  Applies one of STOCK_IN, STOCK_OUT, ADJUSTMENT, RESERVATION, RELEASE_RESERVATION. The counter update and the ledger entry are persisted as one atomic unit; on a guard violation nothing changes.
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Request-ID  header    string                   false  "Request ID for idempotency"
// @Param        id            path      string                   true   "Stock record ID (UUID)"
// @Param        request       body      ApplyTransactionRequest  true   "Transaction"
// @Success      200  {object}  map[string]interface{}  "Updated record and appended entry"
// @Failure      400  {object}  ErrorResponse  "Invalid quantity, type, or adjustment"
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse  "Guard violation (insufficient stock/available, over-release)"
// @Failure      503  {object}  ErrorResponse  "Concurrency conflict, retry"
// @Router       /stock/{id}/transactions [post]
func (h *StockHandler) ApplyTransaction(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errors.NewValidationError("invalid stock record id", "id"))
		return
	}

	var req ApplyTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	record, entry, err := h.engine.ApplyTransaction(c.Request.Context(), engine.ApplyRequest{
		StockRecordID: id,
		Type:          domain.TransactionType(req.Type),
		Quantity:      req.Quantity,
		Reference:     req.Reference,
		Notes:         req.Notes,
		ActorID:       middleware.Actor(c),
	})
	if err != nil {
		h.domainError(c, err)
		return
	}

	h.logger.Info("Transaction applied",
		zap.String("stock_record_id", id.String()),
		zap.String("type", req.Type),
		zap.Int("quantity", req.Quantity),
		zap.String("reference", req.Reference),
	)
	c.JSON(http.StatusOK, gin.H{
		"record": toStockRecordResponse(record),
		"entry":  toLedgerEntryResponse(*entry),
	})
}

// ListStockTransactions handles GET /api/v1/stock/:id/transactions
// @Summary  List a stock record's ledger in insertion order
// @Tags     transactions
// @Produce  json
// @Param    id         path      string  true   "Stock record ID (UUID)"
// @Param    page       query     int     false  "Page (1-based)"
// @Param    page_size  query     int     false  "Page size"
// @Success  200  {object}  ListTransactionsResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /stock/{id}/transactions [get]
func (h *StockHandler) ListStockTransactions(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errors.NewValidationError("invalid stock record id", "id"))
		return
	}

	// 404 for unknown records rather than an empty ledger.
	if _, err := h.queries.GetByID(c.Request.Context(), id); err != nil {
		h.domainError(c, err)
		return
	}

	page, pageSize := pagination(c)
	h.respondTransactions(c, repository.LedgerFilter{
		StockRecordID: id,
		Page:          page,
		PageSize:      pageSize,
	})
}

// SearchTransactions handles GET /api/v1/transactions
// @Summary  Search ledger entries
// @Tags     transactions
// @Produce  json
// @Param    stock_record_id  query     string  false  "Stock record ID (UUID)"
// @Param    type             query     string  false  "Transaction type"
// @Param    reference        query     string  false  "External reference (e.g. order id)"
// @Param    from             query     string  false  "RFC3339 lower bound"
// @Param    to               query     string  false  "RFC3339 upper bound"
// @Param    page             query     int     false  "Page (1-based)"
// @Param    page_size        query     int     false  "Page size"
// @Success  200  {object}  ListTransactionsResponse
// @Failure  400  {object}  ErrorResponse
// @Router   /transactions [get]
func (h *StockHandler) SearchTransactions(c *gin.Context) {
	filter := repository.LedgerFilter{
		Reference: c.Query("reference"),
	}

	if raw := c.Query("stock_record_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errors.NewValidationError("invalid stock record id", "stock_record_id"))
			return
		}
		filter.StockRecordID = id
	}
	if raw := c.Query("type"); raw != "" {
		txType := domain.TransactionType(raw)
		if !txType.Valid() {
			c.JSON(http.StatusBadRequest, errors.NewValidationError("unknown transaction type", "type"))
			return
		}
		filter.Type = txType
	}
	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errors.NewValidationError("invalid from timestamp", "from"))
			return
		}
		filter.From = from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errors.NewValidationError("invalid to timestamp", "to"))
			return
		}
		filter.To = to
	}

	filter.Page, filter.PageSize = pagination(c)
	h.respondTransactions(c, filter)
}

// AuditStockRecord handles GET /api/v1/stock/:id/audit
// @Summary      Replay a stock record's ledger
// @Description  Folds every ledger entry in creation order and compares the result with the stored counters.
// @Tags         transactions
// @Produce      json
// @Param        id   path      string  true  "Stock record ID (UUID)"
// @Success      200  {object}  query.AuditReport
// @Failure      404  {object}  ErrorResponse
// @Router       /stock/{id}/audit [get]
func (h *StockHandler) AuditStockRecord(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errors.NewValidationError("invalid stock record id", "id"))
		return
	}

	report, err := h.queries.Audit(c.Request.Context(), id)
	if err != nil {
		h.domainError(c, err)
		return
	}
	if !report.Consistent {
		h.logger.Error("Ledger replay mismatch",
			zap.String("stock_record_id", id.String()),
			zap.Int("stored_stock", report.StoredStock),
			zap.Int("replayed_stock", report.ReplayedStock),
			zap.Int("stored_reserved", report.StoredReserved),
			zap.Int("replayed_reserved", report.ReplayedReserved),
		)
	}
	c.JSON(http.StatusOK, report)
}

// Reserve handles POST /api/v1/reservations/reserve
// @Summary      Reserve stock for a variant
// @Description  Holds units against a pending order. Fails when the requested quantity exceeds available stock; two concurrent reservations can never jointly oversell.
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Request-ID  header    string              false  "Request ID for idempotency"
// @Param        request       body      ReservationRequest  true   "Reservation"
// @Success      200  {object}  reservation.Snapshot
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse  "Insufficient available stock"
// @Router       /reservations/reserve [post]
func (h *StockHandler) Reserve(c *gin.Context) {
	h.lifecycle(c, h.reservations.Reserve)
}

// Release handles POST /api/v1/reservations/release
// @Summary  Release reserved stock back to the available pool
// @Tags     reservations
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    X-Request-ID  header    string              false  "Request ID for idempotency"
// @Param    request       body      ReservationRequest  true   "Release"
// @Success  200  {object}  reservation.Snapshot
// @Failure  404  {object}  ErrorResponse
// @Failure  409  {object}  ErrorResponse  "Release exceeds reserved quantity"
// @Router   /reservations/release [post]
func (h *StockHandler) Release(c *gin.Context) {
	h.lifecycle(c, h.reservations.Release)
}

// Commit handles POST /api/v1/reservations/commit
// @Summary      Commit a reservation on fulfillment
// @Description  Atomically removes the quantity from both the reserved count and on-hand stock, recorded as a paired RELEASE_RESERVATION/STOCK_OUT with a shared commit id. A partial commit keeps the remainder reserved.
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Request-ID  header    string              false  "Request ID for idempotency"
// @Param        request       body      ReservationRequest  true   "Commit"
// @Success      200  {object}  reservation.Snapshot
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse  "Commit exceeds reserved quantity"
// @Router       /reservations/commit [post]
func (h *StockHandler) Commit(c *gin.Context) {
	h.lifecycle(c, h.reservations.Commit)
}

type lifecycleFunc func(ctx context.Context, variantID uuid.UUID, quantity int, reference, actorID string) (*reservation.Snapshot, error)

func (h *StockHandler) lifecycle(c *gin.Context, fn lifecycleFunc) {
	var req ReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	variantID, err := uuid.Parse(req.VariantID)
	if err != nil {
		c.JSON(http.StatusBadRequest, errors.NewValidationError("invalid variant id", "variant_id"))
		return
	}

	snap, err := fn(c.Request.Context(), variantID, req.Quantity, req.Reference, middleware.Actor(c))
	if err != nil {
		h.domainError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *StockHandler) respondTransactions(c *gin.Context, filter repository.LedgerFilter) {
	entries, total, err := h.queries.ListTransactions(c.Request.Context(), filter)
	if err != nil {
		h.domainError(c, err)
		return
	}

	resp := ListTransactionsResponse{
		Entries:    make([]LedgerEntryResponse, 0, len(entries)),
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: totalPages(total, filter.PageSize),
	}
	for _, entry := range entries {
		resp.Entries = append(resp.Entries, toLedgerEntryResponse(entry))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *StockHandler) badRequest(c *gin.Context, err error) {
	h.logger.Warn("Invalid request", zap.Error(err))
	c.JSON(http.StatusBadRequest, errors.NewInvalidRequest("invalid request body", err.Error()))
}

func (h *StockHandler) domainError(c *gin.Context, err error) {
	stdErr := errors.FromDomain(err, "")
	if stdErr.Code == "InternalError" {
		h.logger.Error("Request failed", zap.Error(err))
	}
	c.JSON(stdErr.HTTPStatus(), stdErr)
}

func pagination(c *gin.Context) (int, int) {
	page := 1
	pageSize := 20
	if raw := c.Query("page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			page = parsed
		}
	}
	if raw := c.Query("page_size"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			pageSize = parsed
		}
	}
	return page, pageSize
}
