package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"giftshop/internal/model"
	"giftshop/internal/service"
	"giftshop/internal/store"
	"giftshop/pkg/response"
)

// Handler bundles the service dependencies behind the HTTP surface.
type Handler struct {
	accountService  *service.AccountService
	catalogService  *service.CatalogService
	purchaseService *service.PurchaseService
	creditService   *service.CreditService
	adminID         string
}

func NewHandler(
	accountService *service.AccountService,
	catalogService *service.CatalogService,
	purchaseService *service.PurchaseService,
	creditService *service.CreditService,
	adminID string,
) *Handler {
	return &Handler{
		accountService:  accountService,
		catalogService:  catalogService,
		purchaseService: purchaseService,
		creditService:   creditService,
		adminID:         adminID,
	}
}

// writeError maps the typed business errors onto response codes so the
// client can branch on the exact failure. Anything outside the
// taxonomy is a server error.
func writeError(c *gin.Context, err error) {
	var insufficient *store.InsufficientFundsError
	switch {
	case errors.As(err, &insufficient):
		response.BusinessError(c, response.CodeInsufficientFunds, "insufficient funds",
			gin.H{"balance": insufficient.Balance})
	case errors.Is(err, store.ErrInsufficientFunds):
		response.Error(c, response.CodeInsufficientFunds, "insufficient funds")
	case errors.Is(err, store.ErrAssetNotFound):
		response.Error(c, response.CodeAssetNotFound, "asset not found")
	case errors.Is(err, store.ErrAlreadyOwned):
		response.Error(c, response.CodeAlreadyOwned, "asset already owned")
	case errors.Is(err, store.ErrDuplicateAsset):
		response.Error(c, response.CodeDuplicateAsset, "duplicate asset")
	case errors.Is(err, service.ErrUnauthorized):
		response.Error(c, response.CodeUnauthorized, "unauthorized")
	case errors.Is(err, service.ErrInvalidAmount), errors.Is(err, service.ErrInvalidSettlementKind),
		errors.Is(err, service.ErrInvalidDraft):
		response.Error(c, response.CodeInvalidAmount, err.Error())
	case errors.Is(err, store.ErrStorageUnavailable):
		response.Error(c, response.CodeStorageUnavailable, "storage unavailable, retry later")
	default:
		response.ServerError(c, err.Error())
	}
}

// ============================================================
// Catalog
// ============================================================

// ListAssets returns the whole catalog.
// GET /api/v1/catalog/list
func (h *Handler) ListAssets(c *gin.Context) {
	assets, err := h.catalogService.ListAssets(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"assets": assets, "total": len(assets)})
}

// GetAsset returns one asset.
// GET /api/v1/catalog/detail?asset_id=xxx
func (h *Handler) GetAsset(c *gin.Context) {
	assetID, err := strconv.ParseInt(c.Query("asset_id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid asset_id")
		return
	}

	asset, err := h.catalogService.GetAsset(c.Request.Context(), assetID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, asset)
}

// IngestAsset accepts a draft from the catalog feed over HTTP. The
// Kafka consumer is the primary path; this exists for backfills and is
// admin-gated.
// POST /api/v1/catalog/ingest
func (h *Handler) IngestAsset(c *gin.Context) {
	if verifiedUser(c) != h.adminID || h.adminID == "" {
		response.Error(c, response.CodeUnauthorized, "unauthorized")
		return
	}

	var draft model.AssetDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		response.ParamError(c, "invalid draft: "+err.Error())
		return
	}

	asset, err := h.catalogService.Ingest(c.Request.Context(), &draft)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, asset)
}

// ============================================================
// Account
// ============================================================

// GetAccount returns the verified caller's account.
// GET /api/v1/account/balance
func (h *Handler) GetAccount(c *gin.Context) {
	account, err := h.accountService.GetAccount(c.Request.Context(), verifiedUser(c))
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, gin.H{
		"user_id":       account.UserID,
		"balance":       account.Balance,
		"stars":         account.Stars,
		"premium_until": account.PremiumUntil,
	})
}

// History returns the caller's journal entries.
// GET /api/v1/account/history?page=1&page_size=10
func (h *Handler) History(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		response.ParamError(c, "invalid page")
		return
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if err != nil || pageSize < 1 || pageSize > 100 {
		response.ParamError(c, "invalid page_size")
		return
	}

	entries, total, err := h.accountService.History(c.Request.Context(), verifiedUser(c), page, pageSize)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, gin.H{
		"list":      entries,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// ============================================================
// Purchase
// ============================================================

// Purchase buys one asset for the verified caller.
// POST /api/v1/purchase/execute
func (h *Handler) Purchase(c *gin.Context) {
	var req struct {
		AssetID int64 `json:"asset_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request: "+err.Error())
		return
	}

	result, err := h.purchaseService.Purchase(c.Request.Context(), verifiedUser(c), req.AssetID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, result)
}

// ============================================================
// Credit
// ============================================================

// IssueCredit grants coins to a target account. The actor is the
// verified caller; authorization happens in the service.
// POST /api/v1/credit/issue
func (h *Handler) IssueCredit(c *gin.Context) {
	var req struct {
		TargetID string          `json:"target_id" binding:"required"`
		Amount   decimal.Decimal `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request: "+err.Error())
		return
	}

	balance, err := h.creditService.IssueCredit(c.Request.Context(), verifiedUser(c), req.TargetID, req.Amount)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"target_id": req.TargetID, "balance": balance})
}

// SettleExternalPayment applies a verified payment callback.
// POST /api/v1/payment/callback
func (h *Handler) SettleExternalPayment(c *gin.Context) {
	var req struct {
		UserID     string `json:"user_id" binding:"required"`
		Kind       string `json:"kind" binding:"required"`
		Amount     int64  `json:"amount" binding:"required"`
		PaymentRef string `json:"payment_ref" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request: "+err.Error())
		return
	}

	account, err := h.creditService.SettleExternalPayment(c.Request.Context(), req.UserID, req.Kind, req.Amount, req.PaymentRef)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, gin.H{
		"user_id":       account.UserID,
		"stars":         account.Stars,
		"premium_until": account.PremiumUntil,
	})
}
