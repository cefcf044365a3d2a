package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"blendcatalog/internal/dto"
	"blendcatalog/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// SKULookupHandler serves the read-only lookup used by Order/Checkout.
// Read-through redis cache with a short TTL: quantities go stale for at most
// the TTL, which the allocation path re-checks anyway.
type SKULookupHandler struct {
	svc service.SKUService
	rdb *redis.Client
	ttl time.Duration
}

func NewSKULookupHandler(svc service.SKUService, rdb *redis.Client, ttl time.Duration) *SKULookupHandler {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &SKULookupHandler{svc: svc, rdb: rdb, ttl: ttl}
}

// Lookup godoc
// @Summary SKU lookup by code (no side effects)
// @Tags lookup
// @Produce json
// @Param code path string true "SKU code"
// @Success 200 {object} dto.SKULookupResponse
// @Failure 404 {object} apierror.Error
// @Router /v1/lookup/sku/{code} [get]
func (h *SKULookupHandler) Lookup(c *gin.Context) {
	code := c.Param("code")
	ctx := c.Request.Context()
	cacheKey := "sku_lookup:" + code

	if h.rdb != nil {
		if cached, err := h.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
			var resp dto.SKULookupResponse
			if jsonErr := json.Unmarshal(cached, &resp); jsonErr == nil {
				c.JSON(http.StatusOK, resp)
				return
			}
		}
	}

	resp, err := h.svc.Lookup(ctx, code)
	if err != nil {
		respondErr(c, err)
		return
	}

	if h.rdb != nil {
		// best effort, ignore errors
		if b, jsonErr := json.Marshal(resp); jsonErr == nil {
			_ = h.rdb.Set(context.Background(), cacheKey, b, h.ttl).Err()
		}
	}
	c.JSON(http.StatusOK, resp)
}
