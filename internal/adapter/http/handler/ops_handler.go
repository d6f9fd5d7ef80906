package handler

import (
	"net/http"
	"time"

	"experience-gift-fulfillment/internal/adapter/http/dto"
	"experience-gift-fulfillment/internal/core/ports"
	"experience-gift-fulfillment/pkg/apperror"
	"experience-gift-fulfillment/pkg/response"

	"github.com/gin-gonic/gin"
)

// OpsHandler serves the operator follow-up endpoints.
type OpsHandler struct {
	fulfillmentSvc ports.FulfillmentService
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(fulfillmentSvc ports.FulfillmentService) *OpsHandler {
	return &OpsHandler{fulfillmentSvc: fulfillmentSvc}
}

// GetOrder handles GET /api/v1/ops/orders/:reference.
func (h *OpsHandler) GetOrder(c *gin.Context) {
	reference := c.Param("reference")
	if reference == "" {
		response.Error(c, apperror.Validation("payment reference is required"))
		return
	}

	summary, err := h.fulfillmentSvc.OrderSummary(c.Request.Context(), reference)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toOrderSummaryResponse(summary))
}

// ResendNotification handles POST /api/v1/ops/notifications/resend.
func (h *OpsHandler) ResendNotification(c *gin.Context) {
	var req dto.ResendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	result, err := h.fulfillmentSvc.ResendNotification(c.Request.Context(), req.PaymentReference)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ResendResponse{
		PaymentReference: result.PaymentReference,
		Stage:            string(result.Stage),
		NotifyError:      result.NotifyError,
	})
}

// toOrderSummaryResponse converts the service view to the ops DTO.
func toOrderSummaryResponse(summary *ports.OrderSummary) dto.OrderSummaryResponse {
	resp := dto.OrderSummaryResponse{
		OrderID:          summary.Order.ID.String(),
		PaymentReference: summary.Order.PaymentReference,
		CatalogItemID:    summary.Order.CatalogItemID,
		Amount:           summary.Order.Amount,
		Currency:         summary.Order.Currency,
		Status:           string(summary.Order.Status),
		CreatedAt:        summary.Order.CreatedAt.Format(time.RFC3339),
	}
	if summary.Customer != nil {
		resp.Customer = &dto.CustomerResponse{
			ID:          summary.Customer.ID.String(),
			Email:       summary.Customer.Email,
			DisplayName: summary.Customer.DisplayName,
			Guest:       summary.Customer.IsGuest(),
			CreatedAt:   summary.Customer.CreatedAt.Format(time.RFC3339),
		}
	}
	if summary.Voucher != nil {
		resp.Voucher = &dto.VoucherResponse{
			Code:      summary.Voucher.Code,
			Redeemed:  summary.Voucher.Redeemed,
			CreatedAt: summary.Voucher.CreatedAt.Format(time.RFC3339),
		}
	}
	return resp
}

// HealthCheck returns a deep health handler verifying each dependency.
func HealthCheck(checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		type depStatus struct {
			Status string `json:"status"`
			Error  string `json:"error,omitempty"`
		}

		deps := make(map[string]depStatus)
		allHealthy := true

		for _, checker := range checkers {
			if err := checker.Ping(c.Request.Context()); err != nil {
				deps[checker.Name()] = depStatus{Status: "unhealthy", Error: err.Error()}
				allHealthy = false
			} else {
				deps[checker.Name()] = depStatus{Status: "healthy"}
			}
		}

		status := "healthy"
		httpCode := http.StatusOK
		if !allHealthy {
			status = "degraded"
			httpCode = http.StatusServiceUnavailable
		}

		c.JSON(httpCode, gin.H{
			"status":       status,
			"dependencies": deps,
		})
	}
}
