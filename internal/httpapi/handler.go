package httpapi

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/domain"
	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/usecases/cancel_subscription"
	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/usecases/create_subscription"
	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/usecases/renew_subscription"
)

type creator interface {
	Execute(ctx context.Context, req create_subscription.Request) (*domain.Subscription, error)
}

type canceler interface {
	Execute(ctx context.Context, req cancel_subscription.Request) (*domain.Subscription, error)
}

type renewer interface {
	Execute(ctx context.Context, subscriptionID string) (*renew_subscription.Response, error)
}

type getter interface {
	Execute(ctx context.Context, subscriptionID string) (*domain.Subscription, error)
}

type customerLister interface {
	Execute(ctx context.Context, customerID string) ([]*domain.Subscription, error)
}

type statusLister interface {
	Execute(ctx context.Context, status domain.SubscriptionStatus) ([]*domain.Subscription, error)
}

// UseCases are the interactors served over HTTP
type UseCases struct {
	Create          creator
	Cancel          canceler
	Renew           renewer
	Get             getter
	ListForCustomer customerLister
	ListByStatus    statusLister
}

// Handler serves the subscription REST API
type Handler struct {
	uc UseCases
}

// NewHandler creates a new subscription handler
func NewHandler(uc UseCases) *Handler {
	return &Handler{uc: uc}
}

// Register mounts the subscription routes under /api.
func (h *Handler) Register(r gin.IRouter) {
	api := r.Group("/api")
	{
		api.POST("/subscriptions", h.create)
		api.GET("/subscriptions", h.listByStatus)
		api.GET("/subscriptions/:id", h.get)
		api.POST("/subscriptions/:id/cancel", h.cancel)
		api.POST("/subscriptions/:id/renew", h.renew)
		api.GET("/customers/:customerId/subscriptions", h.listForCustomer)
	}
}

type createRequest struct {
	CustomerID string      `json:"customer_id"`
	Plan       domain.Plan `json:"plan"`
}

type cancelRequest struct {
	CancelAtPeriodEnd bool   `json:"cancel_at_period_end"`
	Reason            string `json:"reason"`
}

type renewResponse struct {
	Outcome      renew_subscription.Outcome `json:"outcome"`
	Subscription domain.Snapshot            `json:"subscription"`
}

// POST /api/subscriptions
func (h *Handler) create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	sub, err := h.uc.Create.Execute(c.Request.Context(), create_subscription.Request{
		CustomerID: req.CustomerID,
		Plan:       req.Plan,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	successJSON(c, http.StatusCreated, sub.Snapshot())
}

// GET /api/subscriptions/:id
func (h *Handler) get(c *gin.Context) {
	sub, err := h.uc.Get.Execute(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if sub == nil {
		errorJSON(c, http.StatusNotFound, domain.ErrSubscriptionNotFound.Error())
		return
	}
	successJSON(c, http.StatusOK, sub.Snapshot())
}

// GET /api/subscriptions?status=active
func (h *Handler) listByStatus(c *gin.Context) {
	status := c.Query("status")
	if status == "" {
		errorJSON(c, http.StatusBadRequest, "status query parameter is required")
		return
	}

	subs, err := h.uc.ListByStatus.Execute(c.Request.Context(), domain.SubscriptionStatus(status))
	if err != nil {
		writeError(c, err)
		return
	}
	successJSON(c, http.StatusOK, snapshots(subs))
}

// GET /api/customers/:customerId/subscriptions
func (h *Handler) listForCustomer(c *gin.Context) {
	subs, err := h.uc.ListForCustomer.Execute(c.Request.Context(), c.Param("customerId"))
	if err != nil {
		writeError(c, err)
		return
	}
	successJSON(c, http.StatusOK, snapshots(subs))
}

// POST /api/subscriptions/:id/cancel
func (h *Handler) cancel(c *gin.Context) {
	var req cancelRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			errorJSON(c, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
	}

	sub, err := h.uc.Cancel.Execute(c.Request.Context(), cancel_subscription.Request{
		SubscriptionID:    c.Param("id"),
		CancelAtPeriodEnd: req.CancelAtPeriodEnd,
		Reason:            req.Reason,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	if sub == nil {
		errorJSON(c, http.StatusNotFound, "subscription not found or already cancelled")
		return
	}
	successJSON(c, http.StatusOK, sub.Snapshot())
}

// POST /api/subscriptions/:id/renew
func (h *Handler) renew(c *gin.Context) {
	resp, err := h.uc.Renew.Execute(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	successJSON(c, http.StatusOK, renewResponse{
		Outcome:      resp.Outcome,
		Subscription: resp.Subscription.Snapshot(),
	})
}

func snapshots(subs []*domain.Subscription) []domain.Snapshot {
	out := make([]domain.Snapshot, 0, len(subs))
	for _, sub := range subs {
		out = append(out, sub.Snapshot())
	}
	return out
}
