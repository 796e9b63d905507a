package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/possuite/backoffice/internal/core/domain"
	"github.com/possuite/backoffice/internal/core/ports"
)

// SubscriptionHandler serves plan and subscription endpoints.
type SubscriptionHandler struct {
	service ports.SubscriptionService
}

func NewSubscriptionHandler(service ports.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{service: service}
}

// Plans lists the subscription plans.
//
// @Summary      List subscription plans
// @Tags         subscriptions
// @Produce      json
// @Success      200  {object}  plansResponse
// @Router       /api/subscriptions [get]
func (h *SubscriptionHandler) Plans(c echo.Context) error {
	plans, err := h.service.Plans(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, plansResponse{Plans: plans})
}

// Current returns the owner's active subscription.
//
// @Summary      Current subscription
// @Tags         subscriptions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.UserSubscription
// @Failure      404  {object}  map[string]string
// @Router       /api/subscriptions/current [get]
func (h *SubscriptionHandler) Current(c echo.Context) error {
	owner, err := ctxOwner(c)
	if err != nil {
		return err
	}
	sub, err := h.service.Current(c.Request().Context(), owner.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sub)
}

// Subscribe moves the owner onto a plan, cancelling any active subscription.
//
// @Summary      Subscribe to a plan
// @Tags         subscriptions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      subscribeRequest  true  "Plan and payment"
// @Success      201   {object}  domain.UserSubscription
// @Failure      400   {object}  map[string]string
// @Failure      402   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/subscriptions/subscribe [post]
func (h *SubscriptionHandler) Subscribe(c echo.Context) error {
	owner, err := ctxOwner(c)
	if err != nil {
		return err
	}
	var req subscribeRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	sub, err := h.service.Subscribe(c.Request().Context(), ports.SubscribeInput{
		OwnerID: owner.ID,
		PlanID:  req.PlanID,
		Payment: ports.PaymentInput{
			Method:    domain.PaymentMethod(req.PaymentMethod),
			Reference: req.PaymentReference,
		},
		AutoRenew: req.AutoRenew,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, sub)
}

// Cancel ends the owner's active subscription.
//
// @Summary      Cancel subscription
// @Tags         subscriptions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  map[string]string
// @Router       /api/subscriptions/cancel [post]
func (h *SubscriptionHandler) Cancel(c echo.Context) error {
	owner, err := ctxOwner(c)
	if err != nil {
		return err
	}
	if err := h.service.Cancel(c.Request().Context(), owner.ID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "subscription cancelled"})
}

// Usage reports quota consumption across the owner's stores.
//
// @Summary      Subscription usage
// @Tags         subscriptions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  usageResponse
// @Failure      402  {object}  map[string]string
// @Router       /api/subscriptions/usage [get]
func (h *SubscriptionHandler) Usage(c echo.Context) error {
	owner, err := ctxOwner(c)
	if err != nil {
		return err
	}
	usage, err := h.service.Usage(c.Request().Context(), owner.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUsageResponse(usage))
}
