package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/possuite/backoffice/internal/api/middleware"
	"github.com/possuite/backoffice/internal/core/ports"
)

// StoreHandler serves store endpoints. Store scoping and permissions are
// enforced by the route middleware.
type StoreHandler struct {
	service ports.StoreService
}

func NewStoreHandler(service ports.StoreService) *StoreHandler {
	return &StoreHandler{service: service}
}

// Create opens a new store for the authenticated owner.
//
// @Summary      Create a store
// @Tags         stores
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createStoreRequest  true  "Store details"
// @Success      201   {object}  domain.Store
// @Failure      400   {object}  map[string]string
// @Failure      402   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /api/stores [post]
func (h *StoreHandler) Create(c echo.Context) error {
	owner, err := ctxOwner(c)
	if err != nil {
		return err
	}
	var req createStoreRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	store, err := h.service.Create(c.Request().Context(), ports.CreateStoreInput{
		OwnerID: owner.ID,
		Name:    req.Name,
		Address: req.Address,
		Phone:   req.Phone,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, store)
}

// List returns the stores visible to the caller.
//
// @Summary      List stores
// @Tags         stores
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  storesResponse
// @Router       /api/stores [get]
func (h *StoreHandler) List(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	stores, err := h.service.ListFor(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, storesResponse{Stores: stores})
}

// Get returns one store.
//
// @Summary      Get a store
// @Tags         stores
// @Produce      json
// @Security     BearerAuth
// @Param        storeId  path      string  true  "Store ID"
// @Success      200      {object}  domain.Store
// @Failure      403      {object}  map[string]string
// @Failure      404      {object}  map[string]string
// @Router       /api/stores/{storeId} [get]
func (h *StoreHandler) Get(c echo.Context) error {
	store, err := h.service.Get(c.Request().Context(), c.Param(middleware.StoreParam))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, store)
}

// Update patches store details and settings.
//
// @Summary      Update a store
// @Tags         stores
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        storeId  path      string              true  "Store ID"
// @Param        body     body      updateStoreRequest  true  "Fields to change"
// @Success      200      {object}  domain.Store
// @Failure      400      {object}  map[string]string
// @Failure      403      {object}  map[string]string
// @Router       /api/stores/{storeId} [put]
func (h *StoreHandler) Update(c echo.Context) error {
	var req updateStoreRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	store, err := h.service.Update(c.Request().Context(), req.toInput(c.Param(middleware.StoreParam)))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, store)
}

// Delete removes a store with its roles, staff and products.
//
// @Summary      Delete a store
// @Tags         stores
// @Security     BearerAuth
// @Param        storeId  path  string  true  "Store ID"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/stores/{storeId} [delete]
func (h *StoreHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param(middleware.StoreParam)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
