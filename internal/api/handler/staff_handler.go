package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/possuite/backoffice/internal/api/middleware"
	"github.com/possuite/backoffice/internal/core/domain"
	"github.com/possuite/backoffice/internal/core/ports"
)

type StaffHandler struct {
	service ports.StaffService
}

func NewStaffHandler(service ports.StaffService) *StaffHandler {
	return &StaffHandler{service: service}
}

// List returns a store's staff.
//
// @Summary      List staff
// @Tags         staff
// @Produce      json
// @Security     BearerAuth
// @Param        storeId  path      string  true  "Store ID"
// @Success      200      {object}  staffListResponse
// @Router       /api/stores/{storeId}/staff [get]
func (h *StaffHandler) List(c echo.Context) error {
	staff, err := h.service.List(c.Request().Context(), c.Param(middleware.StoreParam))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, staffListResponse{Staff: staff})
}

// Create adds a staff account to the store.
//
// @Summary      Create a staff member
// @Tags         staff
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        storeId  path      string              true  "Store ID"
// @Param        body     body      createStaffRequest  true  "Staff details"
// @Success      201      {object}  domain.Staff
// @Failure      400      {object}  map[string]string
// @Failure      403      {object}  map[string]string
// @Failure      409      {object}  map[string]string
// @Router       /api/stores/{storeId}/staff [post]
func (h *StaffHandler) Create(c echo.Context) error {
	var req createStaffRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	staff, err := h.service.Create(c.Request().Context(), ports.CreateStaffInput{
		StoreID:  c.Param(middleware.StoreParam),
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		RoleID:   req.RoleID,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, staff)
}

// Update changes a staff member's name, role, status or password.
//
// @Summary      Update a staff member
// @Tags         staff
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        storeId  path      string              true  "Store ID"
// @Param        staffId  path      string              true  "Staff ID"
// @Param        body     body      updateStaffRequest  true  "Fields to change"
// @Success      200      {object}  domain.Staff
// @Failure      400      {object}  map[string]string
// @Failure      404      {object}  map[string]string
// @Router       /api/stores/{storeId}/staff/{staffId} [put]
func (h *StaffHandler) Update(c echo.Context) error {
	var req updateStaffRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	in := ports.UpdateStaffInput{
		StoreID:  c.Param(middleware.StoreParam),
		StaffID:  c.Param("staffId"),
		Name:     req.Name,
		RoleID:   req.RoleID,
		Password: req.Password,
	}
	if req.Status != nil {
		status := domain.StaffStatus(*req.Status)
		in.Status = &status
	}

	staff, err := h.service.Update(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, staff)
}

// Delete removes a staff account.
//
// @Summary      Delete a staff member
// @Tags         staff
// @Security     BearerAuth
// @Param        storeId  path  string  true  "Store ID"
// @Param        staffId  path  string  true  "Staff ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /api/stores/{storeId}/staff/{staffId} [delete]
func (h *StaffHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param(middleware.StoreParam), c.Param("staffId")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
