package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	apperrors "github.com/safety-microservice/internal/pkg/errors"
	"github.com/safety-microservice/internal/pkg/utils"
	"github.com/safety-microservice/internal/pkg/validator"
	"github.com/safety-microservice/internal/usecase"
	"github.com/safety-microservice/internal/usecase/dto"
	"go.uber.org/zap"
)

// ZoneHandler - обработчик authority-операций над зонами
type ZoneHandler struct {
	zoneUC *usecase.ZoneUseCase
	logger *zap.Logger
}

// NewZoneHandler - создание нового ZoneHandler
func NewZoneHandler(zoneUC *usecase.ZoneUseCase, logger *zap.Logger) *ZoneHandler {
	return &ZoneHandler{
		zoneUC: zoneUC,
		logger: logger,
	}
}

// CreateZone godoc
// @Summary Создать геозону
// @Tags zones
// @Accept json
// @Produce json
// @Param zone body dto.CreateZoneRequest true "Зона"
// @Success 200 {object} utils.SuccessResponse{data=domain.Zone}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/zones [post]
func (h *ZoneHandler) CreateZone(c *fiber.Ctx) error {
	var req dto.CreateZoneRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, apperrors.ErrInvalidRequest)
	}

	zone, err := h.zoneUC.Create(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, zone, nil)
}

// ListZones godoc
// @Summary Список активных геозон
// @Tags zones
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=[]domain.Zone}
// @Router /api/v1/zones [get]
func (h *ZoneHandler) ListZones(c *fiber.Ctx) error {
	zones, err := h.zoneUC.List(c.Context())
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, zones, &utils.Meta{
		Total: len(zones),
	})
}

// DeactivateZone godoc
// @Summary Деактивировать геозону
// @Description Мягкая деактивация: зона перестает участвовать в скоринге, но остается в истории
// @Tags zones
// @Produce json
// @Param id path string true "ID зоны"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/zones/{id} [delete]
func (h *ZoneHandler) DeactivateZone(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.SendError(c, apperrors.ErrInvalidRequest)
	}

	if err := h.zoneUC.Deactivate(c.Context(), id); err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, fiber.Map{"deactivated": true}, nil)
}
