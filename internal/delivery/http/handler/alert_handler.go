package handler

import (
	"github.com/gofiber/fiber/v2"
	apperrors "github.com/safety-microservice/internal/pkg/errors"
	"github.com/safety-microservice/internal/pkg/utils"
	"github.com/safety-microservice/internal/pkg/validator"
	"github.com/safety-microservice/internal/usecase"
	"github.com/safety-microservice/internal/usecase/dto"
	"go.uber.org/zap"
)

// AlertHandler - обработчик read-запросов по алертам
type AlertHandler struct {
	alertUC *usecase.AlertUseCase
	logger  *zap.Logger
}

// NewAlertHandler - создание нового AlertHandler
func NewAlertHandler(alertUC *usecase.AlertUseCase, logger *zap.Logger) *AlertHandler {
	return &AlertHandler{
		alertUC: alertUC,
		logger:  logger,
	}
}

// GetRecentAlerts godoc
// @Summary Алерты вокруг точки
// @Tags alerts
// @Produce json
// @Param lat query number true "Широта"
// @Param lon query number true "Долгота"
// @Param radius_km query number true "Радиус поиска, км"
// @Param hours query int true "Окно, часов назад"
// @Success 200 {object} utils.SuccessResponse{data=[]dto.AlertResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/alerts/recent [get]
func (h *AlertHandler) GetRecentAlerts(c *fiber.Ctx) error {
	var req dto.RecentAlertsRequest
	if err := c.QueryParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid query parameters"})
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, apperrors.ErrInvalidRequest)
	}

	alerts, err := h.alertUC.Recent(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	result := make([]dto.AlertResponse, 0, len(alerts))
	for _, alert := range alerts {
		result = append(result, dto.AlertResponse{
			ID:        alert.ID.String(),
			TouristID: alert.TouristID.String(),
			Lat:       alert.Location.Lat,
			Lon:       alert.Location.Lon,
			Severity:  string(alert.Severity),
			Score:     alert.Score,
			CreatedAt: alert.CreatedAt,
		})
	}

	return utils.SendSuccess(c, result, &utils.Meta{
		Total: len(result),
	})
}
