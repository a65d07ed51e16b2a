package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/safety-microservice/internal/domain"
	apperrors "github.com/safety-microservice/internal/pkg/errors"
	"github.com/safety-microservice/internal/pkg/utils"
	"github.com/safety-microservice/internal/pkg/validator"
	"github.com/safety-microservice/internal/usecase"
	"github.com/safety-microservice/internal/usecase/dto"
	"go.uber.org/zap"
)

// LocationHandler - обработчик входящих GPS-пингов
type LocationHandler struct {
	ingestUC *usecase.IngestUseCase
	logger   *zap.Logger
}

// NewLocationHandler - создание нового LocationHandler
func NewLocationHandler(ingestUC *usecase.IngestUseCase, logger *zap.Logger) *LocationHandler {
	return &LocationHandler{
		ingestUC: ingestUC,
		logger:   logger,
	}
}

// IngestPing godoc
// @Summary Обработать GPS-пинг туриста
// @Description Вычисляет композитную оценку риска 0-100, при необходимости создает алерт и рассылает его подписчикам канала authority
// @Tags locations
// @Accept json
// @Produce json
// @Param ping body dto.PingRequest true "GPS-пинг"
// @Success 200 {object} utils.SuccessResponse{data=dto.ScoreResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/locations [post]
func (h *LocationHandler) IngestPing(c *fiber.Ctx) error {
	var req dto.PingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, apperrors.ErrInvalidRequest)
	}

	touristID, err := uuid.Parse(req.TouristID)
	if err != nil {
		return utils.SendError(c, apperrors.ErrInvalidTouristID)
	}

	ping := &domain.Ping{
		TouristID: touristID,
		Location:  domain.Coordinate{Lat: req.Lat, Lon: req.Lon},
		Speed:     req.Speed,
		Accuracy:  req.Accuracy,
		Timestamp: req.Timestamp,
	}

	result, err := h.ingestUC.ScoreAndMaybeAlert(c.Context(), ping)
	if err != nil {
		if result == nil {
			return utils.SendError(c, err)
		}
		// Пинг оценен, но запись могла не сохраниться - отдаем результат
		// с пометкой, повтор на стороне клиента
		h.logger.Warn("Ping scored but persistence failed",
			zap.String("tourist_id", req.TouristID))
	}

	return utils.SendSuccess(c, toScoreResponse(result), nil)
}

// GetTouristScore godoc
// @Summary Последняя оценка туриста
// @Tags locations
// @Produce json
// @Param id path string true "ID туриста"
// @Success 200 {object} utils.SuccessResponse{data=dto.TouristScoreResponse}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/tourists/{id}/score [get]
func (h *LocationHandler) GetTouristScore(c *fiber.Ctx) error {
	touristID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.SendError(c, apperrors.ErrInvalidTouristID)
	}

	snapshot, err := h.ingestUC.LatestScore(c.Context(), touristID)
	if err != nil {
		return utils.SendError(c, err)
	}

	factors := make(map[string]dto.FactorDTO, len(snapshot.Factors))
	for name, f := range snapshot.Factors {
		factors[name] = dto.FactorDTO{
			Score:        f.Score,
			Weight:       f.Weight,
			Contribution: f.Contribution,
		}
	}

	return utils.SendSuccess(c, dto.TouristScoreResponse{
		TouristID: snapshot.TouristID.String(),
		Lat:       snapshot.Location.Lat,
		Lon:       snapshot.Location.Lon,
		Score:     snapshot.Score,
		RiskLevel: string(snapshot.RiskLevel),
		Factors:   factors,
		Timestamp: snapshot.Timestamp,
	}, nil)
}

func toScoreResponse(result *usecase.IngestResult) dto.ScoreResponse {
	factors := make(map[string]dto.FactorDTO, len(result.Score.Factors))
	for name, f := range result.Score.Factors {
		factors[name] = dto.FactorDTO{
			Score:        f.Score,
			Weight:       f.Weight,
			Contribution: f.Contribution,
		}
	}

	resp := dto.ScoreResponse{
		Score:           result.Score.Score,
		RiskLevel:       string(result.Score.RiskLevel),
		Factors:         factors,
		Recommendations: result.Score.Recommendations,
	}

	if result.Alert != nil {
		resp.Alert = &dto.AlertResponse{
			ID:        result.Alert.ID.String(),
			TouristID: result.Alert.TouristID.String(),
			Lat:       result.Alert.Location.Lat,
			Lon:       result.Alert.Location.Lon,
			Severity:  string(result.Alert.Severity),
			Score:     result.Alert.Score,
			CreatedAt: result.Alert.CreatedAt,
		}
	}

	return resp
}
