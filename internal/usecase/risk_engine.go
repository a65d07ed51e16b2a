package usecase

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/safety-microservice/internal/domain"
	"github.com/safety-microservice/internal/domain/repository"
	"github.com/safety-microservice/internal/pkg/utils"
	"go.uber.org/zap"
)

// Имена факторов в breakdown композитной оценки
const (
	FactorNearbyAlerts   = "nearby_alerts"
	FactorZoneRisk       = "zone_risk"
	FactorTimeOfDay      = "time_of_day"
	FactorCrowdDensity   = "crowd_density"
	FactorSpeedAnomaly   = "speed_anomaly"
	FactorHistoricalRisk = "historical_risk"
)

// Веса факторов, сумма строго 1.0
const (
	weightNearbyAlerts   = 0.30
	weightZoneRisk       = 0.25
	weightTimeOfDay      = 0.15
	weightCrowdDensity   = 0.10
	weightSpeedAnomaly   = 0.10
	weightHistoricalRisk = 0.10
)

const (
	zoneBlendBandMeters = 1000.0
	zoneNeutralScore    = 70.0
)

// RiskParams - радиусы и окна факторов. Веса не настраиваются:
// изменение весов меняет смысл оценки, а не ее чувствительность.
type RiskParams struct {
	NearbyRadiusKm     float64
	NearbyWindowHours  float64
	CrowdRadiusKm      float64
	CrowdWindowMinutes int
	HistoryRadiusKm    float64
	HistoryWindowDays  int
}

// DefaultRiskParams возвращает параметры по умолчанию
func DefaultRiskParams() RiskParams {
	return RiskParams{
		NearbyRadiusKm:     2.0,
		NearbyWindowHours:  6.0,
		CrowdRadiusKm:      2.0,
		CrowdWindowMinutes: 30,
		HistoryRadiusKm:    1.0,
		HistoryWindowDays:  30,
	}
}

// RiskEngine вычисляет композитную оценку риска 0-100 для одного пинга
// из шести независимых взвешенных факторов.
//
// Движок никогда не возвращает ошибку: при отсутствии данных каждый фактор
// отдает свой нейтральный дефолт, и композит всегда вычислим.
//
// Обратная связь: факторы nearby-alerts и historical-risk читают AlertEvent,
// созданные этим же пайплайном. Это намеренное самоподкрепление, а не баг.
type RiskEngine struct {
	alertRepo    repository.AlertRepository
	pingRepo     repository.PingRepository
	zoneIndex    *ZoneIndex
	speedHistory *SpeedHistory
	params       RiskParams
	logger       *zap.Logger
}

// NewRiskEngine создает новый движок риска
func NewRiskEngine(
	alertRepo repository.AlertRepository,
	pingRepo repository.PingRepository,
	zoneIndex *ZoneIndex,
	speedHistory *SpeedHistory,
	params RiskParams,
	logger *zap.Logger,
) *RiskEngine {
	return &RiskEngine{
		alertRepo:    alertRepo,
		pingRepo:     pingRepo,
		zoneIndex:    zoneIndex,
		speedHistory: speedHistory,
		params:       params,
		logger:       logger,
	}
}

// Compute вычисляет композитную оценку для координаты туриста.
// ts - время пинга; все окна факторов отсчитываются от него.
func (e *RiskEngine) Compute(ctx context.Context, coord domain.Coordinate, touristID uuid.UUID, speed *float64, ts time.Time) *domain.CompositeScore {
	factors := map[string]float64{
		FactorNearbyAlerts:   e.nearbyAlertsScore(ctx, coord, ts),
		FactorZoneRisk:       e.zoneRiskScore(ctx, coord),
		FactorTimeOfDay:      timeOfDayScore(ts),
		FactorCrowdDensity:   e.crowdDensityScore(ctx, coord, touristID, ts),
		FactorSpeedAnomaly:   e.speedAnomalyScore(touristID, speed),
		FactorHistoricalRisk: e.historicalRiskScore(ctx, coord, ts),
	}

	weights := map[string]float64{
		FactorNearbyAlerts:   weightNearbyAlerts,
		FactorZoneRisk:       weightZoneRisk,
		FactorTimeOfDay:      weightTimeOfDay,
		FactorCrowdDensity:   weightCrowdDensity,
		FactorSpeedAnomaly:   weightSpeedAnomaly,
		FactorHistoricalRisk: weightHistoricalRisk,
	}

	breakdown := make(map[string]domain.FactorScore, len(factors))
	var composite float64
	for name, score := range factors {
		contribution := score * weights[name]
		composite += contribution
		breakdown[name] = domain.FactorScore{
			Score:        score,
			Weight:       weights[name],
			Contribution: contribution,
		}
	}

	composite = clamp(composite, 0, 100)

	return &domain.CompositeScore{
		Score:           composite,
		RiskLevel:       domain.RiskLevelFromScore(composite),
		Factors:         breakdown,
		Recommendations: buildRecommendations(composite, factors),
		ComputedAt:      ts,
	}
}

// nearbyAlertsScore: старт со 100, за каждый алерт в радиусе NearbyRadiusKm
// и окне NearbyWindowHours вычитается
// distance_factor * time_factor * severity_factor * 20.
// Нейтральный дефолт (нет алертов или ошибка чтения) - 100.
func (e *RiskEngine) nearbyAlertsScore(ctx context.Context, coord domain.Coordinate, ts time.Time) float64 {
	since := ts.Add(-time.Duration(e.params.NearbyWindowHours * float64(time.Hour)))
	alerts, err := e.alertRepo.RecentAlerts(ctx, coord, e.params.NearbyRadiusKm, since)
	if err != nil {
		e.logger.Warn("Failed to read recent alerts, using neutral default", zap.Error(err))
		return 100
	}

	score := 100.0
	for _, alert := range alerts {
		distKm := utils.HaversineDistance(coord.Lat, coord.Lon, alert.Location.Lat, alert.Location.Lon)
		hoursAgo := ts.Sub(alert.CreatedAt).Hours()

		distanceFactor := math.Max(0, 1-distKm/e.params.NearbyRadiusKm)
		timeFactor := math.Max(0, 1-hoursAgo/e.params.NearbyWindowHours)

		score -= distanceFactor * timeFactor * severityFactor(alert.Severity) * 20
	}

	return clamp(score, 0, 100)
}

func severityFactor(s domain.Severity) float64 {
	switch s {
	case domain.SeverityCritical:
		return 1.0
	case domain.SeverityHigh:
		return 0.7
	case domain.SeverityMedium:
		return 0.4
	default:
		return 0.2
	}
}

// zoneRiskScore: нейтральный дефолт 70. Внутри зоны - фиксированное значение
// по типу (safe 95, risky 40, restricted 20). В пределах 1 км от границы
// значение смешивается с нейтральным пропорционально близости.
//
// Среди всех применимых зон детерминированно побеждает самая консервативная
// (наименьшая оценка), а не последняя по порядку итерации.
func (e *RiskEngine) zoneRiskScore(ctx context.Context, coord domain.Coordinate) float64 {
	zones, err := e.zoneIndex.Within(ctx, coord, zoneBlendBandMeters)
	if err != nil {
		e.logger.Warn("Failed to read zones, using neutral default", zap.Error(err))
		return zoneNeutralScore
	}
	if len(zones) == 0 {
		return zoneNeutralScore
	}

	best := math.MaxFloat64
	for _, zone := range zones {
		dist := utils.HaversineDistanceMeters(coord.Lat, coord.Lon, zone.Center.Lat, zone.Center.Lon)
		inside := zoneInsideScore(zone.Type)

		var candidate float64
		if dist <= zone.RadiusMeters {
			candidate = inside
		} else {
			// Точка в blend-полосе: чем ближе к границе, тем сильнее
			// влияние зоны на нейтральное значение
			proximity := 1 - (dist-zone.RadiusMeters)/zoneBlendBandMeters
			candidate = zoneNeutralScore + (inside-zoneNeutralScore)*proximity
		}

		if candidate < best {
			best = candidate
		}
	}

	return best
}

func zoneInsideScore(t domain.ZoneType) float64 {
	switch t {
	case domain.ZoneTypeSafe:
		return 95
	case domain.ZoneTypeRestricted:
		return 20
	default:
		return 40
	}
}

// timeOfDayScore: фиксированная таблица по локальному часу
func timeOfDayScore(ts time.Time) float64 {
	switch hour := ts.Local().Hour(); {
	case hour >= 6 && hour < 9:
		return 75
	case hour >= 9 && hour < 18:
		return 85
	case hour >= 18 && hour < 21:
		return 70
	case hour >= 21:
		return 50
	default: // 00-06
		return 40
	}
}

// crowdDensityScore: количество пингов других туристов в радиусе
// CrowdRadiusKm за окно CrowdWindowMinutes. Нейтральный дефолт (нет данных) - 50.
func (e *RiskEngine) crowdDensityScore(ctx context.Context, coord domain.Coordinate, touristID uuid.UUID, ts time.Time) float64 {
	since := ts.Add(-time.Duration(e.params.CrowdWindowMinutes) * time.Minute)
	count, err := e.pingRepo.CountNearby(ctx, coord, e.params.CrowdRadiusKm, since, touristID)
	if err != nil {
		e.logger.Warn("Failed to count nearby pings, using neutral default", zap.Error(err))
		return 50
	}

	switch {
	case count == 0:
		return 50
	case count <= 3:
		return 65
	case count <= 10:
		return 80
	case count <= 20:
		return 90
	default:
		// Убывающая отдача после 20 человек
		return 85
	}
}

// speedAnomalyScore: z-score текущей скорости против последних 50 скоростей
// туриста. Нейтральный дефолт (нет скорости или истории) - 85.
func (e *RiskEngine) speedAnomalyScore(touristID uuid.UUID, speed *float64) float64 {
	if speed == nil {
		return 85
	}

	mean, stddev, ok := e.speedHistory.Stats(touristID)
	if !ok {
		return 85
	}

	z := math.Abs(*speed-mean) / stddev
	switch {
	case z > 3:
		return 40
	case z > 2:
		return 60
	case z > 1:
		return 75
	default:
		return 90
	}
}

// historicalRiskScore: количество алертов в радиусе HistoryRadiusKm за окно
// HistoryWindowDays. Нейтральный дефолт (нет алертов или ошибка чтения) - 90.
func (e *RiskEngine) historicalRiskScore(ctx context.Context, coord domain.Coordinate, ts time.Time) float64 {
	since := ts.Add(-time.Duration(e.params.HistoryWindowDays) * 24 * time.Hour)
	alerts, err := e.alertRepo.RecentAlerts(ctx, coord, e.params.HistoryRadiusKm, since)
	if err != nil {
		e.logger.Warn("Failed to read historical alerts, using neutral default", zap.Error(err))
		return 90
	}

	switch count := len(alerts); {
	case count == 0:
		return 90
	case count <= 2:
		return 75
	case count <= 5:
		return 60
	case count <= 10:
		return 45
	default:
		return 30
	}
}

// buildRecommendations подбирает советы по пороговым правилам.
// Это только текст для пользователя, на control-flow не влияет.
func buildRecommendations(composite float64, factors map[string]float64) []string {
	var recs []string

	if composite < 40 {
		recs = append(recs, "Leave the area immediately and contact local authorities")
	}
	if factors[FactorZoneRisk] < 50 {
		recs = append(recs, "You are in or near a high-risk zone, relocate to a safe area")
	}
	if factors[FactorNearbyAlerts] < 50 {
		recs = append(recs, "Multiple safety alerts reported nearby, stay vigilant")
	}
	if factors[FactorSpeedAnomaly] < 60 {
		recs = append(recs, "Unusual movement pattern detected, confirm you are safe")
	}
	if factors[FactorTimeOfDay] < 60 {
		recs = append(recs, "Avoid moving alone at night, prefer well-lit streets")
	}
	if factors[FactorCrowdDensity] <= 50 {
		recs = append(recs, "Area is deserted, consider moving to a busier location")
	}

	if len(recs) == 0 {
		recs = append(recs, "No immediate safety concerns detected")
	}

	return recs
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
