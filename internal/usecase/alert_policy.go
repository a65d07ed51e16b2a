package usecase

import "github.com/safety-microservice/internal/domain"

// AlertPolicy - чистая функция решения по композитной оценке.
// Политика намеренно консервативна (смещена в сторону лишних алертов):
// в системе безопасности ложный пропуск дороже ложной тревоги.
type AlertPolicy struct{}

// NewAlertPolicy создает новую политику алертов
func NewAlertPolicy() *AlertPolicy {
	return &AlertPolicy{}
}

// Decide возвращает серьезность алерта для оценки.
// ok=false означает "алерт не нужен".
func (p *AlertPolicy) Decide(score *domain.CompositeScore) (domain.Severity, bool) {
	switch {
	case score.RiskLevel == domain.RiskLevelCritical || score.Score < 30:
		return domain.SeverityCritical, true
	case score.Score < 40:
		return domain.SeverityHigh, true
	case score.RiskLevel == domain.RiskLevelCritical || score.RiskLevel == domain.RiskLevelHigh || score.Score < 50:
		return domain.SeverityMedium, true
	default:
		return "", false
	}
}
