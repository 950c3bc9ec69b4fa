package domain

import "strings"

const (
	TierFree       = "free"
	TierExplorer   = "explorer"
	TierRegulator  = "regulator"
	TierIntegrator = "integrator"
	TierTest       = "test"
)

// Entitlements describe qué features opcionales habilita un tier.
// Una cuota en 0 significa ilimitado.
type Entitlements struct {
	VoiceEnabled     bool `json:"voice_enabled"`
	VoiceDailyQuota  int  `json:"voice_daily_quota"`
	DecodeDailyQuota int  `json:"decode_daily_quota"`
}

// EntitlementsForTier mapea un tier de suscripción a sus entitlements.
// Un tier desconocido se trata como free.
func EntitlementsForTier(tier string) Entitlements {
	switch strings.ToLower(strings.TrimSpace(tier)) {
	case TierExplorer:
		return Entitlements{VoiceEnabled: true, VoiceDailyQuota: 5, DecodeDailyQuota: 3}
	case TierRegulator:
		return Entitlements{VoiceEnabled: true, VoiceDailyQuota: 15, DecodeDailyQuota: 10}
	case TierIntegrator:
		return Entitlements{VoiceEnabled: true, VoiceDailyQuota: 0, DecodeDailyQuota: 0}
	case TierTest:
		return Entitlements{VoiceEnabled: true, VoiceDailyQuota: 0, DecodeDailyQuota: 0}
	default:
		return Entitlements{VoiceEnabled: false, VoiceDailyQuota: 0, DecodeDailyQuota: 1}
	}
}

// VoiceUnlimited indica si el tier no tiene tope de sintesis de voz.
func (e Entitlements) VoiceUnlimited() bool {
	return e.VoiceEnabled && e.VoiceDailyQuota == 0
}
