package domain

import "time"

const (
	FeatureVoice  = "voice"
	FeatureDecode = "decode"
)

// UsageCounter es el contador monotónico por (usuario, feature, periodo).
type UsageCounter struct {
	UserID  string `json:"user_id"`
	Feature string `json:"feature"`
	Period  string `json:"period"`
	Count   int    `json:"count"`
}

// DailyPeriod devuelve la clave de periodo (día calendario UTC) para un instante.
func DailyPeriod(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
