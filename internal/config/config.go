package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	DBMaxConns  int    `env:"DB_MAX_CONNS" envDefault:"10"`

	LLMAPIKey    string `env:"LLM_API_KEY,required"`
	LLMBaseURL   string `env:"LLM_BASE_URL" envDefault:"https://api.openai.com/v1"`
	LLMModel     string `env:"LLM_MODEL" envDefault:"gpt-5.1"`
	LLMMaxTokens int    `env:"LLM_MAX_TOKENS" envDefault:"1024"`

	TTSAPIKey  string `env:"TTS_API_KEY"`
	TTSBaseURL string `env:"TTS_BASE_URL" envDefault:"https://api.openai.com/v1"`
	TTSModel   string `env:"TTS_MODEL" envDefault:"tts-1"`
	TTSVoice   string `env:"TTS_VOICE" envDefault:"alloy"`

	JWTSecret            string `env:"JWT_SECRET"`
	JWTAccessTTLMinutes  int    `env:"JWT_ACCESS_TTL_MINUTES" envDefault:"15"`
	JWTRefreshTTLMinutes int    `env:"JWT_REFRESH_TTL_MINUTES" envDefault:"43200"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	ContextMaxMessages int `env:"CONTEXT_MAX_MESSAGES" envDefault:"30"`
	ContextMaxChars    int `env:"CONTEXT_MAX_CHARS" envDefault:"12000"`

	ChatRateLimitPerMinute int `env:"CHAT_RATE_LIMIT_PER_MINUTE" envDefault:"20"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
