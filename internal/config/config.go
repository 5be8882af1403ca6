package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration required by the API process.
// All values must come from env (or env-file loaded by the process runner).
// No business logic should depend on raw environment variables.
type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Voice    VoiceConfig
	Speech   SpeechConfig
	LLM      LLMConfig
	Search   SearchConfig
	Email    EmailConfig
	Dispatch DispatchConfig
	Pricing  PricingConfig
}

type AppConfig struct {
	Env  string
	Port int
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string

	// SSLMode is kept explicit for managed-Postgres posture.
	// Accepts: disable, require, verify-ca, verify-full
	SSLMode string
}

type RedisConfig struct {
	Host string
	Port int
}

type AuthConfig struct {
	JWTSecret       string
	JWTIssuer       string
	JWTAudience     string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// VoiceConfig is the hosted voice-AI vendor (assistants, phone numbers, calls).
type VoiceConfig struct {
	APIKey      string
	BaseURL     string
	AssistantID string
}

// SpeechConfig is the speech-cloning vendor.
type SpeechConfig struct {
	APIKey  string
	BaseURL string
}

// LLMConfig is the chat-completion gateway.
type LLMConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type SearchConfig struct {
	APIKey  string
	BaseURL string
}

type EmailConfig struct {
	APIKey      string
	BaseURL     string
	FromAddress string
}

// PricingConfig rates calls when the voice vendor reports a duration
// without a cost. Amounts are minor units (cents).
type PricingConfig struct {
	RatePerMinuteMinor      int64
	BillingIncrementSeconds int
	MinimumBillableSeconds  int
}

// DispatchConfig tunes the scheduled-call dispatcher.
type DispatchConfig struct {
	// Interval between dispatcher passes.
	Interval time.Duration
	// PassTimeout bounds a whole pass.
	PassTimeout time.Duration
	// CallTimeout bounds a single provider round trip.
	CallTimeout time.Duration
	// ClaimTimeout is the visibility timeout after which a row stuck
	// in "calling" is reclaimed as failed.
	ClaimTimeout time.Duration
}

func Load() (Config, error) {
	c := Config{}
	var parseErrs []error

	c.App.Env = strings.TrimSpace(os.Getenv("APP_ENV"))
	{
		n, err := mustInt("APP_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.App.Port = n
	}

	c.DB.Host = strings.TrimSpace(os.Getenv("DB_HOST"))
	{
		n, err := mustInt("DB_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.DB.Port = n
	}
	c.DB.User = strings.TrimSpace(os.Getenv("DB_USER"))
	c.DB.Password = os.Getenv("DB_PASSWORD")
	c.DB.Name = strings.TrimSpace(os.Getenv("DB_NAME"))
	c.DB.SSLMode = strings.TrimSpace(os.Getenv("DB_SSLMODE"))

	c.Redis.Host = strings.TrimSpace(os.Getenv("REDIS_HOST"))
	{
		n, err := mustInt("REDIS_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.Redis.Port = n
	}

	c.Auth.JWTSecret = os.Getenv("JWT_SECRET")
	c.Auth.JWTIssuer = strings.TrimSpace(os.Getenv("JWT_ISSUER"))
	c.Auth.JWTAudience = strings.TrimSpace(os.Getenv("JWT_AUDIENCE"))
	// Duration env vars are optional; defaults applied in Validate() based on env.
	c.Auth.AccessTokenTTL = mustDuration("JWT_ACCESS_TTL")
	c.Auth.RefreshTokenTTL = mustDuration("JWT_REFRESH_TTL")

	c.Voice.APIKey = os.Getenv("VOICE_API_KEY")
	c.Voice.BaseURL = strings.TrimSpace(os.Getenv("VOICE_BASE_URL"))
	c.Voice.AssistantID = strings.TrimSpace(os.Getenv("VOICE_ASSISTANT_ID"))

	c.Speech.APIKey = os.Getenv("SPEECH_API_KEY")
	c.Speech.BaseURL = strings.TrimSpace(os.Getenv("SPEECH_BASE_URL"))

	c.LLM.APIKey = os.Getenv("LLM_API_KEY")
	c.LLM.BaseURL = strings.TrimSpace(os.Getenv("LLM_BASE_URL"))
	c.LLM.Model = strings.TrimSpace(os.Getenv("LLM_MODEL"))

	c.Search.APIKey = os.Getenv("SEARCH_API_KEY")
	c.Search.BaseURL = strings.TrimSpace(os.Getenv("SEARCH_BASE_URL"))

	c.Email.APIKey = os.Getenv("EMAIL_API_KEY")
	c.Email.BaseURL = strings.TrimSpace(os.Getenv("EMAIL_BASE_URL"))
	c.Email.FromAddress = strings.TrimSpace(os.Getenv("EMAIL_FROM_ADDRESS"))

	c.Dispatch.Interval = mustDuration("DISPATCH_INTERVAL")
	c.Dispatch.PassTimeout = mustDuration("DISPATCH_PASS_TIMEOUT")
	c.Dispatch.CallTimeout = mustDuration("DISPATCH_CALL_TIMEOUT")
	c.Dispatch.ClaimTimeout = mustDuration("DISPATCH_CLAIM_TIMEOUT")

	{
		n, err := optionalInt("PRICING_RATE_PER_MINUTE_MINOR")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.Pricing.RatePerMinuteMinor = int64(n)
	}
	{
		n, err := optionalInt("PRICING_BILLING_INCREMENT_SECONDS")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.Pricing.BillingIncrementSeconds = n
	}
	{
		n, err := optionalInt("PRICING_MINIMUM_BILLABLE_SECONDS")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.Pricing.MinimumBillableSeconds = n
	}

	if err := joinErrors(parseErrs); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.App.Env == "" {
		errs = append(errs, errors.New("APP_ENV is required"))
	} else if !isValidEnv(c.App.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, staging, production, got %q", c.App.Env))
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT must be a valid port, got %d", c.App.Port))
	}

	if c.DB.Host == "" {
		errs = append(errs, errors.New("DB_HOST is required"))
	}
	if c.DB.Port <= 0 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Errorf("DB_PORT must be a valid port, got %d", c.DB.Port))
	}
	if c.DB.User == "" {
		errs = append(errs, errors.New("DB_USER is required"))
	}
	if c.DB.Name == "" {
		errs = append(errs, errors.New("DB_NAME is required"))
	}
	if strings.TrimSpace(c.DB.SSLMode) == "" {
		if c.IsProduction() {
			errs = append(errs, errors.New("DB_SSLMODE is required in production"))
		} else {
			// Local-friendly default; production must be explicit.
			c.DB.SSLMode = "disable"
		}
	}
	if c.DB.SSLMode != "" && !isValidSSLMode(c.DB.SSLMode) {
		errs = append(errs, fmt.Errorf("DB_SSLMODE must be one of disable, require, verify-ca, verify-full, got %q", c.DB.SSLMode))
	}

	if c.Redis.Host == "" {
		errs = append(errs, errors.New("REDIS_HOST is required"))
	}
	if c.Redis.Port <= 0 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Errorf("REDIS_PORT must be a valid port, got %d", c.Redis.Port))
	}

	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.IsProduction() {
		if c.Auth.JWTIssuer == "" {
			errs = append(errs, errors.New("JWT_ISSUER is required in production"))
		}
		if c.Auth.JWTAudience == "" {
			errs = append(errs, errors.New("JWT_AUDIENCE is required in production"))
		}
	}

	if c.Auth.AccessTokenTTL <= 0 {
		c.Auth.AccessTokenTTL = 15 * time.Minute
	}
	if c.Auth.RefreshTokenTTL <= 0 {
		c.Auth.RefreshTokenTTL = 30 * 24 * time.Hour
	}
	if c.Auth.RefreshTokenTTL <= c.Auth.AccessTokenTTL {
		errs = append(errs, errors.New("JWT_REFRESH_TTL must be greater than JWT_ACCESS_TTL"))
	}

	// Provider credentials: the voice vendor is the product core and must be
	// present at startup. The other vendors degrade per handler: a missing key
	// disables only that surface (the handler reports which key is absent,
	// never the secret itself).
	if c.Voice.APIKey == "" {
		errs = append(errs, errors.New("VOICE_API_KEY is required (voice provider auth)"))
	}
	if c.Voice.AssistantID == "" {
		errs = append(errs, errors.New("VOICE_ASSISTANT_ID is required (target assistant)"))
	}

	if c.Dispatch.Interval <= 0 {
		c.Dispatch.Interval = time.Minute
	}
	if c.Dispatch.PassTimeout <= 0 {
		c.Dispatch.PassTimeout = 45 * time.Second
	}
	if c.Dispatch.CallTimeout <= 0 {
		c.Dispatch.CallTimeout = 15 * time.Second
	}
	if c.Dispatch.ClaimTimeout <= 0 {
		c.Dispatch.ClaimTimeout = 10 * time.Minute
	}
	if c.Dispatch.CallTimeout >= c.Dispatch.PassTimeout {
		errs = append(errs, errors.New("DISPATCH_CALL_TIMEOUT must be less than DISPATCH_PASS_TIMEOUT"))
	}

	if c.Pricing.RatePerMinuteMinor < 0 {
		errs = append(errs, errors.New("PRICING_RATE_PER_MINUTE_MINOR must not be negative"))
	}
	if c.Pricing.RatePerMinuteMinor == 0 {
		c.Pricing.RatePerMinuteMinor = 10
	}
	if c.Pricing.BillingIncrementSeconds <= 0 {
		c.Pricing.BillingIncrementSeconds = 60
	}

	return joinErrors(errs)
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

func (c *Config) PostgresDSN() string {
	// Avoid logging this string; it contains secrets.
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host,
		c.DB.Port,
		c.DB.User,
		c.DB.Password,
		c.DB.Name,
		c.DB.SSLMode,
	)
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func mustInt(key string) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

// optionalInt reads an integer env var, treating absence as zero.
func optionalInt(key string) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

func mustDuration(key string) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0
	}
	return d
}

func appendParseErr(errs []error, n int, err error) (int, []error) {
	if err != nil {
		errs = append(errs, err)
	}
	return n, errs
}

func isValidEnv(v string) bool {
	switch v {
	case "local", "dev", "staging", "production":
		return true
	default:
		return false
	}
}

func isValidSSLMode(v string) bool {
	switch v {
	case "disable", "require", "verify-ca", "verify-full":
		return true
	default:
		return false
	}
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	var b strings.Builder
	b.WriteString("config errors:\n")
	for _, e := range errs {
		b.WriteString("- ")
		b.WriteString(e.Error())
		b.WriteString("\n")
	}
	return errors.New(strings.TrimSpace(b.String()))
}
