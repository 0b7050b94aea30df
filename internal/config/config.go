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
// All values must come from env (or an env-file loaded at startup).
// No business logic should depend on raw environment variables.
type Config struct {
	App    AppConfig
	Mongo  MongoConfig
	Redis  RedisConfig
	CORS   CORSConfig
	Auth   AuthConfig
	Agora  AgoraConfig
	FCM    FCMConfig
	APNS   APNSConfig
	Invite InviteConfig
}

type AppConfig struct {
	Env  string
	Port int

	// Debug raises server-side log verbosity only. It never changes
	// response bodies and is rejected outright in production.
	Debug bool
}

type MongoConfig struct {
	URI      string
	Database string
}

type RedisConfig struct {
	Host string
	Port int
}

// Enabled reports whether a Redis-backed invite cap should be wired.
// Redis is optional; without it the cap middleware is skipped.
func (c RedisConfig) Enabled() bool { return c.Host != "" }

type CORSConfig struct {
	// AllowedOrigins is the operator-configured allow-list.
	// Any localhost/127.0.0.1 origin is always allowed regardless.
	AllowedOrigins []string
}

type AuthConfig struct {
	// JWTSecret enables bearer auth on /v1 routes when set.
	// Left empty (the default) the API stays public, matching the
	// original deployment model.
	JWTSecret      string
	JWTIssuer      string
	AccessTokenTTL time.Duration
}

func (c AuthConfig) Enabled() bool { return c.JWTSecret != "" }

type AgoraConfig struct {
	AppID       string
	AppCert     string
	TokenExpiry time.Duration
}

func (c AgoraConfig) Enabled() bool { return c.AppID != "" && c.AppCert != "" }

type FCMConfig struct {
	// CredentialsJSON is the service-account blob for the messaging
	// transport. Never log it.
	CredentialsJSON string
}

func (c FCMConfig) Enabled() bool { return c.CredentialsJSON != "" }

type APNSConfig struct {
	KeyID      string
	TeamID     string
	PrivateKey string // p8 PEM
	Topic      string // app bundle id; VoIP pushes use "<topic>.voip"
	Sandbox    bool
}

func (c APNSConfig) Enabled() bool {
	return c.KeyID != "" || c.TeamID != "" || c.PrivateKey != "" || c.Topic != ""
}

type InviteConfig struct {
	// LookupField selects the recipient resolution strategy.
	// Empty means lookup by document key (the canonical form);
	// non-empty means an equality query on that field.
	LookupField string

	// Cap limits concurrent invitations per caller IP. 0 disables.
	Cap    int
	CapTTL time.Duration
}

func Load() (Config, error) {
	c := Config{}
	var parseErrs []error

	c.App.Env = strings.TrimSpace(os.Getenv("APP_ENV"))
	{
		n, err := optInt("APP_PORT", 8080)
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.App.Port = n
	}
	c.App.Debug = boolEnv("DEBUG")

	c.Mongo.URI = strings.TrimSpace(os.Getenv("MONGO_URI"))
	c.Mongo.Database = strings.TrimSpace(os.Getenv("MONGO_DB"))

	c.Redis.Host = strings.TrimSpace(os.Getenv("REDIS_HOST"))
	{
		n, err := optInt("REDIS_PORT", 6379)
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.Redis.Port = n
	}

	c.CORS.AllowedOrigins = splitList(os.Getenv("CORS_ALLOWED_ORIGINS"))

	c.Auth.JWTSecret = os.Getenv("API_JWT_SECRET")
	c.Auth.JWTIssuer = strings.TrimSpace(os.Getenv("API_JWT_ISSUER"))
	c.Auth.AccessTokenTTL = optDuration("API_JWT_TTL")

	c.Agora.AppID = strings.TrimSpace(os.Getenv("AGORA_APP_ID"))
	c.Agora.AppCert = strings.TrimSpace(os.Getenv("AGORA_APP_CERT"))
	{
		n, err := optInt("RTC_TOKEN_EXPIRY", 600)
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.Agora.TokenExpiry = time.Duration(n) * time.Second
	}

	c.FCM.CredentialsJSON = os.Getenv("FIREBASE_CREDENTIALS_JSON")

	c.APNS.KeyID = strings.TrimSpace(os.Getenv("APNS_KEY_ID"))
	c.APNS.TeamID = strings.TrimSpace(os.Getenv("APNS_TEAM_ID"))
	c.APNS.PrivateKey = os.Getenv("APNS_PRIVATE_KEY")
	c.APNS.Topic = strings.TrimSpace(os.Getenv("APNS_TOPIC"))
	c.APNS.Sandbox = boolEnv("APNS_SANDBOX")

	{
		field, err := parseLookup(os.Getenv("RECIPIENT_LOOKUP"))
		if err != nil {
			parseErrs = append(parseErrs, err)
		}
		c.Invite.LookupField = field
	}
	{
		n, err := optInt("INVITE_CAP", 0)
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.Invite.Cap = n
	}
	c.Invite.CapTTL = optDuration("INVITE_CAP_TTL")

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
	if c.IsProduction() && c.App.Debug {
		// Debug output has leaked internals to callers before; keep it
		// impossible to switch on in production.
		errs = append(errs, errors.New("DEBUG must not be set in production"))
	}

	if c.Mongo.URI == "" {
		errs = append(errs, errors.New("MONGO_URI is required"))
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = "callbridge"
	}

	if c.Redis.Enabled() && (c.Redis.Port <= 0 || c.Redis.Port > 65535) {
		errs = append(errs, fmt.Errorf("REDIS_PORT must be a valid port, got %d", c.Redis.Port))
	}

	if c.Auth.Enabled() && c.Auth.AccessTokenTTL <= 0 {
		c.Auth.AccessTokenTTL = 15 * time.Minute
	}

	if (c.Agora.AppID == "") != (c.Agora.AppCert == "") {
		errs = append(errs, errors.New("AGORA_APP_ID and AGORA_APP_CERT must be set together"))
	}
	if c.Agora.TokenExpiry <= 0 {
		c.Agora.TokenExpiry = 600 * time.Second
	}

	if c.APNS.Enabled() {
		if c.APNS.KeyID == "" || c.APNS.TeamID == "" || c.APNS.PrivateKey == "" || c.APNS.Topic == "" {
			errs = append(errs, errors.New("APNS_KEY_ID, APNS_TEAM_ID, APNS_PRIVATE_KEY and APNS_TOPIC must be set together"))
		}
	}

	if c.Invite.Cap < 0 {
		errs = append(errs, fmt.Errorf("INVITE_CAP must be >= 0, got %d", c.Invite.Cap))
	}
	if c.Invite.Cap > 0 && c.Invite.CapTTL <= 0 {
		c.Invite.CapTTL = 30 * time.Second
	}

	return joinErrors(errs)
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// parseLookup accepts "key" (or empty) for by-key resolution, or
// "field:<name>" for an equality query on <name>.
func parseLookup(v string) (string, error) {
	v = strings.TrimSpace(v)
	switch {
	case v == "" || v == "key":
		return "", nil
	case strings.HasPrefix(v, "field:"):
		field := strings.TrimSpace(strings.TrimPrefix(v, "field:"))
		if field == "" {
			return "", errors.New(`RECIPIENT_LOOKUP "field:" requires a field name`)
		}
		return field, nil
	default:
		return "", fmt.Errorf(`RECIPIENT_LOOKUP must be "key" or "field:<name>", got %q`, v)
	}
}

func optInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

func optDuration(key string) time.Duration {
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

func boolEnv(key string) bool {
	v := strings.TrimSpace(os.Getenv(key))
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false
	}
	return b
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
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
