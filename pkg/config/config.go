package config

import "fmt"

type PgConfig struct {
	Enabled  bool   `env:"AUTHGATE_PG_ENABLED" env-default:"false"`
	Host     string `env:"AUTHGATE_PG_HOST" env-default:"localhost"`
	Port     uint16 `env:"AUTHGATE_PG_PORT" env-default:"5432"`
	Database string `env:"AUTHGATE_PG_DATABASE" env-default:"authgate_db"`
	User     string `env:"AUTHGATE_PG_USER" env-default:"authgate"`
	Password string `env:"AUTHGATE_PG_PASSWORD" env-default:"pwd"`
}

// Url builds a pgx connection string from the parts
func (c PgConfig) Url() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s", c.User, c.Password, c.Host, c.Port, c.Database)
}

type JwtConfig struct {
	JwtSecret      string `env:"JWT_SECRET" env-default:"very-secure-jwt-secret"`
	JwtIssuer      string `env:"JWT_ISSUER" env-default:"authgate"`
	JwtAudience    string `env:"JWT_AUDIENCE" env-default:"authgate"`
	SessionExpiry  string `env:"SESSION_TOKEN_EXPIRY" env-default:"24h"`
	PendingExpiry  string `env:"PENDING_TOKEN_EXPIRY" env-default:"10m"`
	CookieHttpOnly bool   `env:"COOKIE_HTTP_ONLY" env-default:"true"`
	CookieSecure   bool   `env:"COOKIE_SECURE" env-default:"false"`
}

type EmailConfig struct {
	Host     string `env:"EMAIL_HOST" env-default:"localhost"`
	Port     int    `env:"EMAIL_PORT" env-default:"1025"`
	Username string `env:"EMAIL_USERNAME" env-default:""`
	Password string `env:"EMAIL_PASSWORD" env-default:""`
	From     string `env:"EMAIL_FROM" env-default:"noreply@example.com"`
	TLS      bool   `env:"EMAIL_TLS" env-default:"false"`
}

type SmsConfig struct {
	Endpoint string `env:"SMS_ENDPOINT" env-default:""`
	From     string `env:"SMS_FROM" env-default:""`
	APIKey   string `env:"SMS_API_KEY" env-default:""`
}

type PasswordComplexityConfig struct {
	RequireDigit       bool `env:"PASSWORD_COMPLEXITY_REQUIRE_DIGIT" env-default:"true"`
	RequireLowercase   bool `env:"PASSWORD_COMPLEXITY_REQUIRE_LOWERCASE" env-default:"true"`
	RequireSpecialChar bool `env:"PASSWORD_COMPLEXITY_REQUIRE_NON_ALPHANUMERIC" env-default:"false"`
	RequireUppercase   bool `env:"PASSWORD_COMPLEXITY_REQUIRE_UPPERCASE" env-default:"true"`
	MinLength          int  `env:"PASSWORD_COMPLEXITY_REQUIRED_LENGTH" env-default:"8"`
}

// Config is the full application configuration, read from the environment
type Config struct {
	BaseUrl                  string `env:"BASE_URL" env-default:"http://localhost:4000"`
	SigninPath               string `env:"SIGNIN_PATH" env-default:"/signin"`
	PgConfig                 PgConfig
	JwtConfig                JwtConfig
	EmailConfig              EmailConfig
	SmsConfig                SmsConfig
	PasswordComplexityConfig PasswordComplexityConfig
}
