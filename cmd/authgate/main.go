package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jinzhu/copier"
	"github.com/tendant/chi-demo/app"

	"github.com/authgate/authgate/pkg/accounts"
	pkgconfig "github.com/authgate/authgate/pkg/config"
	"github.com/authgate/authgate/pkg/gate"
	"github.com/authgate/authgate/pkg/notification"
	"github.com/authgate/authgate/pkg/password"
	"github.com/authgate/authgate/pkg/signin"
	"github.com/authgate/authgate/pkg/tokengenerator"
	"github.com/authgate/authgate/pkg/twofa"
	"github.com/authgate/authgate/pkg/verify"
)

type Config struct {
	AppConfig app.AppConfig
	pkgconfig.Config
}

func main() {

	config := Config{}
	cleanenv.ReadEnv(&config)

	server := app.DefaultWithoutRoutes()

	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)

	// Account store: Postgres when configured, in-memory otherwise
	var accountRepo accounts.Repository
	if config.PgConfig.Enabled {
		pool, err := pgxpool.New(context.Background(), config.PgConfig.Url())
		if err != nil {
			slog.Error("Failed creating dbpool", "db", config.PgConfig.Database, "host", config.PgConfig.Host, "port", config.PgConfig.Port, "user", config.PgConfig.User)
			os.Exit(-1)
		}
		accountRepo = accounts.NewPostgresRepository(pool)
	} else {
		slog.Warn("Postgres disabled, using in-memory account store")
		accountRepo = accounts.NewInMemoryRepository()
	}

	// Notification manager
	notificationOptions := []notification.ManagerOption{
		notification.WithSMTP(notification.SMTPConfig{
			Host:     config.EmailConfig.Host,
			Port:     config.EmailConfig.Port,
			Username: config.EmailConfig.Username,
			Password: config.EmailConfig.Password,
			From:     config.EmailConfig.From,
			TLS:      config.EmailConfig.TLS,
		}),
		notification.WithDefaultTemplates(),
	}
	if config.SmsConfig.Endpoint != "" {
		notificationOptions = append(notificationOptions, notification.WithSMS(notification.SMSConfig{
			Endpoint: config.SmsConfig.Endpoint,
			From:     config.SmsConfig.From,
			APIKey:   config.SmsConfig.APIKey,
		}))
	}
	notificationManager, err := notification.NewManagerWithOptions(config.BaseUrl, notificationOptions...)
	if err != nil {
		slog.Error("Failed creating notification manager", "err", err)
		os.Exit(-1)
	}

	// Token services
	sessionExpiry, err := time.ParseDuration(config.JwtConfig.SessionExpiry)
	if err != nil {
		slog.Error("Invalid session token expiry", "value", config.JwtConfig.SessionExpiry, "err", err)
		os.Exit(-1)
	}
	pendingExpiry, err := time.ParseDuration(config.JwtConfig.PendingExpiry)
	if err != nil {
		slog.Error("Invalid pending token expiry", "value", config.JwtConfig.PendingExpiry, "err", err)
		os.Exit(-1)
	}
	sessionGenerator := tokengenerator.NewJwtTokenGenerator(config.JwtConfig.JwtSecret, config.JwtConfig.JwtIssuer, config.JwtConfig.JwtAudience)
	pendingGenerator := tokengenerator.NewTempTokenGenerator(config.JwtConfig.JwtSecret, config.JwtConfig.JwtIssuer, config.JwtConfig.JwtAudience)
	tokenService := tokengenerator.NewTokenService(sessionGenerator, pendingGenerator, sessionExpiry, pendingExpiry)
	cookieSetter := tokengenerator.NewCookieSetter(config.JwtConfig.CookieHttpOnly, config.JwtConfig.CookieSecure)

	// Password manager
	var policy password.Policy
	copier.Copy(&policy, &config.PasswordComplexityConfig)
	passwordManager := password.NewManager(accountRepo, notificationManager, password.WithPolicy(&policy))

	// Two-factor service
	challengeRepo := twofa.NewInMemoryChallengeRepository()
	twoFaService := twofa.NewService(challengeRepo, notificationManager, accountRepo)

	// Signin and verification services
	signinService := signin.NewSigninService(accountRepo, tokenService, twoFaService)
	verifyService := verify.NewService(accountRepo, notificationManager)

	// Session gate in front of page routes
	sessionGate := gate.NewGate(config.JwtConfig.JwtSecret, gate.WithSigninPath(config.SigninPath))
	server.R.Use(sessionGate.Middleware)

	// Auth API
	signinHandle := signin.NewHandle(signinService, cookieSetter)
	twoFaHandle := twofa.NewHandle(twoFaService, accountRepo, tokenService, cookieSetter)
	passwordHandle := password.NewHandle(passwordManager)
	verifyHandle := verify.NewHandle(verifyService)

	server.R.Mount("/api/auth", signin.Handler(signinHandle))
	server.R.Mount("/api/auth/2fa", twofa.Handler(twoFaHandle))
	server.R.Mount("/api/auth/reset-password", password.Handler(passwordHandle))
	server.R.Mount("/api/auth/verify-email", verify.Handler(verifyHandle))

	server.Run()

}
