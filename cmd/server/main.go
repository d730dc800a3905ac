package main

import (
	"log"
	"log/slog"
	"net/http"
	"time"

	"coursedeck/internal/config"
	"coursedeck/internal/membership"
	"coursedeck/internal/membertoken"
	"coursedeck/internal/server"
	"coursedeck/internal/session"
	"coursedeck/internal/tablestore"
	"coursedeck/internal/util"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	sessionTTL, err := config.ParseSessionTTL(cfg.SessionTTL)
	if err != nil {
		log.Fatalf("failed to parse session TTL: %v", err)
	}
	jwtLeeway, err := config.ParseJWTLeeway(cfg.JWTLeeway)
	if err != nil {
		log.Fatalf("failed to parse jwt leeway: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)

	// Local JWKS verification is optional; without a JWKS URL every token
	// goes straight to the membership platform.
	var verifier *membertoken.Verifier
	if cfg.MembershipJWKSURL != "" {
		verifier, err = membertoken.NewVerifier(membertoken.Config{
			JWKSURL:  cfg.MembershipJWKSURL,
			Issuer:   cfg.JWTIssuer,
			Audience: cfg.JWTAudience,
			Leeway:   jwtLeeway,
		})
		if err != nil {
			log.Fatalf("failed to init token verifier: %v", err)
		}
	}

	httpServer, err := server.New(server.Config{
		Membership:               membership.NewClient(cfg.MembershipAPIURL, cfg.MembershipAPIKey),
		Tables:                   tablestore.NewClient(cfg.TableAPIURL, cfg.TableAPIKey),
		TokenVerifier:            verifier,
		Sessions:                 session.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, sessionTTL),
		CoursesTable:             cfg.CoursesTable,
		LessonsTable:             cfg.LessonsTable,
		RedisAddr:                cfg.RedisAddr,
		RedisPassword:            cfg.RedisPassword,
		TrustedProxyCIDRs:        cfg.TrustedProxyCIDRs,
		LoginRateLimitPerMinute:  cfg.LoginRateLimitPerMinute,
		SignupRateLimitPerMinute: cfg.SignupRateLimitPerMinute,
		VerifyRateLimitPerMinute: cfg.VerifyRateLimitPerMinute,
		SeedRateLimitPerMinute:   cfg.SeedRateLimitPerMinute,
	})
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}
