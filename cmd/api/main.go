package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/petermazzocco/foodgram/internal/accounts"
	"github.com/petermazzocco/foodgram/internal/auth"
	"github.com/petermazzocco/foodgram/internal/config"
	"github.com/petermazzocco/foodgram/internal/handlers"
	"github.com/petermazzocco/foodgram/internal/logging"
	"github.com/petermazzocco/foodgram/internal/media"
	"github.com/petermazzocco/foodgram/internal/media/vips"
	"github.com/petermazzocco/foodgram/internal/query"
	"github.com/petermazzocco/foodgram/internal/recipes"
	"github.com/petermazzocco/foodgram/internal/relations"
	"github.com/petermazzocco/foodgram/internal/resolver"
	"github.com/petermazzocco/foodgram/internal/store"
	"github.com/petermazzocco/foodgram/internal/subscriptions"
)

func main() {
	// Initialize environment variables
	cfg, err := config.Load()
	logger := logging.New(cfg.LogLevel, !cfg.IsProduction())
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	// Database connection
	db, err := store.Open(cfg.DSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("open database")
	}
	if err := store.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("migrate")
	}

	// Create custom HTTP client with TLS config
	tr := &http.Transport{
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
			MaxVersion: tls.VersionTLS13,
			CipherSuites: []uint16{
				tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
				tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
				tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
				tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
			},
		},
	}
	httpClient := &http.Client{Transport: tr}

	// R2 bucket through the S3 API
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithHTTPClient(httpClient),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.AccessKeySecret, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("load object storage config")
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID))
	})
	images := media.NewImages(
		media.NewS3Store(client, cfg.BucketName, cfg.PublicURL),
		vips.New(cfg.ImageMaxWidth),
	)

	// OAUTH
	oauth := auth.SetupOAuth(auth.OAuthConfig{
		GoogleKey:     cfg.GoogleKey,
		GoogleSecret:  cfg.GoogleSecret,
		CallbackURL:   cfg.OAuthCallbackURL,
		SessionSecret: cfg.SessionSecret,
		Secure:        cfg.IsProduction(),
	})
	if !oauth {
		logger.Info().Msg("google credentials not set, oauth login disabled")
	}

	res := resolver.New(db)
	h := &handlers.Handler{
		Accounts:      accounts.New(db, res),
		Recipes:       recipes.New(db, res),
		Query:         query.New(db, res, query.Options{RequireTags: cfg.RequireTagsFilter}),
		Subscriptions: subscriptions.New(db),
		Relations:     relations.New(db),
		Images:        images,
		Logger:        logger,
		PageSize:      cfg.PageSize,
	}
	router := handlers.NewRouter(h, handlers.RouterOptions{
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		AllowedOrigins:     cfg.AllowedOrigins,
		OAuth:              oauth,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("serve")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
	logger.Info().Msg("server stopped")
}
