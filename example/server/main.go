package main

import (
	"crypto/sha256"
	"log/slog"
	"net/http"
	"os"

	"github.com/zitadel/logging"

	"github.com/kumarnvm/IdentityServer4/example/server/config"
	httphelper "github.com/kumarnvm/IdentityServer4/pkg/http"
	"github.com/kumarnvm/IdentityServer4/pkg/op"
	"github.com/kumarnvm/IdentityServer4/storage"
)

func main() {
	cfg := config.FromEnvVars(&config.Config{
		Port:          config.DefaultPort,
		Issuer:        "http://localhost:" + config.DefaultPort,
		CookieHashKey: "test",
	})

	logger := slog.New(
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			AddSource: true,
			Level:     slog.LevelDebug,
		}),
	)

	// be sure to create proper crypto random keys and manage them securely!
	hashKey := sha256.Sum256([]byte(cfg.CookieHashKey))
	cookies := httphelper.NewCookieHandler(hashKey[:], nil, httphelper.WithUnsecure())

	clients := storage.NewClientRegistry(map[string]*storage.Client{
		"web": storage.WebClient("web", "http://localhost:9999/callback").With(
			storage.WithFrontChannelLogout("http://localhost:9999/logout", true),
		),
		"native": storage.NativeClient("native", "http://localhost:9999/native/callback"),
	})

	provider, err := op.NewProvider(
		cfg.Issuer,
		clients,
		storage.NewLogoutMessageStore(),
		storage.NewPersistedGrantService(),
		op.NewSessionState(cookies),
		op.WithLogger(logger),
		op.WithHTTPMiddleware(logging.Middleware(
			logging.WithLogger(logger),
			logging.WithGroup("server"),
		)),
	)
	if err != nil {
		logger.Error("provider setup failed", "err", err)
		os.Exit(1)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: provider,
	}
	logger.Info("server listening", "addr", "http://localhost:"+cfg.Port)
	if err := server.ListenAndServe(); err != nil {
		logger.Error("server terminated", "err", err)
		os.Exit(1)
	}
}
