package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jcmexdev/partsmarket/internal/pkg/apiclient"
	"github.com/jcmexdev/partsmarket/internal/pkg/kvstore"
	"github.com/jcmexdev/partsmarket/internal/pkg/requestid"
	"github.com/jcmexdev/partsmarket/internal/pkg/telemetry"
	"github.com/jcmexdev/partsmarket/internal/pkg/token"
	"github.com/jcmexdev/partsmarket/internal/storefront/cart"
	"github.com/jcmexdev/partsmarket/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/partsmarket/internal/storefront/infra/adapters/rest"
	"github.com/jcmexdev/partsmarket/internal/storefront/resource"
)

// The storefront binary exercises the full client stack against a running
// catalog API: it signs in when credentials are provided, loads the public
// listing through a fetcher, and fills a persistent cart.
func main() {
	telemetry.InitLogger(getEnv("OTEL_SERVICE_NAME", "storefront"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.SetupTracer(ctx, getEnv("OTEL_SERVICE_NAME", "storefront"))
	if err != nil {
		slog.Error("failed to initialise tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	kv, closeKV, err := openState()
	if err != nil {
		slog.Error("failed to open local state", "error", err)
		os.Exit(1)
	}
	defer closeKV()

	tokens := token.New(kv)

	api, err := apiclient.New(apiclient.Config{
		BaseURL: getEnv("API_URL", "http://localhost:3000/api"),
		Tokens:  tokens,
	})
	if err != nil {
		slog.Error("failed to build API client", "error", err)
		os.Exit(1)
	}

	authClient := rest.NewAuthClient(api, tokens)
	catalogClient := rest.NewCatalogClient(api)

	ctx = requestid.NewContext(ctx, uuid.NewString())

	if user, pass := os.Getenv("SHOP_USERNAME"), os.Getenv("SHOP_PASSWORD"); user != "" {
		session, err := authClient.Login(ctx, user, pass)
		if err != nil {
			slog.Error("login failed", "error", err, "kind", apiclient.KindOf(err))
			os.Exit(1)
		}
		slog.Info("signed in", "username", session.User.Username)
	}

	basket := cart.New(ctx, kv, cart.WithOnChange(func(state cart.State) {
		slog.Info("cart updated", "items", state.TotalItems, "total", state.TotalAmount)
	}))

	filter := entity.PartFilter{
		Category: os.Getenv("SHOP_CATEGORY"),
		Brand:    os.Getenv("SHOP_BRAND"),
		Search:   os.Getenv("SHOP_SEARCH"),
	}

	parts := resource.New("public-parts", func(ctx context.Context) ([]entity.Part, error) {
		return catalogClient.ListPublic(ctx, filter)
	}, resource.DefaultConfig())
	defer parts.Close()

	parts.Fetch(ctx)
	snap := waitForResult(ctx, parts)

	switch snap.Status {
	case resource.StatusSuccess:
		fmt.Printf("%d parts available\n", len(snap.Data))
		for _, p := range snap.Data {
			fmt.Printf("  %-30s $%.2f\n", p.Name, p.EffectivePrice())
			basket.Add(ctx, p, 1)
		}
		state := basket.Snapshot()
		fmt.Printf("cart: %d items, $%.2f\n", state.TotalItems, state.TotalAmount)
	case resource.StatusFailed:
		slog.Error("could not load catalog", "error", snap.Err, "kind", apiclient.KindOf(snap.Err), "attempts", snap.Attempts)
		os.Exit(1)
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// openState picks the cart/session store: Redis when REDIS_ADDR is set,
// otherwise a local SQLite file.
func openState() (kvstore.Store, func(), error) {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		r := kvstore.NewRedis(addr, "storefront")
		return r, func() { _ = r.Close() }, nil
	}

	f, err := kvstore.OpenFile(getEnv("STATE_PATH", "storefront.db"))
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

// waitForResult polls until the fetcher leaves the loading state. The fetcher
// schedules its own retries, so this only has to watch the snapshot.
func waitForResult(ctx context.Context, f *resource.Fetcher[[]entity.Part]) resource.Snapshot[[]entity.Part] {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		snap := f.Snapshot()
		if snap.Status == resource.StatusSuccess || snap.Status == resource.StatusFailed {
			if snap.Status == resource.StatusFailed && snap.Attempts < resource.DefaultConfig().MaxAttempts {
				// Still inside the retry budget, keep waiting.
			} else {
				return snap
			}
		}
		select {
		case <-ctx.Done():
			return f.Snapshot()
		case <-ticker.C:
		}
	}
}
