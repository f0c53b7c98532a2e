// Command seed provisions a demo account with sample data for local
// development. Safe to re-run: the account upsert keeps the same id.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/iflow-pos/iflow/internal/app"
	"github.com/iflow-pos/iflow/internal/capital"
	"github.com/iflow-pos/iflow/internal/categories"
	"github.com/iflow-pos/iflow/internal/clients"
	"github.com/iflow-pos/iflow/internal/platform/cache"
	"github.com/iflow-pos/iflow/internal/platform/db"
	"github.com/iflow-pos/iflow/internal/profile"
	"github.com/iflow-pos/iflow/internal/stock"
	"github.com/iflow-pos/iflow/internal/store"
)

const (
	demoAccountID = "demo-account"
	demoEmail     = "demo@iflow.local"
	demoPassword  = "demo-password"
)

func main() {
	ctx := context.Background()
	logger := slog.Default()

	cfg, err := app.LoadConfig()
	if err != nil {
		logger.Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer redisClient.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("hash password", slog.Any("error", err))
		os.Exit(1)
	}
	const upsert = `
		INSERT INTO accounts (id, email, password_hash, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, TRUE, NOW(), NOW())
		ON CONFLICT (email) DO UPDATE SET password_hash = EXCLUDED.password_hash, updated_at = NOW()`
	if _, err := pool.Exec(ctx, upsert, demoAccountID, demoEmail, string(hash)); err != nil {
		logger.Error("upsert demo account", slog.Any("error", err))
		os.Exit(1)
	}

	documents := store.NewPG(pool, redisClient, logger)
	ops, err := demoOps(cfg.DefaultExchangeRate)
	if err != nil {
		logger.Error("build demo documents", slog.Any("error", err))
		os.Exit(1)
	}
	if err := documents.BatchWrite(ctx, demoAccountID, ops); err != nil {
		logger.Error("write demo documents", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("demo account ready",
		slog.String("email", demoEmail),
		slog.String("password", demoPassword))
}

func demoOps(rate float64) ([]store.Op, error) {
	now := time.Now()

	p := profile.Defaults(rate)
	p.BusinessName = "iFlow Demo Store"
	p.Email = demoEmail
	p.SubscriptionStatus = profile.SubscriptionActive
	p.PaidThrough = now.AddDate(0, 1, 0)
	p.CreatedAt = now

	sum := capital.Summary{ARS: 250000, USD: 500}

	items := []stock.Item{
		{
			ID: "demo-stock-1", Category: "Celulares", Serial: "IMEI-0001",
			Quantity: 2, CostUSD: 550, SuggestedPrice: 700,
			Attributes: map[string]string{"brand": "Apple", "model": "iPhone 15", "storage": "128GB"},
			Status:     stock.StatusAvailable, CreatedAt: now,
		},
		{
			ID: "demo-stock-2", Category: "Accesorios",
			Quantity: 10, CostUSD: 5, SuggestedPrice: 12,
			Attributes: map[string]string{"kind": "funda", "brand": "generic"},
			Status:     stock.StatusAvailable, CreatedAt: now,
		},
	}

	demoClients := []clients.Client{
		{ID: "demo-client-1", Name: "Juan Perez", Phone: "+54 11 5555-0001", CreatedAt: now},
	}

	var ops []store.Op
	add := func(collection, id string, v any) error {
		op, err := store.SetOp(collection, id, v)
		if err != nil {
			return err
		}
		ops = append(ops, op)
		return nil
	}

	if err := add(store.CollProfile, store.SingletonDocID, p); err != nil {
		return nil, err
	}
	if err := add(store.CollCapital, store.SingletonDocID, sum); err != nil {
		return nil, err
	}
	for _, it := range items {
		if err := add(store.CollStock, it.ID, it); err != nil {
			return nil, err
		}
	}
	for _, c := range demoClients {
		if err := add(store.CollClients, c.ID, c); err != nil {
			return nil, err
		}
	}
	for _, cat := range categories.DefaultSet() {
		if err := add(store.CollCategories, cat.ID, cat); err != nil {
			return nil, err
		}
	}
	return ops, nil
}
