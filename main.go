package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/marcus-crane/curator/cli"
	"github.com/marcus-crane/curator/config"
	"github.com/marcus-crane/curator/db"
	"github.com/marcus-crane/curator/migrations"
	"github.com/marcus-crane/curator/utils"
)

func main() {
	// a missing .env is fine, everything has a default
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Println(err)
	}

	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	slog.SetDefault(utils.NewLogger(cfg.GetLogLevel(), os.Stderr))

	if utils.GetEnv("RESET_DB", "0") == "1" {
		if err := os.Remove(cfg.DbPath); err != nil && !os.IsNotExist(err) {
			slog.Error("Failed to reset database", slog.String("stack", err.Error()))
			os.Exit(1)
		}
	}

	store, err := db.NewSqliteStore(cfg.DbPath)
	if err != nil {
		slog.Error("Failed to open database", slog.String("stack", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	if err := store.ApplyMigrations(migrations.GetMigrations()); err != nil {
		slog.Error("Failed to apply migrations", slog.String("stack", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand(cli.NewApp(cfg, store)).ExecuteContext(ctx); err != nil {
		stop()
		store.Close()
		os.Exit(1)
	}
}
