package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/taivu9x/bowling-score/internal/db"
	"github.com/taivu9x/bowling-score/internal/logger"
)

func main() {
	apply := flag.Bool("apply", false, "apply migrations instead of listing them")
	dir := flag.String("dir", filepath.Join("internal", "migrations"), "migrations directory")
	flag.Parse()

	logger.Init(os.Getenv("LOG_LEVEL"), false)

	if !*apply {
		files, err := db.Migrations(*dir)
		if err != nil {
			logger.Fatal("list migrations", "error", err)
		}
		for _, f := range files {
			fmt.Println(filepath.Base(f))
		}
		return
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Fatal("DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, dsn)
	if err != nil {
		logger.Fatal("connect", "error", err)
	}
	defer pool.Close()

	if err := db.ApplyMigrations(ctx, pool, *dir); err != nil {
		logger.Fatal("migrate", "error", err)
	}
}
