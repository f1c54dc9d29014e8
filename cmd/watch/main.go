package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/taivu9x/bowling-score/internal/apiclient"
	"github.com/taivu9x/bowling-score/internal/config"
	"github.com/taivu9x/bowling-score/internal/domain"
	"github.com/taivu9x/bowling-score/internal/game"
	"github.com/taivu9x/bowling-score/internal/logger"
	"github.com/taivu9x/bowling-score/internal/reconcile"
)

// Follows one game from the terminal and reprints the score sheet whenever
// the server says it changed.
func main() {
	cfg := config.Load()
	gameID := flag.String("game", "", "game id to follow")
	apiURL := flag.String("api", cfg.APIURL, "API base url")
	wsURL := flag.String("ws", cfg.WSURL, "push channel url")
	flag.Parse()

	logger.Init(cfg.LogLevel, cfg.LogJSON)
	if *gameID == "" {
		logger.Fatal("-game is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r := reconcile.New(*gameID,
		apiclient.New(*apiURL),
		reconcile.WSDialer{URL: *wsURL},
		reconcile.WithAttempts(cfg.ReconnectAttempts),
		reconcile.WithBaseDelay(cfg.ReconnectBase),
	)
	r.OnChange(func(g domain.Game) { printSheet(os.Stdout, g) })
	r.Start(ctx)
	defer r.Close()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			switch r.State() {
			case reconcile.StateCompleted:
				fmt.Println("game over")
				return
			case reconcile.StateDisconnected:
				if err := r.Err(); err != nil {
					logger.Error("last pull failed", "error", err)
				}
				logger.Fatal("lost the push channel", "game_id", *gameID)
			}
		}
	}
}

func printSheet(w io.Writer, g domain.Game) {
	fmt.Fprintf(w, "\n%s  %s  v%d\n", g.GameID, g.Status, g.Version)
	for _, p := range g.PlayerStates {
		var cells []string
		for f, frame := range p.Frames {
			marks := domain.FormatSymbols(f, frame.Rolls)
			for i, m := range marks {
				if m == "" {
					marks[i] = "-"
				}
			}
			cells = append(cells, strings.Join(marks, " "))
		}
		fmt.Fprintf(w, "%-16s |%s|\n", p.Name, strings.Join(cells, "|"))

		totals := game.RunningTotals(p.Frames)
		nums := make([]string, len(totals))
		for i, t := range totals {
			nums[i] = fmt.Sprintf("%3d", t)
		}
		fmt.Fprintf(w, "%-16s |%s|  %d\n", "", strings.Join(nums, "|"), p.Score)
	}
}
