// cmd/server/main.go
package main

import (
	"net/http"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/arcana-gg/arcana/internal/cache"
	"github.com/arcana-gg/arcana/internal/database"
	"github.com/arcana-gg/arcana/internal/handlers"
	"github.com/arcana-gg/arcana/internal/middleware"
)

func main() {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	// Persistence and history are optional at runtime: without the env the
	// server runs purely in memory.
	if os.Getenv("PG_HOST") != "" {
		if err := database.ConnectDB(); err != nil {
			logger.Fatalf("database connect failed: %v", err)
		}
	} else {
		logger.Warn("PG_HOST not set; running without profile persistence")
	}
	if os.Getenv("REDIS_ADDR") != "" {
		if err := cache.ConnectRedis(); err != nil {
			logger.Fatalf("redis connect failed: %v", err)
		}
	} else {
		logger.Warn("REDIS_ADDR not set; running without the action history queue")
	}

	srv := handlers.NewGameServer(logger)

	mux := http.NewServeMux()
	logged := middleware.LogMiddleware(logger)

	mux.Handle("POST /game/{game_id}/create", logged(handlers.CreateGameHandler(srv)))
	mux.Handle("POST /game/{game_id}/join", logged(handlers.JoinGameHandler(srv)))
	mux.Handle("GET /game/{game_id}/players", logged(handlers.ListPlayersHandler(srv)))
	mux.Handle("POST /game/{game_id}/discard", logged(handlers.DiscardHandler(srv)))
	mux.Handle("POST /game/{game_id}/play_hand", logged(handlers.PlayHandHandler(srv)))
	mux.Handle("POST /game/{game_id}/end_turn", logged(handlers.EndTurnHandler(srv)))
	mux.Handle("POST /game/{game_id}/{player_id}/buyupgrade/{upgrade_id}", logged(handlers.BuyUpgradeHandler(srv)))

	mux.Handle("GET /game/{game_id}/ws/{player_id}", handlers.GameWSHandler(logger, srv))

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatalf("server exited: %v", err)
	}
}
