// Command lootdogs starts the game server.
//
// It supports two modes:
//  1. the default mode runs the HTTP server exposing the REST API, the
//     WebSocket state feed, an /mcp HTTP endpoint and the static frontend
//  2. "mcp" runs an MCP stdio server proxying to a running HTTP server
//
// Flags control the world file, the frontend directory, automatic vs manual
// ticking, state snapshots and spawn randomization. The PostgreSQL connection
// string is taken from the GAME_DB_URL environment variable.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"lootdogs/api"
	"lootdogs/game/config"
	"lootdogs/game/engine"
	"lootdogs/game/service"
	"lootdogs/game/state"
	"lootdogs/storage"
	"lootdogs/transport/mcp"
	"lootdogs/transport/websocket"
)

const retirementQueueSize = 64

func main() {
	// Load .env if present so GAME_DB_URL can come from a file in development.
	godotenv.Load()

	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cmd := &cli.Command{
		Name:  "lootdogs",
		Usage: "multiplayer loot-collecting game server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config-file",
				Aliases:  []string{"c"},
				Usage:    "path to the world description file",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "www-root",
				Aliases:  []string{"w"},
				Usage:    "directory with the static frontend",
				Required: true,
			},
			&cli.IntFlag{
				Name:    "tick-period",
				Aliases: []string{"t"},
				Usage:   "tick period in milliseconds; 0 enables the manual tick endpoint",
			},
			&cli.StringFlag{
				Name:  "state-file",
				Usage: "path of the state snapshot; empty disables snapshots",
			},
			&cli.IntFlag{
				Name:  "save-state-period",
				Usage: "game-time milliseconds between snapshots; 0 saves every tick",
			},
			&cli.BoolFlag{
				Name:  "randomize-spawn-points",
				Usage: "spawn dogs at random road points instead of the first road start",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "HTTP listen port",
				Value: 8080,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runServer(ctx, cmd, log)
		},
		Commands: []*cli.Command{
			{
				Name:  "mcp",
				Usage: "run an MCP stdio server proxying to a running game server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "server-url",
						Usage: "base URL of the game server",
						Value: "http://localhost:8080",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runStdioMCP(cmd.String("server-url"))
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func runServer(ctx context.Context, cmd *cli.Command, log zerolog.Logger) error {
	configFile := cmd.String("config-file")
	wwwRoot := cmd.String("www-root")
	stateFile := cmd.String("state-file")
	tickPeriodMs := int(cmd.Int("tick-period"))
	savePeriodMs := int(cmd.Int("save-state-period"))
	port := int(cmd.Int("port"))

	dbURL := os.Getenv(storage.EnvDatabaseURL)
	if dbURL == "" {
		return fmt.Errorf("%s environment variable is not set", storage.EnvDatabaseURL)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	leaderboard, err := storage.OpenLeaderboard(ctx, dbURL, runtime.NumCPU())
	if err != nil {
		return fmt.Errorf("open leaderboard: %w", err)
	}
	defer leaderboard.Close()

	world, err := config.LoadWorld(configFile)
	if err != nil {
		return fmt.Errorf("load world: %w", err)
	}
	world.SetRandomSpawn(cmd.Bool("randomize-spawn-points"))

	if stateFile != "" {
		if err := state.Restore(stateFile, world); err != nil {
			return fmt.Errorf("restore state: %w", err)
		}
	}

	writer := storage.NewRetirementWriter(leaderboard, retirementQueueSize, log)
	go writer.Run(ctx)
	world.SetOnRetire(func(dog engine.RetiredDog) {
		writer.Enqueue(dog.Name, dog.PlayTimeMs, dog.Score)
	})

	if stateFile != "" {
		var sinceSaveMs float64
		world.OnTick(func(deltaMs float64) {
			sinceSaveMs += deltaMs
			if savePeriodMs > 0 && sinceSaveMs < float64(savePeriodMs) {
				return
			}
			sinceSaveMs = 0
			if err := state.Save(stateFile, world); err != nil {
				log.Error().Err(err).Str("path", stateFile).Msg("failed to save state")
			}
		})
	}

	hub := websocket.NewHub(log)
	go hub.Run(ctx)

	gameService := service.NewGameService(world, leaderboard, hub, log)

	if tickPeriodMs > 0 {
		ticker := service.NewTicker(time.Duration(tickPeriodMs)*time.Millisecond, gameService, log)
		go ticker.Run(ctx)
	}

	apiServer := api.NewServer(gameService, api.Config{
		ManualTick: tickPeriodMs == 0,
		WWWRoot:    wwwRoot,
		WS:         hub,
		Log:        log,
	})

	addr := fmt.Sprintf(":%d", port)
	mcpClient := mcp.NewClient(fmt.Sprintf("http://localhost:%d", port))

	router := http.NewServeMux()
	router.Handle("/", apiServer)
	router.HandleFunc("/mcp", mcpHTTPHandler(mcpClient))

	httpServer := &http.Server{
		Addr:        addr,
		Handler:     router,
		IdleTimeout: 60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Int("port", port).Msg("server started")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}

	if stateFile != "" {
		if err := state.Save(stateFile, world); err != nil {
			log.Error().Err(err).Str("path", stateFile).Msg("failed to save final state")
		}
	}

	// drain the queued retirement records before closing the database
	writer.Close()

	log.Info().Int("code", 0).Msg("server exited")
	return nil
}

// mcpHTTPHandler exposes the MCP server over plain HTTP POST for remote
// agent integrations.
func mcpHTTPHandler(client *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := client.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		data, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(data)
	}
}

func runStdioMCP(serverURL string) error {
	client := mcp.NewClient(serverURL)
	return server.ServeStdio(client.GetMCPServer())
}
