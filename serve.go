package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/match3/api"
	"github.com/wricardo/match3/game/service"
	"github.com/wricardo/match3/transport/mcp"
	"github.com/wricardo/match3/transport/websocket"
)

func (a *app) serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP server with REST API, WebSocket and MCP endpoint",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "host",
				Usage:   "HTTP server host",
				Value:   "localhost",
				Sources: cli.EnvVars("MATCH3_HOST"),
			},
			&cli.IntFlag{
				Name:    "port",
				Usage:   "HTTP server port",
				Value:   8080,
				Sources: cli.EnvVars("MATCH3_PORT"),
			},
			&cli.StringFlag{
				Name:    "preset",
				Usage:   "preset for the first game (default preset when empty)",
				Sources: cli.EnvVars("MATCH3_PRESET"),
			},
			&cli.BoolFlag{
				Name:    "ngrok",
				Usage:   "expose the server through an ngrok tunnel",
				Sources: cli.EnvVars("NGROK_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "ngrok-auth",
				Usage:   "ngrok auth token",
				Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "ngrok-domain",
				Usage:   "custom ngrok domain (optional)",
				Sources: cli.EnvVars("NGROK_DOMAIN"),
			},
		},
		Action: a.runServe,
	}
}

// newHandler builds the API, WebSocket hub and /mcp endpoint around svc. The
// returned hub still has to be run.
func (a *app) newHandler(svc service.GameService, baseURL string) (http.Handler, *websocket.Hub, func()) {
	hub := websocket.NewHub(a.logger.Named("ws"), websocket.WithSnapshot(func() ([][]string, bool) {
		info, err := svc.State(context.Background())
		if err != nil {
			return nil, false
		}
		return info.Board, true
	}))
	unsubscribe := svc.Subscribe(hub.HandleEvent)

	apiServer := api.NewServer(svc, hub, a.logger.Named("api"))
	mcpClient := mcp.NewClient(baseURL, Version)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})

	return mainRouter, hub, unsubscribe
}

// runServe starts the HTTP server and, when enabled, an ngrok tunnel. It
// blocks until SIGINT or SIGTERM.
func (a *app) runServe(ctx context.Context, cmd *cli.Command) error {
	_, svc, err := a.initializeServices(cmd)
	if err != nil {
		return err
	}

	info, err := svc.NewGame(ctx, cmd.String("preset"))
	if err != nil {
		return fmt.Errorf("failed to start game: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port"))
	handler, hub, unsubscribe := a.newHandler(svc, "http://"+addr)
	defer unsubscribe()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go hub.Run(ctx)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		a.logger.Info("HTTP server listening",
			zap.String("addr", addr),
			zap.String("preset", info.Preset),
			zap.String("api", fmt.Sprintf("http://%s/api", addr)),
			zap.String("websocket", fmt.Sprintf("ws://%s/ws", addr)),
			zap.String("mcp", fmt.Sprintf("http://%s/mcp", addr)),
		)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	if cmd.Bool("ngrok") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.runNgrok(ctx, cmd, handler)
		}()
	}

	select {
	case <-ctx.Done():
		a.logger.Info("shutting down")
	case err := <-serveErr:
		stop()
		wg.Wait()
		return err
	}

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	wg.Wait()
	a.logger.Info("server stopped")
	return nil
}

// runNgrok serves handler through an ngrok tunnel until ctx is done
func (a *app) runNgrok(ctx context.Context, cmd *cli.Command, handler http.Handler) {
	authToken := cmd.String("ngrok-auth")
	if authToken == "" {
		a.logger.Warn("ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
		return
	}

	var tunnel ngrokConfig.Tunnel
	if domain := cmd.String("ngrok-domain"); domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		a.logger.Info("using custom ngrok domain", zap.String("domain", domain))
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		a.logger.Error("failed to start ngrok tunnel", zap.Error(err))
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			a.logger.Warn("failed to close ngrok tunnel", zap.Error(err))
		}
	}()

	ngrokURL := tun.URL()
	a.logger.Info("ngrok tunnel established",
		zap.String("url", ngrokURL),
		zap.String("api", ngrokURL+"/api"),
		zap.String("mcp", ngrokURL+"/mcp"),
	)

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		a.logger.Error("ngrok server error", zap.Error(err))
	}
	a.logger.Info("ngrok tunnel closed")
}

func (a *app) mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "run an MCP stdio server, using a running API or an internal one",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api-url",
				Usage:   "REST API to use when it is reachable",
				Value:   "http://localhost:8080",
				Sources: cli.EnvVars("MATCH3_API_URL"),
			},
			&cli.StringFlag{
				Name:    "preset",
				Usage:   "preset for the first game of an internal server",
				Sources: cli.EnvVars("MATCH3_PRESET"),
			},
		},
		Action: a.runStdioMCP,
	}
}

// runStdioMCP runs an MCP stdio server. It reuses the API at --api-url when
// it answers, otherwise it starts an internal API on a random loopback port.
func (a *app) runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	baseURL := cmd.String("api-url")

	testClient := &http.Client{Timeout: 2 * time.Second}
	healthy := false
	if resp, err := testClient.Get(baseURL + "/api/health"); err == nil {
		healthy = resp.StatusCode < 500
		resp.Body.Close()
	}
	if healthy {
		a.logger.Info("external API server found, using it for MCP", zap.String("url", baseURL))
	} else {
		a.logger.Info("no external API server found, starting internal HTTP server")

		_, svc, err := a.initializeServices(cmd)
		if err != nil {
			return err
		}
		if _, err := svc.NewGame(ctx, cmd.String("preset")); err != nil {
			return fmt.Errorf("failed to start game: %w", err)
		}

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}
		baseURL = "http://" + listener.Addr().String()

		handler, hub, unsubscribe := a.newHandler(svc, baseURL)
		defer unsubscribe()

		hubCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go hub.Run(hubCtx)

		httpServer := &http.Server{Handler: handler}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("internal HTTP server error", zap.Error(err))
			}
		}()
		defer httpServer.Close()

		a.logger.Info("internal HTTP server started", zap.String("url", baseURL))
	}

	mcpClient := mcp.NewClient(baseURL, Version)
	a.logger.Info("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
