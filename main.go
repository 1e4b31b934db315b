package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/beka-birhanu/vinom-arena-server/api"
	"github.com/beka-birhanu/vinom-arena-server/codec"
	"github.com/beka-birhanu/vinom-arena-server/config"
	"github.com/beka-birhanu/vinom-arena-server/game"
	"github.com/beka-birhanu/vinom-arena-server/logger"
	"github.com/beka-birhanu/vinom-arena-server/service"
	"github.com/beka-birhanu/vinom-arena-server/socket"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const shutdownTimeout = 5 * time.Second

// Global variables for dependencies
var (
	envs          config.Config
	appLogger     *logger.Logger
	arenaState    *game.State
	socketManager *socket.ServerSocketManager
	arenaManager  *service.ArenaManager
	grpcServer    *grpc.Server
	healthServer  *health.Server
	httpServer    *http.Server
)

func initLogger() {
	l, err := logger.New("APP", envs.LogLevel, envs.LogFormat, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Creating logger: %v\n", err)
		os.Exit(1)
	}
	appLogger = l
}

func initArenaState() {
	state, err := game.NewState(game.Config{
		MazeWidth:     envs.MazeWidth,
		MazeHeight:    envs.MazeHeight,
		MazeDensity:   envs.MazeDensity,
		ProjectileTTL: envs.ProjectileTTL,
	})
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating arena state: %v", err))
		os.Exit(1)
	}
	arenaState = state
	appLogger.Info(fmt.Sprintf("Arena initialized with a %dx%d maze for up to %d tanks", envs.MazeWidth, envs.MazeHeight, state.Capacity()))
	appLogger.Debug("Maze:\n" + state.Grid().String())
}

func initSocketManager() {
	server, err := socket.NewServerSocketManager(
		socket.ServerConfig{
			Codecs:         codec.DefaultRegistry(),
			Logger:         appLogger.Named("SERVER-SOCKET"),
			AllowedOrigins: envs.AllowedOrigins,
			ReadLimit:      envs.WSReadLimit,
		},
		socket.ServerWithSendBuffer(envs.WSSendBuffer),
		socket.ServerWithHeartbeatExpiration(envs.WSHeartbeatExpiration),
	)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating websocket manager: %v", err))
		os.Exit(1)
	}

	socketManager = server
	appLogger.Info("Websocket manager initialized")
}

func initArenaManager() {
	manager, err := service.NewArenaManager(
		&service.Config{
			Socket:               socketManager,
			State:                arenaState,
			Logger:               appLogger.Named("ARENA-MANAGER"),
			BroadcastInterval:    envs.BroadcastInterval,
			LastTankRestartDelay: envs.LastTankRestartDelay,
			DrawRestartDelay:     envs.DrawRestartDelay,
		},
	)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating arena manager: %v", err))
		os.Exit(1)
	}
	arenaManager = manager
	appLogger.Info("Arena manager initialized")
}

func initAdminController() {
	grpcServer = grpc.NewServer()
	if err := api.RegisterNewArenaServer(grpcServer, arenaManager); err != nil {
		appLogger.Error(fmt.Sprintf("Creating and registering arena admin controller: %v", err))
		os.Exit(1)
	}

	healthServer = health.NewServer()
	healthServer.SetServingStatus(api.Arena_ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	appLogger.Info("Arena admin controller initialized")
}

func initHTTPServer() {
	router := api.NewRouter(api.RouterConfig{
		ArenaManager:   arenaManager,
		Socket:         socketManager,
		AllowedOrigins: envs.AllowedOrigins,
		Logger:         appLogger.Named("HTTP"),
	})
	httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", envs.HostIP, envs.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func main() {
	envs = config.Load()
	initLogger()
	initArenaState()
	initSocketManager()
	initArenaManager()
	initAdminController()
	initHTTPServer()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	grpcAddr := fmt.Sprintf("%s:%d", envs.HostIP, envs.GrpcPort)
	grpcListener, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Listening tcp: %v", err))
		os.Exit(1)
	}

	go arenaManager.Run(ctx)

	go func() {
		appLogger.Info(fmt.Sprintf("Serving gRPC at: %s", grpcAddr))
		if err := grpcServer.Serve(grpcListener); err != nil {
			appLogger.Error(fmt.Sprintf("Serving gRPC: %v", err))
			stop()
		}
	}()

	go func() {
		appLogger.Info(fmt.Sprintf("Serving HTTP and websockets at: %s", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error(fmt.Sprintf("Serving HTTP: %v", err))
			stop()
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down")

	healthServer.Shutdown()
	arenaManager.StopAll()
	socketManager.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Warning(fmt.Sprintf("Shutting down HTTP server: %v", err))
	}
	grpcServer.GracefulStop()
	appLogger.Info("Stopped")
}
