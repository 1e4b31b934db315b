package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/beka-birhanu/vinom-arena-server/game"
	"github.com/joho/godotenv"
)

// Config holds the application's configuration values.
type Config struct {
	HostIP   string // Interface the HTTP and gRPC servers bind to
	HTTPPort int    // Port for the HTTP/websocket server
	GrpcPort int    // Port for the admin gRPC server

	MazeWidth   int     // Maze width in cells
	MazeHeight  int     // Maze height in cells
	MazeDensity float64 // 1 keeps the spanning tree, 0 removes every optional wall

	BroadcastInterval    time.Duration // Period of the tanks-only broadcast
	ProjectileTTL        time.Duration // Age after which projectiles are swept
	LastTankRestartDelay time.Duration // Delay before restarting when one tank survives
	DrawRestartDelay     time.Duration // Delay before restarting when no tank survives

	WSSendBuffer          int           // Outgoing messages queued per client before it is dropped
	WSReadLimit           int64         // Maximum inbound message size (in bytes)
	WSHeartbeatExpiration time.Duration // Time without a pong before a client is dropped

	AllowedOrigins []string // CORS and websocket origins, "*" allows all
	LogLevel       string
	LogFormat      string
}

// Load reads the configuration from the environment, after loading a .env
// file if one exists.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("[APP] [INFO] .env file not found or could not be loaded: %v", err)
	}

	return Config{
		HostIP:   getEnv("HOST_IP", "0.0.0.0"),
		HTTPPort: getEnvAsInt("HTTP_PORT", 5000),
		GrpcPort: getEnvAsInt("GRPC_PORT", 50051),

		MazeWidth:   getEnvAsInt("MAZE_WIDTH", game.DefaultMazeWidth),
		MazeHeight:  getEnvAsInt("MAZE_HEIGHT", game.DefaultMazeHeight),
		MazeDensity: getEnvAsFloat("MAZE_DENSITY", game.DefaultMazeDensity),

		BroadcastInterval:    getEnvAsMillis("BROADCAST_INTERVAL_MS", 500),
		ProjectileTTL:        getEnvAsMillis("PROJECTILE_TTL_MS", int(game.DefaultProjectileTTL/time.Millisecond)),
		LastTankRestartDelay: getEnvAsMillis("LAST_TANK_RESTART_DELAY_MS", 5000),
		DrawRestartDelay:     getEnvAsMillis("DRAW_RESTART_DELAY_MS", 1000),

		WSSendBuffer:          getEnvAsInt("WS_SEND_BUFFER", 256),
		WSReadLimit:           int64(getEnvAsInt("WS_READ_LIMIT", 64<<10)),
		WSHeartbeatExpiration: getEnvAsMillis("WS_HEARTBEAT_MS", 60000),

		AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"*"}),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "text"),
	}
}

// getEnv retrieves the value of an environment variable or returns fallback if not set.
func getEnv(key, fallback string) string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}
	return value
}

// getEnvAsInt retrieves an environment variable as an integer or logs a fatal error if it cannot be parsed.
func getEnvAsInt(key string, fallback int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return fallback
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Fatalf("[APP] [FATAL] Environment variable %s must be an integer: %v", key, err)
	}
	return value
}

func getEnvAsFloat(key string, fallback float64) float64 {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Fatalf("[APP] [FATAL] Environment variable %s must be a number: %v", key, err)
	}
	return value
}

func getEnvAsMillis(key string, fallback int) time.Duration {
	return time.Duration(getEnvAsInt(key, fallback)) * time.Millisecond
}

func getEnvAsList(key string, fallback []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	var values []string
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return fallback
	}
	return values
}
