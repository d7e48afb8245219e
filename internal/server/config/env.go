package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"

	"github.com/BakeNecko/sidus-heroes/internal/flagx"
	"github.com/joho/godotenv"
)

// parseEnv loads the dotenv file (the -env flag, or ./.env when present)
// into the process environment without overriding variables that are
// already set, then overlays the recognised variables onto config.
//
//	HTTP_ADDR, GRPC_ADDR, DB_URL, SECRET_KEY, CACHE_BACKEND,
//	REDIS_HOST, REDIS_PORT, REDIS_PASSWORD, REDIS_DB, LOG_LEVEL
func parseEnv(config *Config, args []string) error {
	if path := flagx.EnvFile(args); path != "" {
		if err := godotenv.Load(path); err != nil {
			return err
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	envString(&config.EndpointAddrHTTP, "HTTP_ADDR")
	envString(&config.EndpointAddrGRPC, "GRPC_ADDR")
	envString(&config.DatabaseDSN, "DB_URL")
	envString(&config.SecretKey, "SECRET_KEY")
	envString(&config.CacheBackend, "CACHE_BACKEND")
	envString(&config.RedisPassword, "REDIS_PASSWORD")
	envString(&config.LogLevel, "LOG_LEVEL")

	host, port, err := net.SplitHostPort(config.RedisAddr)
	if err != nil {
		host, port = config.RedisAddr, "6379"
	}
	envString(&host, "REDIS_HOST")
	envString(&port, "REDIS_PORT")
	config.RedisAddr = net.JoinHostPort(host, port)

	if v, ok := os.LookupEnv("REDIS_DB"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REDIS_DB: %w", err)
		}
		config.RedisDB = n
	}
	return nil
}

func envString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}
