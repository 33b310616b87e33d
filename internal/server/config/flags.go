package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/andreacfromtheapp/random-word-api-sub000/internal/flagx"
)

// parseFlags overlays command-line flags:
//
//	-a string   HTTP bind address (e.g. ":3000")
//	-g string   gRPC bind address (e.g. ":50051")
//	-d string   database DSN
//	-s string   JWT HMAC secret
//	-t int      token lifetime, minutes
//	-w int      concurrent password hashes (0 = GOMAXPROCS)
//	-l string   log level
//
// Other arguments, including -c, are ignored here.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-g", "-d", "-s", "-t", "-w", "-l"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port to run server")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "gRPC address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "JWT secret key")
	fs.IntVar(&config.TokenLifetimeMinutes, "t", config.TokenLifetimeMinutes, "token lifetime (in minutes)")
	fs.IntVar(&config.HashConcurrency, "w", config.HashConcurrency, "max concurrent password hashes")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
