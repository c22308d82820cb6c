package config

import (
	"flag"
	"os"
	"time"

	"github.com/selfserveid/portal/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string                base URL of the backend API (default from Config)
//	-t int                   request timeout in seconds (default from Config)
//	-verify-username string  username for one-shot email verification
//	-verify-token string     token for one-shot email verification
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-verify-username", "-verify-token"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "base URL of the backend API")
	requestTimeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.VerifyUsername, "verify-username", cfg.VerifyUsername, "username for one-shot email verification")
	fs.StringVar(&cfg.VerifyToken, "verify-token", cfg.VerifyToken, "token for one-shot email verification")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*requestTimeout) * time.Second
}
