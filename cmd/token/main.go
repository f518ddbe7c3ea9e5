// Command token issues a signed access token for local testing.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/Domenick1991/seatflow/config"
	"github.com/Domenick1991/seatflow/internal/auth"
	"github.com/Domenick1991/seatflow/internal/clock"
	"github.com/Domenick1991/seatflow/internal/domain"
)

func main() {
	userID := flag.Int64("user", 1, "user id")
	role := flag.String("role", string(domain.RolePassenger), "PASSENGER or STAFF")
	flag.Parse()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	r := domain.Role(strings.ToUpper(*role))
	if r != domain.RolePassenger && r != domain.RoleStaff {
		log.Fatalf("unknown role %q", *role)
	}

	provider := auth.NewProvider(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute, clock.NewSystem())
	token, expires, err := provider.Issue(*userID, r)
	if err != nil {
		log.Fatalf("issue token: %v", err)
	}
	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "expires at %s\n", expires.Format(time.RFC3339))
}
