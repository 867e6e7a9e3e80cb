// Command cu-token mints a control-unit bearer token for provisioning
// devices and for local testing.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"shipment-tracker/internal/config"
	"shipment-tracker/pkg/utils"
)

func main() {
	var (
		unitID string
		ttl    time.Duration
		secret string
	)
	pflag.StringVar(&unitID, "unit-id", "", "control unit id (a new uuid when empty)")
	pflag.DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to CONTROL_UNIT_TOKEN_TTL_MINUTES)")
	pflag.StringVar(&secret, "secret", "", "signing secret (defaults to CONTROL_UNIT_JWT_SECRET)")
	pflag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if unitID == "" {
		unitID = uuid.NewString()
	}
	if ttl <= 0 {
		ttl = cfg.JWT.ControlUnitTTL()
	}
	if secret == "" {
		secret = cfg.JWT.ControlUnitSecret
	}
	if secret == "" {
		fmt.Fprintln(os.Stderr, "No signing secret: pass --secret or set CONTROL_UNIT_JWT_SECRET")
		os.Exit(1)
	}

	token, expiresAt, err := utils.GenerateControlUnitToken(unitID, secret, cfg.JWT.Algorithm, ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to sign token: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("unit_id:    %s\n", unitID)
	fmt.Printf("expires_at: %s\n", expiresAt.UTC().Format(time.RFC3339))
	fmt.Printf("token:      %s\n", token)
}
