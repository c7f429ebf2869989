package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ParkingService/internal/pricing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const minimal = `
[database]
host = "localhost"
dbname = "parking"

[listing_service]
url = "http://listing:8080"
`

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimal))

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, pricing.ModeProportional, cfg.PricingMode())
	assert.Equal(t, time.Hour, cfg.PricingCalculatorConfig().MinBillable)
	assert.Equal(t, int64(1500), cfg.Commission.RateBps)
	assert.Equal(t, time.Minute, cfg.SweepInterval())
	interval, err := cfg.PayoutInterval()
	require.NoError(t, err)
	assert.Equal(t, 720*time.Hour, interval)
	assert.False(t, cfg.Server.InternalEnabled())
}

func TestLoad_InternalListener(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimal+"[server]\ninternal_http_port = 9091\n"))

	require.NoError(t, err)
	assert.True(t, cfg.Server.InternalEnabled())
	assert.Equal(t, 9091, cfg.Server.InternalHTTPPort)

	t.Setenv("PARKING_INTERNAL_HTTP_PORT", "9092")
	cfg, err = Load(writeConfig(t, minimal))

	require.NoError(t, err)
	assert.Equal(t, 9092, cfg.Server.InternalHTTPPort)
}

func TestLoad_Values(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimal+`
[pricing]
mode = "legacy"
min_billable_minutes = 30
default_hourly_rate = 12.5

[commission]
rate_bps = 1000

[sweeper]
enabled = true
interval_sec = 15
`))

	require.NoError(t, err)
	assert.Equal(t, pricing.ModeLegacy, cfg.PricingMode())
	assert.Equal(t, 30*time.Minute, cfg.PricingCalculatorConfig().MinBillable)
	assert.Equal(t, 12.5, cfg.PricingCalculatorConfig().DefaultHourlyRate)
	assert.Equal(t, int64(1000), cfg.Commission.RateBps)
	assert.Equal(t, 15*time.Second, cfg.SweepInterval())
	assert.Equal(t, "host=localhost port=5432 user= password= dbname=parking sslmode=disable", cfg.Database.DSN())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PARKING_DATABASE_HOST", "db.internal")
	t.Setenv("PARKING_DATABASE_PASSWORD", "secret")
	t.Setenv("PARKING_HTTP_PORT", "9090")

	cfg, err := Load(writeConfig(t, minimal))

	require.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "secret", cfg.Database.Password)
	assert.Equal(t, 9090, cfg.Server.HTTPPort)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"unknown mode":            minimal + "[pricing]\nmode = \"hourly\"\n",
		"rate too high":           minimal + "[commission]\nrate_bps = 20000\n",
		"bad interval":            minimal + "[payouts]\ninterval = \"monthly\"\n",
		"missing listing":         "[database]\nhost = \"localhost\"\ndbname = \"parking\"\n",
		"missing database":        "[listing_service]\nurl = \"http://listing\"\n",
		"internal on public port": minimal + "[server]\nhttp_port = 8080\ninternal_http_port = 8080\n",
		"negative internal port":  minimal + "[server]\ninternal_http_port = -1\n",
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
