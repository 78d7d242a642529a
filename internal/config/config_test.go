package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("STAFF_JWT_SECRET", "staff")
	t.Setenv("CUSTOMER_JWT_SECRET", "customer")
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("STAFF_TOKEN_TTL", "30m")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.StoreDriver)
	assert.Equal(t, 30*time.Minute, cfg.StaffTokenTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 10, cfg.MaxTxAttempts)
}

func TestLoadRequiresDistinctSecrets(t *testing.T) {
	t.Setenv("STAFF_JWT_SECRET", "same")
	t.Setenv("CUSTOMER_JWT_SECRET", "same")

	_, err := Load()
	assert.ErrorContains(t, err, "must differ")
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	cfg := &Config{StaffSecret: []byte("a"), CustomerSecret: []byte("b"), StoreDriver: "mongo"}
	assert.ErrorContains(t, cfg.Validate(), "STORE_DRIVER")
}
