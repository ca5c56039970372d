package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatDSN(t *testing.T) {
	env := map[string]string{
		"DB_HOST":     "db",
		"DB_PORT":     "6543",
		"DB_USER":     "wake",
		"DB_PASSWORD": "p@ss word",
		"DB_NAME":     "whatsapp",
	}

	dsn := formatDSN(func(k string) string { return env[k] })
	assert.Equal(t, "postgres://wake:p%40ss%20word@db:6543/whatsapp?sslmode=disable", dsn)
}

func TestFormatDSNDefaults(t *testing.T) {
	dsn := formatDSN(func(string) string { return "" })
	assert.Equal(t, "postgres://:@localhost:5432?sslmode=disable", dsn)
}
