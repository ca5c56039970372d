package postgres

import (
	"fmt"
	"net/url"
	"os"

	_ "github.com/lib/pq"
)

// DriverName is the database/sql driver registered by this package.
const DriverName = "postgres"

// FormatDSN builds a lib/pq connection URL from the DB_* environment.
func FormatDSN() string {
	return formatDSN(os.Getenv)
}

func formatDSN(getenv func(string) string) string {
	host := getenv("DB_HOST")
	if host == "" {
		host = "localhost"
	}
	port := getenv("DB_PORT")
	if port == "" {
		port = "5432"
	}
	sslMode := getenv("DB_SSLMODE")
	if sslMode == "" {
		sslMode = "disable"
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(getenv("DB_USER"), getenv("DB_PASSWORD")),
		Host:     fmt.Sprintf("%s:%s", host, port),
		Path:     getenv("DB_NAME"),
		RawQuery: url.Values{"sslmode": []string{sslMode}}.Encode(),
	}
	return u.String()
}
