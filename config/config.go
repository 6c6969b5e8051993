// config/config.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBURL      string
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	ServerPort int
}

// LoadConfig reads configuration from the environment. DATABASE_URL wins;
// otherwise the URL is assembled from the individual DB_* variables.
func LoadConfig() (*Config, error) {
	godotenv.Load()

	serverPort, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		serverPort = 8080
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		dbHost := os.Getenv("DB_HOST")
		dbPort, err := strconv.Atoi(os.Getenv("DB_PORT"))
		if err != nil {
			dbPort = 5432
		}
		dbUser := os.Getenv("DB_USER")
		dbPassword := os.Getenv("DB_PASSWORD")
		dbName := os.Getenv("DB_NAME")

		dbURL = fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable", dbUser, dbPassword, dbHost, dbPort, dbName)
	}

	parsedDBURL, err := url.Parse(dbURL)
	if err != nil {
		return nil, err
	}

	dbPortParsed, _ := strconv.Atoi(parsedDBURL.Port())
	dbPassword, _ := parsedDBURL.User.Password()

	return &Config{
		DBURL:      dbURL,
		DBHost:     parsedDBURL.Hostname(),
		DBPort:     dbPortParsed,
		DBUser:     parsedDBURL.User.Username(),
		DBPassword: dbPassword,
		DBName:     strings.TrimPrefix(parsedDBURL.Path, "/"),
		ServerPort: serverPort,
	}, nil
}
