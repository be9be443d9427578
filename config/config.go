package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
type Config struct {
	DBHost     string `envconfig:"DB_HOST" required:"true"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" required:"true"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" required:"true"`

	HTTPPort     string `envconfig:"HTTP_PORT" default:"4242"`
	APISecretKey string `envconfig:"API_SECRET_KEY"`

	// Registry-Konfiguration
	RegistryProvider       string `envconfig:"REGISTRY_PROVIDER" default:"crossref"`
	RegistryTimeoutSeconds int    `envconfig:"REGISTRY_TIMEOUT_SECONDS" default:"30"`
	CrossrefBaseURL        string `envconfig:"CROSSREF_BASE_URL" default:"https://api.crossref.org"`
	// Polite-Pool: Crossref bevorzugt Requests mit Kontakt-Adresse.
	CrossrefMailto  string `envconfig:"CROSSREF_MAILTO"`
	DataCiteBaseURL string `envconfig:"DATACITE_BASE_URL" default:"https://api.datacite.org"`

	// Nightly-Refresh für unvollständig importierte Artikel.
	RefreshCronSchedule string `envconfig:"REFRESH_CRON_SCHEDULE" default:"0 3 * * *"`
	RefreshBatchSize    int    `envconfig:"REFRESH_BATCH_SIZE" default:"25"`

	// S3-Ziel für Bibliographie-Snapshots
	S3Key    string `envconfig:"S3_KEY" required:"true"`
	S3Secret string `envconfig:"S3_SECRET" required:"true"`
	S3URL    string `envconfig:"S3_URL" required:"true"`
	S3Region string `envconfig:"S3_REGION" required:"true"`
	S3Bucket string `envconfig:"S3_BUCKET" required:"true"`
}

// DSN gibt den Data Source Name für die PostgreSQL-Verbindung zurück.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// Load lädt die Konfiguration aus den Umgebungsvariablen.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	err := envconfig.Process("", &c)
	return &c, err
}
