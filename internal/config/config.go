package config

import (
	"flag"
	"log"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env        string     `yaml:"env" env:"ENV" env-default:"production"`
	SiteName   string     `yaml:"site_name" env:"SITE_NAME" env-default:"Farewell Wall"`
	HTTPServer HTTPServer `yaml:"http_server"`
	PGSQL      PGSQL      `yaml:"pgsql"`
	MinIO      MinIO      `yaml:"minio"`
	Redis      Redis      `yaml:"redis"`
	Media      Media      `yaml:"media"`
	Submission Submission `yaml:"submission"`
	Sweeper    Sweeper    `yaml:"sweeper"`
}

type HTTPServer struct {
	Address string `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8080"`
}

// PGSQL holds the data service endpoint and credentials. The fields are
// deliberately not env-required: when the endpoint or credential is absent
// the service runs in a degraded "not configured" mode instead of crashing.
type PGSQL struct {
	Host     string `yaml:"host" env:"PG_HOST"`
	Port     string `yaml:"port" env:"PG_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"PG_USER" env-default:"postgres"`
	Password string `yaml:"password" env:"PG_PASSWORD"`
	DBName   string `yaml:"dbname" env:"PG_DBNAME" env-default:"farewell_wall"`
	SSLMode  string `yaml:"sslmode" env:"PG_SSLMODE" env-default:"disable"`
}

// Configured reports whether the endpoint/credential pair is present.
func (p PGSQL) Configured() bool {
	return p.Host != "" && p.Password != ""
}

type MinIO struct {
	Endpoint        string `yaml:"endpoint" env:"MINIO_ENDPOINT"`
	AccessKeyID     string `yaml:"access_key_id" env:"MINIO_ACCESS_KEY"`
	SecretAccessKey string `yaml:"secret_access_key" env:"MINIO_SECRET_KEY"`
	UseSSL          bool   `yaml:"use_ssl" env:"MINIO_USE_SSL" env-default:"false"`
	BucketName      string `yaml:"bucket_name" env:"MINIO_BUCKET" env-default:"farewell-photos"`
}

// Configured reports whether the endpoint/credential pair is present.
func (m MinIO) Configured() bool {
	return m.Endpoint != "" && m.AccessKeyID != "" && m.SecretAccessKey != ""
}

// Redis carries the change-feed transport. Optional: without it the wall
// still works, but live updates only arrive through page loads.
type Redis struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

func (r Redis) Configured() bool {
	return r.Addr != ""
}

type Media struct {
	// MaxFileSize is the photo size cap in bytes.
	MaxFileSize      int64    `yaml:"max_file_size" env:"MEDIA_MAX_FILE_SIZE" env-default:"4194304"`
	AllowedMimeTypes []string `yaml:"allowed_mime_types" env:"MEDIA_ALLOWED_MIME_TYPES" env-default:"image/jpeg,image/png,image/webp"`
}

type Submission struct {
	// CooldownSeconds is the per-session wait between successful submissions.
	CooldownSeconds int `yaml:"cooldown_seconds" env:"SUBMISSION_COOLDOWN_SECONDS" env-default:"20"`
}

type Sweeper struct {
	IntervalMinutes  int `yaml:"interval_minutes" env:"SWEEPER_INTERVAL_MINUTES" env-default:"60"`
	GracePeriodHours int `yaml:"grace_period_hours" env:"SWEEPER_GRACE_PERIOD_HOURS" env-default:"24"`
}

func MustLoad() *Config {
	var configPath string

	configPath = os.Getenv("CONFIG_PATH")

	if configPath == "" {
		flags := flag.String("config", "", "Path to config file")
		flag.Parse()
		configPath = *flags
	}

	var cfg Config

	if configPath == "" {
		// No config file: environment variables and defaults only. Missing
		// backend credentials surface later as the "not configured" state.
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			log.Fatalf("failed to read environment config: %s", err)
		}
		return &cfg
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exist at path: %s", configPath)
	}

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("failed to read config: %s", err)
	}

	return &cfg
}
