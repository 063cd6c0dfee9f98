package config

import (
	"flag"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Env     string        `yaml:"env" env:"ENV" env-default:"local"`
	DSN     string        `yaml:"dsn" env:"DSN" env-required:"true"`
	HTTP    HTTPConfig    `yaml:"http"`
	Storage StorageConfig `yaml:"storage"`
	Admin   AdminConfig   `yaml:"admin"`
	Session SessionConfig `yaml:"session"`
	Redis   RedisConfig   `yaml:"redis"`
	Cache   CacheConfig   `yaml:"cache"`

	// PublicDSN is the unprivileged read-only credential used for public
	// gallery reads. Falls back to DSN when empty.
	PublicDSN string `yaml:"public_dsn" env:"PUBLIC_DSN"`
}

type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
}

type StorageConfig struct {
	BaseDir       string `yaml:"base_dir" env:"STORAGE_BASE_DIR" env-default:"./data"`
	BaseURL       string `yaml:"base_url" env:"STORAGE_BASE_URL" env-default:"http://localhost:8080/storage"`
	Bucket        string `yaml:"bucket" env:"STORAGE_BUCKET" env-default:"photoflow_photos"`
	MaxUploadSize int64  `yaml:"max_upload_size" env:"STORAGE_MAX_UPLOAD_SIZE" env-default:"10485760"`
}

type AdminConfig struct {
	Username     string `yaml:"username" env:"ADMIN_USERNAME"`
	PasswordHash string `yaml:"password_hash" env:"ADMIN_PASSWORD_HASH"`
}

type SessionConfig struct {
	Secret     string        `yaml:"secret" env:"SESSION_SECRET" env-required:"true"`
	CookieName string        `yaml:"cookie_name" env:"SESSION_COOKIE_NAME" env-default:"admin_session"`
	TTL        time.Duration `yaml:"ttl" env:"SESSION_TTL" env-default:"168h"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type CacheConfig struct {
	GalleryTTL time.Duration `yaml:"gallery_ttl" env:"CACHE_GALLERY_TTL" env-default:"5m"`
}

func MustLoad() *Config {
	path := fetchConfigPath()
	if path == "" {
		panic("config path is empty")
	}

	return MustLoadPath(path)
}

func MustLoadPath(configPath string) *Config {
	// Local .env is optional, ignore a missing file.
	_ = godotenv.Load()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("cannot read config: " + err.Error())
	}

	if cfg.PublicDSN == "" {
		cfg.PublicDSN = cfg.DSN
	}

	return &cfg
}

func fetchConfigPath() string {
	var res string

	// --config="path/to/config.yaml"
	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}
