package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Cache    CacheConfig
	Log      LogConfig
	Worker   WorkerConfig
	Map      MapConfig
	GeoIP    GeoIPConfig
}

type ServerConfig struct {
	Host string
	Port int
	Env  string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CacheConfig struct {
	StationsCacheTTL time.Duration
	ClustersCacheTTL time.Duration
}

type LogConfig struct {
	Level string
}

type WorkerConfig struct {
	Enabled           bool
	ConsumerGroup     string
	StreamName        string
	StreamReadTimeout time.Duration
	MaxRetries        int
}

// MapConfig carries the marker-engine constants so they are tunable
// per deployment instead of hard-coded in the rendering core.
type MapConfig struct {
	ClusterRadiusPx  float64
	ClusterMinPoints int
	ClusterMaxZoom   int
	MarkerCap        int
	BuildBatchSize   int
	HoverDelay       time.Duration
	PulseDuration    time.Duration
	FlyToDuration    time.Duration
	CityMaxRadiusKm  float64
	CityResultCap    int
}

// GeoIPConfig points at the IP positioning service used to seed the
// initial viewport when no device fix is available.
type GeoIPConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: viper.GetString("API_HOST"),
			Port: viper.GetInt("API_PORT"),
			Env:  viper.GetString("API_ENV"),
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			DBName:          viper.GetString("DB_NAME"),
			SSLMode:         viper.GetString("DB_SSLMODE"),
			MaxConns:        viper.GetInt("DB_MAX_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(viper.GetInt("DB_CONN_MAX_LIFETIME")) * time.Second,
			ConnMaxIdleTime: time.Duration(viper.GetInt("DB_CONN_MAX_IDLE_TIME")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetInt("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Cache: CacheConfig{
			StationsCacheTTL: time.Duration(viper.GetInt("STATIONS_CACHE_TTL")) * time.Second,
			ClustersCacheTTL: time.Duration(viper.GetInt("CLUSTERS_CACHE_TTL")) * time.Second,
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Worker: WorkerConfig{
			Enabled:           viper.GetBool("WORKER_ENABLED"),
			ConsumerGroup:     viper.GetString("WORKER_CONSUMER_GROUP"),
			StreamName:        viper.GetString("WORKER_STREAM_NAME"),
			StreamReadTimeout: time.Duration(viper.GetInt("WORKER_STREAM_READ_TIMEOUT")) * time.Millisecond,
			MaxRetries:        viper.GetInt("WORKER_MAX_RETRIES"),
		},
		Map: MapConfig{
			ClusterRadiusPx:  viper.GetFloat64("MAP_CLUSTER_RADIUS_PX"),
			ClusterMinPoints: viper.GetInt("MAP_CLUSTER_MIN_POINTS"),
			ClusterMaxZoom:   viper.GetInt("MAP_CLUSTER_MAX_ZOOM"),
			MarkerCap:        viper.GetInt("MAP_MARKER_CAP"),
			BuildBatchSize:   viper.GetInt("MAP_BUILD_BATCH_SIZE"),
			HoverDelay:       time.Duration(viper.GetInt("MAP_HOVER_DELAY_MS")) * time.Millisecond,
			PulseDuration:    time.Duration(viper.GetInt("MAP_PULSE_DURATION_MS")) * time.Millisecond,
			FlyToDuration:    time.Duration(viper.GetInt("MAP_FLYTO_DURATION_MS")) * time.Millisecond,
			CityMaxRadiusKm:  viper.GetFloat64("MAP_CITY_MAX_RADIUS_KM"),
			CityResultCap:    viper.GetInt("MAP_CITY_RESULT_CAP"),
		},
		GeoIP: GeoIPConfig{
			BaseURL:        viper.GetString("GEOIP_BASE_URL"),
			RequestTimeout: time.Duration(viper.GetInt("GEOIP_REQUEST_TIMEOUT")) * time.Second,
		},
	}

	// Set default values if not provided
	if cfg.Worker.ConsumerGroup == "" {
		cfg.Worker.ConsumerGroup = "station-sync-workers"
	}
	if cfg.Worker.StreamName == "" {
		cfg.Worker.StreamName = "stream:stations:updates"
	}
	if cfg.Worker.StreamReadTimeout == 0 {
		cfg.Worker.StreamReadTimeout = 5000 * time.Millisecond
	}
	if cfg.Worker.MaxRetries == 0 {
		cfg.Worker.MaxRetries = 3
	}
	applyMapDefaults(&cfg.Map)
	if cfg.GeoIP.RequestTimeout == 0 {
		cfg.GeoIP.RequestTimeout = 10 * time.Second
	}

	return cfg, nil
}

func applyMapDefaults(m *MapConfig) {
	if m.ClusterRadiusPx == 0 {
		m.ClusterRadiusPx = 60
	}
	if m.ClusterMinPoints == 0 {
		m.ClusterMinPoints = 3
	}
	if m.ClusterMaxZoom == 0 {
		m.ClusterMaxZoom = 16
	}
	if m.MarkerCap == 0 {
		m.MarkerCap = 500
	}
	if m.BuildBatchSize == 0 {
		m.BuildBatchSize = 100
	}
	if m.HoverDelay == 0 {
		m.HoverDelay = 50 * time.Millisecond
	}
	if m.PulseDuration == 0 {
		m.PulseDuration = 300 * time.Millisecond
	}
	if m.FlyToDuration == 0 {
		m.FlyToDuration = 1000 * time.Millisecond
	}
	if m.CityMaxRadiusKm == 0 {
		m.CityMaxRadiusKm = 50
	}
	if m.CityResultCap == 0 {
		m.CityResultCap = 500
	}
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
