package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Cache     CacheConfig
	Risk      RiskConfig
	Broadcast BroadcastConfig
	Log       LogConfig
	Worker    WorkerConfig
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
	ZoneCacheTTL time.Duration
}

// RiskConfig - радиусы и окна факторов движка риска
type RiskConfig struct {
	NearbyRadiusKm     float64
	NearbyWindowHours  float64
	CrowdRadiusKm      float64
	CrowdWindowMinutes int
	HistoryRadiusKm    float64
	HistoryWindowDays  int
}

// BroadcastConfig - настройки connection registry и broker-режима
type BroadcastConfig struct {
	SendTimeout   time.Duration
	IdleTimeout   time.Duration
	BrokerEnabled bool
	AlertChannel  string
}

type LogConfig struct {
	Level string
}

type WorkerConfig struct {
	ConsumerName     string
	ZoneCacheRefresh time.Duration
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
			ZoneCacheTTL: time.Duration(viper.GetInt("ZONE_CACHE_TTL")) * time.Second,
		},
		Risk: RiskConfig{
			NearbyRadiusKm:     viper.GetFloat64("RISK_NEARBY_RADIUS_KM"),
			NearbyWindowHours:  viper.GetFloat64("RISK_NEARBY_WINDOW_HOURS"),
			CrowdRadiusKm:      viper.GetFloat64("RISK_CROWD_RADIUS_KM"),
			CrowdWindowMinutes: viper.GetInt("RISK_CROWD_WINDOW_MINUTES"),
			HistoryRadiusKm:    viper.GetFloat64("RISK_HISTORY_RADIUS_KM"),
			HistoryWindowDays:  viper.GetInt("RISK_HISTORY_WINDOW_DAYS"),
		},
		Broadcast: BroadcastConfig{
			SendTimeout:   time.Duration(viper.GetInt("BROADCAST_SEND_TIMEOUT")) * time.Millisecond,
			IdleTimeout:   time.Duration(viper.GetInt("BROADCAST_IDLE_TIMEOUT")) * time.Second,
			BrokerEnabled: viper.GetBool("BROADCAST_BROKER_ENABLED"),
			AlertChannel:  viper.GetString("BROADCAST_ALERT_CHANNEL"),
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Worker: WorkerConfig{
			ConsumerName:     viper.GetString("WORKER_CONSUMER_NAME"),
			ZoneCacheRefresh: time.Duration(viper.GetInt("WORKER_ZONE_CACHE_REFRESH")) * time.Second,
		},
	}

	// Set default values if not provided
	if cfg.Cache.ZoneCacheTTL == 0 {
		cfg.Cache.ZoneCacheTTL = 60 * time.Second
	}
	if cfg.Risk.NearbyRadiusKm == 0 {
		cfg.Risk.NearbyRadiusKm = 2.0
	}
	if cfg.Risk.NearbyWindowHours == 0 {
		cfg.Risk.NearbyWindowHours = 6.0
	}
	if cfg.Risk.CrowdRadiusKm == 0 {
		cfg.Risk.CrowdRadiusKm = 2.0
	}
	if cfg.Risk.CrowdWindowMinutes == 0 {
		cfg.Risk.CrowdWindowMinutes = 30
	}
	if cfg.Risk.HistoryRadiusKm == 0 {
		cfg.Risk.HistoryRadiusKm = 1.0
	}
	if cfg.Risk.HistoryWindowDays == 0 {
		cfg.Risk.HistoryWindowDays = 30
	}
	if cfg.Broadcast.SendTimeout == 0 {
		cfg.Broadcast.SendTimeout = 2000 * time.Millisecond
	}
	if cfg.Broadcast.IdleTimeout == 0 {
		cfg.Broadcast.IdleTimeout = 90 * time.Second
	}
	if cfg.Broadcast.AlertChannel == "" {
		cfg.Broadcast.AlertChannel = "authority"
	}
	if cfg.Worker.ConsumerName == "" {
		cfg.Worker.ConsumerName = "safety-api"
	}
	if cfg.Worker.ZoneCacheRefresh == 0 {
		cfg.Worker.ZoneCacheRefresh = 30 * time.Second
	}

	return cfg, nil
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
