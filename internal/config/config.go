package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config конфигурация сервиса
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Logs     LogsConfig     `toml:"logs"`
	Metrics  MetricsConfig  `toml:"metrics"`
	Notifier NotifierConfig `toml:"notifier"`
	Booking  BookingConfig  `toml:"booking"`
}

// ServerConfig настройки HTTP сервера
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
}

// DSN возвращает строку подключения к базе данных
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// LogsConfig настройки логирования
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsConfig настройки Prometheus метрик
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// NotifierConfig настройки шлюза уведомлений (Redis pub/sub)
type NotifierConfig struct {
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr"`
	Channel string `toml:"channel"`
}

// BookingConfig политики бронирования
type BookingConfig struct {
	// Timezone зал живёт в одном часовом поясе, расписание и окна
	// политик считаются в нём
	Timezone string `toml:"timezone"`

	CancelWindowHours  float64 `toml:"cancel_window_hours"`
	SwitchWindowHours  float64 `toml:"switch_window_hours"`
	LateCancelLimit    int     `toml:"late_cancel_limit"`
	BlockDays          int     `toml:"block_days"`
	ScheduleWindowDays int     `toml:"schedule_window_days"`
}

// Load загружает конфигурацию из TOML файла
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to decode %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     15,
			WriteTimeout:    15,
			IdleTimeout:     60,
			ShutdownTimeout: 10,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Logs: LogsConfig{
			File:  "logs/app.log",
			Level: "info",
		},
		Metrics: MetricsConfig{
			Path:        "/metrics",
			ServiceName: "gym-class-service",
		},
		Notifier: NotifierConfig{
			Addr:    "localhost:6379",
			Channel: "gym:events",
		},
		Booking: BookingConfig{
			Timezone:           "UTC",
			CancelWindowHours:  6,
			SwitchWindowHours:  1,
			LateCancelLimit:    3,
			BlockDays:          3,
			ScheduleWindowDays: 14,
		},
	}
}

func (c *Config) validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("config: invalid server.http_port %d", c.Server.HTTPPort)
	}
	if c.Database.User == "" || c.Database.DBName == "" {
		return fmt.Errorf("config: database.user and database.dbname are required")
	}
	if c.Booking.CancelWindowHours <= 0 {
		return fmt.Errorf("config: booking.cancel_window_hours must be positive")
	}
	if c.Booking.SwitchWindowHours <= 0 {
		return fmt.Errorf("config: booking.switch_window_hours must be positive")
	}
	if c.Booking.LateCancelLimit <= 0 {
		return fmt.Errorf("config: booking.late_cancel_limit must be positive")
	}
	if c.Booking.BlockDays <= 0 {
		return fmt.Errorf("config: booking.block_days must be positive")
	}
	if c.Booking.ScheduleWindowDays <= 0 {
		return fmt.Errorf("config: booking.schedule_window_days must be positive")
	}
	if c.Notifier.Enabled && c.Notifier.Addr == "" {
		return fmt.Errorf("config: notifier.addr is required when notifier is enabled")
	}
	return nil
}
