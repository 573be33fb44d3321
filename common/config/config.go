package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Env reads typed settings from environment variables sharing a prefix.
// Unset or malformed values fall back to the supplied default.
type Env struct {
	prefix string
	lookup func(string) (string, bool)
}

// NewEnv reads "<prefix>_<KEY>" variables; an empty prefix reads "<KEY>".
func NewEnv(prefix string) Env {
	return Env{prefix: prefix, lookup: os.LookupEnv}
}

// Key returns the variable name read for key.
func (e Env) Key(key string) string {
	if e.prefix == "" {
		return key
	}
	return e.prefix + "_" + key
}

func (e Env) raw(key string) (string, bool) {
	v, ok := e.lookup(e.Key(key))
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (e Env) String(key, def string) string {
	if v, ok := e.raw(key); ok {
		return v
	}
	return def
}

// PositiveInt only accepts values > 0.
func (e Env) PositiveInt(key string, def int) int {
	if v, ok := e.raw(key); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

// NonNegativeFloat only accepts values >= 0.
func (e Env) NonNegativeFloat(key string, def float64) float64 {
	if v, ok := e.raw(key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			return f
		}
	}
	return def
}

func (e Env) Bool(key string, def bool) bool {
	if v, ok := e.raw(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// Millis reads a positive number of milliseconds.
func (e Env) Millis(key string, def time.Duration) time.Duration {
	if v, ok := e.raw(key); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Millisecond
		}
	}
	return def
}

// DatabaseConfig PostgreSQL settings for the vital_recordings store
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

// DatabaseFromEnv reads <prefix>_HOST, _PORT, _USER, _PASSWORD, _NAME, _SSLMODE, _MAX_CONNS, _MAX_IDLE.
func DatabaseFromEnv(e Env) DatabaseConfig {
	return DatabaseConfig{
		Host:     e.String("HOST", "localhost"),
		Port:     e.PositiveInt("PORT", 5432),
		User:     e.String("USER", "postgres"),
		Password: e.String("PASSWORD", "postgres"),
		Database: e.String("NAME", "bsccare"),
		SSLMode:  e.String("SSLMODE", "disable"),
		MaxConns: e.PositiveInt("MAX_CONNS", 10),
		MaxIdle:  e.PositiveInt("MAX_IDLE", 5),
	}
}

// DSN lib/pq key/value connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// RedisConfig Redis holding the ingest stream
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func RedisFromEnv(e Env) RedisConfig {
	db := 0
	if v, ok := e.raw("DB"); ok {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			db = n
		}
	}
	return RedisConfig{
		Addr:     e.String("ADDR", "localhost:6379"),
		Password: e.String("PASSWORD", ""),
		DB:       db,
	}
}

// MQTTConfig broker capture devices publish recordings to
type MQTTConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
	QoS      byte
}

// MQTTFromEnv reads the broker settings; a QoS outside 0..2 keeps the default of 1.
func MQTTFromEnv(e Env, clientID string) MQTTConfig {
	qos := byte(1)
	if v, ok := e.raw("QOS"); ok {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 && n <= 2 {
			qos = byte(n)
		}
	}
	return MQTTConfig{
		Broker:   e.String("BROKER", "tcp://localhost:1883"),
		ClientID: e.String("CLIENT_ID", clientID),
		Username: e.String("USERNAME", ""),
		Password: e.String("PASSWORD", ""),
		QoS:      qos,
	}
}
