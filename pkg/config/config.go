package config

import "time"

// Message definition message_service YAML structure
type Message struct {
	Port    string         `mapstructure:"port"`
	Mongo   DatabaseConfig `mapstructure:"mongo"`
	Redis   RedisConfig    `mapstructure:"redis"`
	Archive ArchiveConfig  `mapstructure:"archive"`
}

// ArchiveConfig definition hot buffer thresholds and the drain interval.
// The limits carry no product intent beyond "tail stays small, overflow
// is archived"; they are tunable per deployment.
type ArchiveConfig struct {
	Interval       time.Duration `mapstructure:"interval"`
	DirectHotLimit int           `mapstructure:"direct_hot_limit"`
	DirectKeepTail int           `mapstructure:"direct_keep_tail"`
	GroupHotLimit  int           `mapstructure:"group_hot_limit"`
	GroupKeepTail  int           `mapstructure:"group_keep_tail"`
}

// RedisConfig definition redis setting
type RedisConfig struct {
	RedisDB int `mapstructure:"redis_db"`
}

// DatabaseConfig definition db setting
type DatabaseConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Database      string `mapstructure:"database"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}
