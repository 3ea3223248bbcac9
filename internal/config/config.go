package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Tasks    TaskConfig     `mapstructure:"tasks"    validate:"required"`
	Events   EventsConfig   `mapstructure:"events"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
// An empty URL selects the in-memory job store; a postgres URL selects
// the SQL-backed store.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// EventsConfig lists the events this installation sells tickets for.
// Capacities maps event slugs to the maximum number of orders; events
// not listed here are not on sale.
type EventsConfig struct {
	Capacities map[string]int `mapstructure:"capacities"`
}

// TaskConfig contains settings for the background task runner.
type TaskConfig struct {
	WorkerCount  int `mapstructure:"worker_count"   validate:"required,gt=0"`
	QueueSize    int `mapstructure:"queue_size"     validate:"required,gt=0"`
	StuckTaskAge int `mapstructure:"stuck_task_age" validate:"required,gt=0"` // minutes
}
