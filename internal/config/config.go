package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Cards    CardsConfig    `mapstructure:"cards"    validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`

	// LogFile enables a size-rotated log file in addition to stdout.
	LogFile       string `mapstructure:"log_file"`
	LogMaxSizeMB  int    `mapstructure:"log_max_size_mb"  validate:"gte=0"`
	LogMaxBackups int    `mapstructure:"log_max_backups"  validate:"gte=0"`
	LogMaxAgeDays int    `mapstructure:"log_max_age_days" validate:"gte=0"`

	ReadTimeoutSeconds     int `mapstructure:"read_timeout_seconds"     validate:"gt=0"`
	WriteTimeoutSeconds    int `mapstructure:"write_timeout_seconds"    validate:"gt=0"`
	ShutdownTimeoutSeconds int `mapstructure:"shutdown_timeout_seconds" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL                    string `mapstructure:"url"                       validate:"required,url"`
	MaxOpenConns           int    `mapstructure:"max_open_conns"            validate:"gt=0"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns"            validate:"gte=0"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes" validate:"gt=0"`

	// AutoMigrate applies pending migrations on startup.
	AutoMigrate bool `mapstructure:"auto_migrate"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0,lte=44640"`
	BCryptCost           int    `mapstructure:"bcrypt_cost"            validate:"gte=4,lte=31"`

	// Optional administrator created at startup if the username is free.
	BootstrapAdminUsername string `mapstructure:"bootstrap_admin_username" validate:"omitempty,min=3,max=50"`
	BootstrapAdminEmail    string `mapstructure:"bootstrap_admin_email"    validate:"omitempty,email"`
	BootstrapAdminPassword string `mapstructure:"bootstrap_admin_password" validate:"omitempty,min=8,max=72"`
}

// CardsConfig contains card storage and listing settings.
type CardsConfig struct {
	// EncryptionKey is the raw AES key for card numbers.
	EncryptionKey   string `mapstructure:"encryption_key"    validate:"required,len=16|len=24|len=32"`
	UserPageSize    int    `mapstructure:"user_page_size"    validate:"gt=0"`
	DefaultPageSize int    `mapstructure:"default_page_size" validate:"gt=0"`
	MaxPageSize     int    `mapstructure:"max_page_size"     validate:"gtefield=DefaultPageSize"`
}
