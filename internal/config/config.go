package config

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
)

// Config holds the configuration for the Bookshelf server and its dependencies.
type Config struct {
	// Listen is the address the Bookshelf server will listen on.
	Listen string `yaml:"listen" mapstructure:"listen"`
	// ServerURL is the base URL of the Bookshelf server.
	ServerURL string `yaml:"server_url" mapstructure:"server_url"`
	// AppName is shown in page titles, footers and emails.
	AppName string `yaml:"app_name" mapstructure:"app_name"`
	// SessionKey is the key used to sign session cookies.
	SessionKey string `yaml:"session_key" mapstructure:"session_key"`
	// SessionMaxAge is the maximum age of a session in seconds.
	SessionMaxAge int `yaml:"session_max_age" mapstructure:"session_max_age"`
	// Database holds the database configuration.
	Database *DatabaseConfig `yaml:"database" mapstructure:"database"`
	// Auth holds the user management configuration.
	Auth *AuthConfig `yaml:"auth" mapstructure:"auth"`
	// Email holds the SMTP configuration used for account emails.
	Email *EmailConfig `yaml:"email" mapstructure:"email"`
	// Gravatar holds the configuration for Gravatar profile pictures.
	Gravatar *GravatarConfig `yaml:"gravatar" mapstructure:"gravatar"`
	// Seed holds the configuration for the example users created on startup.
	Seed *SeedConfig `yaml:"seed" mapstructure:"seed"`
}

// DatabaseConfig holds the database configuration.
type DatabaseConfig struct {
	// Path is the path to the database file.
	Path string `yaml:"path" mapstructure:"path"`
}

// AuthConfig holds the user management configuration.
type AuthConfig struct {
	// EnableEmail allows users to sign in with their email address.
	EnableEmail bool `yaml:"enable_email" mapstructure:"enable_email"`
	// EnableUsername allows users to sign in with a username. Not supported, users are identified by email.
	EnableUsername bool `yaml:"enable_username" mapstructure:"enable_username"`
	// EnableRegister allows visitors to create an account.
	EnableRegister bool `yaml:"enable_register" mapstructure:"enable_register"`
	// BcryptCost is the bcrypt work factor used for password digests.
	BcryptCost int `yaml:"bcrypt_cost" mapstructure:"bcrypt_cost"`
}

// EmailConfig holds the SMTP configuration.
type EmailConfig struct {
	// Enabled indicates whether account emails are sent.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// SMTPHost is the SMTP server host.
	SMTPHost string `yaml:"smtp_host" mapstructure:"smtp_host"`
	// SMTPPort is the SMTP server port.
	SMTPPort int `yaml:"smtp_port" mapstructure:"smtp_port"`
	// Username is the SMTP username.
	Username string `yaml:"username" mapstructure:"username"`
	// Password is the SMTP password.
	Password string `yaml:"password" mapstructure:"password"`
	// FromEmail is the email address from which emails are sent.
	FromEmail string `yaml:"from_email" mapstructure:"from_email"`
	// FromName is the name from which emails are sent.
	FromName string `yaml:"from_name" mapstructure:"from_name"`
	// UseTLS indicates whether to use STARTTLS for the SMTP connection.
	UseTLS bool `yaml:"use_tls" mapstructure:"use_tls"`
	// UseSSL indicates whether to use implicit TLS for the SMTP connection.
	UseSSL bool `yaml:"use_ssl" mapstructure:"use_ssl"`
	// InsecureSkipVerify indicates whether to skip TLS certificate verification.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify" mapstructure:"insecure_skip_verify"`
}

// GravatarConfig holds the configuration for Gravatar profile pictures.
type GravatarConfig struct {
	// Enabled indicates whether Gravatar support is enabled.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// DefaultImage is the default image to use when no Gravatar is found.
	// Valid values: "404", "mp", "identicon", "monsterid", "wavatar", "retro", "robohash", "blank"
	DefaultImage string `yaml:"default_image" mapstructure:"default_image"`
	// Rating is the maximum rating for Gravatar images.
	// Valid values: "g", "pg", "r", "x"
	Rating string `yaml:"rating" mapstructure:"rating"`
	// Size is the size of the Gravatar image in pixels (1-2048).
	Size int `yaml:"size" mapstructure:"size"`
}

// SeedConfig controls the example users created on startup.
type SeedConfig struct {
	// Enabled indicates whether the example users are created.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Password is the password given to the example users.
	Password string `yaml:"password" mapstructure:"password"`
}

// Load reads the configuration from the specified path and returns a Config struct.
// If path is empty, it will use default search paths for config files.
// Environment variables with the BOOKSHELF_ prefix override file values.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	// Configure Viper
	v.SetConfigType("yaml")
	v.SetEnvPrefix("BOOKSHELF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var configFileFound bool
	if path != "" {
		// Use specific config file
		v.SetConfigFile(path)
	} else {
		// Search for config in common locations
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.bookshelf")
		v.AddConfigPath("/etc/bookshelf")
	}

	// Read the config file
	if err := v.ReadInConfig(); err != nil {
		// If no config file is found, use defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		configFileFound = true
	}

	if configFileFound {
		log.Debug("Using config file", "file", v.ConfigFileUsed())
		log.Debug("Environment variables with the BOOKSHELF_ prefix override config file values")
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	sanitizeConfig(&c)

	// Validate required configs
	if err := validateConfig(&c); err != nil {
		return nil, err
	}

	return &c, nil
}

// setDefaults sets default values for the configuration.
func setDefaults(v *viper.Viper) {
	v.SetDefault("listen", "0.0.0.0:5000")
	v.SetDefault("server_url", "http://localhost:5000")
	v.SetDefault("app_name", "Bookshelf")
	v.SetDefault("session_key", "")
	v.SetDefault("session_max_age", 172800) // 48 hour

	// Database defaults
	v.SetDefault("database.path", "./data/bookshelf.db")

	// Auth defaults
	v.SetDefault("auth.enable_email", true)
	v.SetDefault("auth.enable_username", false)
	v.SetDefault("auth.enable_register", true)
	v.SetDefault("auth.bcrypt_cost", 12)

	// Email defaults
	v.SetDefault("email.enabled", false)
	v.SetDefault("email.smtp_host", "")
	v.SetDefault("email.smtp_port", 465)
	v.SetDefault("email.username", "")
	v.SetDefault("email.password", "")
	v.SetDefault("email.from_email", "noreply@example.com")
	v.SetDefault("email.from_name", "Bookshelf")
	v.SetDefault("email.use_tls", false)
	v.SetDefault("email.use_ssl", true)
	v.SetDefault("email.insecure_skip_verify", false)

	// Gravatar defaults
	v.SetDefault("gravatar.enabled", false)
	v.SetDefault("gravatar.default_image", "identicon")
	v.SetDefault("gravatar.rating", "g")
	v.SetDefault("gravatar.size", 32)

	// Seed defaults
	v.SetDefault("seed.enabled", true)
	v.SetDefault("seed.password", "Password1")
}

// validateConfig validates the configuration.
func validateConfig(c *Config) error {
	if c == nil {
		return fmt.Errorf("missing bookshelf config")
	}

	if c.Listen == "" {
		return fmt.Errorf("listen address is required")
	}

	if c.SessionKey == "" {
		return fmt.Errorf("session key is required")
	}

	if c.SessionMaxAge <= 0 {
		return fmt.Errorf("session max age must be greater than 0")
	}

	if c.Database == nil || c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}

	if c.Auth == nil {
		return fmt.Errorf("missing auth config")
	}
	if c.Auth.EnableUsername {
		return fmt.Errorf("username authentication is not supported, users sign in with their email address")
	}
	if !c.Auth.EnableEmail {
		return fmt.Errorf("email authentication must be enabled")
	}
	// bcrypt.MinCost and bcrypt.MaxCost
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("bcrypt cost must be between 4 and 31")
	}

	if c.Email != nil && c.Email.Enabled {
		if c.Email.SMTPHost == "" {
			return fmt.Errorf("SMTP host is required when email is enabled")
		}
		if c.Email.FromEmail == "" {
			return fmt.Errorf("from email is required when email is enabled")
		}
		if c.Email.UseSSL && c.Email.UseTLS {
			log.Warn("both use_ssl and use_tls are set, use_ssl takes precedence")
		}
	}

	if c.Seed != nil && c.Seed.Enabled && c.Seed.Password == "" {
		return fmt.Errorf("seed password is required when seeding is enabled")
	}

	return nil
}

// sanitizeConfig sanitizes the configuration values.
func sanitizeConfig(c *Config) {
	if c == nil {
		return
	}

	c.Listen = strings.TrimSpace(c.Listen)
	c.AppName = strings.TrimSpace(c.AppName)
	if c.ServerURL != "" {
		c.ServerURL = urlSanitize(c.ServerURL)
	}
	if c.Email != nil {
		c.Email.SMTPHost = strings.TrimSpace(c.Email.SMTPHost)
	}
}

func urlSanitize(url string) string {
	return strings.TrimSuffix(strings.TrimSpace(url), "/")
}

// IsSecure returns true if the server is served over https, in which case cookies are marked secure.
func (c *Config) IsSecure() bool {
	return strings.HasPrefix(c.ServerURL, "https://")
}
