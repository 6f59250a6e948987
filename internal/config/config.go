// Package config holds the gateway's runtime configuration. Values are
// sourced from the environment (ADMINAPI_ prefix), an optional yaml file,
// and an optional .env file, all resolved through viper before FromViper
// is called. The resulting Config is passed explicitly into the guard, the
// store, and the token service at construction; nothing reads the
// environment after startup.
package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// AuthConfig holds everything the credential and token paths need.
//
// DevBypassToken and AllowPlaintextPasswords are deliberately dangerous
// compatibility knobs for non-production use. The bypass literal is only
// honored outside production unless AllowBypassInProd is set; the
// plaintext escape compares stored credentials without hashing and must
// never be enabled where real accounts live.
type AuthConfig struct {
	JWTSecret               string   `yaml:"jwt_secret"`
	AdminEmails             []string `yaml:"admin_emails"`
	AccessKey               string   `yaml:"access_key"`
	DevBypassToken          string   `yaml:"dev_bypass_token"`
	AllowBypassInProd       bool     `yaml:"allow_bypass_in_prod"`
	AllowPlaintextPasswords bool     `yaml:"allow_plaintext_passwords"`
}

// DBConfig holds relational store connection settings. URL, when set,
// takes precedence over the individual fields.
type DBConfig struct {
	Driver     string `yaml:"driver"`
	URL        string `yaml:"url"`
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Name       string `yaml:"name"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	SSLRequire bool   `yaml:"ssl_require"`
}

// Config is the full runtime configuration.
type Config struct {
	Env    string       `yaml:"env"`
	Server ServerConfig `yaml:"server"`
	Auth   AuthConfig   `yaml:"auth"`
	DB     DBConfig     `yaml:"db"`
}

// SetDefaults registers default values on the given viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 4010)
	v.SetDefault("auth.jwt_secret", "change-me-in-production")
	v.SetDefault("auth.dev_bypass_token", "dev-bypass-token")
	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
}

// FromViper builds a Config from the resolved viper state.
func FromViper(v *viper.Viper) Config {
	return Config{
		Env: strings.ToLower(strings.TrimSpace(v.GetString("env"))),
		Server: ServerConfig{
			Host: v.GetString("server.host"),
			Port: v.GetInt("server.port"),
		},
		Auth: AuthConfig{
			JWTSecret:               v.GetString("auth.jwt_secret"),
			AdminEmails:             ParseAdminEmails(v.GetString("auth.admin_emails")),
			AccessKey:               strings.TrimSpace(v.GetString("auth.access_key")),
			DevBypassToken:          v.GetString("auth.dev_bypass_token"),
			AllowBypassInProd:       v.GetBool("auth.allow_bypass_in_prod"),
			AllowPlaintextPasswords: v.GetBool("auth.allow_plaintext_passwords"),
		},
		DB: DBConfig{
			Driver:     v.GetString("db.driver"),
			URL:        strings.TrimSpace(v.GetString("db.url")),
			Host:       v.GetString("db.host"),
			Port:       v.GetInt("db.port"),
			Name:       v.GetString("db.name"),
			User:       v.GetString("db.user"),
			Password:   v.GetString("db.password"),
			SSLRequire: v.GetBool("db.ssl_require"),
		},
	}
}

// IsProduction reports whether the configured environment is "production".
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// ParseAdminEmails splits a comma- or whitespace-delimited list into
// lower-cased, deduplicated email strings.
func ParseAdminEmails(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})

	seen := make(map[string]bool, len(fields))
	emails := make([]string, 0, len(fields))
	for _, f := range fields {
		e := strings.ToLower(strings.TrimSpace(f))
		if e == "" || seen[e] {
			continue
		}
		seen[e] = true
		emails = append(emails, e)
	}
	return emails
}

// DSN renders the driver-specific connection string. URL wins when set;
// otherwise the individual fields are assembled.
func (d DBConfig) DSN() (string, error) {
	switch d.Driver {
	case "postgres":
		if d.URL != "" {
			return d.URL, nil
		}
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(d.User, d.Password),
			Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
			Path:   "/" + d.Name,
		}
		q := url.Values{}
		if d.SSLRequire {
			q.Set("sslmode", "require")
		} else {
			q.Set("sslmode", "disable")
		}
		u.RawQuery = q.Encode()
		return u.String(), nil

	case "mysql":
		if d.URL != "" {
			return d.URL, nil
		}
		cfg := mysql.NewConfig()
		cfg.User = d.User
		cfg.Passwd = d.Password
		cfg.Net = "tcp"
		cfg.Addr = fmt.Sprintf("%s:%d", d.Host, d.Port)
		cfg.DBName = d.Name
		cfg.ParseTime = true // scan DATETIME columns into time.Time
		if d.SSLRequire {
			cfg.TLSConfig = "true"
		}
		return cfg.FormatDSN(), nil

	case "sqlite":
		if d.URL != "" {
			return d.URL, nil
		}
		return ":memory:", nil

	default:
		return "", fmt.Errorf("unsupported db driver %q", d.Driver)
	}
}

// YAML renders the effective configuration with secrets masked, for the
// `adminapi config` command.
func (c Config) YAML() ([]byte, error) {
	masked := c
	masked.Auth.JWTSecret = mask(c.Auth.JWTSecret)
	masked.Auth.AccessKey = mask(c.Auth.AccessKey)
	masked.DB.Password = mask(c.DB.Password)
	if c.DB.URL != "" {
		masked.DB.URL = maskURL(c.DB.URL)
	}
	return yaml.Marshal(masked)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "********"
}

// maskURL hides the password component of a connection URL.
func maskURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, has := u.User.Password(); has {
		u.User = url.UserPassword(u.User.Username(), "********")
	}
	return u.String()
}
