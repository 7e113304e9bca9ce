package db

import (
	"cmp"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vvka-141/trackpipe/pkg/trackpipe"
)

// defaultConnectionConfig is the target before any source is applied.
func defaultConnectionConfig() *trackpipe.ConnectionConfig {
	return &trackpipe.ConnectionConfig{
		Host:             "localhost",
		Port:             trackpipe.DefaultPort,
		Database:         trackpipe.DefaultDatabase,
		SSLMode:          "prefer",
		AuthMethod:       trackpipe.AuthMethodStandard,
		AdditionalParams: make(map[string]string),
	}
}

// ParseConnectionString reads a postgres:// or postgresql:// URI into a
// ConnectionConfig. Omitted parts keep the package defaults.
func ParseConnectionString(connStr string) (*trackpipe.ConnectionConfig, error) {
	if connStr == "" {
		return nil, fmt.Errorf("connection string is empty")
	}
	u, err := url.Parse(connStr)
	if err != nil {
		return nil, fmt.Errorf("invalid connection URI: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return nil, fmt.Errorf("unsupported connection string scheme %q", u.Scheme)
	}

	config := defaultConnectionConfig()
	config.Host = cmp.Or(u.Hostname(), config.Host)
	config.Database = cmp.Or(strings.TrimPrefix(u.Path, "/"), config.Database)
	if p := u.Port(); p != "" {
		if config.Port, err = strconv.Atoi(p); err != nil {
			return nil, fmt.Errorf("invalid port %q", p)
		}
	}
	if u.User != nil {
		config.Username = u.User.Username()
		config.Password, _ = u.User.Password()
	}

	for key, values := range u.Query() {
		value := values[0]
		switch key {
		case "sslmode":
			config.SSLMode = value
		case "application_name":
			config.AppName = value
		case "connect_timeout":
			seconds, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("invalid connect_timeout %q", value)
			}
			config.ConnectTimeout = time.Duration(seconds) * time.Second
		default:
			config.AdditionalParams[key] = value
		}
	}
	return config, nil
}

// BuildConnectionString renders config as a PostgreSQL URI for pgx.
// Query parameters are sorted, so equal configs give equal strings.
func BuildConnectionString(config *trackpipe.ConnectionConfig) string {
	u := &url.URL{
		Scheme: "postgresql",
		Host:   fmt.Sprintf("%s:%d", config.Host, config.Port),
		Path:   "/" + config.Database,
	}

	if config.Username != "" {
		if config.Password != "" {
			u.User = url.UserPassword(config.Username, config.Password)
		} else {
			u.User = url.User(config.Username)
		}
	}

	query := url.Values{}
	if config.SSLMode != "" {
		query.Set("sslmode", config.SSLMode)
	}
	if config.AppName != "" {
		query.Set("application_name", config.AppName)
	}
	if config.ConnectTimeout > 0 {
		query.Set("connect_timeout", strconv.Itoa(int(config.ConnectTimeout.Seconds())))
	}

	for key, value := range config.AdditionalParams {
		query.Set(key, value)
	}

	u.RawQuery = query.Encode()
	return u.String()
}
