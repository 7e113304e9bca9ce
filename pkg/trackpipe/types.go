package trackpipe

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ConnectionConfig represents parsed connection parameters.
// The same value targets both table provisioning and the bulk writer,
// so the two can never point at different databases.
type ConnectionConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	// AuthMethod indicates the authentication mechanism to use
	AuthMethod AuthMethod

	// Additional connection parameters
	AppName          string
	ConnectTimeout   time.Duration
	AdditionalParams map[string]string

	// AWS IAM (AuthMethodAWSIAM)
	AWSRegion string

	// Google Cloud SQL IAM (AuthMethodGoogleIAM), format project:region:instance
	GoogleInstance string

	// Azure Entra ID (AuthMethodAzureEntraID).
	// If all three are provided, Service Principal authentication is used,
	// otherwise the DefaultAzureCredential chain.
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string
}

// Address returns host:port.
func (c *ConnectionConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// AuthMethod represents the type of authentication to use.
type AuthMethod int

const (
	AuthMethodStandard     AuthMethod = iota // Username/Password
	AuthMethodAWSIAM                         // AWS IAM Database Authentication
	AuthMethodGoogleIAM                      // Google Cloud SQL IAM
	AuthMethodAzureEntraID                   // Azure Active Directory (Entra ID)
)

// String returns a human-readable string representation of the AuthMethod.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodStandard:
		return "Standard"
	case AuthMethodAWSIAM:
		return "AWS IAM"
	case AuthMethodGoogleIAM:
		return "Google IAM"
	case AuthMethodAzureEntraID:
		return "Azure Entra ID"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// IsValid returns true if the AuthMethod is a valid, defined value.
func (a AuthMethod) IsValid() bool {
	return a >= AuthMethodStandard && a <= AuthMethodAzureEntraID
}

// ParseAuthMethod maps a config/env spelling to an AuthMethod.
// The empty string means AuthMethodStandard.
func ParseAuthMethod(s string) (AuthMethod, error) {
	switch s {
	case "", "standard", "password":
		return AuthMethodStandard, nil
	case "aws", "aws-iam":
		return AuthMethodAWSIAM, nil
	case "google", "google-iam":
		return AuthMethodGoogleIAM, nil
	case "azure", "azure-entra-id":
		return AuthMethodAzureEntraID, nil
	default:
		return AuthMethodStandard, fmt.Errorf("auth method %q: %w", s, ErrUnsupportedAuthMethod)
	}
}

// LoadConfig contains all parameters needed for one load-stage run.
type LoadConfig struct {
	// InputDir is the root holding stage2/ and stage3/ datasets
	InputDir string

	// Connection is the single database target for provisioning and writes
	Connection ConnectionConfig

	// EngineThreads caps the compute engine's worker threads (0 = engine default)
	EngineThreads int

	// EngineMemoryLimit is passed to the compute engine, e.g. "4GB" (empty = engine default)
	EngineMemoryLimit string

	// Timeout bounds the whole run (0 = no timeout)
	Timeout time.Duration

	// Verbose enables detailed logging
	Verbose bool

	// RunID tags the report and log lines (uuid.Nil = generate one)
	RunID uuid.UUID
}

// Validate checks if the LoadConfig has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (c *LoadConfig) Validate() error {
	var errs []error

	if c.InputDir == "" {
		errs = append(errs, fmt.Errorf("InputDir is required: %w", ErrInvalidConfig))
	}
	if c.Connection.Host == "" {
		errs = append(errs, fmt.Errorf("host is required: %w", ErrInvalidConfig))
	}
	if c.Connection.Port <= 0 || c.Connection.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range: %w", c.Connection.Port, ErrInvalidConfig))
	}
	if c.Connection.Database == "" {
		errs = append(errs, fmt.Errorf("database name is required: %w", ErrInvalidConfig))
	}
	if c.Connection.Username == "" {
		errs = append(errs, fmt.Errorf("user is required: %w", ErrInvalidConfig))
	}
	if !c.Connection.AuthMethod.IsValid() {
		errs = append(errs, fmt.Errorf("auth method %v: %w", c.Connection.AuthMethod, ErrUnsupportedAuthMethod))
	}
	if c.EngineThreads < 0 {
		errs = append(errs, fmt.Errorf("engine threads cannot be negative: %w", ErrInvalidConfig))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout cannot be negative: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// ExtractConfig contains all parameters needed for one extract-stage run.
type ExtractConfig struct {
	// OutputDir receives the archive contents and the normalized records
	OutputDir string

	// ArchiveURL is an http(s):// or s3://bucket/key locator
	ArchiveURL string

	// ArchiveSHA256 is the expected hex digest of the archive (empty = not checked)
	ArchiveSHA256 string

	// Timeout bounds the whole run (0 = no timeout)
	Timeout time.Duration

	// Verbose enables detailed logging
	Verbose bool
}

// Validate checks if the ExtractConfig has all required fields and valid values.
func (c *ExtractConfig) Validate() error {
	var errs []error

	if c.OutputDir == "" {
		errs = append(errs, fmt.Errorf("extraction path is required: %w", ErrInvalidConfig))
	}
	if c.ArchiveURL == "" {
		errs = append(errs, fmt.Errorf("archive URL is required: %w", ErrInvalidConfig))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout cannot be negative: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}
