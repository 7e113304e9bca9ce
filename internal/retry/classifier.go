package retry

import (
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
)

// Transient SQLSTATE classes and codes.
// See https://www.postgresql.org/docs/current/errcodes-appendix.html
var (
	transientPgClasses = []string{
		"08", // connection exception
		"53", // insufficient resources
		"57", // operator intervention
	}
	transientPgCodes = map[string]struct{}{
		"40001": {}, // serialization_failure
		"40P01": {}, // deadlock_detected
		"55P03": {}, // lock_not_available
	}
	transientMessages = []string{
		"connection refused",
		"connection reset",
		"connection timeout",
		"no such host",
		"network is unreachable",
		"i/o timeout",
		"broken pipe",
		"too many connections",
		"server closed the connection",
		"unexpected eof",
	}
)

// PostgreSQLErrorClassifier recognises retryable PostgreSQL and network errors.
type PostgreSQLErrorClassifier struct{}

func NewPostgreSQLErrorClassifier() *PostgreSQLErrorClassifier {
	return &PostgreSQLErrorClassifier{}
}

// IsTransient reports whether err is worth retrying.
func (c *PostgreSQLErrorClassifier) IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return isTransientSQLState(pgErr.Code)
	}

	if isTransientNetError(err) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range transientMessages {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

func isTransientSQLState(code string) bool {
	for _, class := range transientPgClasses {
		if strings.HasPrefix(code, class) {
			return true
		}
	}
	_, ok := transientPgCodes[code]
	return ok
}

func isTransientNetError(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsTemporary || dnsErr.IsTimeout
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Timeout() {
			return true
		}
		for _, errno := range []syscall.Errno{syscall.ECONNREFUSED, syscall.ECONNRESET, syscall.ENETUNREACH, syscall.EHOSTUNREACH} {
			if errors.Is(opErr.Err, errno) {
				return true
			}
		}
	}
	return false
}
