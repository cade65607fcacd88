package database

import (
	"database/sql"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Dialect hides the differences between the supported SQL backends
type Dialect interface {
	// Name is the short backend name; it doubles as the migrations subdirectory
	Name() string

	// DriverName returns the driver name for sql.Open
	DriverName() string

	// DSN returns the data source name for the connection
	DSN(config DialectConfig) string

	// RewriteQuery converts ? placeholders to the backend's syntax
	RewriteQuery(query string) string

	// SupportsLastInsertId returns false when inserts need a RETURNING clause
	SupportsLastInsertId() bool

	// ConfigureConnection applies pool limits and backend settings
	ConfigureConnection(db *sql.DB) error

	// CreateMigrationsTableQuery returns the SQL to create the migrations tracking table
	CreateMigrationsTableQuery() string

	// BoolValue returns the SQL literal for a boolean
	BoolValue(b bool) string

	// IsUniqueViolation reports whether err is a unique constraint failure
	IsUniqueViolation(err error) bool

	// ResetSequenceQuery realigns an id sequence after rows were inserted with explicit ids.
	// Backends that track this themselves return "".
	ResetSequenceQuery(table string) string
}

// DialectConfig holds configuration for database connection
type DialectConfig struct {
	// For SQLite
	Path string

	// For PostgreSQL/MySQL
	URL string
}

type poolSettings struct {
	maxOpen     int
	maxIdle     int
	maxLifetime time.Duration
	maxIdleTime time.Duration
}

// serverPool suits the networked backends
var serverPool = poolSettings{maxOpen: 25, maxIdle: 5, maxLifetime: 5 * time.Minute, maxIdleTime: time.Minute}

func (p poolSettings) apply(db *sql.DB) {
	db.SetMaxOpenConns(p.maxOpen)
	db.SetMaxIdleConns(p.maxIdle)
	db.SetConnMaxLifetime(p.maxLifetime)
	db.SetConnMaxIdleTime(p.maxIdleTime)
}

var placeholderRegexp = regexp.MustCompile(`\?`)

// rewritePlaceholdersToNumbered converts ? placeholders to $1, $2, etc.
func rewritePlaceholdersToNumbered(query string) string {
	counter := 0
	return placeholderRegexp.ReplaceAllStringFunc(query, func(match string) string {
		counter++
		return "$" + strconv.Itoa(counter)
	})
}

// appendDSNParams adds query parameters to a DSN unless they are already present
func appendDSNParams(dsn string, params ...string) string {
	for _, p := range params {
		key := p[:strings.IndexByte(p, '=')+1]
		if strings.Contains(dsn, key) {
			continue
		}
		if strings.Contains(dsn, "?") {
			dsn += "&" + p
		} else {
			dsn += "?" + p
		}
	}
	return dsn
}
