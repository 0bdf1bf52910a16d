// Package db provides read access to the Quran and hadith corpora (SQLite or PostgreSQL)
// plus the small page cache used by the remote hadith scrapers.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "modernc.org/sqlite"             // registers the "sqlite" driver

	"github.com/jonathan/daily-ayat-hadith/internal/types"
)

// Dialect selects placeholder syntax and driver.
type Dialect string

const (
	// DialectSQLite uses ? placeholders via modernc.org/sqlite
	DialectSQLite Dialect = "sqlite"
	// DialectPostgres uses $n placeholders via pgx
	DialectPostgres Dialect = "pgx"
)

// ArabicColumns maps a font key to the ayah column holding the matching script variant.
var ArabicColumns = map[string]string{
	"indopak":   "AyahTextIndoPakForIOS",
	"muhammadi": "AyahTextMuhammadi",
	"pdms":      "AyahTextPdms",
	"qalam":     "AyahTextQalam",
}

const defaultArabicColumn = "AyahTextPdms"

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Options selects which corpus columns are read.
type Options struct {
	ArabicFont    string // key of ArabicColumns; unknown keys fall back to pdms
	UrduColumn    string // translations column for Urdu
	EnglishColumn string // translations column for English
}

// DefaultOptions returns the column selection of the stock corpus.
func DefaultOptions() *Options {
	return &Options{
		ArabicFont:    "pdms",
		UrduColumn:    "Maududi",
		EnglishColumn: "MaududiEn",
	}
}

// DB wraps a corpus connection
type DB struct {
	conn          *sql.DB
	dialect       Dialect
	arabicColumn  string
	urduColumn    string
	englishColumn string
	hadithEnglish bool // mishkaat table carries an English column
}

// DialectFor picks the dialect for a DSN: postgres URLs use pgx, anything else is a SQLite path.
func DialectFor(dsn string) Dialect {
	lower := strings.ToLower(dsn)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return DialectPostgres
	}
	return DialectSQLite
}

// Connect opens the corpus at dsn and verifies the connection
func Connect(ctx context.Context, dsn string, opts *Options) (*DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: database path is empty", types.ErrValidation)
	}
	dialect := DialectFor(dsn)

	conn, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify connection
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db, err := New(ctx, conn, dialect, opts)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return db, nil
}

// New wraps an already opened connection.
func New(ctx context.Context, conn *sql.DB, dialect Dialect, opts *Options) (*DB, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	arabic, ok := ArabicColumns[opts.ArabicFont]
	if !ok {
		arabic = defaultArabicColumn
	}
	for _, col := range []string{opts.UrduColumn, opts.EnglishColumn} {
		if !identifierPattern.MatchString(col) {
			return nil, fmt.Errorf("%w: invalid translation column %q", types.ErrValidation, col)
		}
	}

	db := &DB{
		conn:          conn,
		dialect:       dialect,
		arabicColumn:  arabic,
		urduColumn:    opts.UrduColumn,
		englishColumn: opts.EnglishColumn,
	}
	db.hadithEnglish = db.hasColumn(ctx, "mishkaat", "English")
	return db, nil
}

// Close closes the connection
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// Dialect returns the SQL dialect in use.
func (db *DB) Dialect() Dialect {
	return db.dialect
}

// rebind rewrites ? placeholders for the active dialect.
func (db *DB) rebind(query string) string {
	if db.dialect != DialectPostgres {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func (db *DB) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return db.conn.QueryRowContext(ctx, db.rebind(query), args...)
}

func (db *DB) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.conn.QueryContext(ctx, db.rebind(query), args...)
}

func (db *DB) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.conn.ExecContext(ctx, db.rebind(query), args...)
}

// hasColumn probes a column with an empty select; it works on both dialects.
func (db *DB) hasColumn(ctx context.Context, table, column string) bool {
	rows, err := db.conn.QueryContext(ctx, fmt.Sprintf("SELECT %s FROM %s LIMIT 0", column, table))
	if err != nil {
		return false
	}
	_ = rows.Close()
	return true
}
