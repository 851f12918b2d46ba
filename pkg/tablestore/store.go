package tablestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	_ "github.com/glebarez/go-sqlite"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/goliatone/go-macro-dashboard/components/dashboard"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DefaultTTL is how long a validated table set is served before reloading.
const DefaultTTL = 5 * time.Minute

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ErrInvalidIdentifier is returned for table or column names that cannot be
// used in a query verbatim.
var ErrInvalidIdentifier = errors.New("tablestore: invalid identifier")

// Config configures a Store.
type Config struct {
	Driver string
	DSN    string
	// Tables lists the table names to load, usually Config.TableNames from the manifest.
	Tables []string
	// TTL bounds cache age. Zero uses DefaultTTL and a negative value disables caching.
	TTL    time.Duration
	Logger *zap.Logger
}

// Store loads manifest tables from SQL, validates them, and caches the result.
type Store struct {
	db     *sql.DB
	driver string
	tables []string
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time

	mu       sync.Mutex
	cached   map[string]*dashboard.Dataset
	loadedAt time.Time
}

var _ dashboard.TableSource = (*Store)(nil)

// Open connects to the configured database and wraps it in a Store.
func Open(cfg Config) (*Store, error) {
	driver := normalizeDriver(cfg.Driver)
	if driver == "" {
		return nil, fmt.Errorf("tablestore: unsupported driver %q", cfg.Driver)
	}
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, errors.New("tablestore: dsn is required")
	}
	db, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("tablestore: open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		if err := configureSQLite(db); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	cfg.Driver = driver
	return New(db, cfg), nil
}

// New wraps an already opened database.
func New(db *sql.DB, cfg Config) *Store {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	driver := normalizeDriver(cfg.Driver)
	if driver == "" {
		driver = DriverSQLite
	}
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &Store{
		db:     db,
		driver: driver,
		tables: append([]string(nil), cfg.Tables...),
		ttl:    ttl,
		logger: cfg.Logger.With(zap.String("component", "tablestore")),
		now:    time.Now,
	}
}

// DB exposes the underlying connection pool.
func (s *Store) DB() *sql.DB { return s.db }

// Close releases the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// LoadValidatedTables returns every configured table that loads and
// validates. Invalid or missing tables are logged and left out.
func (s *Store) LoadValidatedTables(ctx context.Context) (map[string]*dashboard.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil && s.ttl > 0 && s.now().Sub(s.loadedAt) < s.ttl {
		return copyTables(s.cached), nil
	}
	if err := s.db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("tablestore: ping: %w", err)
	}

	tables := make(map[string]*dashboard.Dataset, len(s.tables))
	for _, name := range s.tables {
		ds, err := s.LoadTable(ctx, name)
		if err != nil {
			s.logger.Warn("table skipped", zap.String("table", name), zap.Error(err))
			continue
		}
		tables[name] = ds
	}
	s.logger.Info("validated tables loaded",
		zap.Int("requested", len(s.tables)),
		zap.Int("valid", len(tables)))

	s.cached = tables
	s.loadedAt = s.now()
	return copyTables(tables), nil
}

// Invalidate drops the cached table set so the next load hits the database.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.loadedAt = time.Time{}
	s.mu.Unlock()
	s.logger.Debug("table cache invalidated")
}

// LoadTable reads a single table and validates it. The first column is the
// row label and every other column must hold numbers or NULL.
func (s *Store) LoadTable(ctx context.Context, name string) (*dashboard.Dataset, error) {
	if !identifierPattern.MatchString(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s ORDER BY 1", quoteIdent(name)))
	if err != nil {
		return nil, fmt.Errorf("tablestore: query %s: %w", name, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("tablestore: columns of %s: %w", name, err)
	}
	if len(columns) < 2 {
		return nil, fmt.Errorf("tablestore: table %s needs a label column and at least one value column", name)
	}

	ds := &dashboard.Dataset{
		Name:        name,
		LabelColumn: columns[0],
		Columns:     append([]string(nil), columns[1:]...),
	}
	raw := make([]sql.NullString, len(columns))
	dest := make([]any, len(columns))
	for i := range raw {
		dest[i] = &raw[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("tablestore: scan %s: %w", name, err)
		}
		row := dashboard.DatasetRow{
			Label:  strings.TrimSpace(raw[0].String),
			Values: make([]decimal.NullDecimal, len(columns)-1),
		}
		for i, cell := range raw[1:] {
			value, err := parseCell(cell)
			if err != nil {
				return nil, fmt.Errorf("tablestore: table %s row %s column %s: %w", name, row.Label, columns[i+1], err)
			}
			row.Values[i] = value
		}
		ds.Rows = append(ds.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("tablestore: read %s: %w", name, err)
	}
	if err := ds.Validate(); err != nil {
		return nil, fmt.Errorf("tablestore: %w", err)
	}
	return ds, nil
}

func parseCell(cell sql.NullString) (decimal.NullDecimal, error) {
	text := strings.TrimSpace(cell.String)
	if !cell.Valid || text == "" {
		return decimal.NullDecimal{}, nil
	}
	value, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("value %q is not numeric", text)
	}
	return decimal.NewNullDecimal(value), nil
}

func copyTables(in map[string]*dashboard.Dataset) map[string]*dashboard.Dataset {
	out := make(map[string]*dashboard.Dataset, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func configureSQLite(db *sql.DB) error {
	// A single connection keeps ":memory:" databases shared across queries.
	db.SetMaxOpenConns(1)
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("tablestore: set pragma %s: %w", pragma, err)
		}
	}
	return nil
}

func normalizeDriver(driver string) string {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlite", "sqlite3":
		return DriverSQLite
	case "postgres", "postgresql", "pq":
		return DriverPostgres
	default:
		return ""
	}
}

func quoteIdent(name string) string {
	return `"` + name + `"`
}

func (s *Store) placeholder(n int) string {
	if s.driver == DriverPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}
