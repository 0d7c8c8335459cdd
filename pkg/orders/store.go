package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver
)

// ErrDuplicateOrderNumber is returned when an insert collides with an
// existing order number. Handlers map it to a validation failure.
var ErrDuplicateOrderNumber = errors.New("order number already exists")

// Order is a locally persisted order row.
type Order struct {
	ID           string    `json:"id"`
	OrderNumber  string    `json:"order_number"`
	Product      string    `json:"produk"`
	CustomerName string    `json:"customer_name"`
	Phone        string    `json:"phone"`
	Quantity     int64     `json:"qty"`
	Amount       int64     `json:"amount"`
	Status       string    `json:"status"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ListOptions filters and pages a List call.
type ListOptions struct {
	// Status filters by order status when non-empty.
	Status string

	// Page is 1-based. Values below 1 are treated as 1.
	Page int

	// PerPage caps the page size. Defaults to 20, capped at 100.
	PerPage int
}

// Store persists orders in a local SQLite database. It uses a
// write-ahead log for concurrent reads during writes and periodic
// passive checkpoints to keep the WAL bounded.
type Store struct {
	db        *sql.DB
	dbPath    string
	done      chan struct{}
	closeOnce sync.Once

	createStmt *sql.Stmt
	getStmt    *sql.Stmt
}

// StoreConfig configures the order store.
type StoreConfig struct {
	// DBPath is the path to the SQLite database file.
	DBPath string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration

	// CheckpointInterval is how often to checkpoint the WAL.
	// Default: 5 minutes
	CheckpointInterval time.Duration
}

// NewStore opens (or creates) the order database with default settings.
func NewStore(dbPath string) (*Store, error) {
	return NewStoreWithConfig(StoreConfig{DBPath: dbPath})
}

// NewStoreWithConfig opens the order database with custom configuration.
func NewStoreWithConfig(cfg StoreConfig) (*Store, error) {
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}
	if cfg.CheckpointInterval == 0 {
		cfg.CheckpointInterval = 5 * time.Minute
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cfg.DBPath, int(cfg.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{
		db:     db,
		dbPath: cfg.DBPath,
		done:   make(chan struct{}),
	}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if err := s.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	go s.checkpointLoop(cfg.CheckpointInterval)

	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		order_number TEXT NOT NULL UNIQUE,
		product TEXT NOT NULL,
		customer_name TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		quantity INTEGER NOT NULL DEFAULT 1,
		amount INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'pending',
		notes TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);
	CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) prepareStatements() error {
	var err error

	s.createStmt, err = s.db.Prepare(`
		INSERT INTO orders (id, order_number, product, customer_name, phone, quantity, amount, status, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare create statement: %w", err)
	}

	s.getStmt, err = s.db.Prepare(`
		SELECT id, order_number, product, customer_name, phone, quantity, amount, status, notes, created_at, updated_at
		FROM orders
		WHERE id = ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare get statement: %w", err)
	}

	return nil
}

// Create inserts a single order row. A colliding order number maps to
// ErrDuplicateOrderNumber so callers can surface it as a client error.
func (s *Store) Create(ctx context.Context, order *Order) error {
	if order == nil {
		return fmt.Errorf("order cannot be nil")
	}
	if order.OrderNumber == "" {
		return fmt.Errorf("order number cannot be empty")
	}
	if order.Product == "" {
		return fmt.Errorf("product cannot be empty")
	}

	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if order.Status == "" {
		order.Status = "pending"
	}
	if order.Quantity <= 0 {
		order.Quantity = 1
	}

	now := time.Now()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now

	_, err := s.createStmt.ExecContext(ctx,
		order.ID,
		order.OrderNumber,
		order.Product,
		order.CustomerName,
		order.Phone,
		order.Quantity,
		order.Amount,
		order.Status,
		order.Notes,
		order.CreatedAt.Unix(),
		order.UpdatedAt.Unix(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return ErrDuplicateOrderNumber
		}
		return fmt.Errorf("failed to create order: %w", err)
	}

	return nil
}

// Get retrieves an order by id. Returns (nil, nil) when no row exists.
func (s *Store) Get(ctx context.Context, id string) (*Order, error) {
	if id == "" {
		return nil, fmt.Errorf("id cannot be empty")
	}

	var (
		order     Order
		createdAt int64
		updatedAt int64
	)

	err := s.getStmt.QueryRowContext(ctx, id).Scan(
		&order.ID,
		&order.OrderNumber,
		&order.Product,
		&order.CustomerName,
		&order.Phone,
		&order.Quantity,
		&order.Amount,
		&order.Status,
		&order.Notes,
		&createdAt,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}

	order.CreatedAt = time.Unix(createdAt, 0)
	order.UpdatedAt = time.Unix(updatedAt, 0)
	return &order, nil
}

// List returns a page of orders newest-first, plus the total row count
// for the filter so handlers can report real pagination.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]*Order, int, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.PerPage <= 0 {
		opts.PerPage = 20
	}
	if opts.PerPage > 100 {
		opts.PerPage = 100
	}

	where := ""
	args := []any{}
	if opts.Status != "" {
		where = " WHERE status = ?"
		args = append(args, opts.Status)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM orders"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	query := `
		SELECT id, order_number, product, customer_name, phone, quantity, amount, status, notes, created_at, updated_at
		FROM orders` + where + `
		ORDER BY created_at DESC, id
		LIMIT ? OFFSET ?
	`
	args = append(args, opts.PerPage, (opts.Page-1)*opts.PerPage)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		var (
			order     Order
			createdAt int64
			updatedAt int64
		)
		if err := rows.Scan(
			&order.ID,
			&order.OrderNumber,
			&order.Product,
			&order.CustomerName,
			&order.Phone,
			&order.Quantity,
			&order.Amount,
			&order.Status,
			&order.Notes,
			&createdAt,
			&updatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan row: %w", err)
		}
		order.CreatedAt = time.Unix(createdAt, 0)
		order.UpdatedAt = time.Unix(updatedAt, 0)
		orders = append(orders, &order)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating rows: %w", err)
	}

	return orders, total, nil
}

// Ping verifies the database is reachable. Used by the readiness probe.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the database. Safe to call multiple times.
func (s *Store) Close() error {
	var closeErr error

	s.closeOnce.Do(func() {
		close(s.done)

		if s.createStmt != nil {
			s.createStmt.Close()
		}
		if s.getStmt != nil {
			s.getStmt.Close()
		}

		if s.db != nil {
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
			closeErr = s.db.Close()
		}
	})

	return closeErr
}

func (s *Store) checkpointLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(PASSIVE)")
		case <-s.done:
			return
		}
	}
}
