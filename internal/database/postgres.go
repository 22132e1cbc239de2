package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"
	"github.com/spf13/viper"
)

var db *sql.DB

// DBConfig holds database configuration
type DBConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// GetConfig returns database configuration with defaults
func GetConfig() *DBConfig {
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", "5432")
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "password")
	viper.SetDefault("database.name", "eventra")
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", time.Minute*5)

	return &DBConfig{
		Host:            viper.GetString("database.host"),
		Port:            viper.GetString("database.port"),
		User:            viper.GetString("database.user"),
		Password:        viper.GetString("database.password"),
		Name:            viper.GetString("database.name"),
		SSLMode:         viper.GetString("database.ssl_mode"),
		MaxOpenConns:    viper.GetInt("database.max_open_conns"),
		MaxIdleConns:    viper.GetInt("database.max_idle_conns"),
		ConnMaxLifetime: viper.GetDuration("database.conn_max_lifetime"),
	}
}

// InitDB initializes the database connection
func InitDB() (*sql.DB, error) {
	config := GetConfig()

	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.Name, config.SSLMode,
	)

	var err error
	db, err = sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// Test connection
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)

	log.Println("Database connection established")
	return db, nil
}

// GetDB returns the database connection
func GetDB() *sql.DB {
	return db
}

// CloseDB closes the database connection
func CloseDB() error {
	if db != nil {
		return db.Close()
	}
	return nil
}

// InitDatabase initializes database with error handling
func InitDatabase() *sql.DB {
	db, err := InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	return db
}

// EnsureLedgerSchema creates the distribution ledger table and its
// indexes. The unique index on event_id is the correctness mechanism for
// exactly-once distribution and must exist before the engine runs. The
// events, bookings and tickets tables are owned by other services and are
// not created here.
func EnsureLedgerSchema(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS distribution_records (
			id SERIAL PRIMARY KEY,
			event_id TEXT NOT NULL,
			admin_percentage NUMERIC(5,2) NOT NULL,
			total_revenue NUMERIC(20,2) NOT NULL,
			total_participants INTEGER NOT NULL,
			admin_amount NUMERIC(20,2) NOT NULL,
			organizer_amount NUMERIC(20,2) NOT NULL,
			distributed_at TIMESTAMPTZ NOT NULL,
			is_distributed BOOLEAN NOT NULL DEFAULT TRUE
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_distribution_records_event_id
			ON distribution_records (event_id)`,
		`CREATE INDEX IF NOT EXISTS idx_distribution_records_distributed_at
			ON distribution_records (distributed_at)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("error ensuring ledger schema: %w", err)
		}
	}

	log.Println("Distribution ledger schema ensured")
	return nil
}
