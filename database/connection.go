package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

// ErrNotFound is returned when a lookup by key matches no row.
var ErrNotFound = errors.New("record not found")

type DatabaseConfig struct {
	Host     string
	User     string
	Password string
	DBName   string
}

// DSN renders the go-sql-driver/mysql data source name.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&clientFoundRows=true",
		c.User, c.Password, c.Host, c.DBName)
}

type Connection struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

func NewConnection(config DatabaseConfig, logger *zap.SugaredLogger) (*Connection, error) {
	db, err := sql.Open("mysql", config.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	conn := &Connection{db: db, logger: logger}

	if err := conn.ensureConnection(); err != nil {
		db.Close()
		return nil, err
	}

	return conn, nil
}

func (c *Connection) ensureConnection() error {
	for retries := 0; retries < 3; retries++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := c.db.PingContext(ctx)
		cancel()

		if err == nil {
			return nil
		}

		c.logger.Warnf("Database ping failed (attempt %d/3): %v", retries+1, err)
		time.Sleep(time.Second * time.Duration(retries+1))
	}
	return fmt.Errorf("failed to establish database connection after 3 attempts")
}

func (c *Connection) Close() error {
	return c.db.Close()
}

func (c *Connection) PingContext(ctx context.Context) error {
	return c.db.PingContext(ctx)
}
