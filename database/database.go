// Package database opens the bot's gorm connection from a DATABASE_URL style
// connection string and owns schema migration.
package database

import (
	"errors"
	"fmt"
	"time"

	mysqlDriver "github.com/go-sql-driver/mysql"
	mssql "github.com/microsoft/go-mssqldb"
	"github.com/xo/dburl"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"t2TrialsFantasyBot/models"
)

// Dialector maps a connection URL (mysql://, sqlserver://, sqlite:) onto the
// matching gorm dialector.
func Dialector(rawURL string) (gorm.Dialector, error) {
	u, err := dburl.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("error parsing database url: %w", err)
	}

	switch u.Driver {
	case "mysql":
		dsn, err := mysqlDSN(u.DSN)
		if err != nil {
			return nil, err
		}
		return mysql.Open(dsn), nil
	case "sqlserver":
		return sqlserver.Open(u.DSN), nil
	case "sqlite3":
		return sqlite.Open(u.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", u.Driver)
	}
}

// mysqlDSN forces the connection options the models rely on.
func mysqlDSN(dsn string) (string, error) {
	cfg, err := mysqlDriver.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("error parsing mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.Local
	if cfg.Params == nil {
		cfg.Params = map[string]string{}
	}
	if _, ok := cfg.Params["charset"]; !ok {
		cfg.Params["charset"] = "utf8mb4"
	}
	return cfg.FormatDSN(), nil
}

func Open(rawURL string) (*gorm.DB, error) {
	dialector, err := Dialector(rawURL)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("error migrating database: %w", err)
	}
	return nil
}

// IsDuplicateKey reports whether err is a unique constraint violation on any
// of the supported databases.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var myErr *mysqlDriver.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}

	var msErr mssql.Error
	if errors.As(err, &msErr) {
		return msErr.Number == 2601 || msErr.Number == 2627
	}

	return false
}
