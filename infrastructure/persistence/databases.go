package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"time"

	"clipcast/infrastructure/configuration"
	"clipcast/infrastructure/logger"

	gomysql "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/microsoft/go-mssqldb"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// PostgresDSN builds a lib/pq connection string
func PostgresDSN(cfg configuration.Db) string {
	u := &url.URL{
		Scheme:   "postgres",
		Host:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Path:     "/" + cfg.Name,
		RawQuery: "sslmode=disable",
	}
	if cfg.User != "" {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	}
	return u.String()
}

// MSSQLDSN builds a sqlserver:// connection string. Local hosts trust the self-signed certificate.
func MSSQLDSN(cfg configuration.Db) string {
	q := url.Values{}
	if cfg.Name != "" {
		q.Set("database", cfg.Name)
	}
	q.Set("encrypt", "true")
	if cfg.Host == "localhost" || cfg.Host == "127.0.0.1" {
		q.Set("TrustServerCertificate", "true")
	}
	u := &url.URL{Scheme: "sqlserver", Host: fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)}
	if cfg.User != "" {
		if cfg.Password != "" {
			u.User = url.UserPassword(cfg.User, cfg.Password)
		} else {
			u.User = url.User(cfg.User)
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// MySQLDSN builds a go-sql-driver DSN with time parsing enabled for gorm. Credentials
// go through the driver's formatter so reserved characters survive.
func MySQLDSN(cfg configuration.Db) string {
	c := gomysql.NewConfig()
	c.User = cfg.User
	c.Passwd = cfg.Password
	c.Net = "tcp"
	c.Addr = net.JoinHostPort(cfg.Host, cfg.Port)
	c.DBName = cfg.Name
	c.ParseTime = true
	c.Loc = time.UTC
	c.ClientFoundRows = true
	c.Params = map[string]string{"charset": "utf8mb4"}
	return c.FormatDSN()
}

// NewPostgreSQLDB opens and pings the campaign database on PostgreSQL
func NewPostgreSQLDB() (*sql.DB, error) {
	return openSQL("postgres", PostgresDSN(configuration.C.Database.Psql))
}

// NewMSSQLDB opens and pings the campaign database on SQL Server / Azure SQL
func NewMSSQLDB() (*sql.DB, error) {
	return openSQL("sqlserver", MSSQLDSN(configuration.C.Database.Mssql))
}

func openSQL(driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	db.SetConnMaxIdleTime(time.Minute)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return db, nil
}

// NewRepositories opens the MySQL catalog database through gorm
func NewRepositories() (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(MySQLDSN(configuration.C.Database.MySql)), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Cannot open catalog database")
		return nil, err
	}
	return db, nil
}

// NewMongoDb connects to the audit store. Pinging is left to the caller.
func NewMongoDb(uri string) (*mongo.Client, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo uri not configured")
	}
	return mongo.Connect(options.Client().ApplyURI(uri).SetConnectTimeout(5 * time.Second))
}
