package config

import (
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// buildDSN assembles a MySQL DSN from the structured database block.
// Returns "" when no host/name is configured.
func buildDSN(db DatabaseRuntimeConfig) string {
	if db.Host == "" || db.Name == "" {
		return ""
	}

	port := db.Port
	if port == 0 {
		port = 3306
	}
	charset := db.Charset
	if charset == "" {
		charset = "utf8mb4"
	}
	loc := db.Loc
	if loc == "" {
		loc = "Local"
	}

	c := mysql.NewConfig()
	c.User = db.User
	c.Passwd = db.Password
	c.Net = "tcp"
	c.Addr = fmt.Sprintf("%s:%d", db.Host, port)
	c.DBName = db.Name
	c.ParseTime = true
	c.Params = map[string]string{"charset": charset, "loc": loc}
	return c.FormatDSN()
}

// buildRedisURL assembles a redis:// URL from the structured redis block.
func buildRedisURL(r RedisRuntimeConfig) string {
	host := r.Host
	if host == "" {
		host = "127.0.0.1"
	}
	port := r.Port
	if port == 0 {
		port = 6379
	}

	auth := ""
	if r.Username != "" || r.Password != "" {
		auth = fmt.Sprintf("%s:%s@", r.Username, r.Password)
	}
	return fmt.Sprintf("redis://%s%s:%d/%d", auth, host, port, r.DB)
}
