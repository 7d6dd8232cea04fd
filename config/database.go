package config

import (
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolConfig resolves the store connection parameters into a pool config.
//
// A full connection string wins over the discrete DB_* variables. In both
// cases server certificates are not verified when TLS is used.
func (d DatabaseConfig) PoolConfig() (*pgxpool.Config, error) {
	dsn := d.ConnectionString
	if dsn == "" {
		dsn = d.keywordDSN()
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}

	skipCertVerification(cfg)

	if d.MaxConns > 0 {
		cfg.MaxConns = d.MaxConns
	}
	if d.ConnectTimeout > 0 {
		cfg.ConnConfig.ConnectTimeout = d.ConnectTimeout
	}
	return cfg, nil
}

// keywordDSN assembles a key/value connection string from the discrete fields.
// Empty fields are left out so the driver defaults apply.
func (d DatabaseConfig) keywordDSN() string {
	var parts []string
	add := func(key, value string) {
		if value != "" {
			parts = append(parts, key+"="+quoteDSNValue(value))
		}
	}
	add("host", d.Host)
	port := d.Port
	if port == "" {
		port = DefaultDBPort
	}
	add("port", port)
	add("dbname", d.Name)
	add("user", d.User)
	add("password", d.Password)
	add("sslmode", d.SSLMode)
	return strings.Join(parts, " ")
}

func quoteDSNValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

func skipCertVerification(cfg *pgxpool.Config) {
	insecure(cfg.ConnConfig.TLSConfig)
	for _, fb := range cfg.ConnConfig.Fallbacks {
		insecure(fb.TLSConfig)
	}
}

func insecure(tc *tls.Config) {
	if tc == nil {
		return
	}
	tc.InsecureSkipVerify = true
	// verify-ca installs its own chain check
	tc.VerifyPeerCertificate = nil
}
