package results

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// dialect captures the SQL differences between the supported drivers.
type dialect struct {
	driver     string
	idColumn   string
	returnsID  bool // INSERT ... RETURNING id instead of LastInsertId
	dollarArgs bool // $1, $2 placeholders instead of ?
}

var (
	sqliteDialect = dialect{
		driver:   "sqlite3",
		idColumn: "INTEGER PRIMARY KEY AUTOINCREMENT",
	}
	mysqlDialect = dialect{
		driver:   "mysql",
		idColumn: "BIGINT AUTO_INCREMENT PRIMARY KEY",
	}
	postgresDialect = dialect{
		driver:     "postgres",
		idColumn:   "BIGSERIAL PRIMARY KEY",
		returnsID:  true,
		dollarArgs: true,
	}
)

// parseDSN splits scheme://rest into a driver dialect and the data source
// name that driver expects.
func parseDSN(dsn string) (dialect, string, error) {
	scheme, rest, ok := strings.Cut(dsn, "://")
	if !ok {
		return dialect{}, "", fmt.Errorf("results dsn %q has no scheme", dsn)
	}
	switch scheme {
	case "sqlite", "sqlite3":
		if rest == "" {
			return dialect{}, "", fmt.Errorf("results dsn %q has no path", dsn)
		}
		return sqliteDialect, rest, nil
	case "mysql":
		cfg, err := mysql.ParseDSN(rest)
		if err != nil {
			return dialect{}, "", fmt.Errorf("results dsn: %w", err)
		}
		cfg.ParseTime = true
		return mysqlDialect, cfg.FormatDSN(), nil
	case "postgres", "postgresql":
		return postgresDialect, dsn, nil
	default:
		return dialect{}, "", fmt.Errorf("results dsn: unsupported scheme %q", scheme)
	}
}

// rebind rewrites ? placeholders for drivers that number their arguments.
func (d dialect) rebind(query string) string {
	if !d.dollarArgs {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
