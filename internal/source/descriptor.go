package source

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/ginjaninja78/kardex-extract/internal/config"
)

// Supported driver names.
const (
	DriverFirebird = "firebirdsql"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// Descriptor is everything needed to reach the database except the charset,
// which is chosen per connection attempt.
type Descriptor struct {
	Driver   string
	Host     string
	Port     int
	Path     string
	User     string
	Password string
}

// DescriptorFromConfig copies the connection settings out of the config.
func DescriptorFromConfig(c config.DatabaseConfig) Descriptor {
	return Descriptor{
		Driver:   c.Driver,
		Host:     c.Host,
		Port:     c.Port,
		Path:     c.Path,
		User:     c.User,
		Password: c.Password,
	}
}

// DSN renders the data source name for one charset candidate.
func (d Descriptor) DSN(charset string) (string, error) {
	switch d.Driver {
	case DriverFirebird:
		return d.firebirdDSN(charset), nil
	case DriverMySQL:
		return d.mysqlDSN(charset), nil
	case DriverSQLite:
		return d.Path, nil
	default:
		return "", fmt.Errorf("unsupported driver %q", d.Driver)
	}
}

// String is a DSN without credentials, safe for logs.
func (d Descriptor) String() string {
	if d.Driver == DriverSQLite {
		return d.Driver + ":" + d.Path
	}
	return fmt.Sprintf("%s://%s/%s", d.Driver, d.address(), d.Path)
}

func (d Descriptor) address() string {
	if d.Port == 0 {
		return d.Host
	}
	return net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
}

// firebirdDSN builds user:password@host:port/path?charset=X.
func (d Descriptor) firebirdDSN(charset string) string {
	var b strings.Builder
	if d.User != "" {
		b.WriteString(url.UserPassword(d.User, d.Password).String())
		b.WriteByte('@')
	}
	b.WriteString(d.address())
	// The driver drops the first slash, so absolute Unix paths keep theirs.
	b.WriteByte('/')
	b.WriteString(d.Path)
	if charset != "" {
		b.WriteString("?charset=")
		b.WriteString(url.QueryEscape(charset))
	}
	return b.String()
}

func (d Descriptor) mysqlDSN(charset string) string {
	cfg := mysql.NewConfig()
	cfg.User = d.User
	cfg.Passwd = d.Password
	cfg.Net = "tcp"
	cfg.Addr = d.address()
	cfg.DBName = d.Path
	if strings.HasPrefix(d.Host, "/") {
		cfg.Net = "unix"
		cfg.Addr = d.Host
	}
	if cs := mysqlCharset(charset); cs != "" {
		cfg.Params = map[string]string{"charset": cs}
	}
	return cfg.FormatDSN()
}

// mysqlCharset maps the Firebird charset names used in config to MySQL names.
func mysqlCharset(charset string) string {
	switch strings.ToUpper(charset) {
	case "":
		return ""
	case "UTF8":
		return "utf8mb4"
	case "WIN1252", "ISO8859_1":
		return "latin1"
	case "DOS850":
		return "cp850"
	default:
		return strings.ToLower(charset)
	}
}
