package config

// Key is one recognised setting.
type Key struct {
	Name    string
	Default string
	Usage   string
	Secret  bool
}

// registry lists every setting the service reads. Process environment
// variables are only picked up for names in this list.
var registry = []Key{
	// Stores
	{Name: "STORE_DRIVER", Default: "gorm", Usage: "backend for both stores: gorm | mongo | memory"},
	{Name: "DB_DRIVER", Default: "sqlite", Usage: "gorm dialect: sqlite | postgres | mysql | sqlserver"},
	{Name: "DATABASE_DSN", Usage: "gorm DSN; empty uses the dialect's local default", Secret: true},
	{Name: "AUTO_MIGRATE", Default: "true", Usage: "run pending SQL migrations on boot"},
	{Name: "MONGO_URI", Default: "mongodb://localhost:27017", Usage: "mongo store connection string", Secret: true},
	{Name: "MONGO_DATABASE", Default: "pricebook", Usage: "mongo database for stores and logs"},

	// Cache
	{Name: "REDIS_ADDR", Default: "localhost:6379", Usage: "catalog cache address"},
	{Name: "REDIS_PASSWORD", Usage: "catalog cache password", Secret: true},
	{Name: "CATALOG_CACHE_TTL", Default: "60s", Usage: "catalog cache lifetime; 0 disables"},

	// HTTP / gRPC
	{Name: "APP_PORT", Default: "5000", Usage: "HTTP listen port"},
	{Name: "APP_ENV", Default: "local", Usage: "local | production (JSON logs)"},
	{Name: "GRPC_PORT", Usage: "gRPC health port; empty disables"},
	{Name: "READ_TIMEOUT", Default: "10s", Usage: "HTTP read timeout"},
	{Name: "WRITE_TIMEOUT", Default: "10s", Usage: "HTTP write timeout"},
	{Name: "SHUTDOWN_TIMEOUT", Default: "15s", Usage: "grace period for in-flight requests"},
	{Name: "RATE_LIMIT", Default: "200", Usage: "requests per minute per client IP"},
	{Name: "MAX_BODY_BYTES", Default: "1048576", Usage: "request body limit"},
	{Name: "CORS_ORIGINS", Usage: "comma-separated allow list; empty allows all"},

	// Auth
	{Name: "OPERATOR_AUTH", Default: "false", Usage: "require an operator JWT on writes"},
	{Name: "JWT_SECRET", Default: "change-me-in-production", Usage: "HMAC key for operator tokens", Secret: true},

	// Logging
	{Name: "LOG_MONGO_URI", Usage: "async MongoDB log sink; empty disables", Secret: true},

	// Storage
	{Name: "STORAGE_DISK", Default: "local", Usage: "default disk: local | s3"},
	{Name: "STORAGE_LOCAL_ROOT", Default: ".", Usage: "root directory of the local disk"},
	{Name: "S3_BUCKET", Usage: "enables the s3 disk when set"},
	{Name: "S3_REGION", Default: "us-east-1", Usage: "s3 region"},
	{Name: "S3_KEY", Usage: "s3 access key; empty uses the AWS default chain", Secret: true},
	{Name: "S3_SECRET", Usage: "s3 secret key", Secret: true},
	{Name: "S3_ENDPOINT", Usage: "custom endpoint for MinIO, R2 and the like"},

	// Jobs
	{Name: "CATALOG_SYNC_FILE", Usage: "catalog file re-imported on a schedule; empty disables"},
	{Name: "CATALOG_SYNC_DISK", Usage: "disk for CATALOG_SYNC_FILE; empty uses STORAGE_DISK"},
	{Name: "CATALOG_SYNC_INTERVAL", Default: "15m", Usage: "catalog sync period"},
}

var byName = func() map[string]Key {
	m := make(map[string]Key, len(registry))
	for _, k := range registry {
		m[k.Name] = k
	}
	return m
}()

// Keys returns every recognised setting in declaration order.
func Keys() []Key {
	out := make([]Key, len(registry))
	copy(out, registry)
	return out
}

// Display returns the current value of name for printing. Secrets that are
// set come back masked.
func Display(name string) string {
	v := Get(name, "")
	if v != "" && byName[name].Secret {
		return "********"
	}
	return v
}
