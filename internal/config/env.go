package config

import (
	"os"
	"strings"
)

// Features is the deployment feature set, loaded once at startup. Handlers
// never probe the schema at request time; a feature that is off here is
// reported as unsupported by the services that need it.
type Features struct {
	StaffSchedules bool
	StaffOverrides bool
}

type Env struct {
	AppAddr            string
	GinMode            string
	DBDSN              string
	JWTSecret          string
	CORSAllowedOrigins []string
	Features           Features
}

func LoadEnv() Env {
	appAddr := strings.TrimSpace(os.Getenv("APP_ADDR"))
	if appAddr == "" {
		appAddr = ":8080"
	}

	jwtSecret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if jwtSecret == "" {
		jwtSecret = "change-me-in-deployment"
	}

	origins := []string{}
	for _, o := range strings.Split(os.Getenv("CORS_ALLOWED_ORIGINS"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}

	return Env{
		AppAddr:            appAddr,
		GinMode:            strings.TrimSpace(os.Getenv("GIN_MODE")),
		DBDSN:              strings.TrimSpace(os.Getenv("DB_DSN")),
		JWTSecret:          jwtSecret,
		CORSAllowedOrigins: origins,
		Features: Features{
			StaffSchedules: envFlag("FEATURE_STAFF_SCHEDULES", true),
			StaffOverrides: envFlag("FEATURE_STAFF_OVERRIDES", true),
		},
	}
}

func envFlag(key string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}
