package config

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int                   `yaml:"port"`
	DSN            string                `yaml:"dsn"` // MySQL DSN, overrides Database
	Database       DatabaseRuntimeConfig `yaml:"database"`
	RedisURL       string                `yaml:"redis_url"`
	Redis          RedisRuntimeConfig    `yaml:"redis"`
	Env            string                `yaml:"env"` // "development" | "production"
	JWTSecret      string                `yaml:"jwt_secret"`
	AllowedOrigins []string              `yaml:"allowed_origins"`
	CookieInsecure bool                  `yaml:"cookie_insecure"` // dev only: drop the Secure cookie flag
}

type DatabaseRuntimeConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	Charset  string `yaml:"charset"`
	Loc      string `yaml:"loc"`
}

type RedisRuntimeConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// IsDev reports whether the app runs in development mode.
func (c *AppConfig) IsDev() bool { return c.Env != "production" }
