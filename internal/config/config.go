package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigPath is the default configuration file location.
const ConfigPath = "config.yaml"

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	Port     string `yaml:"port"`
	LogLevel string `yaml:"logLevel"`

	MembershipAPIURL  string `yaml:"membershipApiURL"`
	MembershipAPIKey  string `yaml:"membershipApiKey"`
	MembershipJWKSURL string `yaml:"membershipJwksURL"`
	JWTIssuer         string `yaml:"jwtIssuer"`
	JWTAudience       string `yaml:"jwtAudience"`
	JWTLeeway         string `yaml:"jwtLeeway"`

	TableAPIURL  string `yaml:"tableApiURL"`
	TableAPIKey  string `yaml:"tableApiKey"`
	CoursesTable string `yaml:"coursesTable"`
	LessonsTable string `yaml:"lessonsTable"`

	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`
	SessionTTL    string `yaml:"sessionTTL"`

	TrustedProxyCIDRs []string `yaml:"trustedProxyCidrs"`

	LoginRateLimitPerMinute  int `yaml:"loginRateLimitPerMinute"`
	SignupRateLimitPerMinute int `yaml:"signupRateLimitPerMinute"`
	VerifyRateLimitPerMinute int `yaml:"verifyRateLimitPerMinute"`
	SeedRateLimitPerMinute   int `yaml:"seedRateLimitPerMinute"`
}

// Load reads config from path (defaults to config.yaml), applies env
// overrides and validates. Missing platform credentials fail here, before
// any external call is attempted.
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	applyEnv(&cfg)
	if cfg.CoursesTable == "" {
		cfg.CoursesTable = "courses"
	}
	if cfg.LessonsTable == "" {
		cfg.LessonsTable = "lessons"
	}
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *FileConfig) {
	if v := os.Getenv("COURSEDECK_PORT"); v != "" {
		cfg.Port = strings.TrimSpace(v)
	}
	if v := os.Getenv("COURSEDECK_LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.TrimSpace(v)
	}
	if v := os.Getenv("MEMBERSHIP_API_URL"); v != "" {
		cfg.MembershipAPIURL = strings.TrimSpace(v)
	}
	if v := os.Getenv("MEMBERSHIP_API_KEY"); v != "" {
		cfg.MembershipAPIKey = strings.TrimSpace(v)
	}
	if v := os.Getenv("MEMBERSHIP_JWKS_URL"); v != "" {
		cfg.MembershipJWKSURL = strings.TrimSpace(v)
	}
	if v := os.Getenv("JWT_ISSUER"); v != "" {
		cfg.JWTIssuer = v
	}
	if v := os.Getenv("JWT_AUDIENCE"); v != "" {
		cfg.JWTAudience = v
	}
	if v := os.Getenv("JWT_LEEWAY"); v != "" {
		cfg.JWTLeeway = v
	}
	if v := os.Getenv("TABLE_API_URL"); v != "" {
		cfg.TableAPIURL = strings.TrimSpace(v)
	}
	if v := os.Getenv("TABLE_API_KEY"); v != "" {
		cfg.TableAPIKey = strings.TrimSpace(v)
	}
	if v := os.Getenv("COURSEDECK_COURSES_TABLE"); v != "" {
		cfg.CoursesTable = strings.TrimSpace(v)
	}
	if v := os.Getenv("COURSEDECK_LESSONS_TABLE"); v != "" {
		cfg.LessonsTable = strings.TrimSpace(v)
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("COURSEDECK_SESSION_TTL"); v != "" {
		cfg.SessionTTL = strings.TrimSpace(v)
	}
	if v := os.Getenv("COURSEDECK_TRUSTED_PROXY_CIDRS"); v != "" {
		cfg.TrustedProxyCIDRs = splitCSV(v)
	}
	if v := os.Getenv("COURSEDECK_LOGIN_RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.LoginRateLimitPerMinute = n
		}
	}
	if v := os.Getenv("COURSEDECK_SIGNUP_RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.SignupRateLimitPerMinute = n
		}
	}
	if v := os.Getenv("COURSEDECK_VERIFY_RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.VerifyRateLimitPerMinute = n
		}
	}
	if v := os.Getenv("COURSEDECK_SEED_RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.SeedRateLimitPerMinute = n
		}
	}
}

func validateConfig(cfg FileConfig) error {
	if cfg.Port == "" {
		return errors.New("config: port is required (set in config.yaml)")
	}
	if cfg.MembershipAPIURL == "" {
		return errors.New("config: membershipApiURL is required (set in config.yaml or MEMBERSHIP_API_URL)")
	}
	if strings.TrimSpace(cfg.MembershipAPIKey) == "" {
		return errors.New("config: membershipApiKey is required (set in config.yaml or MEMBERSHIP_API_KEY)")
	}
	if cfg.TableAPIURL == "" {
		return errors.New("config: tableApiURL is required (set in config.yaml or TABLE_API_URL)")
	}
	if strings.TrimSpace(cfg.TableAPIKey) == "" {
		return errors.New("config: tableApiKey is required (set in config.yaml or TABLE_API_KEY)")
	}
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		return errors.New("config: redisAddr is required for rate limiting and the session cache")
	}
	if cfg.LoginRateLimitPerMinute < 0 || cfg.SignupRateLimitPerMinute < 0 ||
		cfg.VerifyRateLimitPerMinute < 0 || cfg.SeedRateLimitPerMinute < 0 {
		return errors.New("config: rate limits must be >= 0")
	}
	return nil
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

// ParseSessionTTL parses the optional session TTL duration string.
func ParseSessionTTL(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	dur, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid sessionTTL duration: %w", err)
	}
	return dur, nil
}

// ParseJWTLeeway parses the optional JWT leeway duration string.
func ParseJWTLeeway(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	dur, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid jwtLeeway duration: %w", err)
	}
	return dur, nil
}
