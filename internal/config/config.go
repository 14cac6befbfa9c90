package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Database     DatabaseConfig
	JWT          JWTConfig
	App          AppConfig
	Attendance   AttendanceConfig
	OAuth2Google OAuth2GoogleConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret            string
	RefreshExpiration string
	AccessExpiration  string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	FrontendURL string
}

// AttendanceConfig holds workday policy settings shared by all tenants.
type AttendanceConfig struct {
	WorkStartHour        int // hour of day work nominally begins
	GraceMinutes         int // check-ins within this window are still on time
	WorkdayEndHour       int // nominal end of the working day
	MaxHoursPerDay       float64
	DefaultCheckoutHours float64 // synthetic session length for late check-ins
	SweepInterval        string  // how often the auto-checkout job runs
}

type OAuth2GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

func Load() (*Config, error) {
	// .env is optional outside development
	_ = godotenv.Load()

	config := &Config{}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "teamtrack"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
	}

	config.JWT = JWTConfig{
		Secret:            getEnv("JWT_SECRET_KEY", ""),
		RefreshExpiration: getEnv("JWT_REFRESH_EXPIRATION_TIME", "168h"),
		AccessExpiration:  getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	workStartHour, err := strconv.Atoi(getEnv("ATTENDANCE_WORK_START_HOUR", "9"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_WORK_START_HOUR: %w", err)
	}
	graceMinutes, err := strconv.Atoi(getEnv("ATTENDANCE_GRACE_MINUTES", "15"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_GRACE_MINUTES: %w", err)
	}
	workdayEndHour, err := strconv.Atoi(getEnv("ATTENDANCE_WORKDAY_END_HOUR", "17"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_WORKDAY_END_HOUR: %w", err)
	}
	maxHours, err := strconv.ParseFloat(getEnv("ATTENDANCE_MAX_HOURS_PER_DAY", "12"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_MAX_HOURS_PER_DAY: %w", err)
	}
	defaultCheckoutHours, err := strconv.ParseFloat(getEnv("ATTENDANCE_DEFAULT_CHECKOUT_HOURS", "8"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_DEFAULT_CHECKOUT_HOURS: %w", err)
	}

	config.Attendance = AttendanceConfig{
		WorkStartHour:        workStartHour,
		GraceMinutes:         graceMinutes,
		WorkdayEndHour:       workdayEndHour,
		MaxHoursPerDay:       maxHours,
		DefaultCheckoutHours: defaultCheckoutHours,
		SweepInterval:        getEnv("ATTENDANCE_SWEEP_INTERVAL", "15m"),
	}

	config.OAuth2Google = OAuth2GoogleConfig{
		ClientID:     getEnv("CLIENT_ID", ""),
		ClientSecret: getEnv("CLIENT_SECRET", ""),
		RedirectURL:  getEnv("REDIRECT_URL", ""),
		Scopes:       getEnvSlice("SCOPES"),
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Attendance.WorkStartHour < 0 || c.Attendance.WorkStartHour > 23 {
		return fmt.Errorf("ATTENDANCE_WORK_START_HOUR must be between 0 and 23")
	}
	if c.Attendance.WorkdayEndHour <= c.Attendance.WorkStartHour || c.Attendance.WorkdayEndHour > 23 {
		return fmt.Errorf("ATTENDANCE_WORKDAY_END_HOUR must be after the start hour and at most 23")
	}
	if c.Attendance.MaxHoursPerDay <= 0 {
		return fmt.Errorf("ATTENDANCE_MAX_HOURS_PER_DAY must be positive")
	}
	if c.Attendance.DefaultCheckoutHours <= 0 {
		return fmt.Errorf("ATTENDANCE_DEFAULT_CHECKOUT_HOURS must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	return strings.Split(value, ",")
}
