package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Debug    bool
	TestMode bool
	Env      string // DEV (default), TEST, QA, PROD
	Build    string
	AppName  string

	DefaultFromEmail mail.Address
	SupportEmail     mail.Address
	SendgridAPIKey   string
	RollbarToken     string

	Backend struct {
		URL     string
		Timeout time.Duration
	}

	Server struct {
		Host            string
		DebugHost       string
		ShutdownTimeout time.Duration
		LoginRateBurst  int
		LoginRatePerSec int
	}

	Session struct {
		StorageKey  string
		StorageDir  string
		SettleDelay time.Duration
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}
}

// NewConfig loads defaults, an optional config/.env.<env> file and then
// environment variables (prefixed with the env name) into a Config.
func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	v.SetDefault("debug", true)
	v.SetDefault("build", "dev")
	v.SetDefault("appName", "Skiddy")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("supportEmail", "support@localhost")
	v.SetDefault("backendURL", "http://localhost:8090")
	v.SetDefault("backendTimeout", 30*time.Second)
	v.SetDefault("serverHost", "0.0.0.0:8000")
	v.SetDefault("serverDebugHost", "0.0.0.0:4000")
	v.SetDefault("serverShutdownTimeout", 5*time.Second)
	v.SetDefault("loginRateBurst", 5)
	v.SetDefault("loginRatePerSec", 1)
	v.SetDefault("sessionStorageKey", "pb_auth")
	v.SetDefault("sessionStorageDir", defaultStorageDir())
	v.SetDefault("sessionSettleDelay", 100*time.Millisecond)
	v.SetDefault("redisAddr", "")
	v.SetDefault("redisDB", 0)

	env := os.Getenv("ENV")
	if env == "" {
		env = "DEV"
	}
	if env == "TEST" {
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err = godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := &Config{
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("testMode"),
		Env:              env,
		Build:            v.GetString("build"),
		AppName:          v.GetString("appName"),
		DefaultFromEmail: mail.Address{Address: v.GetString("defaultFromEmail")},
		SupportEmail:     mail.Address{Address: v.GetString("supportEmail")},
		SendgridAPIKey:   v.GetString("sendgridAPIKey"),
		RollbarToken:     v.GetString("rollbarToken"),
	}
	conf.Backend.URL = strings.TrimRight(v.GetString("backendURL"), "/")
	conf.Backend.Timeout = v.GetDuration("backendTimeout")
	conf.Server.Host = v.GetString("serverHost")
	conf.Server.DebugHost = v.GetString("serverDebugHost")
	conf.Server.ShutdownTimeout = v.GetDuration("serverShutdownTimeout")
	conf.Server.LoginRateBurst = v.GetInt("loginRateBurst")
	conf.Server.LoginRatePerSec = v.GetInt("loginRatePerSec")
	conf.Session.StorageKey = v.GetString("sessionStorageKey")
	conf.Session.StorageDir = v.GetString("sessionStorageDir")
	conf.Session.SettleDelay = v.GetDuration("sessionSettleDelay")
	conf.Redis.Addr = v.GetString("redisAddr")
	conf.Redis.Password = v.GetString("redisPassword")
	conf.Redis.DB = v.GetInt("redisDB")
	return conf
}

func defaultStorageDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, "skiddy")
}
