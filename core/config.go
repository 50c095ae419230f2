package core

import (
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Address         string
		DebugHost       string
		ReadTimeout     time.Duration
		WriteTimeout    time.Duration
		ShutdownTimeout time.Duration
		CORSOrigins     []string
	}

	DatabaseConfig struct {
		Engine        string // memory | postgres
		Host          string
		Port          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		Name          string
		DisableTLS    bool
	}

	CanvasConfig struct {
		BaseURL        string
		AccessToken    string
		PerPage        int
		Concurrency    int
		Timeout        time.Duration
		DefaultCredits float64
	}

	EmailConfig struct {
		DefaultFromEmail string
		StudentEmail     string
		SendgridAPIKey   string
	}

	ReminderConfig struct {
		Lead   time.Duration
		Window time.Duration
	}

	Config struct {
		AppName      string
		Build        string
		Env          string // DEV (local; default), TEST, QA, PROD
		Debug        bool
		TestMode     bool
		WorkDir      string
		RollbarToken string

		Server   ServerConfig
		Database DatabaseConfig
		Canvas   CanvasConfig
		Email    EmailConfig
		Reminder ReminderConfig
	}
)

// Address returns the database "host:port".
func (dc DatabaseConfig) Address() string {
	return net.JoinHostPort(dc.Host, dc.Port)
}

// IsConfigured reports whether both Canvas credentials are set.
func (cc CanvasConfig) IsConfigured() bool {
	return cc.BaseURL != "" && cc.AccessToken != ""
}

func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("appName", "School Organizer")
	v.SetDefault("build", "develop")
	v.SetDefault("rollbarToken", "")

	v.SetDefault("server.address", ":3001")
	v.SetDefault("server.debugHost", ":4001")
	v.SetDefault("server.readTimeout", 5*time.Second)
	v.SetDefault("server.writeTimeout", 30*time.Second)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.corsOrigins", []string{"*"})

	v.SetDefault("database.engine", "memory")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "organizer")
	v.SetDefault("database.password", "organizer")
	v.SetDefault("database.adminUser", "")
	v.SetDefault("database.adminPassword", "")
	v.SetDefault("database.name", "organizer")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("canvas.baseURL", "")
	v.SetDefault("canvas.accessToken", "")
	v.SetDefault("canvas.perPage", 50)
	v.SetDefault("canvas.concurrency", 4)
	v.SetDefault("canvas.timeout", 30*time.Second)
	v.SetDefault("canvas.defaultCredits", 3.0)

	v.SetDefault("email.defaultFromEmail", "noreply@localhost")
	v.SetDefault("email.studentEmail", "")
	v.SetDefault("email.sendgridAPIKey", "")

	v.SetDefault("reminder.lead", time.Hour)
	v.SetDefault("reminder.window", 15*time.Minute)

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	wd, err := os.Getwd()
	if err != nil {
		log.Fatalf("config.os.Getwd: %v", err)
	}
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		AppName:      v.GetString("appName"),
		Build:        v.GetString("build"),
		Env:          env,
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		WorkDir:      wd,
		RollbarToken: v.GetString("rollbarToken"),
		Server: ServerConfig{
			Address:         v.GetString("server.address"),
			DebugHost:       v.GetString("server.debugHost"),
			ReadTimeout:     v.GetDuration("server.readTimeout"),
			WriteTimeout:    v.GetDuration("server.writeTimeout"),
			ShutdownTimeout: v.GetDuration("server.shutdownTimeout"),
			CORSOrigins:     v.GetStringSlice("server.corsOrigins"),
		},
		Database: DatabaseConfig{
			Engine:        strings.ToLower(v.GetString("database.engine")),
			Host:          v.GetString("database.host"),
			Port:          v.GetString("database.port"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			Name:          v.GetString("database.name"),
			DisableTLS:    v.GetBool("database.disableTLS"),
		},
		Canvas: CanvasConfig{
			BaseURL:        strings.TrimRight(v.GetString("canvas.baseURL"), "/"),
			AccessToken:    v.GetString("canvas.accessToken"),
			PerPage:        v.GetInt("canvas.perPage"),
			Concurrency:    v.GetInt("canvas.concurrency"),
			Timeout:        v.GetDuration("canvas.timeout"),
			DefaultCredits: v.GetFloat64("canvas.defaultCredits"),
		},
		Email: EmailConfig{
			DefaultFromEmail: v.GetString("email.defaultFromEmail"),
			StudentEmail:     v.GetString("email.studentEmail"),
			SendgridAPIKey:   v.GetString("email.sendgridAPIKey"),
		},
		Reminder: ReminderConfig{
			Lead:   v.GetDuration("reminder.lead"),
			Window: v.GetDuration("reminder.window"),
		},
	}
}
