// internal/config/config.go
package config

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	FrontendURL string `mapstructure:"frontend_url"`
}

type JWTConfig struct {
	SecretKey          string `mapstructure:"secret_key"`
	Algorithm          string `mapstructure:"algorithm"`
	AccessTokenTTLMins int    `mapstructure:"access_token_ttl_minutes"`
}

// AccessTokenTTL は分単位の設定値を time.Duration に変換して返します
func (c JWTConfig) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenTTLMins) * time.Minute
}

type MailerConfig struct {
	Provider string `mapstructure:"provider"` // "log" | "smtp" | "ses"
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Login    string `mapstructure:"login"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type SESConfig struct {
	Region          string `mapstructure:"region"`
	AuthType        string `mapstructure:"auth_type"` // "static_credentials" | "iam_role"
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	From            string `mapstructure:"from"`
}

type FetchConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// Timeout は外部ページ取得のタイムアウトを返します
func (c FetchConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	App      AppConfig      `mapstructure:"app"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Mailer   MailerConfig   `mapstructure:"mailer"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	SES      SESConfig      `mapstructure:"ses"`
	Fetch    FetchConfig    `mapstructure:"fetch"`
	CORS     CORSConfig     `mapstructure:"cors"`
}

var Cfg Config

// LoadConfig は configs ディレクトリの config.yaml と環境変数から設定を読み込みます。
// 秘密情報 (DB URL, JWT秘密鍵, SMTPパスワード等) は環境変数での上書きを想定。
func LoadConfig(path string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(path)
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("APP")
	viper.AutomaticEnv()
	// 環境変数との明示的な紐付け
	viper.BindEnv("database.url", "DATABASE_URL")
	viper.BindEnv("jwt.secret_key", "JWT_SECRET_KEY")
	viper.BindEnv("smtp.login", "SMTP_LOGIN")
	viper.BindEnv("smtp.password", "SMTP_PASSWORD")
	viper.BindEnv("smtp.host", "SMTP_HOST")
	viper.BindEnv("smtp.port", "SMTP_PORT")
	viper.BindEnv("smtp.from", "SMTP_FROM_EMAIL")
	viper.BindEnv("ses.access_key_id", "AWS_ACCESS_KEY_ID")
	viper.BindEnv("ses.secret_access_key", "AWS_SECRET_ACCESS_KEY")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("Warning: Config file not found. Using defaults and environment variables.")
		} else {
			return nil, fmt.Errorf("config.LoadConfig: reading config file: %w", err)
		}
	}

	if err := viper.Unmarshal(&Cfg); err != nil {
		return nil, fmt.Errorf("config.LoadConfig: unmarshalling config: %w", err)
	}

	// --- デフォルト値の設定 ---
	if Cfg.Server.Port == "" {
		Cfg.Server.Port = ":8080"
	}
	if Cfg.App.Name == "" {
		Cfg.App.Name = "feedback-hub"
	}
	if Cfg.JWT.Algorithm == "" {
		Cfg.JWT.Algorithm = "HS256"
	}
	if Cfg.JWT.AccessTokenTTLMins <= 0 {
		Cfg.JWT.AccessTokenTTLMins = 60
	}
	if Cfg.Mailer.Provider == "" {
		Cfg.Mailer.Provider = "log"
	}
	if Cfg.Fetch.TimeoutSeconds <= 0 {
		Cfg.Fetch.TimeoutSeconds = 5
	}

	// 必須項目のチェック
	if Cfg.JWT.SecretKey == "" {
		return nil, fmt.Errorf("config.LoadConfig: jwt.secret_key is required (set JWT_SECRET_KEY)")
	}
	if Cfg.Database.URL == "" {
		log.Println("Warning: Database URL is not set in config.")
	}

	log.Println("Config loaded successfully")
	return &Cfg, nil
}
