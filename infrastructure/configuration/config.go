package configuration

import (
	"fmt"
	"os"
	"strconv"

	"yt-channel-report/infrastructure/logger"

	"github.com/spf13/viper"
)

type Config struct {
	App         App         `json:"app"`
	YouTube     YouTube     `json:"youtube"`
	Report      Report      `json:"report"`
	GoogleSheet GoogleSheet `json:"googleSheet"`
	Database    Database    `json:"database"`
	RedisClient RedisClient `json:"redisClient"`
	Pubsub      Pubsub      `json:"pubsub"`
	ServiceBus  ServiceBus  `json:"serviceBus"`
	Logger      Logger      `json:"logger"`
}

type App struct {
	Port        int      `json:"port"`
	SecretKey   string   `json:"secretKey"`
	CORSOrigins []string `json:"corsOrigins"`
}

type YouTube struct {
	APIKey       string `json:"apiKey"`
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
	RedirectURI  string `json:"redirectURI"`
	// Endpoint overrides the Data API base URL, e.g. for a local fake.
	Endpoint string `json:"endpoint"`
	// WebHost is the only host accepted in channel URLs.
	WebHost string `json:"webHost"`
}

type Report struct {
	FileName            string `json:"fileName"`
	Format              string `json:"format"`
	MaxVideos           int64  `json:"maxVideos"`
	MaxVideosLimit      int64  `json:"maxVideosLimit"`
	MaxComments         int    `json:"maxComments"`
	KeepPartialComments bool   `json:"keepPartialComments"`
	OutputDir           string `json:"outputDir"`
}

type GoogleSheet struct {
	SpreadsheetId   string `json:"spreadsheetId"`
	CredentialsFile string `json:"credentialsFile"`
}

type Database struct {
	Psql Db `json:"psql"`
}

type Db struct {
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	SSLMode  string `json:"sslMode"`
}

type RedisClient struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Password string `json:"password"`
	Username string `json:"username"`
	DB       int    `json:"db"`
}

type Pubsub struct {
	ProjectID string `json:"projectID"`
	Topic     string `json:"topic"`
}

type ServiceBus struct {
	Namespace        string `json:"namespace"`
	ConnectionString string `json:"connectionString"`
	Queue            string `json:"queue"`
}

type Logger struct {
	Format string `json:"format"`
	Level  string `json:"level"`
}

var C Config

func init() {
	LoadConfig()
}

func setDefaults() {
	viper.SetDefault("app.port", 10001)
	viper.SetDefault("youtube.webHost", "www.youtube.com")
	viper.SetDefault("report.fileName", "youtube_data.xlsx")
	viper.SetDefault("report.format", "xlsx")
	viper.SetDefault("report.maxVideos", 50)
	viper.SetDefault("report.maxVideosLimit", 500)
	viper.SetDefault("report.maxComments", 100)
	viper.SetDefault("pubsub.topic", "report-completed")
	viper.SetDefault("serviceBus.queue", "report-completed")
	viper.SetDefault("logger.format", "json")
	viper.SetDefault("logger.level", "info")
}

// LoadConfig reads config.json (or config-<ENV>.json) into C and applies env overrides
func LoadConfig() {
	name := getConfig()
	setDefaults()
	viper.SetConfigName(name)
	viper.SetConfigType("json")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")
	viper.AddConfigPath("../../")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.GetLogger().WithField("config", name).Debug("Config file not found, using defaults and environment")
		} else {
			logger.GetLogger().WithField("error", err).Error("Error reading config file")
		}
	}

	C = Config{}
	if err := viper.Unmarshal(&C); err != nil {
		logger.GetLogger().WithField("error", err).Error("Viper unable to decode into struct")
	}
	initApp(&C)
	initReport(&C)
	initDatabase(&C)
	initRedis(&C)
	logger.Configure(C.Logger.Format, C.Logger.Level)
}

func getConfig() string {
	name := "config"
	env := os.Getenv("ENV")
	if env != "" {
		name = fmt.Sprintf("%s-%s", name, env)
	}
	return name
}

func initApp(C *Config) {
	if v := os.Getenv("SECRET_KEY"); v != "" {
		C.App.SecretKey = v
	}
	// APP_PORT -> PORT -> config -> default
	if v := os.Getenv("APP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	} else if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	}
	if C.App.Port == 0 {
		C.App.Port = 10001
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		C.Logger.Format = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		C.Logger.Level = v
	}
}

func initReport(C *Config) {
	C.Report.FileName = getConfigValue(C.Report.FileName, "REPORT_FILE_NAME", "youtube_data.xlsx")
	C.Report.Format = getConfigValue(C.Report.Format, "REPORT_FORMAT", "xlsx")
	if v := os.Getenv("REPORT_MAX_VIDEOS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			C.Report.MaxVideos = n
		}
	}
	if C.Report.MaxVideos <= 0 {
		C.Report.MaxVideos = 50
	}
	if v := os.Getenv("REPORT_MAX_VIDEOS_LIMIT"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			C.Report.MaxVideosLimit = n
		}
	}
	if C.Report.MaxVideosLimit <= 0 {
		C.Report.MaxVideosLimit = 500
	}
	if C.Report.MaxComments <= 0 || C.Report.MaxComments > 100 {
		C.Report.MaxComments = 100
	}
	if v := os.Getenv("REPORT_KEEP_PARTIAL_COMMENTS"); v != "" {
		switch v {
		case "1", "true", "TRUE", "True":
			C.Report.KeepPartialComments = true
		case "0", "false", "FALSE", "False":
			C.Report.KeepPartialComments = false
		}
	}
	C.GoogleSheet.SpreadsheetId = getConfigValue(C.GoogleSheet.SpreadsheetId, "GOOGLE_SHEET_ID", "")
	C.GoogleSheet.CredentialsFile = getConfigValue(C.GoogleSheet.CredentialsFile, "GOOGLE_APPLICATION_CREDENTIALS", "")
	C.Pubsub.ProjectID = getConfigValue(C.Pubsub.ProjectID, "PUBSUB_PROJECT_ID", "")
	C.Pubsub.Topic = getConfigValue(C.Pubsub.Topic, "PUBSUB_TOPIC", "report-completed")
	C.ServiceBus.Namespace = getConfigValue(C.ServiceBus.Namespace, "SERVICEBUS_NAMESPACE", "")
	C.ServiceBus.ConnectionString = getConfigValue(C.ServiceBus.ConnectionString, "SERVICEBUS_CONNECTION_STRING", "")
	C.ServiceBus.Queue = getConfigValue(C.ServiceBus.Queue, "SERVICEBUS_QUEUE", "report-completed")
}

func initDatabase(C *Config) {
	C.Database.Psql.Name = getConfigValue(C.Database.Psql.Name, "DB_NAME", "")
	C.Database.Psql.Host = getConfigValue(C.Database.Psql.Host, "DB_HOST", "")
	C.Database.Psql.Port = getConfigValue(C.Database.Psql.Port, "DB_PORT", "5432")
	C.Database.Psql.User = getConfigValue(C.Database.Psql.User, "DB_USER", "")
	C.Database.Psql.Password = getConfigValue(C.Database.Psql.Password, "DB_PASSWORD", "")
	C.Database.Psql.SSLMode = getConfigValue(C.Database.Psql.SSLMode, "DB_SSLMODE", "disable")
}

func initRedis(C *Config) {
	C.RedisClient.Host = getConfigValue(C.RedisClient.Host, "REDIS_HOST", "")
	C.RedisClient.Port = getConfigValue(C.RedisClient.Port, "REDIS_PORT", "6379")
	C.RedisClient.Password = getConfigValue(C.RedisClient.Password, "REDIS_PASSWORD", "")
}

// PostgresEnabled reports whether enough is configured to open the archive database
func (c Config) PostgresEnabled() bool {
	return c.Database.Psql.Host != "" && c.Database.Psql.Name != ""
}

// RedisEnabled reports whether the channel cache should be used
func (c Config) RedisEnabled() bool {
	return c.RedisClient.Host != ""
}

// ServiceBusEnabled reports whether completion events should be sent to Service Bus
func (c Config) ServiceBusEnabled() bool {
	return c.ServiceBus.Namespace != "" || c.ServiceBus.ConnectionString != ""
}

// PubsubEnabled reports whether completion events should be published
func (c Config) PubsubEnabled() bool {
	return c.Pubsub.ProjectID != ""
}
