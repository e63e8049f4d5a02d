package configuration

import (
	"fmt"
	"os"
	"strconv"

	"clipcast/infrastructure/logger"

	"github.com/spf13/viper"
)

type Config struct {
	Database    Database    `json:"database"`
	App         App         `json:"app"`
	Pubsub      Pubsub      `json:"pubsub"`
	ServiceBus  ServiceBus  `json:"serviceBus"`
	RedisClient RedisClient `json:"redisClient"`
	Dispatcher  Dispatcher  `json:"dispatcher"`
	Campaign    Campaign    `json:"campaign"`
}

type App struct {
	Port            int      `json:"port"`
	TLSEnabled      bool     `json:"tlsEnabled"`
	TLSCertFile     string   `json:"tlsCertFile"`
	TLSKeyFile      string   `json:"tlsKeyFile"`
	AnonymousUserID string   `json:"anonymousUserId"`
	AllowOrigins    []string `json:"allowOrigins"`
	// PublicBaseURL prefixes content links embedded in platform intents
	PublicBaseURL string `json:"publicBaseUrl"`
}

type Database struct {
	Psql  Db `json:"psql"`
	MySql Db `json:"mysql"`
	Mongo Db `json:"mongo"`
	Mssql Db `json:"mssql"`
}

type Db struct {
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	URI      string `json:"uri"`
}

type Pubsub struct {
	ProjectID string `json:"projectID"`
	Topic     string `json:"topic"`
}

type ServiceBus struct {
	Namespace string `json:"namespace"`
	Queue     string `json:"queue"`
}

type RedisClient struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Password string `json:"password"`
	Username string `json:"username"`
	DB       int    `json:"db"`
}

// Dispatcher controls the background loop that publishes due posts
type Dispatcher struct {
	IntervalSeconds int `json:"intervalSeconds"`
	BatchSize       int `json:"batchSize"`
}

type Campaign struct {
	CacheTTLSeconds int `json:"cacheTTLSeconds"`
}

var C Config

func init() {
	Reload()
}

// Reload rebuilds C from the config file and the current environment.
// main calls it again after env files are loaded.
func Reload() {
	C = Config{}
	LoadConfig()
	initDatabase(&C)
	initApp(&C)
	initMessaging(&C)
}

func LoadConfig() {
	name := getConfig()
	viper.SetConfigName(name)
	viper.SetConfigType("json")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")
	viper.AddConfigPath("../../")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.GetLogger().Warn("Config file not found")
		} else {
			logger.GetLogger().WithField("error", err).Error("Error reading config file")
		}
	}

	logger.GetLogger().WithField("config", name).Info("Config set up successfully")
	if err := viper.Unmarshal(&C); err != nil {
		logger.GetLogger().WithField("error", err).Error("Viper unable to decode into struct")
	}
}

func getConfig() string {
	name := "config"
	env := os.Getenv("ENV")
	if env != "" {
		name = fmt.Sprintf("%s-%s", name, env)
	}
	return name
}

func initDatabase(C *Config) {
	fillDb(&C.Database.Psql, "DB", Db{Host: "localhost", Port: "5432", User: "postgres", Name: "clipcast"})
	fillDb(&C.Database.MySql, "MYSQL", Db{Host: "localhost", Port: "3306", User: "root", Name: "clipcast"})
	// Local container defaults only; production passes MSSQL_* explicitly
	fillDb(&C.Database.Mssql, "MSSQL", Db{Host: "localhost", Port: "1433", User: "sa", Password: "Toughpass1!", Name: "clipcast"})

	if v := os.Getenv("MONGO_URI"); v != "" {
		C.Database.Mongo.URI = v
	}
	if C.Database.Mongo.Name == "" {
		C.Database.Mongo.Name = "clipcast"
	}
	logger.GetLogger().WithFields(map[string]interface{}{
		"psqlHost":  C.Database.Psql.Host,
		"mysqlHost": C.Database.MySql.Host,
		"mssqlHost": C.Database.Mssql.Host,
	}).Info("Database configuration")
}

// fillDb applies <PREFIX>_NAME/_HOST/_PORT/_USER/_PASSWORD over empty fields, then defaults
func fillDb(db *Db, prefix string, defaults Db) {
	set := func(field *string, key, def string) {
		if *field == "" {
			*field = os.Getenv(prefix + "_" + key)
		}
		if *field == "" {
			*field = def
		}
	}
	set(&db.Name, "NAME", defaults.Name)
	set(&db.Host, "HOST", defaults.Host)
	set(&db.Port, "PORT", defaults.Port)
	set(&db.User, "USER", defaults.User)
	set(&db.Password, "PASSWORD", defaults.Password)
}

func initApp(C *Config) {
	// Port resolution order (env overrides config): APP_PORT -> PORT -> config -> default 10001
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
	if v := os.Getenv("TLS_ENABLED"); v != "" {
		switch v {
		case "1", "true", "TRUE", "True":
			C.App.TLSEnabled = true
		case "0", "false", "FALSE", "False":
			C.App.TLSEnabled = false
		}
	}
	if C.App.TLSCertFile == "" {
		C.App.TLSCertFile = os.Getenv("TLS_CERT_FILE")
	}
	if C.App.TLSKeyFile == "" {
		C.App.TLSKeyFile = os.Getenv("TLS_KEY_FILE")
	}
	if v := os.Getenv("ANONYMOUS_USER_ID"); v != "" {
		C.App.AnonymousUserID = v
	}
	if C.App.AnonymousUserID == "" {
		C.App.AnonymousUserID = "anonymous"
	}
	if v := os.Getenv("PUBLIC_BASE_URL"); v != "" {
		C.App.PublicBaseURL = v
	}
	if C.App.PublicBaseURL == "" {
		C.App.PublicBaseURL = fmt.Sprintf("http://localhost:%d", C.App.Port)
	}
	if len(C.App.AllowOrigins) == 0 {
		C.App.AllowOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}

	C.Dispatcher.IntervalSeconds = envInt("DISPATCH_INTERVAL_SECONDS", C.Dispatcher.IntervalSeconds, 15)
	C.Dispatcher.BatchSize = envInt("DISPATCH_BATCH_SIZE", C.Dispatcher.BatchSize, 25)
	C.Campaign.CacheTTLSeconds = envInt("CAMPAIGN_CACHE_TTL_SECONDS", C.Campaign.CacheTTLSeconds, 300)
}

func initMessaging(C *Config) {
	if v := os.Getenv("PUBSUB_PROJECT_ID"); v != "" {
		C.Pubsub.ProjectID = v
	}
	if v := os.Getenv("PUBSUB_TOPIC"); v != "" {
		C.Pubsub.Topic = v
	}
	if C.Pubsub.Topic == "" {
		C.Pubsub.Topic = "campaign-events"
	}
	if v := os.Getenv("SERVICEBUS_NAMESPACE"); v != "" {
		C.ServiceBus.Namespace = v
	}
	if v := os.Getenv("SERVICEBUS_QUEUE"); v != "" {
		C.ServiceBus.Queue = v
	}
	if C.ServiceBus.Queue == "" {
		C.ServiceBus.Queue = "post-dispatch"
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		C.RedisClient.Host = v
	}
	if v := os.Getenv("REDIS_PORT"); v != "" {
		C.RedisClient.Port = v
	}
	if v := os.Getenv("REDIS_USERNAME"); v != "" {
		C.RedisClient.Username = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		C.RedisClient.Password = v
	}
	if C.RedisClient.Host == "" {
		C.RedisClient.Host = "localhost"
	}
	if C.RedisClient.Port == "" {
		C.RedisClient.Port = "6379"
	}
}

// envInt returns the env value when set and positive, else current when positive, else def
func envInt(key string, current, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	if current > 0 {
		return current
	}
	return def
}
