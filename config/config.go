// config/config.go
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// --- Sub-configs, mirroring the YAML layout ---

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"readTimeout"`
	WriteTimeout    time.Duration `mapstructure:"writeTimeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
	CORSOrigins     []string      `mapstructure:"corsOrigins"`
}

type StoreConfig struct {
	Driver string `mapstructure:"driver"` // mongo | memory
}

type MongoConfig struct {
	URI              string        `mapstructure:"uri"`
	Username         string        `mapstructure:"username"`
	Password         string        `mapstructure:"password"`
	Host             string        `mapstructure:"host"`
	DBName           string        `mapstructure:"dbName"`
	Collection       string        `mapstructure:"collection"`
	ConnectTimeout   time.Duration `mapstructure:"connectTimeout"`
	OperationTimeout time.Duration `mapstructure:"operationTimeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json | text
}

type S3Config struct {
	Bucket           string `mapstructure:"bucket"`
	Region           string `mapstructure:"region"`
	AccessKeyID      string `mapstructure:"accessKeyID"`
	SecretAccessKey  string `mapstructure:"secretAccessKey"`
	CloudFrontDomain string `mapstructure:"cloudFrontDomain"`
	Prefix           string `mapstructure:"prefix"`
}

// Enabled reports whether ride snapshot exports should be wired.
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	SampleRatio float64 `mapstructure:"sampleRatio"`
}

// --- Root config ---

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Store   StoreConfig   `mapstructure:"store"`
	Mongo   MongoConfig   `mapstructure:"mongo"`
	Log     LogConfig     `mapstructure:"log"`
	S3      S3Config      `mapstructure:"s3"`
	Tracing TracingConfig `mapstructure:"tracing"`
}

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

// LoadConfig reads config.yaml from path (if present) and overrides it with
// environment variables.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	setDefaults(v)

	v.AutomaticEnv()

	// The first env name wins when several are set.
	v.BindEnv("server.port", "SERVER_PORT", "PORT")
	v.BindEnv("server.mode", "GIN_MODE")
	v.BindEnv("server.corsOrigins", "CORS_ORIGINS")
	v.BindEnv("store.driver", "STORE_DRIVER")
	v.BindEnv("mongo.uri", "MONGO_URI")
	v.BindEnv("mongo.username", "MONGO_USERNAME", "SERVER_NAME")
	v.BindEnv("mongo.password", "MONGO_PASSWORD", "DB_PASSWORD")
	v.BindEnv("mongo.host", "MONGO_HOST")
	v.BindEnv("mongo.dbName", "MONGO_DBNAME")
	v.BindEnv("mongo.collection", "MONGO_COLLECTION")
	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("log.format", "LOG_FORMAT")
	v.BindEnv("s3.bucket", "S3_BUCKET")
	v.BindEnv("s3.region", "S3_REGION")
	v.BindEnv("s3.accessKeyID", "S3_ACCESS_KEY_ID")
	v.BindEnv("s3.secretAccessKey", "S3_SECRET_ACCESS_KEY")
	v.BindEnv("s3.cloudFrontDomain", "S3_CLOUDFRONT_DOMAIN")
	v.BindEnv("s3.prefix", "S3_PREFIX")
	v.BindEnv("tracing.endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT")

	// A missing config.yaml is fine, env and defaults still apply.
	if err = v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return config, fmt.Errorf("read config: %w", err)
		}
		err = nil
	}

	if err = v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("decode config: %w", err)
	}

	config.Store.Driver = strings.ToLower(strings.TrimSpace(config.Store.Driver))
	config.Mongo.URI = config.Mongo.ConnectionURI()
	err = config.Validate()
	return
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "3000")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.readTimeout", "10s")
	v.SetDefault("server.writeTimeout", "10s")
	v.SetDefault("server.shutdownTimeout", "5s")
	v.SetDefault("server.corsOrigins", []string{"*"})
	v.SetDefault("store.driver", StoreMongo)
	v.SetDefault("mongo.host", "cluster0.nxlk7zr.mongodb.net")
	v.SetDefault("mongo.dbName", "taxi_service")
	v.SetDefault("mongo.collection", "rides")
	v.SetDefault("mongo.connectTimeout", "10s")
	v.SetDefault("mongo.operationTimeout", "5s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("s3.prefix", "exports")
	v.SetDefault("tracing.sampleRatio", 1.0)
}

// ConnectionURI returns URI when set, otherwise an Atlas SRV URI assembled
// from username, password and host. Empty when neither is available.
func (m MongoConfig) ConnectionURI() string {
	if m.URI != "" {
		return m.URI
	}
	if m.Username == "" || m.Password == "" || m.Host == "" {
		return ""
	}
	u := url.URL{
		Scheme:   "mongodb+srv",
		User:     url.UserPassword(m.Username, m.Password),
		Host:     m.Host,
		Path:     "/",
		RawQuery: "retryWrites=true&w=majority",
	}
	return u.String()
}

// Validate checks combinations viper cannot express.
func (c Config) Validate() error {
	var errs []error

	switch c.Store.Driver {
	case StoreMongo:
		if c.Mongo.URI == "" {
			errs = append(errs, errors.New("mongo store requires mongo.uri or mongo.username/password/host"))
		}
		if c.Mongo.DBName == "" {
			errs = append(errs, errors.New("mongo.dbName must not be empty"))
		}
		if c.Mongo.Collection == "" {
			errs = append(errs, errors.New("mongo.collection must not be empty"))
		}
	case StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown store.driver %q", c.Store.Driver))
	}

	if c.Server.Port == "" {
		errs = append(errs, errors.New("server.port must not be empty"))
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		errs = append(errs, fmt.Errorf("tracing.sampleRatio must be within [0,1], got %v", c.Tracing.SampleRatio))
	}

	return errors.Join(errs...)
}
