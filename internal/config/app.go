package config

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/kelseyhightower/envconfig"
)

// Кому отправлять уведомление «почти заполнено».
const (
	AlmostFullHolders = "holders"
	AlmostFullOthers  = "others"
)

type App struct {
	ServiceName string `envconfig:"SERVICE_NAME" default:"golf-club-core"`

	// Network
	GRPCAddr string `envconfig:"CORE_GRPC_ADDR" default:":50051"`
	HTTPAddr string `envconfig:"CORE_HTTP_ADDR" default:":8080"`

	// JWT
	JWTSecret    string `envconfig:"JWT_SECRET" required:"true"`
	JWTExpireMin int    `envconfig:"JWT_EXPIRE_MIN" default:"720"`

	// Logging
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	// Пустой адрес — кэш в памяти процесса.
	RedisAddr     string        `envconfig:"REDIS_ADDR"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	RosterTTL     time.Duration `envconfig:"ROSTER_TTL" default:"5m"`

	// Брокеры уведомлений, пустое значение отключает отправку.
	AMQPURL       string `envconfig:"AMQP_URL"`
	AMQPExchange  string `envconfig:"AMQP_EXCHANGE" default:"golf.notifications"`
	MQTTBroker    string `envconfig:"MQTT_BROKER"`
	MQTTClientID  string `envconfig:"MQTT_CLIENT_ID" default:"golf-club-core"`
	MQTTTopicRoot string `envconfig:"MQTT_TOPIC_ROOT" default:"golf/members"`

	NotifyTimeout    time.Duration `envconfig:"NOTIFY_TIMEOUT" default:"5s"`
	AlmostFullTarget string        `envconfig:"ALMOST_FULL_AUDIENCE" default:"holders"`

	// Tracing
	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	OpenerInterval time.Duration `envconfig:"OPENER_INTERVAL" default:"1m"`

	// Часовой пояс клуба: даты в списках и табеле.
	TimeZone string `envconfig:"CLUB_TIMEZONE" default:"Asia/Seoul"`
}

func Load() (App, error) {
	var c App
	if err := envconfig.Process("", &c); err != nil {
		return c, err
	}
	switch c.AlmostFullTarget {
	case AlmostFullHolders, AlmostFullOthers:
	default:
		return c, fmt.Errorf("invalid ALMOST_FULL_AUDIENCE %q", c.AlmostFullTarget)
	}
	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		return c, fmt.Errorf("invalid CLUB_TIMEZONE %q: %w", c.TimeZone, err)
	}
	return c, nil
}
