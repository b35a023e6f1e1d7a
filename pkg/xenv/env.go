package xenv

import (
	"fmt"

	"github.com/caarlos0/env/v8"
	"github.com/pkg/errors"
)

const envPrefix = "PINGPONG_"

// 传输方式
const (
	TransportTCP       = "tcp"
	TransportKCP       = "kcp"
	TransportWebsocket = "ws"
)

// Config 会话配置, 由Coordinator在构造时持有
type Config struct {
	MaxMessages   int    `env:"MAX_MESSAGES" envDefault:"10"` // 每个player的发送上限
	Host          string `env:"HOST" envDefault:"localhost"`
	Port          int    `env:"PORT" envDefault:"8080"`
	InitiatorName string `env:"INITIATOR_NAME" envDefault:"Initiator"`
	ResponderName string `env:"RESPONDER_NAME" envDefault:"Server"`
	Transport     string `env:"TRANSPORT" envDefault:"tcp"`
	QueueSize     int    `env:"QUEUE_SIZE" envDefault:"100"` // 单进程模式mailbox容量
	LogLevel      string `env:"LOG_LEVEL" envDefault:"debug"`
	LogJSON       bool   `env:"LOG_JSON" envDefault:"false"`
}

func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c Config) Validate() error {
	if c.MaxMessages < 0 {
		return fmt.Errorf("max messages %d is negative", c.MaxMessages)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("queue size %d must be positive", c.QueueSize)
	}
	if c.InitiatorName == "" || c.ResponderName == "" {
		return fmt.Errorf("player names must not be empty")
	}
	if c.InitiatorName == c.ResponderName {
		return fmt.Errorf("player names must differ, both are %q", c.InitiatorName)
	}
	switch c.Transport {
	case TransportTCP, TransportKCP, TransportWebsocket:
	default:
		return fmt.Errorf("unknown transport %q", c.Transport)
	}
	return nil
}

// Default 默认配置(不读取环境变量)
func Default() Config {
	c, err := LoadFrom(map[string]string{})
	if err != nil {
		panic(err)
	}
	return c
}

// Load 从进程环境变量加载
func Load() (Config, error) {
	var c Config
	if err := env.ParseWithOptions(&c, env.Options{Prefix: envPrefix}); err != nil {
		return c, errors.Wrap(err, "parse env")
	}
	return c, c.Validate()
}

// LoadFrom 从指定环境加载, 测试使用
func LoadFrom(environ map[string]string) (Config, error) {
	var c Config
	if err := env.ParseWithOptions(&c, env.Options{Prefix: envPrefix, Environment: environ}); err != nil {
		return c, errors.Wrap(err, "parse env")
	}
	return c, c.Validate()
}
