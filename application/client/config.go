// Package client contains the configuration of the signing client
// executable.
package client

import (
	"time"

	"github.com/GiveMe1Star/digital-signature/application"
	"github.com/GiveMe1Star/digital-signature/utils"
)

// Defaults used by NewConfig.
const (
	DefaultAddress     = "http://localhost:8000"
	DefaultDownloadDir = "."
	DefaultDateLayout  = "2006-01-02 15:04:05"
)

// Config contains the client's configuration needed to talk to the
// signature service: the service's base address, where downloaded
// signatures and private keys are written, the transport timeout, and
// the layout used to display directory timestamps.
//
// A zero Timeout means the client does not enforce a deadline of its own.
// A relative DownloadDir is resolved against the config file's directory.
type Config struct {
	*application.CommonConfig

	Address     string   `toml:"address"`
	DownloadDir string   `toml:"download_dir"`
	Timeout     Duration `toml:"timeout,omitempty"`
	DateLayout  string   `toml:"date_layout,omitempty"`
}

var _ application.AppConfig = (*Config)(nil)

// NewConfig initializes a new client configuration at the
// given file path, with the given config encoding,
// service address and download directory.
func NewConfig(file, encoding string, addr, downloadDir string) *Config {
	var conf = Config{
		CommonConfig: application.NewCommonConfig(file, encoding, nil),
		Address:      addr,
		DownloadDir:  downloadDir,
		DateLayout:   DefaultDateLayout,
	}
	return &conf
}

// Load initializes a client's configuration from the given file
// using the given encoding.
func (conf *Config) Load(file, encoding string) error {
	conf.CommonConfig = application.NewCommonConfig(file, encoding, nil)
	if err := conf.GetLoader().Decode(conf); err != nil {
		return err
	}
	if conf.Address == "" {
		conf.Address = DefaultAddress
	}
	if conf.DownloadDir == "" {
		conf.DownloadDir = DefaultDownloadDir
	}
	if conf.DateLayout == "" {
		conf.DateLayout = DefaultDateLayout
	}
	conf.DownloadDir = utils.ResolvePath(conf.DownloadDir, file)
	return nil
}

// Save writes a client's configuration.
func (conf *Config) Save() error {
	return conf.GetLoader().Encode(conf)
}

// GetPath returns the client's configuration file path.
func (conf *Config) GetPath() string {
	return conf.Path
}

// Duration is a time.Duration read from and written to the config as a
// string such as "30s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}
