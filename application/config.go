package application

// AppConfig provides an abstraction of the
// underlying encoding format for the configs.
type AppConfig interface {
	Load(file, encoding string) error
	Save() error
	GetPath() string
}

// CommonConfig is embedded by every application configuration. It carries
// the file path the config was loaded from, the encoding used to read and
// write it, and the logger settings.
type CommonConfig struct {
	Path     string        `toml:"-"`
	Logger   *LoggerConfig `toml:"logger"`
	Encoding string        `toml:"-"`
	loader   ConfigLoader
}

// NewCommonConfig initializes an application's config file path,
// its loader for the given encoding, and the logger configuration.
// Note: This constructor must be called in each Load() method
// implementation of an AppConfig.
func NewCommonConfig(file, encoding string, logger *LoggerConfig) *CommonConfig {
	if logger == nil {
		logger = DefaultLoggerConfig()
	}
	return &CommonConfig{
		Path:     file,
		Logger:   logger,
		Encoding: encoding,
		loader:   newConfigLoader(encoding),
	}
}

// GetLoader returns the config's loader.
func (conf *CommonConfig) GetLoader() ConfigLoader {
	return conf.loader
}

// SaveConfig writes conf with its own loader.
func SaveConfig(conf AppConfig) error {
	return conf.Save()
}
