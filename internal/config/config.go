package config

import (
	"fmt"
	"runtime"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/absfs/stegcrypt/filecipher"
	"github.com/absfs/stegcrypt/steg"
)

const (
	// DefaultMinPasswordLength is the shortest password accepted for
	// encryption if one is not configured.
	DefaultMinPasswordLength = 8

	// DefaultKDFIterations is the PBKDF2 iteration count used when
	// kdf.iterations is not set.
	DefaultKDFIterations = 100000
)

const (
	kdfPBKDF2   = "pbkdf2"
	kdfArgon2id = "argon2id"

	defaultArgon2Memory  = 64 * 1024
	defaultArgon2Time    = 3
	defaultArgon2Threads = 4
)

// Argon2Config contains Argon2id cost parameters.
type Argon2Config struct {
	Memory  uint32 // KiB
	Time    uint32
	Threads uint8
}

// KDFConfig selects and tunes the password key derivation function.
type KDFConfig struct {
	Algorithm  string
	Iterations int
	Hash       string
	Argon2     Argon2Config
}

// Config contains all settings for the stegcrypt tool.
type Config struct {
	LogLevel          uint32
	Cipher            filecipher.CipherSuite
	KDF               KDFConfig
	MaxScanBits       int
	MinPasswordLength int
	BatchWorkers      int
}

// new Viper to parse configuration file
func newViper() *viper.Viper {
	v := viper.New()
	return v
}

// NewDefaultConfig creates a new Config with default settings.
func NewDefaultConfig() *Config {
	config := &Config{}
	config.LogLevel = uint32(log.InfoLevel)
	config.Cipher = filecipher.CipherAES256GCM
	config.KDF.Algorithm = kdfPBKDF2
	config.KDF.Iterations = DefaultKDFIterations
	config.KDF.Hash = filecipher.SHA256.String()
	config.KDF.Argon2 = Argon2Config{
		Memory:  defaultArgon2Memory,
		Time:    defaultArgon2Time,
		Threads: defaultArgon2Threads,
	}
	config.MinPasswordLength = DefaultMinPasswordLength
	config.BatchWorkers = runtime.NumCPU()
	return config
}

// GetLogLevel converts the level string to its corresponding int value. It
// returns an error if the level is invalid.
func GetLogLevel(level string) (uint32, error) {
	var l uint32
	switch strings.ToLower(level) {
	case "debug":
		l = uint32(log.DebugLevel)
	case "info":
		l = uint32(log.InfoLevel)
	case "warn":
		l = uint32(log.WarnLevel)
	case "error":
		l = uint32(log.ErrorLevel)
	default:
		return 0, fmt.Errorf("invalid log.level setting %q", level)
	}
	return l, nil
}

// NewConfig creates a new Config with default settings and applies any
// settings from the given YAML file. An empty path yields the defaults; a
// path that cannot be read is an error.
func NewConfig(configFile string) (*Config, error) {
	config := NewDefaultConfig()
	if configFile == "" {
		return config, nil
	}

	v := newViper()
	v.SetConfigFile(configFile)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", configFile, err)
	}

	if v.IsSet("log.level") {
		level := v.GetString("log.level")
		levelInt, err := GetLogLevel(level)
		if err != nil {
			return nil, err
		}
		config.LogLevel = levelInt
	}

	if v.IsSet("cipher.suite") {
		suite, err := filecipher.ParseCipherSuite(v.GetString("cipher.suite"))
		if err != nil {
			return nil, err
		}
		config.Cipher = suite
	}

	if err := parseKDFConfig(config, v); err != nil {
		return nil, err
	}

	if v.IsSet("steg.max.scan.bits") {
		config.MaxScanBits = v.GetInt("steg.max.scan.bits")
	}

	if v.IsSet("password.min.length") {
		config.MinPasswordLength = v.GetInt("password.min.length")
	}

	if v.IsSet("batch.workers") {
		config.BatchWorkers = v.GetInt("batch.workers")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// parseKDFConfig parses the `kdf` section of a config file and populates the
// given Config.
func parseKDFConfig(config *Config, v *viper.Viper) error {
	if v.IsSet("kdf.algorithm") {
		config.KDF.Algorithm = strings.ToLower(v.GetString("kdf.algorithm"))
	}

	if v.IsSet("kdf.iterations") {
		config.KDF.Iterations = v.GetInt("kdf.iterations")
	}

	if v.IsSet("kdf.hash") {
		config.KDF.Hash = strings.ToLower(v.GetString("kdf.hash"))
	}

	if v.IsSet("kdf.argon2.memory") {
		config.KDF.Argon2.Memory = v.GetUint32("kdf.argon2.memory")
	}

	if v.IsSet("kdf.argon2.time") {
		config.KDF.Argon2.Time = v.GetUint32("kdf.argon2.time")
	}

	if v.IsSet("kdf.argon2.threads") {
		threads := v.GetUint("kdf.argon2.threads")
		if threads == 0 || threads > 255 {
			return fmt.Errorf("invalid kdf.argon2.threads setting %d", threads)
		}
		config.KDF.Argon2.Threads = uint8(threads)
	}

	return nil
}

// Validate checks settings that cannot be caught while parsing.
func (c *Config) Validate() error {
	switch c.KDF.Algorithm {
	case kdfPBKDF2:
		if c.KDF.Iterations < 1 {
			return fmt.Errorf("invalid kdf.iterations setting %d", c.KDF.Iterations)
		}
		if _, err := parseHash(c.KDF.Hash); err != nil {
			return err
		}
	case kdfArgon2id:
		if c.KDF.Argon2.Memory == 0 || c.KDF.Argon2.Time == 0 || c.KDF.Argon2.Threads == 0 {
			return fmt.Errorf("invalid kdf.argon2 settings %+v", c.KDF.Argon2)
		}
	default:
		return fmt.Errorf("invalid kdf.algorithm setting %q", c.KDF.Algorithm)
	}
	if c.MaxScanBits < 0 {
		return fmt.Errorf("invalid steg.max.scan.bits setting %d", c.MaxScanBits)
	}
	if c.MinPasswordLength < 1 {
		return fmt.Errorf("invalid password.min.length setting %d", c.MinPasswordLength)
	}
	if c.BatchWorkers < 1 {
		return fmt.Errorf("invalid batch.workers setting %d", c.BatchWorkers)
	}
	return nil
}

func parseHash(name string) (filecipher.HashFunc, error) {
	switch name {
	case "", filecipher.SHA256.String():
		return filecipher.SHA256, nil
	case filecipher.SHA512.String():
		return filecipher.SHA512, nil
	default:
		return 0, fmt.Errorf("invalid kdf.hash setting %q", name)
	}
}

// KeyDeriver builds the configured password KDF.
func (c *Config) KeyDeriver() (filecipher.KeyDeriver, error) {
	switch c.KDF.Algorithm {
	case kdfPBKDF2:
		hash, err := parseHash(c.KDF.Hash)
		if err != nil {
			return nil, err
		}
		return filecipher.NewPBKDF2(filecipher.PBKDF2Params{
			Iterations: c.KDF.Iterations,
			HashFunc:   hash,
		}), nil
	case kdfArgon2id:
		return filecipher.NewArgon2id(filecipher.Argon2idParams{
			Memory:      c.KDF.Argon2.Memory,
			Iterations:  c.KDF.Argon2.Time,
			Parallelism: c.KDF.Argon2.Threads,
		}), nil
	default:
		return nil, fmt.Errorf("invalid kdf.algorithm setting %q", c.KDF.Algorithm)
	}
}

// NewCipher builds a filecipher.Cipher from the cipher and kdf sections.
func (c *Config) NewCipher() (*filecipher.Cipher, error) {
	kdf, err := c.KeyDeriver()
	if err != nil {
		return nil, err
	}
	return filecipher.New(&filecipher.Config{Suite: c.Cipher, KDF: kdf})
}

// Codec returns the steganographic codec with the configured scan bound.
func (c *Config) Codec() steg.Codec {
	return steg.Codec{MaxScanBits: c.MaxScanBits}
}
