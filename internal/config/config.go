// Package config provides functionality for managing configuration options
// for the application using command-line flags, environment variables, and
// an optional JSON config file.
package config

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"strconv"
)

// Options holds the configuration values for the application.
type Options struct {
	// Address defines the server's listening address (ip:port).
	Address string

	// DatabaseDSN holds the PostgreSQL connection string. When empty the
	// file-backed account store is used instead.
	DatabaseDSN string

	// StoreFile is the path to the account store file.
	StoreFile string

	// EncryptionKey is the operator secret for password encryption at
	// rest. Empty disables encryption.
	EncryptionKey string

	// TrainingURL is the page the automation driver opens before saving.
	TrainingURL string

	// SaveURL is the endpoint the automation driver submits credentials to.
	SaveURL string

	// PageTimeout bounds each automation request, in milliseconds.
	PageTimeout int

	// MaxRetries bounds whole-flow registration attempts.
	MaxRetries int

	// LockTimeout bounds store lock acquisition, in milliseconds.
	LockTimeout int

	// Config is the path to the config file.
	Config string
}

// options holds the current configuration values.
var options = &Options{}

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.Address, "a", "localhost:8080", "run on ip:port server")
	flag.StringVar(&options.DatabaseDSN, "d", "", "db address")
	flag.StringVar(&options.StoreFile, "f", "accounts.json", "path to account store file")
	flag.StringVar(&options.TrainingURL, "training-url", "https://m.vten.ru/training/battle", "training page url")
	flag.StringVar(&options.SaveURL, "save-url", "https://m.vten.ru/user/save", "character save url")
	flag.IntVar(&options.PageTimeout, "page-timeout", 30000, "automation request timeout, ms")
	flag.IntVar(&options.MaxRetries, "max-retries", 3, "registration attempts")
	flag.IntVar(&options.LockTimeout, "lock-timeout", 5000, "store lock timeout, ms")
	flag.StringVar(&options.Config, "config", "config.json", "path to config file")
	flag.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
}

// Parse parses the command-line flags, the config file, and environment
// variables to set configuration values. It returns a pointer to the
// Options struct containing the parsed configuration values.
func Parse() *Options {
	flag.Parse()

	// Override flags with environment variables if set
	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				log.Fatalf("error while reading config file: %v", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				log.Fatalf("error while parsing config file: %v", err)
			}
		}
	}

	if serverAddress := os.Getenv("SERVER_ADDRESS"); serverAddress != "" {
		options.Address = serverAddress
	}
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		options.DatabaseDSN = dsn
	}
	if storeFile := os.Getenv("STORE_FILE"); storeFile != "" {
		options.StoreFile = storeFile
	}
	if key := os.Getenv("ENCRYPTION_KEY"); key != "" {
		options.EncryptionKey = key
	}
	if timeout := os.Getenv("VTEN_PAGE_TIMEOUT"); timeout != "" {
		if v, err := strconv.Atoi(timeout); err == nil {
			options.PageTimeout = v
		}
	}
	if retries := os.Getenv("VTEN_MAX_RETRIES"); retries != "" {
		if v, err := strconv.Atoi(retries); err == nil {
			options.MaxRetries = v
		}
	}
	if lockTimeout := os.Getenv("STORE_LOCK_TIMEOUT"); lockTimeout != "" {
		if v, err := strconv.Atoi(lockTimeout); err == nil {
			options.LockTimeout = v
		}
	}

	return options
}
