package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"clipforge/internal/compiler"
)

// Config is the full service configuration. Values come from an optional
// YAML file and may be overridden per field by environment variables, which
// is what deployments actually set.
type Config struct {
	HTTP      HTTPConfig       `yaml:"http"`
	Jobs      JobsConfig       `yaml:"jobs"`
	Templates TemplatesConfig  `yaml:"templates"`
	Storage   StorageConfig    `yaml:"storage"`
	Encoder   compiler.Options `yaml:"encoder"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

type JobsConfig struct {
	Dir string `yaml:"dir"`
}

// TemplatesConfig selects where templates live. Store is "file" or
// "postgres"; DatabaseURL is only consulted for the latter.
type TemplatesConfig struct {
	Store       string `yaml:"store"`
	Dir         string `yaml:"dir"`
	DatabaseURL string `yaml:"database_url"`
}

// StorageConfig configures optional publishing of finished renders.
// Provider is empty (serve from disk), "localfs" or "gdrive".
type StorageConfig struct {
	Provider       string `yaml:"provider"`
	LocalPath      string `yaml:"local_path"`
	GDriveFolderID string `yaml:"gdrive_folder_id"`
}

func defaults() Config {
	return Config{
		HTTP:      HTTPConfig{Addr: ":8000"},
		Jobs:      JobsConfig{Dir: "generated_clips"},
		Templates: TemplatesConfig{Store: "file", Dir: "templates"},
		Encoder:   compiler.DefaultOptions(),
	}
}

// Load builds the configuration from defaults, an optional YAML file at
// path (missing file is fine when path came from the default), then env
// overrides.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, err
			}
		case !os.IsNotExist(err):
			return Config{}, err
		}
	}

	cfg.HTTP.Addr = env("CLIPFORGE_HTTP_ADDR", cfg.HTTP.Addr)
	cfg.Jobs.Dir = env("CLIPFORGE_JOBS_DIR", cfg.Jobs.Dir)
	cfg.Templates.Store = env("CLIPFORGE_TEMPLATE_STORE", cfg.Templates.Store)
	cfg.Templates.Dir = env("CLIPFORGE_TEMPLATES_DIR", cfg.Templates.Dir)
	cfg.Templates.DatabaseURL = env("DATABASE_URL", cfg.Templates.DatabaseURL)
	cfg.Storage.Provider = env("STORAGE_PROVIDER", cfg.Storage.Provider)
	cfg.Storage.LocalPath = env("STORAGE_LOCAL_PATH", cfg.Storage.LocalPath)
	cfg.Storage.GDriveFolderID = env("GDRIVE_FOLDER_ID", cfg.Storage.GDriveFolderID)
	cfg.Encoder.Binary = env("FFMPEG_BINARY", cfg.Encoder.Binary)

	return cfg, nil
}

func env(k, def string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	return v
}
