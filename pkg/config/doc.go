// Package config loads environment-based configuration structs.
//
// Each component of the application declares its own Config struct with
// `env` tags and loads it through Load or MustLoad. A .env file is read
// once per process if present, so local development does not require
// exporting variables manually.
//
//	type Config struct {
//		AppURL string `env:"APP_URL,required"`
//		Debug  bool   `env:"DEBUG" envDefault:"false"`
//	}
//
//	var cfg Config
//	config.MustLoad(&cfg)
//
// Loaded values are cached per struct type, so repeated Load calls for the
// same type are cheap and always return the same snapshot.
package config
