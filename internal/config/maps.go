package config

import "time"

type MapsConfig struct {
	Provider   string            `yaml:"provider"` // google, none
	GoogleMaps *GoogleMapsConfig `yaml:"google_maps"`
	Timeout    time.Duration     `yaml:"timeout"`
}

type GoogleMapsConfig struct {
	APIKey string `yaml:"api_key"`
}

func loadMapsConfig() *MapsConfig {
	provider := "none"
	if getEnv("GOOGLE_MAPS_API_KEY", "") != "" {
		provider = "google"
	}

	return &MapsConfig{
		Provider: getEnv("MAPS_PROVIDER", provider),
		GoogleMaps: &GoogleMapsConfig{
			APIKey: getEnv("GOOGLE_MAPS_API_KEY", ""),
		},
		Timeout: getEnvAsDuration("MAPS_TIMEOUT", 3*time.Second),
	}
}
