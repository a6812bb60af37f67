package config

import "time"

type ReportConfig struct {
	Title         string        `yaml:"title"`
	MaxImageWidth int           `yaml:"max_image_width"`
	FetchTimeout  time.Duration `yaml:"fetch_timeout"`
}

func loadReportConfig() *ReportConfig {
	return &ReportConfig{
		Title:         getEnv("REPORT_TITLE", "Crime Complaint Report"),
		MaxImageWidth: getEnvAsInt("REPORT_MAX_IMAGE_WIDTH", 1000),
		FetchTimeout:  getEnvAsDuration("REPORT_FETCH_TIMEOUT", 10*time.Second),
	}
}
