package config

import "time"

type SMSConfig struct {
	Provider string        `yaml:"provider"` // twilio, sns, none
	Twilio   *TwilioConfig `yaml:"twilio"`
	AWS      *AWSSNSConfig `yaml:"aws"`
	// DispatchNumbers receive a text for every High priority SOS alert.
	DispatchNumbers []string      `yaml:"dispatch_numbers"`
	SendTimeout     time.Duration `yaml:"send_timeout"`
}

type TwilioConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	FromNumber string `yaml:"from_number"`
}

type AWSSNSConfig struct {
	Region string `yaml:"region"`
}

func loadSMSConfig() *SMSConfig {
	return &SMSConfig{
		Provider: getEnv("SMS_PROVIDER", "none"),
		Twilio: &TwilioConfig{
			AccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
			FromNumber: getEnv("TWILIO_FROM_NUMBER", ""),
		},
		AWS: &AWSSNSConfig{
			Region: getEnv("AWS_REGION", "ap-south-1"),
		},
		DispatchNumbers: getEnvAsSlice("SOS_DISPATCH_NUMBERS", []string{}),
		SendTimeout:     getEnvAsDuration("SMS_SEND_TIMEOUT", 10*time.Second),
	}
}
