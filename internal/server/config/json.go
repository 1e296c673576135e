package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/mini-page/Secura/internal/flagx"
	"github.com/mini-page/Secura/internal/timex"
)

// JsonConfig is an intermediate DTO used only for reading JSON configuration
// files. It uses timex.Duration for lifetime fields, which parses both
// string values such as "8h" and integer nanoseconds. After unmarshalling,
// non-zero fields are copied into the runtime Config.
type JsonConfig struct {
	EndpointAddr               string         `json:"endpoint_addr"`
	DatabaseDSN                string         `json:"database_dsn"`
	JWTSecret                  string         `json:"jwt_secret"`
	TokenValidityDuration      timex.Duration `json:"token_validity_duration"`
	GuestTokenValidityDuration timex.Duration `json:"guest_token_validity_duration"`
	MasterKeyFile              string         `json:"master_key_file"`
	MaxUploadBytes             int64          `json:"max_upload_bytes"`
	StorageBackend             string         `json:"storage_backend"`
	StorageLocalPath           string         `json:"storage_local_path"`
	S3Bucket                   string         `json:"s3_bucket"`
	S3Region                   string         `json:"s3_region"`
	S3AccessKey                string         `json:"s3_access_key"`
	S3SecretKey                string         `json:"s3_secret_key"`
	S3BaseEndpoint             string         `json:"s3_base_endpoint"`
}

// parseJson loads configuration values from the JSON file given via the
// -c or -config flags. When no file is specified, nothing is loaded. A file
// that cannot be read or parsed panics, since running with half-applied
// configuration is worse than not starting.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}

	setString(&config.EndpointAddr, c.EndpointAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.JWTSecret, c.JWTSecret)
	setString(&config.MasterKeyFile, c.MasterKeyFile)
	setString(&config.StorageBackend, c.StorageBackend)
	setString(&config.StorageLocalPath, c.StorageLocalPath)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3AccessKey, c.S3AccessKey)
	setString(&config.S3SecretKey, c.S3SecretKey)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)

	if c.TokenValidityDuration.Duration != 0 {
		config.TokenValidityDuration = time.Duration(c.TokenValidityDuration.Duration)
	}
	if c.GuestTokenValidityDuration.Duration != 0 {
		config.GuestTokenValidityDuration = time.Duration(c.GuestTokenValidityDuration.Duration)
	}
	if c.MaxUploadBytes != 0 {
		config.MaxUploadBytes = c.MaxUploadBytes
	}
}
