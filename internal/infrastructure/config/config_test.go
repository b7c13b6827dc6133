package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_ValidConfig(t *testing.T) {
	// Create a temporary config file
	content := `
storage:
  driver: "sqlite"
  database:
    path: "/tmp/test.db"
    wal_mode: true
    busy_timeout: 5
mqtt:
  broker:
    host: "localhost"
    port: 1883
    client_id: "test-client"
  qos: 1
api:
  host: "0.0.0.0"
  port: 8080
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Storage.Driver != StorageDriverSQLite {
		t.Errorf("Storage.Driver = %q, want %q", cfg.Storage.Driver, StorageDriverSQLite)
	}

	if cfg.Storage.Database.Path != "/tmp/test.db" {
		t.Errorf("Storage.Database.Path = %q, want %q", cfg.Storage.Database.Path, "/tmp/test.db")
	}

	if cfg.MQTT.Broker.Host != "localhost" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "localhost")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	content := `
storage:
  driver: "carrier-pigeon"
api:
  port: 8080
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected validation error for unknown storage driver, got nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name: "valid sqlite config",
			config: &Config{
				Storage: StorageConfig{
					Driver:   StorageDriverSQLite,
					Database: DatabaseConfig{Path: "/data/inventory.db"},
				},
				MQTT: MQTTConfig{QoS: 1},
				API:  APIConfig{Port: 8080},
			},
			wantErr: false,
		},
		{
			name: "valid file config",
			config: &Config{
				Storage: StorageConfig{
					Driver: StorageDriverFile,
					File:   FileConfig{Path: "/data/devices.txt"},
				},
				MQTT: MQTTConfig{QoS: 1},
				API:  APIConfig{Port: 8080},
			},
			wantErr: false,
		},
		{
			name: "unknown storage driver",
			config: &Config{
				Storage: StorageConfig{Driver: "postgres"},
				MQTT:    MQTTConfig{QoS: 1},
				API:     APIConfig{Port: 8080},
			},
			wantErr: true,
		},
		{
			name: "missing database path",
			config: &Config{
				Storage: StorageConfig{Driver: StorageDriverSQLite},
				MQTT:    MQTTConfig{QoS: 1},
				API:     APIConfig{Port: 8080},
			},
			wantErr: true,
		},
		{
			name: "missing file path",
			config: &Config{
				Storage: StorageConfig{Driver: StorageDriverFile},
				MQTT:    MQTTConfig{QoS: 1},
				API:     APIConfig{Port: 8080},
			},
			wantErr: true,
		},
		{
			name: "invalid QoS",
			config: &Config{
				Storage: StorageConfig{
					Driver:   StorageDriverSQLite,
					Database: DatabaseConfig{Path: "/data/inventory.db"},
				},
				MQTT: MQTTConfig{QoS: 3},
				API:  APIConfig{Port: 8080},
			},
			wantErr: true,
		},
		{
			name: "invalid port low",
			config: &Config{
				Storage: StorageConfig{
					Driver:   StorageDriverSQLite,
					Database: DatabaseConfig{Path: "/data/inventory.db"},
				},
				MQTT: MQTTConfig{QoS: 1},
				API:  APIConfig{Port: 0},
			},
			wantErr: true,
		},
		{
			name: "invalid port high",
			config: &Config{
				Storage: StorageConfig{
					Driver:   StorageDriverSQLite,
					Database: DatabaseConfig{Path: "/data/inventory.db"},
				},
				MQTT: MQTTConfig{QoS: 1},
				API:  APIConfig{Port: 70000},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_GetTimeouts(t *testing.T) {
	cfg := &Config{
		API: APIConfig{
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 45,
				Idle:  60,
			},
		},
	}

	if got := cfg.GetReadTimeout().Seconds(); got != 30 {
		t.Errorf("GetReadTimeout() = %v, want 30", got)
	}

	if got := cfg.GetWriteTimeout().Seconds(); got != 45 {
		t.Errorf("GetWriteTimeout() = %v, want 45", got)
	}

	if got := cfg.GetIdleTimeout().Seconds(); got != 60 {
		t.Errorf("GetIdleTimeout() = %v, want 60", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	// Set environment variables
	t.Setenv("INVENTORY_STORAGE_DRIVER", "file")
	t.Setenv("INVENTORY_DATABASE_PATH", "/custom/path.db")
	t.Setenv("INVENTORY_FILE_PATH", "/custom/devices.txt")
	t.Setenv("INVENTORY_MQTT_HOST", "mqtt.example.com")
	t.Setenv("INVENTORY_MQTT_USERNAME", "testuser")
	t.Setenv("INVENTORY_MQTT_PASSWORD", "testpass")
	t.Setenv("INVENTORY_API_HOST", "192.168.1.1")
	t.Setenv("INVENTORY_API_PORT", "9090")
	t.Setenv("INVENTORY_INFLUXDB_TOKEN", "secret-token")

	applyEnvOverrides(cfg)

	if cfg.Storage.Driver != StorageDriverFile {
		t.Errorf("Storage.Driver = %q, want %q", cfg.Storage.Driver, StorageDriverFile)
	}

	if cfg.Storage.Database.Path != "/custom/path.db" {
		t.Errorf("Storage.Database.Path = %q, want %q", cfg.Storage.Database.Path, "/custom/path.db")
	}

	if cfg.Storage.File.Path != "/custom/devices.txt" {
		t.Errorf("Storage.File.Path = %q, want %q", cfg.Storage.File.Path, "/custom/devices.txt")
	}

	if cfg.MQTT.Broker.Host != "mqtt.example.com" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "mqtt.example.com")
	}

	if cfg.MQTT.Auth.Username != "testuser" {
		t.Errorf("MQTT.Auth.Username = %q, want %q", cfg.MQTT.Auth.Username, "testuser")
	}

	if cfg.MQTT.Auth.Password != "testpass" {
		t.Errorf("MQTT.Auth.Password = %q, want %q", cfg.MQTT.Auth.Password, "testpass")
	}

	if cfg.API.Host != "192.168.1.1" {
		t.Errorf("API.Host = %q, want %q", cfg.API.Host, "192.168.1.1")
	}

	if cfg.API.Port != 9090 {
		t.Errorf("API.Port = %d, want 9090", cfg.API.Port)
	}

	if cfg.InfluxDB.Token != "secret-token" {
		t.Errorf("InfluxDB.Token = %q, want %q", cfg.InfluxDB.Token, "secret-token")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Storage.Driver != StorageDriverSQLite {
		t.Errorf("defaultConfig Storage.Driver = %q, want sqlite", cfg.Storage.Driver)
	}

	if cfg.Storage.Database.Path == "" {
		t.Error("defaultConfig should have non-empty Storage.Database.Path")
	}

	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("defaultConfig MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}

	if cfg.API.Port != 8080 {
		t.Errorf("defaultConfig API.Port = %d, want 8080", cfg.API.Port)
	}
}
