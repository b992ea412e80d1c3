package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"
)

func TestInitConfig_Success(t *testing.T) {
	// Override XDG_CONFIG_HOME so getConfigDir() resolves to our temp
	// directory. Using HOME doesn't work on Windows where
	// os.UserHomeDir() reads USERPROFILE.
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	configPath, err := InitConfig(false)
	if err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatalf("Config file was not created at %s", configPath)
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("Failed to read config file: %v", err)
	}

	contentStr := string(content)
	expectedSections := []string{
		"# PUT Configuration File",
		"storage_type",
		"[server]",
		"[local_storage]",
		"[s3_storage]",
		"[tus]",
		"[api]",
		"[metrics]",
		"[logging]",
	}

	for _, section := range expectedSections {
		if !strings.Contains(contentStr, section) {
			t.Errorf("Config file missing section: %s", section)
		}
	}

	// Verify the generated file is valid TOML
	var raw map[string]interface{}
	if err := toml.Unmarshal(content, &raw); err != nil {
		t.Fatalf("Generated config is not valid TOML: %v", err)
	}
}

func TestInitConfig_MatchesDefaults(t *testing.T) {
	// The generated file documents the defaults; loading it must
	// produce exactly GetDefaultConfig.
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	configPath, err := InitConfig(false)
	if err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}

	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load generated config: %v", err)
	}

	want := GetDefaultConfig()
	if !reflect.DeepEqual(loaded, want) {
		t.Errorf("Generated config drifted from defaults:\n got: %+v\nwant: %+v", loaded, want)
	}
}

func TestInitConfig_AlreadyExists(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	if _, err := InitConfig(false); err != nil {
		t.Fatalf("First InitConfig failed: %v", err)
	}

	_, err := InitConfig(false)
	if err == nil {
		t.Fatal("Expected error when config already exists")
	}
	if !strings.Contains(err.Error(), "already exists") {
		t.Errorf("Expected 'already exists' error, got: %v", err)
	}
}

func TestInitConfig_ForceOverwrite(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	configPath, err := InitConfig(false)
	if err != nil {
		t.Fatalf("First InitConfig failed: %v", err)
	}

	// Scribble over the file, then force re-init
	if err := os.WriteFile(configPath, []byte("scribble"), 0600); err != nil {
		t.Fatalf("Failed to overwrite config: %v", err)
	}

	if _, err := InitConfig(true); err != nil {
		t.Fatalf("InitConfig with force failed: %v", err)
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("Failed to read config file: %v", err)
	}
	if !strings.Contains(string(content), "# PUT Configuration File") {
		t.Error("Expected forced init to restore the default template")
	}
}

func TestInitConfigToPath_CustomLocation(t *testing.T) {
	tmpDir := t.TempDir()
	customPath := filepath.Join(tmpDir, "nested", "dir", "put.toml")

	if err := InitConfigToPath(customPath, false); err != nil {
		t.Fatalf("InitConfigToPath failed: %v", err)
	}

	if _, err := os.Stat(customPath); os.IsNotExist(err) {
		t.Fatalf("Config file was not created at %s", customPath)
	}
}
