package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEnvFile(t *testing.T) {
	tmpDir := t.TempDir()
	envFile := filepath.Join(tmpDir, ".env")

	content := `# Test env file
KEY1=value1
KEY2="quoted value"
KEY3='single quoted'
# Comment
KEY4=value4
`
	if err := os.WriteFile(envFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	os.Unsetenv("KEY1")
	os.Unsetenv("KEY2")
	os.Unsetenv("KEY3")
	os.Unsetenv("KEY4")

	if err := loadEnvFile(envFile); err != nil {
		t.Fatalf("loadEnvFile failed: %v", err)
	}

	if os.Getenv("KEY1") != "value1" {
		t.Errorf("KEY1 not set correctly: %s", os.Getenv("KEY1"))
	}
	if os.Getenv("KEY2") != "quoted value" {
		t.Errorf("KEY2 not set correctly: %s", os.Getenv("KEY2"))
	}
	if os.Getenv("KEY3") != "single quoted" {
		t.Errorf("KEY3 not set correctly: %s", os.Getenv("KEY3"))
	}
	if os.Getenv("KEY4") != "value4" {
		t.Errorf("KEY4 not set correctly: %s", os.Getenv("KEY4"))
	}
}

func TestLoadEnvFile_DoesNotOverride(t *testing.T) {
	tmpDir := t.TempDir()
	envFile := filepath.Join(tmpDir, ".env")

	content := `EXISTING_KEY=new_value`
	if err := os.WriteFile(envFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	os.Setenv("EXISTING_KEY", "original_value")
	defer os.Unsetenv("EXISTING_KEY")

	if err := loadEnvFile(envFile); err != nil {
		t.Fatalf("loadEnvFile failed: %v", err)
	}

	if os.Getenv("EXISTING_KEY") != "original_value" {
		t.Error("loadEnvFile should not override existing env vars")
	}
}

func TestResolveEnvWithAliases(t *testing.T) {
	os.Unsetenv("VIVABEM_GEMINI_API_KEY")
	os.Unsetenv("GEMINI_API_KEY")
	os.Unsetenv("GOOGLE_API_KEY")

	result := ResolveEnvWithAliases("VIVABEM_GEMINI_API_KEY")
	if result != "" {
		t.Error("Expected empty when no keys set")
	}

	os.Setenv("GOOGLE_API_KEY", "google_value")
	defer os.Unsetenv("GOOGLE_API_KEY")

	result = ResolveEnvWithAliases("VIVABEM_GEMINI_API_KEY")
	if result != "google_value" {
		t.Errorf("Expected google_value from alias, got %s", result)
	}

	os.Setenv("GEMINI_API_KEY", "gemini_value")
	defer os.Unsetenv("GEMINI_API_KEY")

	result = ResolveEnvWithAliases("VIVABEM_GEMINI_API_KEY")
	if result != "gemini_value" {
		t.Errorf("Expected gemini_value from first alias, got %s", result)
	}

	os.Setenv("VIVABEM_GEMINI_API_KEY", "canonical_value")
	defer os.Unsetenv("VIVABEM_GEMINI_API_KEY")

	result = ResolveEnvWithAliases("VIVABEM_GEMINI_API_KEY")
	if result != "canonical_value" {
		t.Errorf("Expected canonical_value, got %s", result)
	}
}

func TestEnvAliases_Exist(t *testing.T) {
	requiredAliases := map[string][]string{
		"VIVABEM_GEMINI_API_KEY": {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
		"VIVABEM_SMTP_PASSWORD":  {"SMTP_PASSWORD"},
	}

	for canonical, aliases := range requiredAliases {
		for _, alias := range aliases {
			found := false
			for _, a := range envAliases[canonical] {
				if a == alias {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("Missing alias %s for %s", alias, canonical)
			}
		}
	}
}
