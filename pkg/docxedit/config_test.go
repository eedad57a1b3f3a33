package docxedit

import "testing"

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	if config.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", config.LogLevel, "info")
	}
	if config.MaxFieldDepth != 64 {
		t.Errorf("MaxFieldDepth = %d, want 64", config.MaxFieldDepth)
	}
	if config.ScrubByDefault {
		t.Error("ScrubByDefault = true, want false")
	}
	if err := config.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestConfigFromEnvironment(t *testing.T) {
	t.Setenv("DOCXEDIT_LOG_LEVEL", "debug")
	t.Setenv("DOCXEDIT_MAX_FIELD_DEPTH", "8")
	t.Setenv("DOCXEDIT_SCRUB", "yes")

	config := ConfigFromEnvironment()
	if config.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", config.LogLevel, "debug")
	}
	if config.MaxFieldDepth != 8 {
		t.Errorf("MaxFieldDepth = %d, want 8", config.MaxFieldDepth)
	}
	if !config.ScrubByDefault {
		t.Error("ScrubByDefault = false, want true")
	}
}

func TestConfigFromEnvironmentInvalidDepth(t *testing.T) {
	t.Setenv("DOCXEDIT_MAX_FIELD_DEPTH", "not-a-number")
	config := ConfigFromEnvironment()
	if config.MaxFieldDepth != 64 {
		t.Errorf("MaxFieldDepth = %d, want default 64", config.MaxFieldDepth)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"log level off", func(c *Config) { c.LogLevel = "off" }, false},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, true},
		{"zero depth", func(c *Config) { c.MaxFieldDepth = 0 }, true},
		{"negative depth", func(c *Config) { c.MaxFieldDepth = -3 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			err := config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGlobalConfigCopy(t *testing.T) {
	defer SetGlobalConfig(DefaultConfig())

	config := DefaultConfig()
	config.MaxFieldDepth = 10
	SetGlobalConfig(config)

	got := GetGlobalConfig()
	if got.MaxFieldDepth != 10 {
		t.Errorf("MaxFieldDepth = %d, want 10", got.MaxFieldDepth)
	}

	// Mutating the returned copy must not leak into the global.
	got.MaxFieldDepth = 99
	if again := GetGlobalConfig(); again.MaxFieldDepth != 10 {
		t.Errorf("global config mutated through copy: %d", again.MaxFieldDepth)
	}
}

func TestParseBool(t *testing.T) {
	for _, truthy := range []string{"true", "1", "yes", "on", " TRUE "} {
		if !parseBool(truthy) {
			t.Errorf("parseBool(%q) = false, want true", truthy)
		}
	}
	for _, falsy := range []string{"false", "0", "no", "off", "", "maybe"} {
		if parseBool(falsy) {
			t.Errorf("parseBool(%q) = true, want false", falsy)
		}
	}
}
