package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/etnz/folio"
	"github.com/shopspring/decimal"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{"FOLIO_DB", "FOLIO_CURRENCY", "FOLIO_MAX_IRR", "FOLIO_FX_NOISE", "FOLIO_GROUPS", "FOLIO_SCHEDULE"} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database != "folio.db" || cfg.Currency != "EUR" || cfg.Schedule != "@daily" {
		t.Errorf("Load() = %q %q %q, want folio.db EUR @daily", cfg.Database, cfg.Currency, cfg.Schedule)
	}
	if !cfg.Options.MaxIRR.Equal(decimal.NewFromInt(2)) {
		t.Errorf("Load().Options.MaxIRR = %v, want 2", cfg.Options.MaxIRR)
	}
	if len(cfg.Groups) != 0 {
		t.Errorf("Load().Groups = %v, want none", cfg.Groups)
	}
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	// godotenv does not override variables already set, even empty ones
	for _, key := range []string{"FOLIO_DB", "FOLIO_CURRENCY", "FOLIO_FX_NOISE", "FOLIO_GROUPS"} {
		os.Unsetenv(key)
	}
	file := filepath.Join(t.TempDir(), ".env")
	content := "FOLIO_DB=/tmp/test.db\nFOLIO_CURRENCY=usd\nFOLIO_FX_NOISE=0.5\nFOLIO_GROUPS=Family=A1,A2;Pension=A3\n"
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		for _, key := range []string{"FOLIO_DB", "FOLIO_CURRENCY", "FOLIO_FX_NOISE", "FOLIO_GROUPS"} {
			os.Unsetenv(key)
		}
	})
	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database != "/tmp/test.db" || cfg.Currency != "USD" {
		t.Errorf("Load() = %q %q, want /tmp/test.db USD", cfg.Database, cfg.Currency)
	}
	if !cfg.Options.FXNoise.Equal(decimal.RequireFromString("0.5")) {
		t.Errorf("Load().Options.FXNoise = %v, want 0.5", cfg.Options.FXNoise)
	}
	if got := cfg.Groups["Family"]; !slices.Equal(got, []string{"A1", "A2"}) {
		t.Errorf("Load().Groups[Family] = %v, want [A1 A2]", got)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"FOLIO_CURRENCY", "XYZ"},
		{"FOLIO_MAX_IRR", "two"},
		{"FOLIO_FX_NOISE", "1,5"},
		{"FOLIO_GROUPS", "=A1"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
				t.Errorf("Load() with %s=%q error = nil, want an error", tt.key, tt.value)
			}
		})
	}
}

func TestParseGroups(t *testing.T) {
	tests := []struct {
		in      string
		want    map[string][]string
		wantErr bool
	}{
		{in: "", want: map[string][]string{}},
		{in: "Family=A1, A2", want: map[string][]string{"Family": {"A1", "A2"}}},
		{in: "a=A1;b=A2;", want: map[string][]string{"a": {"A1"}, "b": {"A2"}}},
		{in: "a", wantErr: true},
		{in: "a=", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseGroups(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseGroups(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ParseGroups(%q) = %v, want %v", tt.in, got, tt.want)
			}
			for name, accounts := range tt.want {
				if !slices.Equal(got[name], accounts) {
					t.Errorf("ParseGroups(%q)[%s] = %v, want %v", tt.in, name, got[name], accounts)
				}
			}
		})
	}
}

func TestConfig_Apply(t *testing.T) {
	b := folio.NewBook()
	if err := b.AddAccount(folio.Account{ID: "A1", Name: "Broker"}); err != nil {
		t.Fatal(err)
	}
	cfg := &Config{Groups: map[string][]string{"Mine": {"A1"}}}
	if err := cfg.Apply(b); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if got, ok := b.Group("Mine"); !ok || !slices.Equal(got, []string{"A1"}) {
		t.Errorf("Group(Mine) = %v, %v, want [A1]", got, ok)
	}
	cfg.Groups = map[string][]string{"Other": {"A9"}}
	if err := cfg.Apply(b); !errors.Is(err, folio.ErrUnknownAccount) {
		t.Errorf("Apply() error = %v, want %v", err, folio.ErrUnknownAccount)
	}
}
