package client

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSaveLoadConfig(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.toml")

	conf := NewConfig(file, "toml", "http://signer.local:8000", "downloads")
	conf.Timeout = Duration{30 * time.Second}
	if err := conf.Save(); err != nil {
		t.Fatal(err)
	}

	var loaded Config
	if err := loaded.Load(file, "toml"); err != nil {
		t.Fatal(err)
	}
	if loaded.Address != "http://signer.local:8000" {
		t.Error("Expect address", "http://signer.local:8000", "got", loaded.Address)
	}
	if loaded.DownloadDir != filepath.Join(dir, "downloads") {
		t.Error("Expect download dir resolved against the config file", "got", loaded.DownloadDir)
	}
	if loaded.Timeout.Duration != 30*time.Second {
		t.Error("Expect timeout", 30*time.Second, "got", loaded.Timeout.Duration)
	}
	if loaded.DateLayout != DefaultDateLayout {
		t.Error("Expect date layout", DefaultDateLayout, "got", loaded.DateLayout)
	}
	if loaded.Logger == nil || loaded.Logger.Environment != "production" {
		t.Error("Expect logger config to round-trip", "got", loaded.Logger)
	}
}

func TestSaveRefusesToOverwrite(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.toml")
	if err := NewConfig(file, "toml", DefaultAddress, ".").Save(); err != nil {
		t.Fatal(err)
	}
	if err := NewConfig(file, "toml", DefaultAddress, ".").Save(); err == nil {
		t.Fatal("Expect an error when the config file already exists")
	}
}

func TestLoadDefaultsAndUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(file, []byte("address = \"http://x\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	var conf Config
	if err := conf.Load(file, "toml"); err != nil {
		t.Fatal(err)
	}
	if conf.DownloadDir != dir {
		t.Error("Expect default download dir next to the config", "got", conf.DownloadDir)
	}
	if conf.Timeout.Duration != 0 {
		t.Error("Expect no client-side timeout by default", "got", conf.Timeout.Duration)
	}

	if err := os.WriteFile(file, []byte("adress = \"http://x\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := conf.Load(file, "toml"); err == nil {
		t.Fatal("Expect an error for a misspelled key")
	}
}
