package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultDiagonalIsOne(t *testing.T) {
	rates := Default()
	for _, code := range Codes {
		require.Equal(t, 1.0, rates.Lookup(code, code), "Default()[%s][%s]", code, code)
	}
}

func TestDefaultCoversEveryPair(t *testing.T) {
	rates := Default()
	for _, from := range Codes {
		for _, to := range Codes {
			// Lookup panics on a missing entry; calling it for every pair
			// is itself the assertion that the table is fully populated.
			_ = rates.Lookup(from, to)
		}
	}
}

func TestLookupPanicsOnUnknownCode(t *testing.T) {
	require.Panics(t, func() {
		Default().Lookup("GBP", "USD")
	})
}

func TestLoadEmptyPathReturnsDefault(t *testing.T) {
	rates, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default().Lookup("USD", "EUR"), rates.Lookup("USD", "EUR"))
}

func TestLoadOverlaysOntoDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rates.yaml")
	content := "rates:\n  USD:\n    EUR: 0.5\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rates, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 0.5, rates.Lookup("USD", "EUR"), "overridden pair")
	// An override to one pair must not disturb the rest of the default table.
	require.Equal(t, Default().Lookup("EUR", "USD"), rates.Lookup("EUR", "USD"), "unrelated pair")
}

func TestLoadMissingFileIsAnError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.Error(t, err)
}

func TestLoadInvalidYAMLIsAnError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("not: [valid: yaml"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}
