// Package testsupport loads recorded provider payloads and serves them from
// test HTTP handlers.
package testsupport

import (
	"encoding/json"
	"net/http"
	"os"
	"testing"
)

// LoadFixture reads a recorded payload.
func LoadFixture(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// LoadGolden decodes the JSON document at path into v.
func LoadGolden(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// MustFixture is LoadFixture for tests; a missing file fails t.
func MustFixture(t testing.TB, path string) []byte {
	t.Helper()
	data, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("load fixture %s: %v", path, err)
	}
	return data
}

// FixtureHandler answers every request with the JSON payload at path.
func FixtureHandler(t testing.TB, path string) http.HandlerFunc {
	t.Helper()
	payload := MustFixture(t, path)
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(payload)
	}
}
