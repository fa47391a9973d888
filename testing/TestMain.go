package testing

import (
	"os"
	"path/filepath"
	"sync"
	stdtesting "testing"
)

var once sync.Once

// ensureTestMode flags test mode and points the CLI credentials file and the
// HR API at throwaway locations so no test touches a real account.
func ensureTestMode() {
	once.Do(func() {
		_ = os.Setenv("KOLA_TEST_MODE", "1")
		if os.Getenv("KOLA_CREDENTIALS_FILE") == "" {
			_ = os.Setenv("KOLA_CREDENTIALS_FILE", filepath.Join(os.TempDir(), "kola-test-credentials.yaml"))
		}
		if os.Getenv("API_BASE_URL") == "" {
			_ = os.Setenv("API_BASE_URL", "http://127.0.0.1:0/api")
		}
	})
}

func init() {
	ensureTestMode()
}

func TestMain(m *stdtesting.M) {
	ensureTestMode()
	os.Exit(m.Run())
}
