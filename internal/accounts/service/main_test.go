package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/teamshiksha/accounts/pkg/cryptox"
)

func TestMain(m *testing.M) {
	pepperPath := filepath.Join(os.TempDir(), "accounts-service-test-pepper")
	cryptox.SetPepperPath(pepperPath)

	os.Remove(pepperPath)
	defer os.Remove(pepperPath)

	os.Exit(m.Run())
}
