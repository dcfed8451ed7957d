package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/trip-board/backend/internal/auth"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LOGGER_OUTPUT_PATH", filepath.Join(t.TempDir(), "cli.log"))

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "none.env")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("TRIP_API_SECRET", "s3cret")

	out, err := runCLI(t, "token", "--subject", "board-1")
	if err != nil {
		t.Fatalf("token: %v\n%s", err, out)
	}

	claims, err := auth.ParseToken([]byte("s3cret"), strings.TrimSpace(out))
	if err != nil {
		t.Fatalf("printed token does not verify: %v", err)
	}
	if claims.Subject != "board-1" {
		t.Errorf("subject = %q, want board-1", claims.Subject)
	}
}

func TestTokenCommandRequiresSecret(t *testing.T) {
	t.Setenv("TRIP_API_SECRET", "")

	if _, err := runCLI(t, "token"); err == nil {
		t.Fatal("token without secret succeeded")
	}
}

func TestSeedCommand(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "catalog.yaml")
	seed := `
destinations:
  - id: d1
    name: Amsterdam
offers:
  - type: taxi
    offers:
      - {id: o1, title: Upgrade, price: 20}
points:
  - type: taxi
    destination: d1
    basePrice: 50
    dateFrom: "2024-03-10T10:00:00Z"
    dateTo: "2024-03-10T11:00:00Z"
    offers: [o1]
`
	if err := os.WriteFile(file, []byte(seed), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, "seed", file, "--data", filepath.Join(dir, "data"))
	if err != nil {
		t.Fatalf("seed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "imported 1 destinations, 1 offers, 1 points") {
		t.Errorf("unexpected output %q", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "data", "tripboard.db")); err != nil {
		t.Errorf("database not created: %v", err)
	}
}

func TestSeedCommandRejectsInvalidConfig(t *testing.T) {
	t.Setenv("WS_COMMAND_BURST", "0")

	if _, err := runCLI(t, "seed", "whatever.yaml"); err == nil || !strings.Contains(err.Error(), "WS_COMMAND_BURST") {
		t.Fatalf("err = %v, want configuration error", err)
	}
}
