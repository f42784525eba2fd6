package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"iconswitch/internal/config"
	"iconswitch/internal/infrastructure/logging"
	"iconswitch/internal/transport"

	"github.com/spf13/cobra"
)

const testManifest = `primary: Default
primaryIcon: icons/default.png
alternates:
  - name: Dark
    icon: icons/dark.png
  - name: Autumn
    icon: icons/autumn.png
`

func setupGlobals(t *testing.T, manifestBody string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "icons.yaml")
	if manifestBody != "" {
		if err := os.WriteFile(path, []byte(manifestBody), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	logger = logging.NewNopLogger()
	cfg = &config.Config{
		Environment:    config.EnvTest,
		LogLevel:       "error",
		ManifestPath:   path,
		ListenAddr:     "127.0.0.1:0",
		HostURL:        "ws://127.0.0.1:1/bridge",
		RequestTimeout: 2 * time.Second,
		AppID:          "iconctl-test",
		Simulate:       true,
	}
	t.Cleanup(func() {
		cfg = nil
		logger = nil
	})
}

func startTestHost(t *testing.T) {
	t.Helper()

	server, err := startHost(cfg, logger)
	if err != nil {
		t.Fatalf("startHost failed: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Stop(ctx)
	})
	cfg.HostURL = "ws://" + server.Addr() + transport.BridgePath
}

func newTestCommand() (*cobra.Command, *bytes.Buffer) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())
	return cmd, &out
}

func TestSetCmd(t *testing.T) {
	setupGlobals(t, testManifest)
	startTestHost(t)

	tests := []struct {
		name    string
		icon    *string
		wantOut string
		wantErr bool
	}{
		{"declared variant", strPtr("Dark"), "Success", false},
		{"primary icon", nil, "Success", false},
		{"undeclared variant", strPtr("Neon"), "Failure{SET_FAILED: invalid variant}", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, out := newTestCommand()

			err := requestIconChange(cmd, tt.icon)
			if (err != nil) != tt.wantErr {
				t.Fatalf("requestIconChange() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got := strings.TrimSpace(out.String()); got != tt.wantOut {
				t.Errorf("output = %q, want %q", got, tt.wantOut)
			}
		})
	}
}

func TestSetCmd_NoHost(t *testing.T) {
	setupGlobals(t, testManifest)

	cmd, _ := newTestCommand()
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	cmd.SetContext(ctx)

	if err := requestIconChange(cmd, strPtr("Dark")); err == nil {
		t.Fatal("expected an error when no host is listening")
	}
}

func TestServe_MissingManifestReportsFailure(t *testing.T) {
	setupGlobals(t, "")
	startTestHost(t)

	cmd, out := newTestCommand()
	if err := requestIconChange(cmd, strPtr("Dark")); err == nil {
		t.Fatal("expected failure without declared alternates")
	}
	if !strings.Contains(out.String(), "SET_FAILED") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestServe_InvalidManifest(t *testing.T) {
	setupGlobals(t, "alternates: [")

	if _, err := startHost(cfg, logger); err == nil {
		t.Fatal("expected an error for a malformed manifest")
	}
}

func TestVariantsCmd(t *testing.T) {
	setupGlobals(t, testManifest)

	cmd, out := newTestCommand()
	if err := runVariants(cmd, nil); err != nil {
		t.Fatalf("runVariants failed: %v", err)
	}

	want := "Default\ticons/default.png\nAutumn\ticons/autumn.png\nDark\ticons/dark.png\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestVariantsCmd_MissingManifest(t *testing.T) {
	setupGlobals(t, "")

	cmd, _ := newTestCommand()
	if err := runVariants(cmd, nil); err == nil {
		t.Fatal("expected an error for a missing manifest")
	}
}

func TestRootCommandTree(t *testing.T) {
	want := map[string]bool{"serve": false, "set": false, "reset": false, "variants": false}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}

	if err := setCmd.Args(setCmd, nil); err == nil {
		t.Error("set should require a NAME argument")
	}
}

func strPtr(s string) *string { return &s }
