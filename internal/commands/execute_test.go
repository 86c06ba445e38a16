package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/diogo/stormchat/internal/models"
)

// runExecute drives Execute with args, capturing stdout
func runExecute(t *testing.T, args ...string) string {
	t.Helper()

	var stdout bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&bytes.Buffer{})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	// Should not call os.Exit for successful execution
	Execute()
	return stdout.String()
}

func TestExecute_OpensRequestedScreen(t *testing.T) {
	td := setupCommandTest(t, &fakeClient{})

	runExecute(t, "--screen", "upload", "--persona", "coder")

	if td.shellOpts == nil {
		t.Fatal("expected Execute to start the shell")
	}
	if td.shellOpts.Screen != models.ScreenUpload {
		t.Errorf("Screen = %s, want upload", td.shellOpts.Screen)
	}
	if td.shellOpts.Persona != "coder" {
		t.Errorf("Persona = %q, want coder", td.shellOpts.Persona)
	}
}

func TestExecute_Version(t *testing.T) {
	td := setupCommandTest(t, &fakeClient{})

	out := runExecute(t, "--version")

	if !strings.HasPrefix(out, "stormchat "+Version+" (built "+BuildTime+")") {
		t.Errorf("output = %q", out)
	}
	if td.shellOpts != nil {
		t.Error("--version must not start the shell")
	}
}
