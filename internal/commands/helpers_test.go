package commands

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/diogo/stormchat/internal/api"
	"github.com/diogo/stormchat/internal/config"
	"github.com/diogo/stormchat/internal/tui"
)

// fakeClient streams canned fragments and returns a canned upload result
type fakeClient struct {
	fragments []string
	err       error

	progress  []int
	result    *api.UploadResult
	uploadErr error

	prompts []string
	paths   []string
}

func (f *fakeClient) StreamCompletion(ctx context.Context, prompt string, onFragment func(string)) error {
	f.prompts = append(f.prompts, prompt)
	for _, frag := range f.fragments {
		onFragment(frag)
	}
	return f.err
}

func (f *fakeClient) UploadFile(ctx context.Context, path string, onProgress api.ProgressFunc) (*api.UploadResult, error) {
	f.paths = append(f.paths, path)
	for _, p := range f.progress {
		onProgress(p)
	}
	return f.result, f.uploadErr
}

// testDeps records what the commands handed to their dependencies
type testDeps struct {
	client    *fakeClient
	cfg       config.Config
	shellOpts *tui.ShellOptions
	copied    []string
	tty       bool
}

// setupCommandTest isolates HOME and env, resets flags and installs fakes
func setupCommandTest(t *testing.T, client *fakeClient) *testDeps {
	t.Helper()

	t.Setenv("HOME", t.TempDir())
	for _, key := range []string{
		config.EnvCompletionsURL, config.EnvUploadURL, config.EnvAPIKey,
		config.EnvModel, config.EnvLogLevel, config.EnvTheme, "GLAMOUR_STYLE",
	} {
		t.Setenv(key, "")
	}

	modelFlag, endpointFlag, uploadURLFlag, logLevelFlag, personaFlag = "", "", "", "", ""
	screenFlag = "chat"
	askFileFlag, askOutputFlag, askCopyFlag, askRawFlag = "", "", false, false
	personaDescFlag, personaPromptFlag, personaModelFlag = "", "", ""
	configInitForce = false
	_ = rootCmd.Flags().Set("version", "false")

	td := &testDeps{client: client}
	old := deps
	deps = &Dependencies{
		NewClient: func(cfg config.Config, log zerolog.Logger) (Client, error) {
			td.cfg = cfg
			return client, nil
		},
		RunShell: func(opts tui.ShellOptions) error {
			td.shellOpts = &opts
			return nil
		},
		Clipboard: func(text string) error {
			td.copied = append(td.copied, text)
			return nil
		},
		IsTTY: func() bool { return td.tty },
	}
	t.Cleanup(func() { deps = old })

	return td
}

// executeCommand runs the root command with args and returns stdout and stderr
func executeCommand(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	if args == nil {
		args = []string{} // nil makes cobra fall back to os.Args
	}

	var stdout, stderr bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}
