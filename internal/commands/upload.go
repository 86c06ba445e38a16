package commands

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a file to the upload service",
	Long: `Send one file as multipart/form-data (field "file") to the upload URL.
Progress is shown while the body is sent.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUpload(cmd, args[0])
	},
}

func runUpload(cmd *cobra.Command, path string) error {
	env, err := loadEnvironment(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer env.Close()

	client, err := deps.NewClient(env.cfg, env.log)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	stderr := cmd.ErrOrStderr()
	decorated := deps.IsTTY()
	name := filepath.Base(path)

	ctx, stop := interruptContext(cmd)
	defer stop()

	bar := progress.New(progress.WithDefaultGradient(), progress.WithWidth(30))
	last := -1
	result, err := client.UploadFile(ctx, path, func(percent int) {
		if !decorated || percent == last {
			return
		}
		last = percent
		fmt.Fprintf(stderr, "\r\033[K%s %s", bar.ViewAs(float64(percent)/100), name)
	})
	if decorated && last >= 0 {
		fmt.Fprint(stderr, "\r\033[K")
	}

	if err != nil {
		env.log.Error().Err(err).Str("file", path).Msg("upload failed")
		fmt.Fprintln(stderr, formatErrorMessage(err, "Upload failed"))
		return fmt.Errorf("upload failed: %w", err)
	}

	msg := fmt.Sprintf("✓ Uploaded %s (%s)", result.FileName, humanize.Bytes(uint64(result.Size)))
	if result.Message != "" {
		msg += ": " + result.Message
	}
	fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(msg))
	return nil
}
