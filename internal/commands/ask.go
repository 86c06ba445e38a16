package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/diogo/stormchat/internal/chat"
	"github.com/diogo/stormchat/internal/render"
)

var (
	askFileFlag   string
	askOutputFlag string
	askCopyFlag   bool
	askRawFlag    bool
)

var askCmd = &cobra.Command{
	Use:   "ask [prompt]",
	Short: "Send a single prompt and print the reply",
	Long: `Send one prompt to the completions server and print the reply.

The prompt comes from the argument, from --file, or from stdin. When stdout
is a terminal the reply is rendered as Markdown; otherwise the plain text is
written so it can be piped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prompt, err := readPrompt(cmd.InOrStdin(), args)
		if err != nil {
			return err
		}
		if prompt == "" {
			return cmd.Help()
		}
		return runAsk(cmd, prompt)
	},
}

func init() {
	askCmd.Flags().StringVarP(&askFileFlag, "file", "f", "", "Read prompt from file")
	askCmd.Flags().StringVarP(&askOutputFlag, "output", "o", "", "Save reply to file")
	askCmd.Flags().BoolVarP(&askCopyFlag, "copy", "c", false, "Copy the reply to the clipboard")
	askCmd.Flags().BoolVar(&askRawFlag, "raw", false, "Print plain text even on a terminal")
}

// readPrompt picks the prompt source: --file, then the argument, then piped stdin
func readPrompt(stdin io.Reader, args []string) (string, error) {
	if askFileFlag != "" {
		data, err := os.ReadFile(askFileFlag)
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	if len(args) > 0 {
		return strings.TrimSpace(args[0]), nil
	}

	if f, ok := stdin.(*os.File); ok {
		stat, err := f.Stat()
		if err != nil || stat.Mode()&os.ModeCharDevice != 0 {
			return "", nil
		}
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// runAsk streams one completion through the same transcript rules as the chat
// screen and prints the finished reply
func runAsk(cmd *cobra.Command, prompt string) error {
	env, err := loadEnvironment(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer env.Close()

	client, err := deps.NewClient(env.cfg, env.log)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()
	decorated := deps.IsTTY() && !askRawFlag

	ctx, stop := interruptContext(cmd)
	defer stop()

	var spin *spinner
	if decorated {
		spin = newSpinner(stderr, "Generating response")
		spin.start()
	}

	state, err := chat.Apply(chat.NewState(), chat.Submit{Prompt: prompt})
	if err != nil {
		return err
	}

	streamErr := client.StreamCompletion(ctx, prompt, func(text string) {
		next, err := chat.Apply(state, chat.Fragment{Text: text})
		if err != nil {
			return
		}
		state = next
		if spin != nil {
			spin.setMessage("Receiving reply · " + humanize.Bytes(uint64(len(state.Reply()))))
		}
	})

	if streamErr != nil && ctx.Err() == nil {
		if spin != nil {
			spin.stopWithError()
		}
		env.log.Error().Err(streamErr).Msg("completion failed")
		fmt.Fprintln(stderr, formatErrorMessage(streamErr, "Generation failed"))
		return fmt.Errorf("generation failed: %w", streamErr)
	}
	state, _ = chat.Apply(state, chat.Finish{})

	if spin != nil {
		if ctx.Err() != nil {
			spin.stopWithSuccess("Stopped")
		} else {
			spin.stopWithSuccess("Done")
		}
	}

	var text string
	if reply, ok := state.LastAssistant(); ok {
		text = reply.Text
	}

	if askCopyFlag || env.cfg.CopyToClipboard {
		if err := deps.Clipboard(text); err != nil {
			fmt.Fprintln(stderr, warnStyle.Render(fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err)))
		} else if decorated {
			fmt.Fprintln(stderr, successStyle.Render("✓ Copied to clipboard"))
		}
	}

	if askOutputFlag != "" {
		if err := os.WriteFile(askOutputFlag, []byte(text), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if decorated {
			fmt.Fprintln(stderr, successStyle.Render(fmt.Sprintf("✓ Response saved to %s", askOutputFlag)))
		}
		return nil
	}

	if !decorated {
		_, err := fmt.Fprintln(stdout, text)
		return err
	}

	width := bubbleWidth()
	opts := render.OptionsFromConfig(env.cfg.Markdown).WithWidth(width - 4)
	rendered := strings.TrimRight(render.MarkdownOrPlain(text, opts), "\n")

	fmt.Fprintln(stdout, assistantLabelStyle.Render("✦ Assistant"))
	fmt.Fprintln(stdout, assistantBubbleStyle.Width(width).Render(rendered))
	return nil
}
