package commands

import (
	"bufio"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/diogo/stormchat/internal/config"
)

var (
	personaDescFlag   string
	personaPromptFlag string
	personaModelFlag  string
)

var personaCmd = &cobra.Command{
	Use:   "persona",
	Short: "Manage chat personas",
	Long: `View and manage personas: named system prompts sent ahead of every chat
turn. Select one for a session with --persona, or make it the default.`,
}

var personaListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available personas",
	RunE:  runPersonaList,
}

var personaShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show persona details",
	Args:  cobra.ExactArgs(1),
	RunE:  runPersonaShow,
}

var personaAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a new persona",
	Long: `Add a new persona. Without --prompt the description and system prompt
are read interactively; the prompt ends at the first empty line.`,
	Args: cobra.ExactArgs(1),
	RunE: runPersonaAdd,
}

var personaDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a persona",
	Args:  cobra.ExactArgs(1),
	RunE:  runPersonaDelete,
}

var personaSetDefaultCmd = &cobra.Command{
	Use:   "default <name>",
	Short: "Set default persona",
	Args:  cobra.ExactArgs(1),
	RunE:  runPersonaSetDefault,
}

func init() {
	personaAddCmd.Flags().StringVarP(&personaDescFlag, "description", "d", "", "Short description")
	personaAddCmd.Flags().StringVar(&personaPromptFlag, "prompt", "", "System prompt")
	personaAddCmd.Flags().StringVar(&personaModelFlag, "preferred-model", "", "Model to use with this persona")

	personaCmd.AddCommand(personaListCmd)
	personaCmd.AddCommand(personaShowCmd)
	personaCmd.AddCommand(personaAddCmd)
	personaCmd.AddCommand(personaDeleteCmd)
	personaCmd.AddCommand(personaSetDefaultCmd)
}

func runPersonaList(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadPersonas()
	if err != nil {
		return fmt.Errorf("failed to load personas: %w", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tDESCRIPTION\tMODEL\tDEFAULT")
	_, _ = fmt.Fprintln(w, "----\t-----------\t-----\t-------")

	for _, p := range cfg.Personas {
		isDefault := ""
		if p.Name == cfg.DefaultPersona {
			isDefault = "✓"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Name, p.Description, p.Model, isDefault)
	}

	return w.Flush()
}

func runPersonaShow(cmd *cobra.Command, args []string) error {
	persona, err := config.GetPersona(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Name: %s\n", persona.Name)
	fmt.Fprintf(out, "Description: %s\n", persona.Description)
	if persona.Model != "" {
		fmt.Fprintf(out, "Preferred Model: %s\n", persona.Model)
	}
	if persona.SystemPrompt == "" {
		fmt.Fprintln(out, "\nSystem Prompt: (none)")
	} else {
		fmt.Fprintf(out, "\nSystem Prompt:\n%s\n", persona.SystemPrompt)
	}

	return nil
}

func runPersonaAdd(cmd *cobra.Command, args []string) error {
	name := args[0]

	if _, err := config.GetPersona(name); err == nil {
		return fmt.Errorf("persona '%s' already exists", name)
	}

	desc, prompt := personaDescFlag, personaPromptFlag
	if prompt == "" {
		var err error
		desc, prompt, err = readPersonaInteractive(cmd, desc)
		if err != nil {
			return err
		}
	}

	persona := config.Persona{
		Name:         name,
		Description:  desc,
		SystemPrompt: prompt,
		Model:        personaModelFlag,
	}

	if err := config.AddPersona(persona); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Persona '%s' created.\n", name)
	return nil
}

// readPersonaInteractive asks for the description (unless given) and the
// system prompt, which ends at the first empty line
func readPersonaInteractive(cmd *cobra.Command, desc string) (string, string, error) {
	reader := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	if desc == "" {
		fmt.Fprint(out, "Enter description: ")
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return "", "", fmt.Errorf("failed to read description: %w", err)
		}
		desc = strings.TrimSpace(line)
	}

	fmt.Fprintln(out, "Enter system prompt (end with an empty line):")
	var promptLines []string
	for {
		line, err := reader.ReadString('\n')
		line = strings.TrimRight(line, "\n\r")
		if line == "" {
			break
		}
		promptLines = append(promptLines, line)
		if err != nil {
			break
		}
	}

	return desc, strings.Join(promptLines, "\n"), nil
}

func runPersonaDelete(cmd *cobra.Command, args []string) error {
	name := args[0]

	if err := config.DeletePersona(name); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Persona '%s' deleted.\n", name)
	return nil
}

func runPersonaSetDefault(cmd *cobra.Command, args []string) error {
	name := args[0]

	if err := config.SetDefaultPersona(name); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Default persona set to '%s'.\n", name)
	return nil
}
