package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/genposter/pkg/config"
	"github.com/matzehuels/genposter/pkg/poster"
)

// presetCommand creates the preset command.
func (c *CLI) presetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preset",
		Short: "List and inspect presets",
	}
	cmd.AddCommand(c.presetListCommand())
	cmd.AddCommand(c.presetShowCommand())
	return cmd
}

// presetListCommand creates the "preset list" subcommand.
func (c *CLI) presetListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List built-in presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.Builtin() {
				p, err := config.Load(name)
				if err != nil {
					return err
				}
				label := name
				if name == config.DefaultPreset {
					label += " (default)"
				}
				printKeyValue(label, StyleDim.Render(p.Description))
			}
			printNewline()
			printNextStep("Render one", "genposter render --preset <name>")
			return nil
		},
	}
}

// presetShowCommand creates the "preset show" subcommand. The output is a
// complete TOML preset that can be edited and loaded with --preset file.toml.
func (c *CLI) presetShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "show <name>",
		Short:             "Print a preset as TOML",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completePresetArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := config.Load(args[0])
			if err != nil {
				return err
			}
			data, err := config.Encode(p)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func completePresetArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return completePresets(cmd, args, toComplete)
}

// describeParams formats the headline parameters of p for status output.
func describeParams(p poster.Params) string {
	style, kind, _ := p.Resolve()
	return fmt.Sprintf("%s · %s · %d layers", style.Title(), kind.Title(), p.Layers)
}
