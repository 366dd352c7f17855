/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/advising-app/advising-notify/internal/colors"
	"github.com/advising-app/advising-notify/internal/errors"
	"github.com/advising-app/advising-notify/internal/version"
	"github.com/spf13/cobra"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:           "advising-notify",
	Short:         "Notification feed and alerts for the advising service.",
	Long:          `Notification feed and alerts for the advising service.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debug, _ := cmd.Flags().GetBool("debug"); debug {
			colors.SetDebug(true)
		}
	},
}

// commandOrder is the order commands appear in help output.
var commandOrder = []string{
	"login",
	"logout",
	"unread-count",
	"list",
	"mark-read",
	"mark-all-read",
	"delete",
	"follow",
	"status",
	"open",
	"register-device",
	"push",
	"test-alert",
	"help",
	"version",
}

// helpOutputWriter overrides the help destination. Used by tests.
var helpOutputWriter io.Writer

// Execute runs the root command. Errors are printed once here.
func Execute() error {
	err := RootCmd.Execute()
	errors.Report(errors.NewDefaultCLIHandler(), err)
	return err
}

func init() {
	RootCmd.Version = version.String()
	RootCmd.CompletionOptions.HiddenDefaultCmd = true
	RootCmd.PersistentFlags().Bool("debug", false, "Enable debug output")

	RootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd != cmd.Root() {
			fmt.Fprintln(cmd.OutOrStdout(), cmd.Long)
			fmt.Fprintln(cmd.OutOrStdout())
			fmt.Fprint(cmd.OutOrStdout(), cmd.UsageString())
			return
		}
		w := helpOutputWriter
		if w == nil {
			w = cmd.OutOrStdout()
		}
		printHelpText(cmd, w)
	})
}

func printHelpText(cmd *cobra.Command, w io.Writer) {
	var cmdLines []string
	for _, name := range commandOrder {
		var found *cobra.Command
		for _, c := range cmd.Commands() {
			if c.Name() == name {
				found = c
				break
			}
		}
		if found == nil {
			continue
		}
		cmdLines = append(cmdLines, fmt.Sprintf("    %s%-24s%s %s", colors.Cyan, found.Use, colors.Reset, found.Short))
	}

	versionStr := cmd.Version
	if versionStr == "" {
		versionStr = version.String()
	}

	helpText := fmt.Sprintf(`%sadvising-notify v%s%s

%s

%sUSAGE:%s
    advising-notify [COMMAND] [OPTIONS]

%sCOMMANDS:%s
%s

%sOPTIONS:%s
    -h, --help      Show help message
    --debug         Enable debug output
`, colors.Blue, versionStr, colors.Reset, cmd.Short, colors.Blue, colors.Reset, colors.Blue, colors.Reset, strings.Join(cmdLines, "\n"), colors.Blue, colors.Reset)
	fmt.Fprint(w, helpText)
}
