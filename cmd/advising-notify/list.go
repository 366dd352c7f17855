/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"github.com/advising-app/advising-notify/cmd"
	"github.com/advising-app/advising-notify/internal/api"
	"github.com/advising-app/advising-notify/internal/app"
	"github.com/spf13/cobra"
)

const listCommandLong = `List one page of notifications, or every page with --all.

USAGE:
    advising-notify list [OPTIONS]

OPTIONS:
    --page <n>           Zero-based page number (default 0)
    --size <n>           Page size (default 20)
    --unread-only        Only unread notifications
    --all                Load every page until a short one (ignores --page and --size)
    --format=<format>    Output format: simple (default), table, compact, json
    --search <query>     Filter the page by title, message or type
    --search-mode <m>    substring (default), regex, token
    --ignore-case        Case-insensitive search

ORDERING:
    Newest first by creation time.
    -h, --help           Show this help`

// NewListCmd creates the list command with explicit dependencies.
func NewListCmd(client app.ListClient) *cobra.Command {
	if client == nil {
		panic("NewListCmd: client dependency cannot be nil")
	}

	var opts app.ListOptions

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List notifications",
		Long:  listCommandLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.NewListUseCase(client).Execute(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	listCmd.Flags().IntVar(&opts.Page, "page", 0, "Zero-based page number")
	listCmd.Flags().IntVar(&opts.Size, "size", api.DefaultPageSize, "Page size")
	listCmd.Flags().BoolVar(&opts.UnreadOnly, "unread-only", false, "Only unread notifications")
	listCmd.Flags().BoolVar(&opts.All, "all", false, "Load every page")
	listCmd.Flags().StringVar(&opts.Format, "format", "simple", "Output format: simple (default), table, compact, json")
	listCmd.Flags().StringVar(&opts.Search, "search", "", "Filter the page by title, message or type")
	listCmd.Flags().StringVar(&opts.SearchMode, "search-mode", "substring", "Search mode: substring, regex, token")
	listCmd.Flags().BoolVar(&opts.IgnoreCase, "ignore-case", false, "Case-insensitive search")

	return listCmd
}

// listCmd represents the list command
var listCmd = NewListCmd(deps)

func init() {
	cmd.RootCmd.AddCommand(listCmd)
}
