package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"dipanshu.dev/internal/content"
)

func newContentCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:       "content [projects|tech|tracks]",
		Short:     "Print the site content as JSON",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"projects", "tech", "tracks"},
		RunE: func(cmd *cobra.Command, args []string) error {
			site, err := content.Load(path)
			if err != nil {
				return err
			}
			cs := content.NewService(site)

			var out any = cs.Site()
			if len(args) == 1 {
				switch args[0] {
				case "projects":
					out = cs.Projects()
				case "tech":
					out = cs.TechStack()
				case "tracks":
					out = cs.Tracks()
				}
			}

			data, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "file", "", "Content YAML file (defaults to the built-in content)")

	return cmd
}
