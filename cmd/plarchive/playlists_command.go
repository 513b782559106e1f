package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"plarchive/internal/catalog"
	"plarchive/internal/endpoint"
)

type playlistView struct {
	Name        string `json:"name"`
	DisplayName string `json:"pretty_name"`
	Reference   string `json:"url"`
	Directory   string `json:"directory"`
}

func newPlaylistsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "playlists",
		Short: "List configured playlists",
		RunE: func(cmd *cobra.Command, args []string) error {
			descriptors, err := ctx.playlists()
			if err != nil {
				return err
			}
			pub, err := ctx.publisher()
			if err != nil {
				return err
			}

			views := make([]playlistView, 0, len(descriptors))
			for _, d := range descriptors {
				views = append(views, playlistView{
					Name:        d.Name,
					DisplayName: d.DisplayName,
					Reference:   d.Reference,
					Directory:   pub.Dir(d.Name),
				})
			}
			if jsonOutput {
				return writeJSON(cmd, views)
			}

			rows := make([][]string, 0, len(views))
			for i, v := range views {
				rows = append(rows, []string{
					fmt.Sprintf("%d", i+1),
					v.Name,
					v.DisplayName,
					v.Reference,
					endpoint.Link(v.Name, endpoint.ArtifactName(endpoint.FormatCSV)),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"#", "Name", "Display name", "URL", "CSV"},
				rows,
				[]columnAlignment{alignRight},
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	cmd.AddCommand(newPlaylistsAddCommand(ctx))
	return cmd
}

func newPlaylistsAddCommand(ctx *commandContext) *cobra.Command {
	var displayName string

	cmd := &cobra.Command{
		Use:   "add <url> <name>",
		Short: "Append a playlist to the catalog",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := cfg.Paths.PlaylistsFile

			existing, err := catalog.Load(path)
			switch {
			case err == nil:
			case errors.Is(err, fs.ErrNotExist):
				existing = nil
			default:
				return err
			}

			updated, err := catalog.Normalize(append(existing, catalog.Descriptor{
				Reference:   args[0],
				Name:        args[1],
				DisplayName: displayName,
			}))
			if err != nil {
				return err
			}
			if err := catalog.Write(path, updated); err != nil {
				return err
			}
			added := updated[len(updated)-1]
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s) to %s\n", added.Name, added.DisplayName, path)
			return nil
		},
	}
	cmd.Flags().StringVar(&displayName, "display-name", "", "Name shown in the index (derived from <name> when empty)")
	return cmd
}
