package cmd

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/openkeys/assetmanifest/pkg/manifest"
	"github.com/openkeys/assetmanifest/pkg/safeio"
)

func newListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <manifest>",
		Short: "Print a manifest's items as an aligned table",
		Args:  cobra.ExactArgs(1),
		RunE:  runList,
	}
	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	path, err := safeio.CleanUserPath(args[0])
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	m, err := manifest.Load(path)
	if err != nil {
		return err
	}

	cmd.Printf("release %s, generated %s, %d item(s)\n\n", m.ReleaseTag, m.GeneratedAt, len(m.Items))
	if len(m.Items) == 0 {
		return nil
	}

	headers := []string{"ID", "NAME", "LANG", "BYTES", "UPDATED", "FILE"}
	rows := make([][]string, 0, len(m.Items))
	for _, it := range m.Items {
		rows = append(rows, []string{
			it.ID, it.Name, it.LanguageTag,
			fmt.Sprintf("%d", it.Bytes), it.UpdatedAt, it.Filename,
		})
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	printRow := func(cells []string) {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			parts[i] = runewidth.FillRight(cell, widths[i])
		}
		cmd.Println(strings.TrimRight(strings.Join(parts, "  "), " "))
	}
	printRow(headers)
	for _, row := range rows {
		printRow(row)
	}
	return nil
}
