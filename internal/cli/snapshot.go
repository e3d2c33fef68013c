package cli

import (
	"encoding/json"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/editor"
	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/typst"
)

// snapshotCommand manages the saved editor state.
func (c *CLI) snapshotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Inspect or replace the saved editor state",
	}

	cmd.AddCommand(c.snapshotShowCommand())
	cmd.AddCommand(c.snapshotExportCommand())
	cmd.AddCommand(c.snapshotImportCommand())
	cmd.AddCommand(c.snapshotClearCommand())
	return cmd
}

func (c *CLI) snapshotShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Summarize the saved editor state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := c.loadSnapshot(cmd.Context())
			if err != nil {
				return err
			}
			doc := content.Document()
			printKeyValue(c.out, "grid", plural(doc.Grid.Columns, "column"))
			printKeyValue(c.out, "components", strconv.Itoa(countNodes(doc)))
			printKeyValue(c.out, "pages", strconv.Itoa(len(typst.Pages(doc))))
			printKeyValue(c.out, "variables", strconv.Itoa(len(content.Variables)))
			return nil
		},
	}
}

func (c *CLI) snapshotExportCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the saved editor state as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := c.loadSnapshot(cmd.Context())
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(content, "", "  ")
			if err != nil {
				return err
			}
			return c.writeOutput(output, append(data, '\n'))
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func (c *CLI) snapshotImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <content.json>",
		Short: "Replace the saved editor state with a layout file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			content, err := readContent(args[0])
			if err != nil {
				return friendly(err)
			}
			s := editor.NewEmpty(editor.Options{Logger: loggerFromContext(ctx)})
			if err := s.Load(content); err != nil {
				return friendly(err)
			}

			st, err := c.newSnapshotStore()
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.Save(ctx, s.Content()); err != nil {
				return err
			}
			printSuccess(c.out, "Imported %s", args[0])
			return nil
		},
	}
}

func (c *CLI) snapshotClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Reset the editor to an empty template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.newSnapshotStore()
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.Clear(cmd.Context()); err != nil {
				return err
			}
			printSuccess(c.out, "Cleared the editor snapshot")
			return nil
		},
	}
}
