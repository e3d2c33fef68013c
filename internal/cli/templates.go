package cli

import (
	"encoding/json"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/config"
	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/template"
)

// templatesCommand manages templates in the storage service.
func (c *CLI) templatesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "templates",
		Aliases: []string{"tpl"},
		Short:   "Manage stored templates",
	}

	cmd.AddCommand(c.templatesListCommand())
	cmd.AddCommand(c.templatesGetCommand())
	cmd.AddCommand(c.templatesPushCommand())
	cmd.AddCommand(c.templatesArchiveCommand())
	cmd.AddCommand(c.templatesPickCommand())
	return cmd
}

func (c *CLI) templatesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored templates, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := c.newClient()
			if err != nil {
				return friendly(err)
			}
			ts, err := api.Templates().List(cmd.Context())
			if err != nil {
				return friendly(err)
			}
			if len(ts) == 0 {
				printInfo(c.out, "No templates")
				printNextStep(c.out, "Store one with", appName+" templates push layout.json --name Invoice")
				return nil
			}
			fmt.Fprintln(c.out, templateTable(ts, -1, time.Now()))
			return nil
		},
	}
}

func (c *CLI) templatesGetCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:               "get <id>",
		Short:             "Write a stored template's content as JSON",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeTemplateIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := c.newClient()
			if err != nil {
				return friendly(err)
			}
			t, err := api.Templates().Get(cmd.Context(), args[0])
			if err != nil {
				return friendly(err)
			}
			data, err := json.MarshalIndent(t.Content, "", "  ")
			if err != nil {
				return err
			}
			return c.writeOutput(output, append(data, '\n'))
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func (c *CLI) templatesPushCommand() *cobra.Command {
	var name, description, id string
	cmd := &cobra.Command{
		Use:   "push [content.json]",
		Short: "Store a layout as a new template, or update one with --id",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, source, err := c.openSession(ctx, args)
			if err != nil {
				return friendly(err)
			}
			api, err := c.newClient()
			if err != nil {
				return friendly(err)
			}
			content := s.Content()

			var t template.Template
			if id != "" {
				p := template.Patch{Content: &content}
				if cmd.Flags().Changed("name") {
					p.Name = &name
				}
				if cmd.Flags().Changed("description") {
					p.Description = &description
				}
				t, err = api.Templates().Update(ctx, id, p)
			} else {
				t, err = api.Templates().Create(ctx, template.Draft{Name: name, Description: description, Content: content})
			}
			if err != nil {
				return friendly(err)
			}
			printSuccess(c.out, "Stored %s from %s", t.Name, source)
			printKeyValue(c.out, "id", t.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "template name (required for new templates)")
	cmd.Flags().StringVar(&description, "description", "", "template description")
	cmd.Flags().StringVar(&id, "id", "", "update the template with this id")
	return cmd
}

func (c *CLI) templatesArchiveCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "archive <id>",
		Short:             "Archive a template so it no longer appears in listings",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeTemplateIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := c.newClient()
			if err != nil {
				return friendly(err)
			}
			if err := api.Templates().Archive(cmd.Context(), args[0]); err != nil {
				return friendly(err)
			}
			printSuccess(c.out, "Archived %s", args[0])
			return nil
		},
	}
}

// templatesPickCommand opens an interactive list and loads the chosen
// template into the editor snapshot.
func (c *CLI) templatesPickCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pick",
		Short: "Choose a stored template and load it into the editor snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			api, err := c.newClient()
			if err != nil {
				return friendly(err)
			}
			ts, err := api.Templates().List(ctx)
			if err != nil {
				return friendly(err)
			}
			if len(ts) == 0 {
				printInfo(c.out, "No templates to pick from")
				return nil
			}

			final, err := tea.NewProgram(NewTemplateListModel(ts), tea.WithContext(ctx)).Run()
			if err != nil {
				return fmt.Errorf("template picker: %w", err)
			}
			m, ok := final.(TemplateListModel)
			if !ok || m.Selected == nil {
				printInfo(c.out, "Nothing selected")
				return nil
			}

			st, err := c.newSnapshotStore()
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.Save(ctx, m.Selected.Content); err != nil {
				return err
			}
			printSuccess(c.out, "Loaded %s into the editor snapshot", m.Selected.Name)
			printNextStep(c.out, "Preview it with", appName+" compile")
			return nil
		},
	}
}

// templateTable renders templates as a bordered table. The row at cursor is
// highlighted; pass -1 for none.
func templateTable(ts []template.Template, cursor int, now time.Time) string {
	rows := make([][]string, len(ts))
	for i, t := range ts {
		marker := "  "
		if i == cursor {
			marker = "▸ "
		}
		rows[i] = []string{marker, t.Name, t.Description, formatRelativeTime(t.UpdatedAt, now), t.ID}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Name", "Description", "Updated", "ID").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == headerRow:
				return headerStyle
			case row == cursor:
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			case col == 4:
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		}).
		Render()
}

// headerRow is the row index lipgloss tables pass to StyleFunc for headers.
const headerRow = -1

func formatRelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return "—"
	}
	diff := now.Sub(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}

// completeTemplateIDs offers the stored template IDs with their names as
// descriptions.
func (c *CLI) completeTemplateIDs(cmd *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	// Completion runs without the root's PersistentPreRunE.
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	c.cfg = cfg
	api, err := c.newClient()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	ts, err := api.Templates().List(cmd.Context())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.ID+"\t"+t.Name)
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
