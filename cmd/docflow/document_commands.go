package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"docflow/internal/config"
	"docflow/internal/ipc"
	"docflow/internal/stage"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "ingest <locator>",
		Short: "Register a document for processing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			locator, err := config.ExpandPath(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("resolve locator: %w", err)
			}
			docName := strings.TrimSpace(name)
			if docName == "" {
				docName = baseName(locator)
			}

			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Ingest(docName, locator)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Ingested %s as %s\n", resp.Document.Name, resp.Document.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Display name for the document (defaults to the locator base name)")
	return cmd
}

func newTriggerCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:       "trigger <documentID> <stage>",
		Short:     "Run a single pipeline stage against a document",
		Args:      cobra.ExactArgs(2),
		ValidArgs: stageNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			stageName := strings.TrimSpace(args[1])
			if id == "" {
				return errors.New("document id is required")
			}
			if _, ok := stage.ParseKind(stageName); !ok {
				return fmt.Errorf("unknown stage %q (expected one of %s)", stageName, strings.Join(stageNames(), ", "))
			}

			return ctx.withClient(func(client *ipc.Client) error {
				stdout := cmd.OutOrStdout()
				resp, err := client.Trigger(id, stageName)
				if err != nil {
					return err
				}
				if resp.Failed {
					fmt.Fprintf(stdout, "Stage %s failed: %s\n", stageName, resp.Message)
					fmt.Fprintf(stdout, "Document %s moved to %s\n", resp.Document.ID, formatStatusLabel(resp.Document.Status))
					return nil
				}
				fmt.Fprintf(stdout, "Stage %s complete; document %s is now %s\n",
					stageName, resp.Document.ID, formatStatusLabel(resp.Document.Status))
				return nil
			})
		},
	}
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var listStatuses []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.List(listStatuses)
				if err != nil {
					return err
				}
				if len(resp.Documents) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Registry is empty")
					return nil
				}
				table := renderTable(
					[]string{"ID", "Name", "Status", "Type", "Destination", "Created"},
					buildDocumentListRows(resp.Documents),
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&listStatuses, "status", "s", nil, "Filter by document status (repeatable)")
	return cmd
}

func newDescribeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <documentID>",
		Short: "Show full details for a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Describe(id)
				if err != nil {
					return err
				}
				printDocument(cmd, resp.Document)
				return nil
			})
		},
	}
}

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <documentID>",
		Short: "Remove a document from the registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Remove(id)
				if err != nil {
					return err
				}
				if resp.Removed {
					fmt.Fprintf(cmd.OutOrStdout(), "Document %s removed\n", id)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Document %s not found\n", id)
				}
				return nil
			})
		},
	}
}

func newClearCommand(ctx *commandContext) *cobra.Command {
	var routedOnly bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove documents from the registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				out := cmd.OutOrStdout()
				if routedOnly {
					resp, err := client.ClearRouted()
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Cleared %d routed documents\n", resp.Removed)
					return nil
				}
				resp, err := client.Clear()
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Cleared %d documents\n", resp.Removed)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&routedOnly, "routed", false, "Remove only routed documents")
	return cmd
}

func newHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show registry health summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				health, err := client.Health()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Total: %d\nIngested: %d\nExtracted: %d\nClassified: %d\nRouted: %d\nHuman Intervention: %d\n",
					health.Total,
					health.Ingested,
					health.Extracted,
					health.Classified,
					health.Routed,
					health.Intervention,
				)
				return nil
			})
		},
	}
}

func printDocument(cmd *cobra.Command, doc ipc.Document) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID:          %s\n", doc.ID)
	fmt.Fprintf(out, "Name:        %s\n", doc.Name)
	if doc.Locator != "" {
		fmt.Fprintf(out, "Locator:     %s\n", doc.Locator)
	}
	fmt.Fprintf(out, "Status:      %s\n", formatStatusLabel(doc.Status))
	if doc.DocumentType != "" {
		fmt.Fprintf(out, "Type:        %s\n", formatDocumentType(doc))
	}
	if doc.Destination != "" {
		fmt.Fprintf(out, "Destination: %s\n", doc.Destination)
	}
	if doc.CreatedAt != "" {
		fmt.Fprintf(out, "Created:     %s\n", formatDisplayTime(doc.CreatedAt))
	}
	if doc.UpdatedAt != "" {
		fmt.Fprintf(out, "Updated:     %s\n", formatDisplayTime(doc.UpdatedAt))
	}
	if doc.ExtractedText != "" {
		fmt.Fprintf(out, "Text:        %s\n", truncateText(doc.ExtractedText, 120))
	}
	if len(doc.Entities) > 0 {
		fmt.Fprintf(out, "Entities:    %s\n", string(doc.Entities))
	}
	if len(doc.Messages) > 0 {
		fmt.Fprintln(out, "Messages:")
		for _, key := range sortedMessageKeys(doc.Messages) {
			fmt.Fprintf(out, "  %s: %s\n", key, doc.Messages[key])
		}
	}
}

func stageNames() []string {
	kinds := stage.Kinds()
	names := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		names = append(names, string(kind))
	}
	return names
}

func baseName(path string) string {
	trimmed := strings.TrimRight(path, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		return trimmed[idx+1:]
	}
	return trimmed
}
