package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"docflow/internal/ipc"
)

func newDaemonCommands(ctx *commandContext) []*cobra.Command {
	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start the document workflow",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				stdout := cmd.OutOrStdout()
				resp, err := client.Start()
				if err != nil {
					return err
				}
				if resp.Started {
					fmt.Fprintln(stdout, "Workflow started")
					return nil
				}
				if strings.TrimSpace(resp.Message) != "" {
					fmt.Fprintln(stdout, resp.Message)
					return nil
				}
				fmt.Fprintln(stdout, "Workflow already running")
				return nil
			})
		},
	}

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the document workflow",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				stdout := cmd.OutOrStdout()
				resp, err := client.Stop()
				if err != nil {
					return err
				}
				if resp.Stopped {
					fmt.Fprintln(stdout, "Workflow stopped")
				} else {
					fmt.Fprintln(stdout, "Workflow is not running")
				}
				return nil
			})
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon and pipeline status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				status, err := client.Status()
				if err != nil {
					return err
				}

				stdout := cmd.OutOrStdout()
				colorize := shouldColorize(stdout)

				for _, line := range renderSectionHeader("Daemon", colorize) {
					fmt.Fprintln(stdout, line)
				}
				runningKind := statusError
				runningMessage := "stopped"
				if status.Running {
					runningKind = statusOK
					runningMessage = fmt.Sprintf("pid %d", status.PID)
				}
				fmt.Fprintln(stdout, renderStatusLine("Workflow", runningKind, runningMessage, colorize))
				fmt.Fprintln(stdout, renderStatusLine("Active workers", statusInfo, fmt.Sprintf("%d", status.ActiveWorkers), colorize))
				if strings.TrimSpace(status.LastError) != "" {
					fmt.Fprintln(stdout, renderStatusLine("Last error", statusWarn, status.LastError, colorize))
				}
				if status.LastDocument != nil {
					detail := fmt.Sprintf("%s (%s)", status.LastDocument.Name, formatStatusLabel(status.LastDocument.Status))
					fmt.Fprintln(stdout, renderStatusLine("Last document", statusInfo, detail, colorize))
				}
				fmt.Fprintln(stdout)

				for _, line := range renderSectionHeader("Stages", colorize) {
					fmt.Fprintln(stdout, line)
				}
				for _, stage := range status.StageHealth {
					kind := statusOK
					message := "Ready"
					if !stage.Ready {
						kind = statusError
						message = stage.Detail
						if strings.TrimSpace(message) == "" {
							message = "not ready"
						}
					}
					fmt.Fprintln(stdout, renderStatusLine(formatStatusLabel(stage.Name), kind, message, colorize))
				}
				fmt.Fprintln(stdout)

				for _, line := range renderSectionHeader("Documents", colorize) {
					fmt.Fprintln(stdout, line)
				}
				rows := buildDocumentStatsRows(status.DocumentStats)
				if len(rows) == 0 {
					fmt.Fprintln(stdout, "Registry is empty")
					return nil
				}
				table := renderTable([]string{"Status", "Count"}, rows, []columnAlignment{alignLeft, alignRight})
				fmt.Fprintln(stdout, table)
				return nil
			})
		},
	}

	return []*cobra.Command{startCmd, stopCmd, statusCmd}
}
