package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lanonasis/lanonasis-maas-sub005/pkg/assistant/assistantapi"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/logx"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/memory"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/memory/memorymcp"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/memory/memorysrv"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/ptrx"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/session"
	"github.com/spf13/cobra"
)

func (a *app) replCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactive session (default)",
		Args:  cobra.NoArgs,
		RunE:  a.runREPL,
	}
}

func (a *app) runREPL(cmd *cobra.Command, _ []string) error {
	rl, err := session.NewReadline(a.container.HistoryFile())
	if err != nil {
		return err
	}
	host := session.NewHost(session.Config{
		Reader:       rl,
		Out:          rl.Stdout(),
		Client:       a.container.Memory,
		Orchestrator: a.container.NewOrchestrator(),
		NLMode:       a.cfg.Session.NLMode,
		Endpoint:     a.container.Rest.BaseURL(),
	})
	host.Run(cmd.Context())
	return nil
}

func (a *app) topicsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "topics",
		Short: "List topics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env := a.container.Memory.GetTopics(cmd.Context())
			if env.Error != nil {
				return env.Error
			}
			return a.print(env.Data, func(w io.Writer) {
				for _, t := range *env.Data {
					fmt.Fprintf(w, "  %s  %s\n", t.ID, t.Name)
				}
			})
		},
	}

	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a topic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, _ := cmd.Flags().GetString("description")
			color, _ := cmd.Flags().GetString("color")
			parent, _ := cmd.Flags().GetString("parent")
			env := a.container.Memory.CreateTopic(cmd.Context(), memory.CreateTopicRequest{
				Name:          args[0],
				Description:   desc,
				Color:         color,
				ParentTopicID: parent,
			})
			if env.Error != nil {
				return env.Error
			}
			return a.print(env.Data, func(w io.Writer) { fmt.Fprintf(w, "Created topic %s\n", env.Data.ID) })
		},
	}
	create.Flags().String("description", "", "Description")
	create.Flags().String("color", "", "Hex color, e.g. #3366ff")
	create.Flags().String("parent", "", "Parent topic id")

	rename := &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a topic",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env := a.container.Memory.UpdateTopic(cmd.Context(), args[0], memory.UpdateTopicRequest{Name: ptrx.String(args[1])})
			if env.Error != nil {
				return env.Error
			}
			return a.print(env.Data, func(w io.Writer) { fmt.Fprintf(w, "Renamed %s to %s\n", env.Data.ID, env.Data.Name) })
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a topic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env := a.container.Memory.DeleteTopic(cmd.Context(), args[0])
			if env.Error != nil {
				return env.Error
			}
			return a.print(env.Data, func(w io.Writer) { fmt.Fprintf(w, "Deleted topic %s\n", args[0]) })
		},
	}

	cmd.AddCommand(create, rename, del)
	return cmd
}

func (a *app) statsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Memory statistics and usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			usage, _ := cmd.Flags().GetBool("usage")
			if usage {
				from, _ := cmd.Flags().GetString("from")
				to, _ := cmd.Flags().GetString("to")
				group, _ := cmd.Flags().GetString("group-by")
				env := a.container.Memory.GetUsageAnalytics(cmd.Context(), memory.AnalyticsRangeRequest{From: from, To: to, GroupBy: group})
				if env.Error != nil {
					return env.Error
				}
				return a.print(env.Data, func(w io.Writer) {
					for _, p := range env.Data.Series {
						fmt.Fprintf(w, "  %s  created %d\n", p.Date, p.Created)
					}
				})
			}

			env := a.container.Memory.GetMemoryStats(cmd.Context())
			if env.Error != nil {
				return env.Error
			}
			s := env.Data
			return a.print(s, func(w io.Writer) {
				fmt.Fprintf(w, "memories: %d\ntopics:   %d\n", s.TotalMemories, s.TotalTopics)
				for _, t := range memory.MemoryTypes() {
					if n := s.MemoriesByType[t]; n > 0 {
						fmt.Fprintf(w, "  %-10s %d\n", t, n)
					}
				}
			})
		},
	}
	cmd.Flags().Bool("usage", false, "Show usage over time instead")
	cmd.Flags().String("from", "", "Start date, YYYY-MM-DD")
	cmd.Flags().String("to", "", "End date, YYYY-MM-DD")
	cmd.Flags().String("group-by", "", "day, week or month")
	return cmd
}

func (a *app) exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [path]",
		Short: "Write every memory to a JSON snapshot (local or S3)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("memories-%s.json", time.Now().UTC().Format("20060102-150405"))
			if len(args) == 1 {
				path = args[0]
			}
			memType, _ := cmd.Flags().GetString("type")
			status, _ := cmd.Flags().GetString("status")
			tags, _ := cmd.Flags().GetStringSlice("tags")
			topics, _ := cmd.Flags().GetBool("topics")

			exporter, err := a.container.Exporter()
			if err != nil {
				return err
			}
			res, err := exporter.Export(cmd.Context(), path, memorysrv.ExportFilter{
				MemoryType: memory.MemoryType(memType),
				Status:     memory.Status(status),
				Tags:       tags,
			}, topics)
			if err != nil {
				return err
			}
			return a.print(res, func(w io.Writer) {
				fmt.Fprintf(w, "Exported %d memories to %s\n", res.Count, res.Location)
			})
		},
	}
	cmd.Flags().StringP("type", "m", "", "Only this memory type")
	cmd.Flags().String("status", "", "Only this status")
	cmd.Flags().StringSlice("tags", nil, "Only memories with these tags")
	cmd.Flags().Bool("topics", true, "Include topics")
	return cmd
}

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the assistant HTTP bridge for editor and web front ends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bc := a.cfg.Bridge
			port, _ := cmd.Flags().GetInt("port")
			if !cmd.Flags().Changed("port") {
				port = bc.Port
			}

			if a.logLevel == "" {
				logx.SetLevel(logx.LevelInfo)
			}
			logx.Info("🚀 Starting LanOnasis assistant bridge...")
			logx.Infof("Environment: %s", a.cfg.Environment)

			sessions := assistantapi.NewSessions(a.container.NewOrchestrator, bc.MaxSessions)
			fiberApp := assistantapi.NewApp(assistantapi.Config{
				Development: a.cfg.IsDevelopment(),
				CORSOrigins: bc.CORSOrigins,
				Version:     version,
				Token:       bc.Token,
			}, assistantapi.NewHandlers(sessions), a.container.Memory)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return assistantapi.Serve(ctx, fiberApp, fmt.Sprintf("127.0.0.1:%d", port), 10*time.Second)
		},
	}
	cmd.Flags().IntP("port", "p", 0, "Port (default: $BRIDGE_PORT or 7777)")
	return cmd
}

func (a *app) mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve memory tools over MCP on stdio",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return memorymcp.ServeStdio(a.container.Memory, version)
		},
	}
}

func (a *app) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show configuration and service health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.API.Timeout)
			defer cancel()
			env := a.container.HTTPClient.HealthCheck(ctx)

			status := map[string]any{
				"endpoint":      a.container.Rest.BaseURL(),
				"authenticated": a.container.Rest.Authenticated(),
				"config_file":   a.cfg.File,
				"cache":         a.cfg.Cache.Mode,
				"storage":       a.cfg.Storage.Mode,
				"reasoning":     a.container.NewOrchestrator().Mode(),
			}
			if env.Error != nil {
				status["service"] = "unreachable"
				status["service_error"] = env.Error.UserMessage()
			} else {
				status["service"] = env.Data.Status
				status["service_version"] = env.Data.Version
			}
			return a.print(status, func(w io.Writer) {
				for _, k := range []string{"endpoint", "authenticated", "config_file", "cache", "storage", "reasoning", "service", "service_error"} {
					if v, ok := status[k]; ok && v != "" {
						fmt.Fprintf(w, "%-14s %v\n", k+":", v)
					}
				}
			})
		},
	}
}
