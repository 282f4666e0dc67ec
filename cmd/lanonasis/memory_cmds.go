package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/lanonasis/lanonasis-maas-sub005/pkg/memory"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/ptrx"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/restx"
	"github.com/spf13/cobra"
)

func (a *app) createCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create [content]",
		Short: "Store a memory",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireCredentials(); err != nil {
				return err
			}
			f := cmd.Flags()
			title, _ := f.GetString("title")
			memType, _ := f.GetString("type")
			tags, _ := f.GetStringSlice("tags")
			summary, _ := f.GetString("summary")
			topic, _ := f.GetString("topic")
			project, _ := f.GetString("project")
			content, _ := f.GetString("content")
			if content == "" {
				content = strings.Join(args, " ")
			}
			if title == "" {
				title = firstLine(content, 80)
			}

			env := a.container.Memory.CreateMemory(cmd.Context(), memory.CreateMemoryRequest{
				Title:      title,
				Content:    content,
				Summary:    summary,
				MemoryType: memory.MemoryType(memType),
				Tags:       tags,
				TopicID:    topic,
				ProjectRef: project,
			})
			if env.Error != nil {
				return env.Error
			}
			return a.print(env.Data, func(w io.Writer) {
				fmt.Fprintf(w, "Created %s (%s)\n", env.Data.ID, env.Data.Title)
			})
		},
	}
	cmd.Flags().StringP("title", "t", "", "Title (default: first line of content)")
	cmd.Flags().StringP("content", "c", "", "Content (default: the arguments)")
	cmd.Flags().StringP("type", "m", string(memory.DefaultMemoryType), "Memory type")
	cmd.Flags().StringSlice("tags", nil, "Comma separated tags")
	cmd.Flags().String("summary", "", "Short summary")
	cmd.Flags().String("topic", "", "Topic id")
	cmd.Flags().String("project", "", "Project reference")
	return cmd
}

func (a *app) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one memory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env := a.container.Memory.GetMemory(cmd.Context(), args[0])
			if env.Error != nil {
				return env.Error
			}
			return a.print(env.Data, func(w io.Writer) { printEntry(w, env.Data) })
		},
	}
}

func (a *app) listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List memories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := cmd.Flags()
			page, _ := f.GetInt("page")
			limit, _ := f.GetInt("limit")
			memType, _ := f.GetString("type")
			status, _ := f.GetString("status")
			tags, _ := f.GetStringSlice("tags")
			sortBy, _ := f.GetString("sort")
			order, _ := f.GetString("order")

			env := a.container.Memory.ListMemories(cmd.Context(), memory.ListMemoriesRequest{
				Page:       ptrx.Int(page),
				Limit:      ptrx.Int(limit),
				MemoryType: memory.MemoryType(memType),
				Status:     memory.Status(status),
				Tags:       tags,
				SortBy:     sortBy,
				SortOrder:  order,
			})
			if env.Error != nil {
				return env.Error
			}
			return a.print(env.Data, func(w io.Writer) {
				p := env.Data.Pagination
				fmt.Fprintf(w, "Page %d of %d (%d total)\n", p.Page, p.Pages, p.Total)
				for _, m := range env.Data.Data {
					fmt.Fprintf(w, "  %s  %-10s %s\n", m.ID, m.MemoryType, m.Title)
				}
			})
		},
	}
	cmd.Flags().Int("page", 1, "Page number")
	cmd.Flags().IntP("limit", "l", memory.DefaultLimit, "Page size (1-100)")
	cmd.Flags().StringP("type", "m", "", "Filter by memory type")
	cmd.Flags().String("status", "", "Filter by status")
	cmd.Flags().StringSlice("tags", nil, "Filter by tags")
	cmd.Flags().String("sort", "updated_at", "Sort field: created_at, updated_at, title, access_count")
	cmd.Flags().String("order", "desc", "Sort order: asc or desc")
	return cmd
}

func (a *app) searchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Semantic search over memories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			limit, _ := f.GetInt("limit")
			threshold, _ := f.GetFloat64("threshold")
			types, _ := f.GetStringSlice("type")
			tags, _ := f.GetStringSlice("tags")
			mode, _ := f.GetString("mode")

			base := memory.SearchMemoryRequest{
				Query:     strings.Join(args, " "),
				Limit:     ptrx.Int(limit),
				Threshold: ptrx.Float64(threshold),
				Tags:      tags,
			}
			for _, t := range types {
				base.MemoryTypes = append(base.MemoryTypes, memory.MemoryType(t))
			}

			var env restx.Envelope[memory.SearchResponse]
			if mode == "" {
				env = a.container.Memory.SearchMemories(cmd.Context(), base)
			} else {
				env = a.container.Memory.EnhancedSearch(cmd.Context(), memory.EnhancedSearchRequest{
					SearchMemoryRequest: base,
					SearchMode:          memory.SearchMode(mode),
				})
			}
			if env.Error != nil {
				return env.Error
			}
			return a.print(env.Data, func(w io.Writer) {
				if len(env.Data.Results) == 0 {
					fmt.Fprintln(w, "No matches.")
					return
				}
				for _, r := range env.Data.Results {
					fmt.Fprintf(w, "%3.0f%%  %s  %s\n", r.SimilarityScore*100, r.ID, r.Title)
				}
			})
		},
	}
	cmd.Flags().IntP("limit", "l", memory.DefaultLimit, "Max results (1-100)")
	cmd.Flags().Float64("threshold", memory.DefaultThreshold, "Minimum similarity (0-1)")
	cmd.Flags().StringSliceP("type", "m", nil, "Restrict to memory types")
	cmd.Flags().StringSlice("tags", nil, "Restrict to tags")
	cmd.Flags().String("mode", "", "Enhanced search mode: vector, text or hybrid")
	return cmd
}

func (a *app) updateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a memory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			req := memory.UpdateMemoryRequest{}
			if f.Changed("title") {
				v, _ := f.GetString("title")
				req.Title = ptrx.String(v)
			}
			if f.Changed("content") {
				v, _ := f.GetString("content")
				req.Content = ptrx.String(v)
			}
			if f.Changed("type") {
				v, _ := f.GetString("type")
				req.MemoryType = ptrx.Of(memory.MemoryType(v))
			}
			if f.Changed("status") {
				v, _ := f.GetString("status")
				req.Status = ptrx.Of(memory.Status(v))
			}
			if f.Changed("tags") {
				req.Tags, _ = f.GetStringSlice("tags")
			}

			env := a.container.Memory.UpdateMemory(cmd.Context(), args[0], req)
			if env.Error != nil {
				return env.Error
			}
			return a.print(env.Data, func(w io.Writer) {
				fmt.Fprintf(w, "Updated %s (%s)\n", env.Data.ID, env.Data.Title)
			})
		},
	}
	cmd.Flags().StringP("title", "t", "", "New title")
	cmd.Flags().StringP("content", "c", "", "New content")
	cmd.Flags().StringP("type", "m", "", "New memory type")
	cmd.Flags().String("status", "", "New status: active, archived, draft")
	cmd.Flags().StringSlice("tags", nil, "Replace tags")
	return cmd
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id> [id...]",
		Short: "Delete one or more memories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				env := a.container.Memory.DeleteMemory(cmd.Context(), args[0])
				if env.Error != nil {
					return env.Error
				}
				return a.print(env.Data, func(w io.Writer) { fmt.Fprintf(w, "Deleted %s\n", args[0]) })
			}

			env := a.container.Memory.BulkDeleteMemories(cmd.Context(), args)
			if env.Error != nil {
				return env.Error
			}
			res := env.Data
			if err := a.print(res, func(w io.Writer) {
				fmt.Fprintf(w, "Deleted %d, failed %d\n", res.Succeeded, res.Failed)
				for id, e := range res.Errors {
					fmt.Fprintf(w, "  %s: %s\n", id, e.UserMessage())
				}
			}); err != nil {
				return err
			}
			if res.Failed > 0 {
				return fmt.Errorf("%d of %d deletes failed", res.Failed, res.Failed+res.Succeeded)
			}
			return nil
		},
	}
}

func printEntry(w io.Writer, m *memory.MemoryEntry) {
	fmt.Fprintf(w, "%s\n", m.Title)
	fmt.Fprintf(w, "id:      %s\n", m.ID)
	fmt.Fprintf(w, "type:    %s\n", m.MemoryType)
	fmt.Fprintf(w, "status:  %s\n", m.Status)
	if len(m.Tags) > 0 {
		fmt.Fprintf(w, "tags:    %s\n", strings.Join(m.Tags, ", "))
	}
	fmt.Fprintf(w, "updated: %s\n\n", m.UpdatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintln(w, m.Content)
}

func firstLine(s string, n int) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if r := []rune(s); len(r) > n {
		return string(r[:n])
	}
	return s
}
