package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/lanonasis/lanonasis-maas-sub005/pkg/assistant"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/memory"
	"github.com/spf13/pflag"
)

type command struct {
	usage   string
	summary string
	run     func(ctx context.Context, args []string) error
}

var errUsage = errors.New("missing argument")

func (h *Host) commandTable() map[string]command {
	return map[string]command{
		"create": {"create [-t title] [-m type] [--tags a,b] <content>", "store a memory", h.create},
		"search": {"search [-l limit] [-m type] <query>", "semantic search", h.search},
		"list":   {"list [-l limit] [-m type] [type]", "recent memories", h.list},
		"get":    {"get <id>", "show one memory", h.get},
		"delete": {"delete <id>", "delete one memory", h.remove},
		"nl":     {"nl [on|off]", "toggle natural-language mode", h.toggleNL},
		"reset":  {"reset", "forget the conversation", h.reset},
		"mode":   {"mode", "show how requests are understood", h.mode},
		"status": {"status", "service and session status", h.status},
		"help":   {"help", "this list", h.help},
	}
}

func newFlags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func (h *Host) run(ctx context.Context, a assistant.Action) error {
	if missing := a.Missing(); missing != "" {
		return fmt.Errorf("%w: %s", errUsage, missing)
	}
	fmt.Fprintln(h.out, a.Accept(ctx, h.executor).String())
	return nil
}

func (h *Host) create(ctx context.Context, args []string) error {
	fs := newFlags("create")
	title := fs.StringP("title", "t", "", "title")
	memType := fs.StringP("type", "m", string(memory.DefaultMemoryType), "memory type")
	tags := fs.StringSlice("tags", nil, "comma separated tags")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return h.run(ctx, assistant.CreateAction{
		Title:      *title,
		Content:    strings.Join(fs.Args(), " "),
		MemoryType: memory.MemoryType(*memType),
		Tags:       *tags,
	})
}

func (h *Host) search(ctx context.Context, args []string) error {
	fs := newFlags("search")
	limit := fs.IntP("limit", "l", 0, "max results")
	memType := fs.StringP("type", "m", "", "memory type")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return h.run(ctx, assistant.SearchAction{
		Query:      searchQuery(fs.Args()),
		MemoryType: memory.MemoryType(*memType),
		Limit:      *limit,
	})
}

func (h *Host) list(ctx context.Context, args []string) error {
	fs := newFlags("list")
	limit := fs.IntP("limit", "l", 0, "page size")
	memType := fs.StringP("type", "m", "", "memory type")
	if err := fs.Parse(args); err != nil {
		return err
	}
	mt := memory.MemoryType(*memType)
	for _, word := range fs.Args() {
		w := memory.MemoryType(strings.ToLower(word))
		switch {
		case listFiller[string(w)]:
		case w.Valid() && mt == "":
			mt = w
		default:
			return fmt.Errorf("unexpected argument %q", word)
		}
	}
	return h.run(ctx, assistant.ListAction{MemoryType: mt, Limit: *limit})
}

// Words people put around a type when typing "list my project memories".
var listFiller = map[string]bool{
	"my": true, "all": true, "the": true, "me": true, "recent": true,
	"memories": true, "memory": true, "notes": true, "everything": true,
}

// searchQuery drops a leading "for" or "about" so "search for x" queries x.
func searchQuery(words []string) string {
	if len(words) > 1 {
		switch strings.ToLower(words[0]) {
		case "for", "about":
			words = words[1:]
		}
	}
	return strings.Join(words, " ")
}

func (h *Host) get(ctx context.Context, args []string) error {
	return h.run(ctx, assistant.GetAction{ID: first(args)})
}

func (h *Host) remove(ctx context.Context, args []string) error {
	return h.run(ctx, assistant.DeleteAction{ID: first(args)})
}

func (h *Host) toggleNL(_ context.Context, args []string) error {
	switch strings.ToLower(first(args)) {
	case "":
		h.nl = !h.nl
	case "on":
		h.nl = true
	case "off":
		h.nl = false
	default:
		return fmt.Errorf("expected on or off, got %q", args[0])
	}
	fmt.Fprintf(h.out, "Natural-language mode %s.\n", onOff(h.nl))
	return nil
}

func (h *Host) reset(context.Context, []string) error {
	if h.orch != nil {
		h.orch.Reset()
	}
	fmt.Fprintln(h.out, "Conversation cleared.")
	return nil
}

func (h *Host) mode(context.Context, []string) error {
	mode := "unavailable"
	if h.orch != nil {
		mode = h.orch.Mode()
	}
	fmt.Fprintf(h.out, "Natural-language mode %s; intents resolved by %s.\n", onOff(h.nl), mode)
	return nil
}

func (h *Host) status(ctx context.Context, _ []string) error {
	fmt.Fprintf(h.out, "endpoint:  %s\n", h.endpoint)
	env := h.client.HealthCheck(ctx)
	if env.Error != nil {
		fmt.Fprintf(h.out, "service:   unreachable (%s)\n", env.Error.UserMessage())
	} else {
		fmt.Fprintf(h.out, "service:   %s\n", env.Data.Status)
	}
	fmt.Fprintf(h.out, "nl mode:   %s\n", onOff(h.nl))
	if h.orch != nil {
		fmt.Fprintf(h.out, "resolver:  %s\n", h.orch.Mode())
		fmt.Fprintf(h.out, "history:   %d messages\n", h.orch.HistoryLen())
	}
	return nil
}

func (h *Host) help(context.Context, []string) error {
	names := make([]string, 0, len(h.commands))
	for name := range h.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintln(h.out, "Commands:")
	for _, name := range names {
		c := h.commands[name]
		fmt.Fprintf(h.out, "  %-52s %s\n", c.usage, c.summary)
	}
	fmt.Fprintf(h.out, "  %-52s %s\n", "exit", "leave the session")
	fmt.Fprintln(h.out, "Anything else is read as a plain-language request when nl mode is on.")
	return nil
}

func first(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
