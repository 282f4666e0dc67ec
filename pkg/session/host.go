// Package session is the interactive front end: a line-at-a-time loop that
// runs commands directly and hands everything else to the assistant.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/assistant"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/logx"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/memory"
)

const Prompt = "lanonasis> "

// LineReader is satisfied by *readline.Instance.
type LineReader interface {
	Readline() (string, error)
	Close() error
}

type Config struct {
	Reader       LineReader
	Out          io.Writer
	Client       memory.Client
	Orchestrator *assistant.Orchestrator
	NLMode       bool
	// Endpoint is shown by the status command.
	Endpoint string
}

type Host struct {
	reader   LineReader
	out      io.Writer
	client   memory.Client
	orch     *assistant.Orchestrator
	executor *assistant.Executor
	nl       bool
	endpoint string
	commands map[string]command
}

func NewHost(cfg Config) *Host {
	h := &Host{
		reader:   cfg.Reader,
		out:      cfg.Out,
		client:   cfg.Client,
		orch:     cfg.Orchestrator,
		executor: assistant.NewExecutor(cfg.Client, nil, 0),
		nl:       cfg.NLMode,
		endpoint: cfg.Endpoint,
	}
	h.commands = h.commandTable()
	return h
}

// NewReadline opens a terminal line editor with history.
func NewReadline(historyFile string) (*readline.Instance, error) {
	return readline.NewEx(&readline.Config{
		Prompt:          Prompt,
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
}

type readResult struct {
	line string
	err  error
}

// Run reads and handles lines until exit, end of input, Ctrl-C or a
// termination signal. The exit status is always 0: failures inside a turn
// are reported and the prompt comes back.
func (h *Host) Run(ctx context.Context) int {
	lc := Acquire()
	defer lc.Dispose()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case sig := <-lc.Signals():
			logx.Debugf("received %s", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	next := make(chan struct{})
	lines := make(chan readResult, 1)
	go func() {
		for range next {
			line, err := h.reader.Readline()
			lines <- readResult{line, err}
		}
	}()
	defer close(next)

	fmt.Fprintln(h.out, "LanOnasis memory assistant. Type \"help\" for commands, \"exit\" to quit.")
	for {
		if ctx.Err() != nil {
			return h.shutdown()
		}
		next <- struct{}{}
		select {
		case <-ctx.Done():
			return h.shutdown()
		case r := <-lines:
			if r.err != nil {
				if !errors.Is(r.err, readline.ErrInterrupt) && !errors.Is(r.err, io.EOF) {
					logx.Warnf("reading input: %v", r.err)
				}
				return h.shutdown()
			}
			if quit := h.HandleLine(ctx, r.line); quit {
				return h.shutdown()
			}
		}
	}
}

func (h *Host) shutdown() int {
	if h.orch != nil {
		h.orch.Reset()
	}
	if err := h.reader.Close(); err != nil {
		logx.Debugf("closing input: %v", err)
	}
	fmt.Fprintln(h.out, "Goodbye.")
	return 0
}

// HandleLine runs one line and reports whether the session should end. A
// panic anywhere below is reported and swallowed.
func (h *Host) HandleLine(ctx context.Context, line string) (quit bool) {
	defer func() {
		if r := recover(); r != nil {
			logx.WithField("line", line).Errorf("command panicked: %v", r)
			fmt.Fprintln(h.out, "Error: something went wrong. The session is still running.")
			quit = false
		}
	}()

	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	name, rest, _ := strings.Cut(line, " ")
	name = strings.ToLower(name)
	if name == "exit" || name == "quit" {
		return true
	}

	if cmd, ok := h.commands[name]; ok {
		args, err := splitArgs(rest)
		if err == nil {
			err = cmd.run(ctx, args)
		}
		if err != nil {
			fmt.Fprintf(h.out, "Error: %v\nUsage: %s\n", err, cmd.usage)
		}
		return false
	}

	if !h.nl || h.orch == nil {
		fmt.Fprintln(h.out, "Unknown command. Type \"help\", or \"nl on\" to talk in plain language.")
		return false
	}
	fmt.Fprintln(h.out, h.orch.Process(ctx, line).String())
	return false
}
