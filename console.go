package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/c-bata/go-prompt"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/term"

	"github.com/Liqwid-Labs/ogmios-client-go/pkg/log"
	"github.com/Liqwid-Labs/ogmios-client-go/pkg/ogmios"
)

// Console is an interactive session over one websocket connection. Every
// line runs as a command; the mempool commands need the duplex connection.
type Console struct {
	ctx     context.Context
	client  *ogmios.Client
	metrics *Metrics
	out     io.Writer
	timeout time.Duration

	exitOnce sync.Once
	exitCh   chan struct{}
}

func NewConsole(ctx context.Context, client *ogmios.Client, metrics *Metrics, out io.Writer, timeout time.Duration) *Console {
	return &Console{
		ctx:     ctx,
		client:  client,
		metrics: metrics,
		out:     out,
		timeout: timeout,
		exitCh:  make(chan struct{}),
	}
}

var consoleCommands = []prompt.Suggest{
	{Text: "mempool", Description: "walk a fresh mempool snapshot"},
	{Text: "stats", Description: "show connection statistics"},
	{Text: "help", Description: "list commands"},
	{Text: "exit", Description: "exit the console"},
}

func (c *Console) Complete(d prompt.Document) []prompt.Suggest {
	return prompt.FilterHasPrefix(c.complete(d), d.GetWordBeforeCursor(), true)
}

func (c *Console) complete(d prompt.Document) []prompt.Suggest {
	args := strings.Split(d.TextBeforeCursor(), " ")

	if len(args) < 2 {
		suggestions := make([]prompt.Suggest, 0, len(commands)+len(consoleCommands))
		for _, cmd := range commands {
			suggestions = append(suggestions, prompt.Suggest{Text: cmd.name, Description: cmd.description})
		}
		return append(suggestions, consoleCommands...)
	}

	cmd, ok := findCommand(args[0])
	if !ok {
		return nil
	}
	// only suggest a flag where a flag name is expected
	if prev := args[len(args)-2]; strings.HasPrefix(prev, "--") {
		return nil
	}
	suggestions := make([]prompt.Suggest, 0, len(cmd.flags))
	for _, flag := range cmd.flags {
		suggestions = append(suggestions, prompt.Suggest{Text: flag})
	}
	return suggestions
}

func (c *Console) Execute(s string) {
	args := strings.Fields(s)
	if len(args) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(c.ctx, c.timeout)
	defer cancel()

	switch args[0] {
	case "exit":
		c.exit()
	case "help":
		c.help()
	case "stats":
		c.stats()
	case "mempool":
		watcher := NewMempoolWatcher(c.client, nil, c.metrics, WatchOptions{Out: c.out})
		snapshot, err := watcher.WatchOnce(ctx)
		if err != nil {
			fmt.Fprintf(c.out, "Error: %s\n", err)
			return
		}
		fmt.Fprintf(c.out, "%d transactions at slot %d\n", len(snapshot.Transactions), snapshot.Slot)
	default:
		cmd, ok := findCommand(args[0])
		if !ok {
			fmt.Fprintf(c.out, "Unknown command: %s\n", args[0])
			return
		}
		if err := runCommand(ctx, cmd, c.client, c.out, args[1:]); err != nil {
			fmt.Fprintf(c.out, "Error: %s\n", err)
		}
	}
}

func (c *Console) Wait() <-chan struct{} {
	return c.exitCh
}

func (c *Console) exit() {
	c.exitOnce.Do(func() { close(c.exitCh) })
}

func (c *Console) help() {
	for _, cmd := range commands {
		fmt.Fprintf(c.out, "  %-60s %s\n", cmd.usage, cmd.description)
	}
	for _, s := range consoleCommands {
		fmt.Fprintf(c.out, "  %-60s %s\n", s.Text, s.Description)
	}
}

func (c *Console) stats() {
	conn := c.client.Conn()
	if conn == nil {
		fmt.Fprintln(c.out, "not connected")
		return
	}
	state := "open"
	if err := conn.Err(); err != nil {
		state = err.Error()
	}
	fmt.Fprintf(c.out, "connection:  %s\noutstanding: %d\nbuffered:    %d\n", state, conn.Outstanding(), conn.Buffered())
}

// runConsoleCli opens an interactive prompt over a websocket connection.
func runConsoleCli(ctx context.Context, config *Config, out io.Writer) error {
	logger := log.FromContext(ctx)

	metrics := NewMetricsWithRegistry(prometheus.NewRegistry())
	client, err := ogmios.Dial(ctx, config.WebsocketURL, config.websocketConfig(), config.connConfig(metrics))
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", config.WebsocketURL, err)
	}
	defer client.Close()
	logger.Info("connected", "url", config.WebsocketURL)

	console := NewConsole(ctx, client, metrics, out, config.CallTimeout)

	initialState, _ := term.GetState(int(os.Stdin.Fd()))
	handleExit := func() {
		if initialState != nil {
			term.Restore(int(os.Stdin.Fd()), initialState)
		}
		exec.Command("stty", "sane").Run()
	}
	defer handleExit()

	options := append(getStyleOptions(),
		prompt.OptionPrefix("ogmios> "),
		prompt.OptionAddKeyBind(prompt.KeyBind{
			Key: prompt.ControlC,
			Fn: func(buf *prompt.Buffer) {
				console.exit()
			},
		}),
	)
	p := prompt.New(console.Execute, console.Complete, options...)

	promptExitCh := make(chan struct{})
	go func() {
		p.Run()
		close(promptExitCh)
	}()

	select {
	case <-ctx.Done():
	case <-console.Wait():
	case <-promptExitCh:
	}
	fmt.Fprintln(out, "Exiting console.")
	return nil
}

func getStyleOptions() []prompt.Option {
	return []prompt.Option{
		prompt.OptionTitle("Ogmios console"),
		prompt.OptionPrefixTextColor(prompt.Yellow),
		prompt.OptionPreviewSuggestionTextColor(prompt.Cyan),

		prompt.OptionSuggestionTextColor(prompt.White),
		prompt.OptionSuggestionBGColor(prompt.DarkBlue),

		prompt.OptionDescriptionTextColor(prompt.Black),
		prompt.OptionDescriptionBGColor(prompt.Yellow),

		prompt.OptionSelectedSuggestionTextColor(prompt.Black),
		prompt.OptionSelectedSuggestionBGColor(prompt.Yellow),
	}
}
