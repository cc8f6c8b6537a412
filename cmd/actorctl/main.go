// Command actorctl is the diagnostic CLI for actorsub. `run` spawns a small
// demo supervisor tree onto a real Executor, registers it under a name, and
// renders live stats while it drives a tick workload. `tree` and `stats`
// attach to an already-running tree instead of spawning their own: any
// process that imports package registry and calls registry.Register can be
// inspected by these subcommands within that same process, the way a host
// embedding actorsub would mount them onto its own cobra root.
//
// It is a separate binary, deliberately outside the library's own import
// graph (actor/supervisor/executor never import it) — a host embeds
// actorsub directly and is free to build its own equivalent against the
// exported diagnostics accessors, or to mount these very subcommands.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/harborlight/actorsub/actor"
	"github.com/harborlight/actorsub/config"
	"github.com/harborlight/actorsub/executor"
	"github.com/harborlight/actorsub/observability"
	"github.com/harborlight/actorsub/registry"
	"github.com/harborlight/actorsub/supervisor"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "actorctl",
		Short: "Run and inspect an actorsub supervisor tree",
	}
	root.AddCommand(newRunCmd())
	root.AddCommand(newTreeCmd())
	root.AddCommand(newStatsCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var threads int
	var throughput int
	var stealing bool
	var actors int
	var duration time.Duration
	var interval time.Duration
	var name string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Spawn N counter actors under one supervisor and print live stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.NewExecutorConfig(
				config.WithThreads(threads),
				config.WithThroughputPerRun(throughput),
				config.WithStealing(stealing),
			)
			return runDemo(cmd.Context(), cfg, config.SupervisorConfig{Name: name}, actors, duration, interval)
		},
	}

	cmd.Flags().IntVar(&threads, "threads", 4, "number of Devices")
	cmd.Flags().IntVar(&throughput, "throughput", 32, "messages drained per Run")
	cmd.Flags().BoolVar(&stealing, "stealing", true, "enable work stealing")
	cmd.Flags().IntVar(&actors, "actors", 8, "number of demo actors to spawn")
	cmd.Flags().DurationVar(&duration, "duration", 3*time.Second, "how long to run the workload")
	cmd.Flags().DurationVar(&interval, "interval", 500*time.Millisecond, "stats refresh interval")
	cmd.Flags().StringVar(&name, "name", "demo", "name to register this tree under")

	return cmd
}

func newTreeCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the supervisor ownership tree of a registered instance",
		RunE: func(cmd *cobra.Command, args []string) error {
			h, ok := registry.Lookup(name)
			if !ok {
				return fmt.Errorf("no supervisor tree registered under %q (known: %v)", name, registry.Names())
			}
			printTree(os.Stdout, h)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "demo", "registered supervisor tree name")
	return cmd
}

func newStatsCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print device and actor stats of a registered instance",
		RunE: func(cmd *cobra.Command, args []string) error {
			h, ok := registry.Lookup(name)
			if !ok {
				return fmt.Errorf("no supervisor tree registered under %q (known: %v)", name, registry.Names())
			}
			printStats(h)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "demo", "registered supervisor tree name")
	return cmd
}

func runDemo(ctx context.Context, cfg config.ExecutorConfig, sup config.SupervisorConfig, actorCount int, duration, interval time.Duration) error {
	logger, err := observability.NewDevelopmentLogger()
	if err != nil {
		return err
	}
	metrics := observability.NewSink(logger)

	exec := executor.New(cfg, metrics, logger)
	exec.Start(ctx)
	defer func() {
		if err := exec.Stop(); err != nil {
			fmt.Fprintln(os.Stderr, "executor stop:", err)
		}
	}()

	root := supervisor.New(sup.Name, exec, metrics)

	var children []actor.Addr
	for i := 0; i < actorCount; i++ {
		addr, err := root.SpawnActor(fmt.Sprintf("counter-%d", i), func(child *actor.Actor) error {
			count := 0
			return child.AddHandler("tick", func() {
				count++
			})
		})
		if err != nil {
			return fmt.Errorf("spawn actor %d: %w", i, err)
		}
		children = append(children, addr)
	}
	defer func() {
		if err := root.Stop(context.Background()); err != nil {
			fmt.Fprintln(os.Stderr, "supervisor stop:", err)
		}
	}()

	h := registry.Register(sup, root, exec, metrics)
	defer registry.Unregister(sup.Name)

	stop := time.After(duration)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	done := make(chan struct{})
	go feedTicks(done, children, root)
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			printStats(h)
			return nil
		case <-ticker.C:
			printStats(h)
		}
	}
}

func feedTicks(done chan struct{}, children []actor.Addr, root *supervisor.Supervisor) {
	for {
		select {
		case <-done:
			return
		default:
		}
		for _, addr := range children {
			target, ok := addr.Resolve()
			if !ok {
				continue
			}
			target.Enqueue(actor.Envelope{Header: actor.Header{Command: "tick"}})
		}
	}
}

// printTree renders the supervisor ownership tree: one indented row per
// actor/supervisor with its address id and live mailbox depth, per
// cmd/actorctl's tree contract.
func printTree(w *os.File, h *registry.Handle) {
	fmt.Fprintf(w, "%s (executor threads=%d)\n", h.Config.Name, len(h.Exec.Devices()))
	printSupervisorNode(w, h.Tree, 1)
}

func printSupervisorNode(w *os.File, s *supervisor.Supervisor, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, child := range s.ChildNodes() {
		fmt.Fprintf(w, "%s%s  mailbox=%d\n", indent, child.Address(), child.MailboxLen())
	}
	for _, sub := range s.SubSupervisorNodes() {
		fmt.Fprintf(w, "%s%s  mailbox=%d (supervisor)\n", indent, sub.Address(), sub.MailboxLen())
		printSupervisorNode(w, sub, depth+1)
	}
}

// printStats renders the device/actor stats table for a registered tree.
func printStats(h *registry.Handle) {
	fmt.Printf("\n%s:\n", h.Config.Name)

	devTable := tablewriter.NewWriter(os.Stdout)
	devTable.SetHeader([]string{"device", "local queue depth"})
	for _, d := range h.Exec.Devices() {
		devTable.Append([]string{fmt.Sprintf("%d", d.ID()), fmt.Sprintf("%d", d.QueueDepth())})
	}
	devTable.Render()

	fmt.Printf("overflow queue depth: %d\n", h.Exec.OverflowDepth())
	if h.Metrics != nil {
		fmt.Printf("stolen: %d  dropped: %d  unhandled: %d  bad_message: %d\n",
			h.Metrics.Count("stolen"), h.Metrics.Count("dropped"),
			h.Metrics.Count(string(observability.KindUnhandled)),
			h.Metrics.Count(string(observability.KindBadMessage)))
	}

	actorTable := tablewriter.NewWriter(os.Stdout)
	actorTable.SetHeader([]string{"actor", "mailbox depth"})
	for _, a := range collectActors(h.Tree) {
		actorTable.Append([]string{a.Address().String(), fmt.Sprintf("%d", a.MailboxLen())})
	}
	actorTable.Render()
}

// collectActors walks the ownership tree depth-first, gathering every leaf
// actor (not sub-supervisors themselves) for the stats table.
func collectActors(s *supervisor.Supervisor) []*actor.Actor {
	out := append([]*actor.Actor(nil), s.ChildNodes()...)
	for _, sub := range s.SubSupervisorNodes() {
		out = append(out, collectActors(sub)...)
	}
	return out
}
