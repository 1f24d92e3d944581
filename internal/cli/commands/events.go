package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/eventmgmt/eventctl/internal/cli/client"
)

// NewEventsCmd creates the events command group
func NewEventsCmd() *cobra.Command {
	var envName, format string

	cmd := &cobra.Command{
		Use:     "events",
		Aliases: []string{"ev"},
		Short:   "Browse, manage and request to attend events",
	}

	cmd.PersistentFlags().StringVar(&envName, "env", "", "Environment name from eventctl.json")
	cmd.PersistentFlags().StringVarP(&format, "output", "o", formatTable, "Output format: table, json, yaml")

	listing := func(use, short string, fetch func(*client.Client, context.Context) ([]client.Event, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runEventList(cmd.Context(), format, fetch, WithEnvName(envName))
			},
		}
	}

	ls := listing("ls", "List all events", (*client.Client).ListEvents)
	ls.Aliases = []string{"list"}
	cmd.AddCommand(ls)
	cmd.AddCommand(listing("attending", "List events you requested to attend", (*client.Client).MyAttendingEvents))
	cmd.AddCommand(listing("organized", "List events you organize", (*client.Client).MyOrganizedEvents))

	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show a single event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEventID(args[0])
			if err != nil {
				return err
			}
			return runEventShow(cmd.Context(), id, format, WithEnvName(envName))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "request <id>",
		Short: "Request to attend an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEventID(args[0])
			if err != nil {
				return err
			}
			return runEventRequest(cmd.Context(), id, WithEnvName(envName))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "requests",
		Short: "List your attendance requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMyRequests(cmd.Context(), format, WithEnvName(envName))
		},
	})

	addOrganizerCommands(cmd, &envName, &format)

	return cmd
}

func parseEventID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid event id '%s'", raw)
	}
	return id, nil
}

func runEventList(ctx context.Context, format string, fetch func(*client.Client, context.Context) ([]client.Event, error), opts ...Option) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	rt, err := buildRuntime(opts...)
	if err != nil {
		return err
	}
	defer rt.Close()

	events, err := fetch(rt.api, contextOrBackground(ctx))
	if err != nil {
		return err
	}

	if done, err := writeStructured(rt.out, format, events); done {
		return err
	}

	if len(events) == 0 {
		rt.println("No events found.")
		return nil
	}

	writeEventTable(rt.out, events)
	return nil
}

func runEventShow(ctx context.Context, id int64, format string, opts ...Option) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	rt, err := buildRuntime(opts...)
	if err != nil {
		return err
	}
	defer rt.Close()

	event, err := rt.api.GetEvent(contextOrBackground(ctx), id)
	if err != nil {
		return err
	}

	if done, err := writeStructured(rt.out, format, event); done {
		return err
	}

	rt.printf("%s (#%d)\n", event.Name, event.ID)
	rt.printf("  When:     %s\n", event.Date)
	rt.printf("  Where:    %s\n", event.Location)
	if event.MaxAttendees != nil {
		rt.printf("  Capacity: %d\n", *event.MaxAttendees)
	}
	if event.Description != "" {
		rt.printf("\n%s\n", event.Description)
	}
	return nil
}

func runEventRequest(ctx context.Context, id int64, opts ...Option) error {
	rt, err := buildRuntime(opts...)
	if err != nil {
		return err
	}
	defer rt.Close()

	user := rt.store.User()
	if !rt.store.IsAuthenticated() || user == nil {
		return fmt.Errorf("not authenticated. Please run 'eventctl login' first")
	}

	attendee, err := rt.api.RequestToAttend(contextOrBackground(ctx), id, client.AttendRequest{
		Name:  user.Name,
		Email: user.Email,
	})
	if err != nil {
		return err
	}

	rt.printf("✓ Requested to attend event #%d (request #%d)\n", id, attendee.ID)
	if attendee.Status != "" {
		rt.printf("  Status: %s\n", attendee.Status)
	}
	return nil
}

func runMyRequests(ctx context.Context, format string, opts ...Option) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	rt, err := buildRuntime(opts...)
	if err != nil {
		return err
	}
	defer rt.Close()

	requests, err := rt.api.MyRequests(contextOrBackground(ctx))
	if err != nil {
		return err
	}

	if done, err := writeStructured(rt.out, format, requests); done {
		return err
	}

	if len(requests) == 0 {
		rt.println("No attendance requests found.")
		return nil
	}

	w := tabwriter.NewWriter(rt.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tSTATUS")
	fmt.Fprintln(w, "──\t────\t─────\t──────")
	for _, r := range requests {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.ID, r.Name, r.Email, r.Status)
	}
	return w.Flush()
}

func writeEventTable(out io.Writer, events []client.Event) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tDATE\tLOCATION\tCAPACITY")
	fmt.Fprintln(w, "──\t────\t────\t────────\t────────")

	for _, e := range events {
		capacity := "-"
		if e.MaxAttendees != nil {
			capacity = strconv.Itoa(*e.MaxAttendees)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", e.ID, e.Name, e.Date, e.Location, capacity)
	}

	w.Flush()
}
