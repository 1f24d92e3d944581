package commands

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/eventmgmt/eventctl/internal/cli/client"
	"github.com/eventmgmt/eventctl/internal/cli/session"
)

// eventFlags are the editable event fields shared by create and update
type eventFlags struct {
	name         string
	date         string
	location     string
	description  string
	imageURL     string
	maxAttendees int
}

func (f *eventFlags) register(flags *pflag.FlagSet) {
	flags.StringVar(&f.name, "name", "", "Event name")
	flags.StringVar(&f.date, "date", "", "Event date (2006-01-02, 2006-01-02 15:04 or RFC3339)")
	flags.StringVar(&f.location, "location", "", "Event location")
	flags.StringVar(&f.description, "description", "", "Event description")
	flags.StringVar(&f.imageURL, "image-url", "", "Cover image URL")
	flags.IntVar(&f.maxAttendees, "max-attendees", 0, "Attendee limit (0 for none)")
}

// apply copies the flags that were set onto in
func (f *eventFlags) apply(in *client.EventInput, changed func(string) bool) error {
	if changed("name") {
		in.Name = f.name
	}
	if changed("date") {
		date, err := parseEventDate(f.date)
		if err != nil {
			return err
		}
		in.Date = client.Timestamp{Time: date}
	}
	if changed("location") {
		in.Location = f.location
	}
	if changed("description") {
		in.Description = f.description
	}
	if changed("image-url") {
		in.ImageURL = f.imageURL
	}
	if changed("max-attendees") {
		in.MaxAttendees = nil
		if f.maxAttendees > 0 {
			limit := f.maxAttendees
			in.MaxAttendees = &limit
		}
	}
	return nil
}

var eventDateLayouts = []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02T15:04", "2006-01-02"}

func parseEventDate(raw string) (time.Time, error) {
	for _, layout := range eventDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date '%s'", raw)
}

func parseAttendeeID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid attendee id '%s'", raw)
	}
	return id, nil
}

// addOrganizerCommands attaches the event management subcommands
func addOrganizerCommands(cmd *cobra.Command, envName, format *string) {
	var (
		createFlags eventFlags
		organizerID int64
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var in client.EventInput
			if err := createFlags.apply(&in, cmd.Flags().Changed); err != nil {
				return err
			}
			return runEventCreate(cmd.Context(), in, organizerID, WithEnvName(*envName))
		},
	}
	createFlags.register(create.Flags())
	create.Flags().Int64Var(&organizerID, "organizer-id", 0, "Create on behalf of this organizer (admins only)")
	_ = create.MarkFlagRequired("name")
	_ = create.MarkFlagRequired("date")
	cmd.AddCommand(create)

	var updateFlags eventFlags
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Update an event; unset flags keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEventID(args[0])
			if err != nil {
				return err
			}
			edit := func(in *client.EventInput) error {
				return updateFlags.apply(in, cmd.Flags().Changed)
			}
			return runEventUpdate(cmd.Context(), id, edit, WithEnvName(*envName))
		},
	}
	updateFlags.register(update.Flags())
	cmd.AddCommand(update)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEventID(args[0])
			if err != nil {
				return err
			}
			return runEventDelete(cmd.Context(), id, WithEnvName(*envName))
		},
	})

	attendeeList := func(use, short string, pending bool) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <id>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseEventID(args[0])
				if err != nil {
					return err
				}
				return runEventAttendees(cmd.Context(), id, pending, *format, WithEnvName(*envName))
			},
		}
	}
	cmd.AddCommand(attendeeList("attendees", "List everyone registered for an event", false))
	cmd.AddCommand(attendeeList("pending", "List attendance requests awaiting a decision", true))

	decision := func(use, short string, approve bool) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <eventId> <attendeeId>",
			Short: short,
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				eventID, err := parseEventID(args[0])
				if err != nil {
					return err
				}
				attendeeID, err := parseAttendeeID(args[1])
				if err != nil {
					return err
				}
				return runEventDecision(cmd.Context(), eventID, attendeeID, approve, WithEnvName(*envName))
			},
		}
	}
	cmd.AddCommand(decision("approve", "Approve an attendance request", true))
	cmd.AddCommand(decision("reject", "Reject an attendance request", false))

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Rank events by approved attendees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEventStats(cmd.Context(), *format, WithEnvName(*envName))
		},
	})
}

// requireOrganizer stops before any request when the session cannot manage events
func requireOrganizer(rt *runtime) error {
	if !rt.store.IsAuthenticated() {
		return fmt.Errorf("not authenticated. Please run 'eventctl login' first")
	}
	if !rt.store.HasAnyRole(session.RoleOrganizer, session.RoleAdmin) {
		return fmt.Errorf("managing events requires an ORGANIZER or ADMIN account (you are %s)", rt.store.Role())
	}
	return nil
}

func runEventCreate(ctx context.Context, in client.EventInput, organizerID int64, opts ...Option) error {
	rt, err := buildRuntime(opts...)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := requireOrganizer(rt); err != nil {
		return err
	}

	ctx = contextOrBackground(ctx)
	var event *client.Event
	if organizerID > 0 {
		if !rt.store.IsAdmin() {
			return fmt.Errorf("--organizer-id requires an ADMIN account")
		}
		event, err = rt.api.CreateEventFor(ctx, organizerID, in)
	} else {
		event, err = rt.api.CreateEvent(ctx, in)
	}
	if err != nil {
		return err
	}

	rt.printf("✓ Created event #%d: %s\n", event.ID, event.Name)
	return nil
}

func runEventUpdate(ctx context.Context, id int64, edit func(*client.EventInput) error, opts ...Option) error {
	rt, err := buildRuntime(opts...)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := requireOrganizer(rt); err != nil {
		return err
	}

	ctx = contextOrBackground(ctx)
	current, err := rt.api.GetEvent(ctx, id)
	if err != nil {
		return err
	}

	in := client.EventInput{
		Name:         current.Name,
		Date:         current.Date,
		Location:     current.Location,
		Description:  current.Description,
		ImageURL:     current.ImageURL,
		MaxAttendees: current.MaxAttendees,
	}
	if err := edit(&in); err != nil {
		return err
	}

	event, err := rt.api.UpdateEvent(ctx, id, in)
	if err != nil {
		return err
	}

	rt.printf("✓ Updated event #%d: %s\n", event.ID, event.Name)
	return nil
}

func runEventDelete(ctx context.Context, id int64, opts ...Option) error {
	rt, err := buildRuntime(opts...)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := requireOrganizer(rt); err != nil {
		return err
	}

	if err := rt.api.DeleteEvent(contextOrBackground(ctx), id); err != nil {
		return err
	}

	rt.printf("✓ Deleted event #%d\n", id)
	return nil
}

func runEventAttendees(ctx context.Context, id int64, pending bool, format string, opts ...Option) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	rt, err := buildRuntime(opts...)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx = contextOrBackground(ctx)
	var attendees []client.Attendee
	if pending {
		if err := requireOrganizer(rt); err != nil {
			return err
		}
		attendees, err = rt.api.PendingRequests(ctx, id)
	} else {
		attendees, err = rt.api.EventAttendees(ctx, id)
	}
	if err != nil {
		return err
	}

	if done, err := writeStructured(rt.out, format, attendees); done {
		return err
	}

	if len(attendees) == 0 {
		if pending {
			rt.println("No pending requests.")
		} else {
			rt.println("No attendees yet.")
		}
		return nil
	}

	w := tabwriter.NewWriter(rt.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tSTATUS")
	fmt.Fprintln(w, "──\t────\t─────\t──────")
	for _, a := range attendees {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", a.ID, a.Name, a.Email, a.Status)
	}
	return w.Flush()
}

func runEventDecision(ctx context.Context, eventID, attendeeID int64, approve bool, opts ...Option) error {
	rt, err := buildRuntime(opts...)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := requireOrganizer(rt); err != nil {
		return err
	}

	ctx = contextOrBackground(ctx)
	decide, verb := rt.api.RejectRequest, "Rejected"
	if approve {
		decide, verb = rt.api.ApproveRequest, "Approved"
	}

	attendee, err := decide(ctx, eventID, attendeeID)
	if err != nil {
		return err
	}

	rt.printf("✓ %s request #%d from %s for event #%d\n", verb, attendee.ID, attendee.Email, eventID)
	return nil
}

func runEventStats(ctx context.Context, format string, opts ...Option) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	rt, err := buildRuntime(opts...)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := requireOrganizer(rt); err != nil {
		return err
	}

	stats, err := rt.api.MostAttendedEvents(contextOrBackground(ctx))
	if err != nil {
		return err
	}

	if done, err := writeStructured(rt.out, format, stats); done {
		return err
	}

	if len(stats) == 0 {
		rt.println("No events found.")
		return nil
	}

	w := tabwriter.NewWriter(rt.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tDATE\tAPPROVED")
	fmt.Fprintln(w, "──\t────\t────\t────────")
	for _, s := range stats {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", s.Event.ID, s.Event.Name, s.Event.Date, s.AttendeeCount)
	}
	return w.Flush()
}
