package routes

import "github.com/eventmgmt/eventctl/internal/cli/session"

var (
	organizerRoles = []session.Role{session.RoleOrganizer, session.RoleAdmin}
	memberRoles    = []session.Role{session.RoleAttendee, session.RoleOrganizer, session.RoleAdmin}
)

// DefaultRoutes is the application's page table.
// The catch-all stays last.
func DefaultRoutes() []Route {
	return []Route{
		{Path: "/", Name: "home", Component: "IndexPage"},
		{Path: "/events", Name: "events", Component: "EventListPage"},
		{Path: "/forbidden", Name: "forbidden", Component: "ForbiddenPage"},
		{Path: "/events/{id}", Name: "event-details", Component: "EventDetailsPage"},
		{
			Path: "/admin/dashboard", Name: "admin-dashboard", Component: "AdminDashboardPage",
			Meta: Meta{RequiresAuth: true, Roles: []session.Role{session.RoleAdmin}},
		},

		// Auth
		{Path: "/login", Name: "login", Component: "LoginPage", Meta: Meta{GuestOnly: true}},
		{Path: "/register", Name: "register", Component: "RegisterPage", Meta: Meta{GuestOnly: true}},

		// Attendee
		{
			Path: "/my-events", Name: "my-events", Component: "MyEventsPage",
			Meta: Meta{RequiresAuth: true, Roles: memberRoles},
		},
		{
			Path: "/notifications", Name: "notifications", Component: "NotificationsPage",
			Meta: Meta{RequiresAuth: true},
		},

		// Organizer
		{
			Path: "/organizer/dashboard", Name: "organizer-dashboard", Component: "OrganizerDashboardPage",
			Meta: Meta{RequiresAuth: true, Roles: organizerRoles},
		},
		{
			Path: "/organizer/events", Name: "organizer-events", Component: "MyEventsPage",
			Meta: Meta{RequiresAuth: true, Roles: organizerRoles},
		},
		{
			Path: "/organizer/events/new", Name: "organizer-event-new", Component: "EditEventPage",
			Meta: Meta{RequiresAuth: true, Roles: organizerRoles},
		},
		{
			Path: "/organizer/events/{id}/edit", Name: "organizer-event-edit", Component: "EditEventPage",
			Meta: Meta{RequiresAuth: true, Roles: organizerRoles},
		},
		{
			Path: "/organizer/events/{id}/attendees", Name: "organizer-event-attendees", Component: "EventAttendeesPage",
			Meta: Meta{RequiresAuth: true, Roles: organizerRoles},
		},

		{Path: CatchAllPath, Component: "ErrorNotFound"},
	}
}

// Default returns a table over DefaultRoutes
func Default() *Table {
	t, err := NewTable(DefaultRoutes())
	if err != nil {
		panic(err)
	}
	return t
}
