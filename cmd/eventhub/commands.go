package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"eventhub/internal/domain"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseID(name, s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s %q: %w", name, s, domain.ErrInvalidInput)
	}
	return id, nil
}

func newUserCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "user", Short: "Manage users"}

	var in domain.RegisterUserInput
	var role string
	register := &cobra.Command{
		Use:   "register",
		Short: "Register a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Role = domain.UserRole(role)
			user, err := a.users.Register(cmd.Context(), in)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), user)
		},
	}
	register.Flags().StringVar(&in.Name, "name", "", "Display name")
	register.Flags().StringVar(&in.Email, "email", "", "E-mail address")
	register.Flags().StringVar(&in.Login, "login", "", "Unique login")
	register.Flags().StringVar(&in.Password, "password", "", "Password")
	register.Flags().StringVar(&role, "role", string(domain.UserRoleMember), "admin|organizer|member")

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("user id", args[0])
			if err != nil {
				return err
			}
			user, err := a.users.GetByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), user)
		},
	}

	remove := &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a user without participations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("user id", args[0])
			if err != nil {
				return err
			}
			return a.users.Remove(cmd.Context(), id)
		},
	}

	cmd.AddCommand(register, get, remove)
	return cmd
}

func newEventCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "event", Short: "Manage events"}

	var in domain.CreateEventInput
	var start, organizer string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an event; the organizer joins it automatically",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if in.StartTime, err = time.Parse(time.RFC3339, start); err != nil {
				return fmt.Errorf("invalid --start: %w", domain.ErrInvalidInput)
			}
			if in.OrganizerID, err = parseID("organizer id", organizer); err != nil {
				return err
			}
			event, err := a.events.Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), event)
		},
	}
	create.Flags().StringVar(&in.Title, "title", "", "Title")
	create.Flags().StringVar(&in.Description, "description", "", "Description")
	create.Flags().StringVar(&in.Address, "address", "", "Venue address")
	create.Flags().StringVar(&start, "start", "", "Start time, RFC 3339")
	create.Flags().StringVar(&organizer, "organizer", "", "Organizer user id")

	var newStart string
	reschedule := &cobra.Command{
		Use:   "reschedule <id>",
		Short: "Move an event to a new start time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("event id", args[0])
			if err != nil {
				return err
			}
			at, err := time.Parse(time.RFC3339, newStart)
			if err != nil {
				return fmt.Errorf("invalid --start: %w", domain.ErrInvalidInput)
			}
			event, err := a.events.Reschedule(cmd.Context(), id, at)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), event)
		},
	}
	reschedule.Flags().StringVar(&newStart, "start", "", "New start time, RFC 3339")

	cancel := &cobra.Command{
		Use:   "cancel <id>",
		Short: "Delete an event with its participations and notifications",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("event id", args[0])
			if err != nil {
				return err
			}
			return a.events.Cancel(cmd.Context(), id)
		},
	}

	search := &cobra.Command{
		Use:   "search [title]",
		Short: "List events whose title contains the text",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var title string
			if len(args) == 1 {
				title = args[0]
			}
			events, err := a.events.Search(cmd.Context(), title)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), events)
		},
	}

	cmd.AddCommand(create, reschedule, cancel, search)
	return cmd
}

func newParticipationCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "participation", Short: "Invite users and track their answers"}

	var user, event, role string
	invite := &cobra.Command{
		Use:   "invite",
		Short: "Invite a user to an event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseID("user id", user)
			if err != nil {
				return err
			}
			eventID, err := parseID("event id", event)
			if err != nil {
				return err
			}
			p, err := a.participations.Invite(cmd.Context(), domain.InviteInput{
				UserID:  userID,
				EventID: eventID,
				Role:    domain.ParticipationRole(role),
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), p)
		},
	}
	invite.Flags().StringVar(&user, "user", "", "User id")
	invite.Flags().StringVar(&event, "event", "", "Event id")
	invite.Flags().StringVar(&role, "role", "", "organizer|speaker|attendee (default attendee)")

	respond := &cobra.Command{
		Use:   "respond <id> <accepted|declined|cancelled>",
		Short: "Record the invited user's answer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("participation id", args[0])
			if err != nil {
				return err
			}
			p, err := a.participations.Respond(cmd.Context(), id, domain.ParticipationStatus(args[1]))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), p)
		},
	}

	withdraw := &cobra.Command{
		Use:   "withdraw <id>",
		Short: "Delete a participation and its notifications",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("participation id", args[0])
			if err != nil {
				return err
			}
			return a.participations.Withdraw(cmd.Context(), id)
		},
	}

	cmd.AddCommand(invite, respond, withdraw)
	return cmd
}

func newNotificationCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "notification", Short: "Send and list notifications"}

	var typ, text string
	send := &cobra.Command{
		Use:   "send <participation-id>",
		Short: "Record a notification and e-mail it to the participant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("participation id", args[0])
			if err != nil {
				return err
			}
			n, err := a.notifications.Notify(cmd.Context(), id, domain.NotificationType(typ), text)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), n)
		},
	}
	send.Flags().StringVar(&typ, "type", string(domain.NotificationReminder), "invitation|reminder|update|cancellation")
	send.Flags().StringVar(&text, "text", "", "Message text")

	history := &cobra.Command{
		Use:   "history <participation-id>",
		Short: "List a participation's notifications, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("participation id", args[0])
			if err != nil {
				return err
			}
			ns, err := a.notifications.History(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), ns)
		},
	}

	cmd.AddCommand(send, history)
	return cmd
}
