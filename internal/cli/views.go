package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aloks98/securevault"
	"github.com/aloks98/securevault/dashboard"
	"github.com/aloks98/securevault/identity"
	"github.com/aloks98/securevault/internal/wire"
)

const permissionUsersView = "users:view"

var (
	errForbidden = securevault.NewSessionError("FORBIDDEN", "You do not have access to this page", nil)
	errMockOnly  = securevault.NewSessionError("MOCK_ONLY", "Listing users needs identity.mode=mock", nil)
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func (a *App) dashboardCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the dashboard of the signed-in role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd.Context(), func(sess *securevault.Session) error {
				user, err := a.signedIn(sess)
				if err != nil {
					return err
				}
				view, err := dashboard.For(user.Role, a.policy())
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(a.out, view)
				}
				a.printDashboard(user, view)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func (a *App) printDashboard(user *identity.User, v *dashboard.View) {
	a.heading(v.Title)
	fmt.Fprintln(a.out, v.Subtitle)
	mutedColor.Fprintf(a.out, "%s, %s\n\n", user.FullName(), user.Role.Label())

	tw := newTable(a.out)
	for _, s := range v.Stats {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Title, s.Value, s.Note)
	}
	_ = tw.Flush()
	fmt.Fprintln(a.out)

	a.heading(v.TaskPanel.Title)
	fmt.Fprintln(a.out, v.TaskPanel.Description)
	printTasks(a.out, v.Tasks)

	if len(v.Findings) > 0 {
		fmt.Fprintln(a.out)
		a.heading("Findings")
		tw := newTable(a.out)
		for _, f := range v.Findings {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", f.Type, f.Severity, f.Target, f.Status)
		}
		_ = tw.Flush()
	}
	if len(v.Approvals) > 0 {
		fmt.Fprintln(a.out)
		a.heading("Pending approvals")
		for _, ap := range v.Approvals {
			fmt.Fprintf(a.out, "  %s: %s (%s)\n", ap.Type, ap.Subject, ap.Detail)
		}
	}

	fmt.Fprintln(a.out)
	a.heading("Navigation")
	for _, sec := range v.Navigation {
		titles := make([]string, 0, len(sec.Items))
		for _, it := range sec.Items {
			titles = append(titles, it.Title)
		}
		fmt.Fprintf(a.out, "  %s: %s\n", sec.Title, strings.Join(titles, ", "))
	}
}

func printTasks(w io.Writer, tasks []dashboard.Task) {
	if len(tasks) == 0 {
		mutedColor.Fprintln(w, "No tasks found")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tTITLE\tSTATUS\tPRIORITY\tPROGRESS\tDUE")
	for _, t := range tasks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d%%\t%s\n", t.ID, t.Title, t.Status, t.Priority, t.Progress, t.DueDate)
	}
	_ = tw.Flush()
}

func (a *App) tasksCommand() *cobra.Command {
	var (
		query  string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List the tasks of the signed-in role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd.Context(), func(sess *securevault.Session) error {
				user, err := a.signedIn(sess)
				if err != nil {
					return err
				}
				tasks := dashboard.FilterTasks(dashboard.Tasks(user.Role), query)
				if asJSON {
					return writeJSON(a.out, wire.TasksResponse{
						Query:  query,
						Tasks:  tasks,
						Counts: dashboard.CountByStatus(tasks),
					})
				}

				printTasks(a.out, tasks)
				counts := dashboard.CountByStatus(tasks)
				parts := make([]string, 0, len(counts))
				for _, st := range dashboard.Statuses() {
					parts = append(parts, fmt.Sprintf("%s %d", st, counts[st]))
				}
				mutedColor.Fprintln(a.out, strings.Join(parts, ", "))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "filter by title or description")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func (a *App) usersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List registered accounts (admin only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd.Context(), func(sess *securevault.Session) error {
				user, err := a.signedIn(sess)
				if err != nil {
					return err
				}
				if err := a.policy().Require(user.Role, permissionUsersView); err != nil {
					return errForbidden
				}
				if a.mockService == nil {
					return errMockOnly
				}

				records, err := a.mockService.Directory().List(cmd.Context())
				if err != nil {
					return err
				}
				tw := newTable(a.out)
				fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE\tORGANIZATION")
				for _, rec := range records {
					u := rec.User
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.FullName(), u.Email, u.Role.Label(), u.Organization)
				}
				return tw.Flush()
			})
		},
	}
}
