// Package dashboard assembles the role specific landing page of a signed
// in user: headline stats, the task panel and the sections only some roles
// see.
package dashboard

import (
	"fmt"
	"strings"

	"github.com/aloks98/securevault/identity"
	"github.com/aloks98/securevault/rbac"
)

// TaskStatus is the lifecycle state of a security test.
type TaskStatus string

const (
	StatusPending   TaskStatus = "pending"
	StatusActive    TaskStatus = "active"
	StatusCompleted TaskStatus = "completed"
	StatusCritical  TaskStatus = "critical"
)

// Statuses lists every task status in display order.
func Statuses() []TaskStatus {
	return []TaskStatus{StatusPending, StatusActive, StatusCompleted, StatusCritical}
}

// Priority ranks a task.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Task is a security test shown in the task panel.
type Task struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Status          TaskStatus `json:"status"`
	Priority        Priority   `json:"priority"`
	Assignee        string     `json:"assignee,omitempty"`
	DueDate         string     `json:"dueDate,omitempty"`
	Progress        int        `json:"progress"`
	Vulnerabilities int        `json:"vulnerabilities"`
}

// Stat is a headline number.
type Stat struct {
	Title   string `json:"title"`
	Value   string `json:"value"`
	Note    string `json:"note,omitempty"`
	Trend   string `json:"trend,omitempty"`
	TrendUp bool   `json:"trendUp,omitempty"`
}

type Project struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	Status          string `json:"status"`
	Progress        int    `json:"progress"`
	Vulnerabilities int    `json:"vulnerabilities"`
	LastScan        string `json:"lastScan"`
	Severity        string `json:"severity,omitempty"`
}

type Report struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Date string `json:"date"`
	Type string `json:"type"`
	Size string `json:"size"`
}

type Activity struct {
	Action  string `json:"action"`
	Subject string `json:"subject,omitempty"`
	Time    string `json:"time"`
	Kind    string `json:"kind"`
}

type Approval struct {
	ID      int    `json:"id"`
	Type    string `json:"type"`
	Subject string `json:"subject"`
	Detail  string `json:"detail"`
}

type Assignment struct {
	ID       int      `json:"id"`
	Target   string   `json:"target"`
	Client   string   `json:"client"`
	Priority Priority `json:"priority"`
	Deadline string   `json:"deadline"`
	Status   string   `json:"status"`
	Scope    string   `json:"scope"`
}

// Finding is a vulnerability reported by an ethical hacker.
type Finding struct {
	ID       int    `json:"id"`
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Target   string `json:"target"`
	Status   string `json:"status"`
}

type Tool struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Version string `json:"version"`
}

type MonthResult struct {
	Month   string `json:"month"`
	Passed  int    `json:"passed"`
	Failed  int    `json:"failed"`
	Pending int    `json:"pending"`
}

type Slice struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

type WeekProgress struct {
	Week       string `json:"week"`
	Completion int    `json:"completion"`
}

// Charts holds the series of the overview charts.
type Charts struct {
	TestResults     []MonthResult  `json:"testResults"`
	Vulnerabilities []Slice        `json:"vulnerabilities"`
	Progress        []WeekProgress `json:"progress"`
}

// NavItem is a sidebar link.
type NavItem struct {
	Title      string `json:"title"`
	URL        string `json:"url"`
	Permission string `json:"-"`
}

// NavSection is a titled group of sidebar links. A section with a
// permission is hidden from roles lacking it.
type NavSection struct {
	Title      string    `json:"title"`
	Permission string    `json:"-"`
	Items      []NavItem `json:"items"`
}

// Panel describes the task panel header.
type Panel struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CanRequest  bool   `json:"canRequest"`
	CanAccept   bool   `json:"canAccept"`
}

// View is everything the dashboard of one role shows. Sections a role
// does not see are nil.
type View struct {
	Role       identity.Role `json:"role"`
	Title      string        `json:"title"`
	Subtitle   string        `json:"subtitle"`
	Stats      []Stat        `json:"stats"`
	Overview   []Stat        `json:"overview"`
	TaskPanel  Panel         `json:"taskPanel"`
	Tasks      []Task        `json:"tasks"`
	Activity   []Activity    `json:"activity"`
	Charts     Charts        `json:"charts"`
	Navigation []NavSection  `json:"navigation"`

	Projects    []Project    `json:"projects,omitempty"`
	Reports     []Report     `json:"reports,omitempty"`
	Approvals   []Approval   `json:"approvals,omitempty"`
	Assignments []Assignment `json:"assignments,omitempty"`
	Findings    []Finding    `json:"findings,omitempty"`
	Tools       []Tool       `json:"tools,omitempty"`
}

// For builds the dashboard of role. A nil policy uses rbac.DefaultPolicy.
func For(role identity.Role, policy *rbac.Policy) (*View, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: %q", identity.ErrUnknownRole, role)
	}
	if policy == nil {
		policy = rbac.DefaultPolicy()
	}

	v := identity.Dispatch[*View](role, views{})
	v.Role = role
	v.Overview = overview()
	v.Charts = charts()
	v.Navigation = Navigation(role, policy)
	v.TaskPanel.CanRequest = policy.Can(role, "tasks:create")
	v.TaskPanel.CanAccept = policy.Can(role, "tasks:accept")
	return v, nil
}

type views struct{}

func (views) Client() *View {
	return &View{
		Title:    "Client Dashboard",
		Subtitle: "Monitor your security assessments and access detailed reports",
		Stats:    clientStats(),
		TaskPanel: Panel{
			Title:       "My Security Tests",
			Description: "Track your ongoing and completed security assessments",
		},
		Tasks:    clientTasks(),
		Activity: recentActivity(),
		Projects: projects(),
		Reports:  reports(),
	}
}

func (views) Admin() *View {
	return &View{
		Title:    "Admin Control Center",
		Subtitle: "Manage users, monitor security operations, and oversee system activities",
		Stats:    adminStats(),
		TaskPanel: Panel{
			Title:       "All Platform Tasks",
			Description: "Manage and oversee all security testing activities",
		},
		Tasks:     adminTasks(),
		Activity:  adminActivity(),
		Approvals: approvals(),
	}
}

func (views) EthicalHacker() *View {
	return &View{
		Title:    "Ethical Hacker Hub",
		Subtitle: "Manage penetration testing assignments and security assessments",
		Stats:    hackerStats(),
		TaskPanel: Panel{
			Title:       "Available Assignments",
			Description: "Browse and accept security testing tasks",
		},
		Tasks:       hackerTasks(),
		Activity:    recentActivity(),
		Assignments: assignments(),
		Findings:    findings(),
		Tools:       tools(),
	}
}

type tasksByRole struct{}

func (tasksByRole) Client() []Task        { return clientTasks() }
func (tasksByRole) Admin() []Task         { return adminTasks() }
func (tasksByRole) EthicalHacker() []Task { return hackerTasks() }

// Tasks returns the task list of role, or nil for an unknown role.
func Tasks(role identity.Role) []Task {
	if !role.Valid() {
		return nil
	}
	return identity.Dispatch[[]Task](role, tasksByRole{})
}

// Navigation returns the sidebar sections visible to role. Sections left
// without items are dropped.
func Navigation(role identity.Role, policy *rbac.Policy) []NavSection {
	var out []NavSection
	for _, sec := range navigation() {
		if sec.Permission != "" && !policy.Can(role, sec.Permission) {
			continue
		}
		var items []NavItem
		for _, it := range sec.Items {
			if it.Permission == "" || policy.Can(role, it.Permission) {
				items = append(items, it)
			}
		}
		if len(items) > 0 {
			sec.Items = items
			out = append(out, sec)
		}
	}
	return out
}

// FilterTasks returns the tasks whose title or description contains query,
// ignoring case. An empty query matches everything.
func FilterTasks(tasks []Task, query string) []Task {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if q == "" ||
			strings.Contains(strings.ToLower(t.Title), q) ||
			strings.Contains(strings.ToLower(t.Description), q) {
			out = append(out, t)
		}
	}
	return out
}

// CountByStatus counts tasks per status.
func CountByStatus(tasks []Task) map[TaskStatus]int {
	counts := make(map[TaskStatus]int, len(Statuses()))
	for _, s := range Statuses() {
		counts[s] = 0
	}
	for _, t := range tasks {
		counts[t.Status]++
	}
	return counts
}
