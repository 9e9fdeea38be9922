// Package ui renders API data for the terminal and asks the user for input.
package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/smart-review/smart-review-cli/internal/routing"
	"github.com/smart-review/smart-review-cli/internal/workflow"
	"github.com/smart-review/smart-review-cli/models"
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

func field(label, value string) string {
	return labelStyle.Render(label+":") + " " + value
}

// Identity renders the logged-in user and the screens they can reach.
func Identity(user models.Identity, menu []routing.MenuItem) string {
	lines := []string{
		titleStyle.Render(user.FullName),
		field("Email", user.Email),
		field("Role", string(user.Role)),
	}
	if user.StudentCode != "" {
		lines = append(lines, field("Student code", user.StudentCode))
	}
	if user.LecturerCode != "" {
		lines = append(lines, field("Lecturer code", user.LecturerCode))
	}
	if len(menu) > 0 {
		items := make([]string, len(menu))
		for i, m := range menu {
			items[i] = fmt.Sprintf("  %s %s", m.Label, mutedStyle.Render(m.Path))
		}
		lines = append(lines, labelStyle.Render("Menu:"))
		lines = append(lines, items...)
	}
	return strings.Join(lines, "\n")
}

func Periods(periods []models.ReviewPeriod) string {
	if len(periods) == 0 {
		return mutedStyle.Render("No review periods.")
	}
	t := newTable("ID", "Name", "Semester", "Round", "Dates", "Status")
	for _, p := range periods {
		t.Row(
			strconv.Itoa(p.ID),
			p.Name,
			p.SemesterName,
			strconv.Itoa(p.ReviewRound),
			p.StartDate+" - "+p.EndDate,
			p.Status.String(),
		)
	}
	return t.String()
}

func Sessions(sessions []models.ReviewSession) string {
	if len(sessions) == 0 {
		return mutedStyle.Render("No scheduled sessions.")
	}
	t := newTable("ID", "Group", "Date", "Time", "Council", "Status", "Score")
	for _, s := range sessions {
		score := "-"
		if s.AlgorithmScore != nil {
			score = fmt.Sprintf("%.2f", *s.AlgorithmScore)
		}
		t.Row(
			strconv.Itoa(s.ID),
			s.GroupName,
			s.SlotDate,
			s.StartTime+"-"+s.EndTime,
			council(s.CouncilMembers),
			s.Status.String(),
			score,
		)
	}
	return t.String()
}

func council(members []models.CouncilMember) string {
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.LecturerName
		if m.Role == models.CouncilChair {
			names[i] += " (chair)"
		}
	}
	return strings.Join(names, ", ")
}

// ScheduleResult renders a scheduling run, including the diagnostics of a
// failed one.
func ScheduleResult(r *models.ScheduleResult) string {
	if r == nil {
		return mutedStyle.Render("No schedule generated.")
	}

	var b strings.Builder
	status := successStyle.Render("Schedule generated")
	if !r.IsSuccess {
		status = errorStyle.Render("Schedule incomplete")
	}
	fmt.Fprintf(&b, "%s for period %d\n", status, r.ReviewPeriodID)
	fmt.Fprintf(&b, "%s  %s  %s\n",
		field("Slots", strconv.Itoa(r.TotalSlots)),
		field("Scheduled groups", strconv.Itoa(r.ScheduledGroups)),
		field("Unscheduled groups", strconv.Itoa(r.UnscheduledGroups)))

	if len(r.ScheduledSessions) > 0 {
		t := newTable("Session", "Group", "Slot", "Date", "Time", "Council", "Score")
		for _, s := range r.ScheduledSessions {
			t.Row(
				strconv.Itoa(s.SessionID),
				fmt.Sprintf("%s (%d)", s.GroupName, s.GroupID),
				strconv.Itoa(s.SlotID),
				s.SlotDate,
				s.StartTime+"-"+s.EndTime,
				council(s.CouncilMembers),
				fmt.Sprintf("%.2f", s.AlgorithmScore),
			)
		}
		b.WriteString(t.String())
		b.WriteString("\n")
	}

	for _, w := range r.Warnings {
		b.WriteString(warningStyle.Render("warning: "+w.Message) + "\n")
	}
	for _, e := range r.Errors {
		b.WriteString(errorStyle.Render("error: "+e) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// Snapshot renders the state of a scheduling workflow.
func Snapshot(s workflow.Snapshot) string {
	lines := []string{field("Period", strconv.Itoa(s.PeriodID)) + "  " + field("State", s.State.String())}
	if s.Outcome != workflow.NoOutcome {
		lines = append(lines, successStyle.Render("Schedule "+s.Outcome.String()))
	}
	if s.Result != nil {
		lines = append(lines, ScheduleResult(s.Result))
	}
	if s.Err != nil {
		lines = append(lines, Error(s.Err))
	}
	return strings.Join(lines, "\n")
}

func Error(err error) string {
	return errorStyle.Render("error: " + err.Error())
}

func Success(msg string) string {
	return successStyle.Render(msg)
}
