package output

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/jobtracker/jobtracker/pkg/store"
)

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
}

func WriteApplicationTable(w io.Writer, apps []store.ApplicationSummary) {
	tw := newTabWriter(w)
	_, _ = fmt.Fprintln(tw, "ID\tCOMPANY\tPOSITION\tSTATUS\tAPPLIED\tSALARY\tINTERVIEWS\tSKILLS")
	for _, a := range apps {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%d\t%d\n", a.ID, a.CompanyName, a.PositionTitle,
			a.Status, a.DateApplied, formatSalary(a.SalaryMin, a.SalaryMax), a.InterviewCount, a.SkillsCount)
	}
	_ = tw.Flush()
}

func WriteApplicationDetail(w io.Writer, d *store.ApplicationDetail) {
	tw := newTabWriter(w)
	_, _ = fmt.Fprintf(tw, "ID:\t%d\n", d.ID)
	_, _ = fmt.Fprintf(tw, "Company:\t%s\n", d.CompanyName)
	_, _ = fmt.Fprintf(tw, "Position:\t%s\n", d.PositionTitle)
	_, _ = fmt.Fprintf(tw, "Status:\t%s\n", d.Status)
	_, _ = fmt.Fprintf(tw, "Applied:\t%s\n", d.DateApplied)
	_, _ = fmt.Fprintf(tw, "Salary:\t%s\n", formatSalary(d.SalaryMin, d.SalaryMax))
	_, _ = fmt.Fprintf(tw, "Location:\t%s\n", dash(d.Location))
	_, _ = fmt.Fprintf(tw, "URL:\t%s\n", dash(d.JobURL))
	if d.Notes != "" {
		_, _ = fmt.Fprintf(tw, "Notes:\t%s\n", d.Notes)
	}
	_ = tw.Flush()

	if len(d.Interviews) > 0 {
		_, _ = fmt.Fprintln(w, "\nInterviews:")
		tw = newTabWriter(w)
		_, _ = fmt.Fprintln(tw, "ID\tDATE\tROUND\tINTERVIEWER\tOUTCOME")
		for _, iv := range d.Interviews {
			_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", iv.ID, dash(iv.InterviewDate), dash(string(iv.RoundType)),
				dash(iv.InterviewerName), iv.Outcome)
		}
		_ = tw.Flush()
	}
	if len(d.Skills) > 0 {
		_, _ = fmt.Fprintln(w, "\nSkills:")
		tw = newTabWriter(w)
		_, _ = fmt.Fprintln(tw, "ID\tSKILL\tTYPE")
		for _, sk := range d.Skills {
			_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\n", sk.ID, sk.SkillName, sk.SkillType)
		}
		_ = tw.Flush()
	}
}

func WriteStatusTable(w io.Writer, rows []store.StatusCount) {
	tw := newTabWriter(w)
	_, _ = fmt.Fprintln(tw, "STATUS\tCOUNT")
	for _, r := range rows {
		_, _ = fmt.Fprintf(tw, "%s\t%d\n", r.Status, r.Count)
	}
	_ = tw.Flush()
}

func WriteSkillTable(w io.Writer, rows []store.SkillCount) {
	tw := newTabWriter(w)
	_, _ = fmt.Fprintln(tw, "SKILL\tCOUNT")
	for _, r := range rows {
		_, _ = fmt.Fprintf(tw, "%s\t%d\n", r.SkillName, r.Count)
	}
	_ = tw.Flush()
}

func WriteTimelineTable(w io.Writer, rows []store.WeekCount) {
	tw := newTabWriter(w)
	_, _ = fmt.Fprintln(tw, "WEEK\tCOUNT")
	for _, r := range rows {
		_, _ = fmt.Fprintf(tw, "%s\t%d\n", r.Week, r.Count)
	}
	_ = tw.Flush()
}

func formatSalary(minSalary, maxSalary *int64) string {
	switch {
	case minSalary != nil && maxSalary != nil:
		return strconv.FormatInt(*minSalary, 10) + "-" + strconv.FormatInt(*maxSalary, 10)
	case minSalary != nil:
		return strconv.FormatInt(*minSalary, 10) + "+"
	case maxSalary != nil:
		return "<=" + strconv.FormatInt(*maxSalary, 10)
	default:
		return "-"
	}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
