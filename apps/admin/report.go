package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/volatiletech/null/v8"
)

const dueLayout = "Mon Jan 2 15:04"

func (cli *commandLine) gpa() error {
	rep, err := cli.books.Report(context.Background())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "COURSE\tCREDITS\tPERCENT\tLETTER\tPOINTS")
	for _, line := range rep.Courses {
		fmt.Fprintf(w, "%s\t%g\t%s\t%s\t%s\n",
			line.Course.Name, line.Course.Credits, fmtNum(line.Percent, 1), line.Letter, fmtNum(line.Points, 1))
	}
	if err = w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "GPA: %s\n", fmtNum(rep.GPA, 2))
	return nil
}

func (cli *commandLine) whatIf(courseID string, percent float64) error {
	proj, err := cli.books.WhatIf(context.Background(), courseID, percent)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%s at %g%% (%s): GPA %s\n", proj.CourseID, proj.Percent, proj.Letter, fmtNum(proj.GPA, 2))
	return nil
}

func (cli *commandLine) upcoming(days int) error {
	tasks, err := cli.tasks.Upcoming(context.Background(), days)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		fmt.Fprintln(cli.out, "Nothing due.")
		return nil
	}

	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DUE\tTYPE\tTITLE\tSTEPS LEFT")
	for _, t := range tasks {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", t.Due.Local().Format(dueLayout), t.Type, t.Title, len(t.PendingSteps()))
	}
	return w.Flush()
}

func fmtNum(n null.Float64, prec int) string {
	if !n.Valid {
		return "-"
	}
	return fmt.Sprintf("%.*f", prec, n.Float64)
}
