package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/schoolorganizer/organizer/core"
	"github.com/schoolorganizer/organizer/core/gradebook"
	"github.com/schoolorganizer/organizer/core/lms"
	"github.com/schoolorganizer/organizer/core/task"
)

var (
	isTerminalFunc = term.IsTerminal // mockable
	readLineFunc   = readLine        // mockable

	errHelp     = errors.New("help provided")
	errAborted  = errors.New("aborted")
	errNoTTY    = errors.New("refusing to clear data without -yes outside a terminal")
	errNotSQLDB = errors.New("migrate needs the postgres database engine")
)

type commandLine struct {
	conf  *core.Config
	db    *sqlx.DB // nil on the memory engine
	books *gradebook.Service
	tasks *task.Service
	lms   *lms.Service
	out   io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS]            - run a database migration command (up, down, status, ...)")
	fmt.Fprintln(cli.out, "  gpa                               - print every course grade and the overall GPA")
	fmt.Fprintln(cli.out, "  whatif -course ID -percent P      - project the GPA if a course ended at P percent")
	fmt.Fprintln(cli.out, "  upcoming [-days N]                - list pending tasks due within N days")
	fmt.Fprintln(cli.out, "  sync                              - import courses and assignments from Canvas")
	fmt.Fprintln(cli.out, "  remind [-window DURATION]         - email reminders falling due within the window")
	fmt.Fprintln(cli.out, "  export [-format yaml|json]        - dump all courses, grades and tasks")
	fmt.Fprintln(cli.out, "  clear [-yes]                      - erase all courses, tasks and grades")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	whatIfCmd := flag.NewFlagSet("whatif", flag.ContinueOnError)
	whatIfCourse := whatIfCmd.String("course", "", "The course ID.")
	whatIfPercent := whatIfCmd.String("percent", "", "The hypothetical final percent of the course.")

	upcomingCmd := flag.NewFlagSet("upcoming", flag.ContinueOnError)
	upcomingDays := upcomingCmd.Int("days", task.DefaultUpcomingDays, "How many days ahead to look.")

	remindCmd := flag.NewFlagSet("remind", flag.ContinueOnError)
	remindWindow := remindCmd.Duration("window", cli.conf.Reminder.Window, "Send reminders falling due within this window.")

	exportCmd := flag.NewFlagSet("export", flag.ContinueOnError)
	exportFormat := exportCmd.String("format", formatYAML, "Output format: yaml or json.")

	clearCmd := flag.NewFlagSet("clear", flag.ContinueOnError)
	clearYes := clearCmd.Bool("yes", false, "Do not ask for confirmation.")

	for _, fs := range []*flag.FlagSet{whatIfCmd, upcomingCmd, remindCmd, exportCmd, clearCmd} {
		fs.SetOutput(cli.out)
	}

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "gpa":
		return cli.gpa()

	case "whatif":
		if err := whatIfCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *whatIfCourse == "" || *whatIfPercent == "" {
			whatIfCmd.Usage()
			return errHelp
		}
		pct, err := strconv.ParseFloat(*whatIfPercent, 64)
		if err != nil || math.IsNaN(pct) || math.IsInf(pct, 0) {
			return fmt.Errorf("invalid percent %q", *whatIfPercent)
		}
		return cli.whatIf(*whatIfCourse, pct)

	case "upcoming":
		if err := upcomingCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		return cli.upcoming(*upcomingDays)

	case "sync":
		return cli.sync()

	case "remind":
		if err := remindCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *remindWindow <= 0 {
			remindCmd.Usage()
			return errHelp
		}
		return cli.remind(time.Now(), *remindWindow)

	case "export":
		if err := exportCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		return cli.export(*exportFormat)

	case "clear":
		if err := clearCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if !*clearYes {
			if !isTerminalFunc(int(os.Stdin.Fd())) {
				return errNoTTY
			}
			fmt.Fprint(cli.out, "This will erase all courses, tasks, and grades. Continue? [y/N] ")
			answer, err := readLineFunc()
			fmt.Fprintln(cli.out)
			if err != nil {
				return err
			}
			if !isYes(answer) {
				return errAborted
			}
		}
		return cli.clear()

	default:
		cli.printUsage()
		return errHelp
	}
}
