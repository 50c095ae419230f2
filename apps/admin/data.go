package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/schoolorganizer/organizer/core/grade"
	"github.com/schoolorganizer/organizer/core/task"
)

const (
	formatYAML = "yaml"
	formatJSON = "json"
)

type dump struct {
	Courses []grade.Course `json:"courses"`
	Items   []grade.Item   `json:"grade_items"`
	Tasks   []task.Task    `json:"tasks"`
}

func (cli *commandLine) sync() error {
	res, err := cli.lms.Sync(context.Background())
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "courses: %d created, %d updated, %d matched by name\n",
		res.CoursesCreated, res.CoursesUpdated, res.CoursesMatched)
	fmt.Fprintf(cli.out, "tasks: %d created, %d updated\n", res.TasksCreated, res.TasksUpdated)
	return nil
}

func (cli *commandLine) remind(now time.Time, window time.Duration) error {
	sent, err := cli.tasks.SendReminders(context.Background(), now, window)
	if err != nil {
		return err
	}
	for _, t := range sent {
		fmt.Fprintf(cli.out, "reminded: %s\n", t.Title)
	}
	fmt.Fprintf(cli.out, "%d reminder(s) sent\n", len(sent))
	return nil
}

func (cli *commandLine) export(format string) error {
	ctx := context.Background()
	snap, err := cli.books.Snapshot(ctx)
	if err != nil {
		return err
	}
	tasks, err := cli.tasks.List(ctx, task.Filter{})
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(dump{Courses: snap.Courses, Items: snap.Items, Tasks: tasks}, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding export")
	}

	switch format {
	case formatJSON:
		_, err = fmt.Fprintln(cli.out, string(data))
		return err
	case formatYAML:
		// go through JSON so nullable fields come out as plain values or null
		var doc interface{}
		if err = json.Unmarshal(data, &doc); err != nil {
			return errors.Wrap(err, "decoding export")
		}
		enc := yaml.NewEncoder(cli.out)
		enc.SetIndent(2)
		if err = enc.Encode(doc); err != nil {
			return errors.Wrap(err, "encoding yaml")
		}
		return enc.Close()
	}
	return errors.Errorf("unknown format %q", format)
}

func (cli *commandLine) clear() error {
	ctx := context.Background()
	if err := cli.tasks.Clear(ctx); err != nil {
		return err
	}
	if err := cli.books.Clear(ctx); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "All data erased.")
	return nil
}

func readLine() (string, error) {
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return line, nil
}

func isYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
