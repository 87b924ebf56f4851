package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/fentz26/sailboard/internal/dashboard"
	"github.com/fentz26/sailboard/internal/models"
	"github.com/fentz26/sailboard/internal/render"
	"github.com/fentz26/sailboard/internal/taskview"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Inspect task-status records",
}

var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent tasks",
	Long: `Fetches the most recent task-status records and prints one page of them.
--search and --status filter the fetched records locally.`,
	RunE: runTasksList,
}

var tasksShowCmd = &cobra.Command{
	Use:   "show <task-id>",
	Short: "Show task details",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasksShow,
}

var tasksRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Ask the daemon to fetch a fresh snapshot now",
	RunE:  runTasksRefresh,
}

var (
	taskSearch   string
	taskStatus   string
	taskPage     int
	taskPageSize int
	taskJSON     bool
	taskFile     string
	taskDaemon   bool
)

func init() {
	tasksCmd.AddCommand(tasksListCmd, tasksShowCmd, tasksRefreshCmd)

	tasksListCmd.Flags().StringVar(&taskSearch, "search", "", "Only tasks whose name, description or target contains this text")
	tasksListCmd.Flags().StringVar(&taskStatus, "status", "", `Only tasks with this completion status ("In Progress" for running tasks)`)
	tasksListCmd.Flags().IntVar(&taskPage, "page", 1, "Page to show")
	tasksListCmd.Flags().IntVar(&taskPageSize, "page-size", 0, "Tasks per page (default from config)")

	for _, c := range []*cobra.Command{tasksListCmd, tasksShowCmd} {
		c.Flags().BoolVar(&taskJSON, "json", false, "Print JSON instead of text")
		c.Flags().StringVar(&taskFile, "file", "", "Read tasks from a fixture file instead of the tenant")
		c.Flags().BoolVar(&taskDaemon, "daemon", false, "Read from the running daemon's snapshot")
	}
}

func runTasksList(cmd *cobra.Command, args []string) error {
	pageSize := taskPageSize
	if pageSize <= 0 {
		pageSize = cfg.View.PageSize
	}

	var listing taskview.Listing
	if taskDaemon {
		page, err := daemonTaskPage(pageSize)
		if err != nil {
			return err
		}
		listing = page.Listing
	} else {
		tasks, err := fetchTasks(cmd.Context())
		if err != nil {
			return err
		}
		vm := taskview.NewViewModel(pageSize)
		vm.Load(tasks)
		vm.Apply(taskview.FilterState{Query: taskSearch, Status: taskStatus, Page: taskPage})
		listing = vm.Listing(time.Now())
	}

	out := cmd.OutOrStdout()
	if taskJSON {
		return writeJSON(out, listing)
	}
	return render.New(out, !noColor).Tasks(listing)
}

func runTasksShow(cmd *cobra.Command, args []string) error {
	id := args[0]

	var detail taskview.Detail
	if taskDaemon {
		body, err := apiGet("/tasks/" + url.PathEscape(id))
		if err != nil {
			return err
		}
		if err := json.Unmarshal(body, &detail); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	} else {
		tasks, err := fetchTasks(cmd.Context())
		if err != nil {
			return err
		}
		task, ok := findTask(tasks, id)
		if !ok {
			return fmt.Errorf("task %s: %w", id, dashboard.ErrNotFound)
		}
		detail = taskview.NewDetail(task, time.Now())
	}

	out := cmd.OutOrStdout()
	if taskJSON {
		return writeJSON(out, detail)
	}
	return render.New(out, !noColor).Detail(detail)
}

func runTasksRefresh(cmd *cobra.Command, args []string) error {
	body, err := apiPost("/tasks/refresh")
	if err != nil {
		return err
	}

	var result struct {
		SnapshotID string    `json:"snapshot_id"`
		FetchedAt  time.Time `json:"fetched_at"`
		TaskCount  int       `json:"task_count"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Fetched %d tasks (snapshot %s)\n", result.TaskCount, truncateID(result.SnapshotID))
	return nil
}

func fetchTasks(ctx context.Context) ([]models.Task, error) {
	conn, err := openConnector(ctx, taskFile)
	if err != nil {
		return nil, err
	}
	tasks, err := conn.ListTaskStatus(ctx, listOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	return tasks, nil
}

func daemonTaskPage(pageSize int) (*dashboard.TaskPage, error) {
	q := url.Values{}
	if taskSearch != "" {
		q.Set("q", taskSearch)
	}
	if taskStatus != "" {
		q.Set("status", taskStatus)
	}
	q.Set("page", strconv.Itoa(taskPage))
	q.Set("page_size", strconv.Itoa(pageSize))

	body, err := apiGet("/tasks?" + q.Encode())
	if err != nil {
		return nil, err
	}
	var page dashboard.TaskPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &page, nil
}

func findTask(tasks []models.Task, id string) (models.Task, bool) {
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
	}
	return models.Task{}, false
}

func truncateID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
