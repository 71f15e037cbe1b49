package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/jotlens/internal/jsonl"
	"github.com/cognicore/jotlens/internal/llm"
	"github.com/cognicore/jotlens/internal/scheduler"
	"github.com/cognicore/jotlens/internal/server"
	"github.com/cognicore/jotlens/pkg/jotlens"
	"github.com/cognicore/jotlens/pkg/jotlens/config"
	"github.com/cognicore/jotlens/pkg/jotlens/entry"
	"github.com/cognicore/jotlens/pkg/jotlens/ingest"
	"github.com/cognicore/jotlens/pkg/jotlens/mood"
	"github.com/cognicore/jotlens/pkg/jotlens/stoplist"
	"github.com/cognicore/jotlens/pkg/jotlens/store/sqlite"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "jotlens",
	Short:        "Journal analytics: mood, tasks, topics and prompts",
	Long:         "jotlens analyzes journal entries for mood, productivity and action items, surfaces recurring topics and suggests what to write about next.",
	Version:      version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	addCmd.Flags().String("date", "", "Entry date (YYYY-MM-DD), defaults to now")
	addCmd.Flags().Bool("html", false, "Treat the text as HTML and strip markup")
	scoreCmd.Flags().Bool("html", false, "Treat the text as HTML and strip markup")
	insightsCmd.Flags().StringP("period", "p", "all", "weekly, monthly or all")
	reportCmd.Flags().StringP("period", "p", "all", "weekly, monthly or all")
	promptCmd.Flags().Bool("daily", false, "Generate and store today's daily prompt")
	tasksCmd.Flags().Bool("all", false, "Include completed tasks")
	dumpCmd.Flags().String("format", "json", "json, jsonl or yaml")
	stopwordsCmd.Flags().StringP("period", "p", "all", "weekly, monthly or all")
	stopwordsCmd.Flags().Float64("min-df-percent", 60, "Minimum share of entries containing the word")
	stopwordsCmd.Flags().Int("min-df", 5, "Minimum number of entries containing the word")

	rootCmd.AddCommand(initCmd, versionCmd, addCmd, scoreCmd, insightsCmd, reportCmd,
		promptCmd, tasksCmd, doneCmd, deleteCmd, dumpCmd, importCmd, stopwordsCmd, serveCmd)
}

// openEngine wires the configured store, analyzers and mood backend.
func openEngine(ctx context.Context) (*jotlens.Engine, error) {
	comp, err := (&config.Loader{Config: cfg}).Load()
	if err != nil {
		return nil, err
	}

	var classifier mood.Classifier = comp.Lexicon
	if cfg.Sentiment.Backend == config.BackendOpenAI {
		c, err := llm.New(llm.Config{
			APIKey:          cfg.APIKey(),
			BaseURL:         cfg.LLM.BaseURL,
			Model:           cfg.LLM.Model,
			MaxOutputTokens: cfg.LLM.MaxOutputTokens,
			Timeout:         cfg.LLM.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("openai sentiment backend (set %s): %w", cfg.LLM.APIKeyEnv, err)
		}
		classifier = c
	}

	st, err := sqlite.OpenSQLite(ctx, cfg.StorePath())
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	return jotlens.New(jotlens.Options{
		Store:        st,
		Tokenizer:    comp.Tokenizer,
		Classifier:   classifier,
		Fallback:     comp.Lexicon,
		Productivity: comp.Productivity,
		Tasks:        comp.Tasks,
		Insights:     comp.Insights,
		Prompts:      comp.Prompts,
	}), nil
}

func periodFlag(cmd *cobra.Command) (entry.Period, error) {
	s, _ := cmd.Flags().GetString("period")
	return entry.ParsePeriod(s)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "jotlens", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/jotlens/",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Fprintf(out, "Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Fprintf(out, "Created config: %s\n", target)
		fmt.Fprintln(out, "Edit it to tune word lists, prompts and the sentiment backend.")
		return nil
	},
}

// readText joins args, or reads stdin for no args or a single "-".
// With --html the markup is stripped.
func readText(cmd *cobra.Command, args []string) (string, error) {
	format := ingest.FormatText
	if isHTML, _ := cmd.Flags().GetBool("html"); isHTML {
		format = ingest.FormatHTML
	}

	if len(args) > 0 && !(len(args) == 1 && args[0] == "-") {
		return format.Plain(strings.Join(args, " ")), nil
	}
	var sb strings.Builder
	sc := bufio.NewScanner(cmd.InOrStdin())
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		sb.WriteString(sc.Text())
		sb.WriteString("\n")
	}
	return format.Plain(sb.String()), sc.Err()
}

var addCmd = &cobra.Command{
	Use:   "add [text|-]",
	Short: "Add a journal entry (reads stdin without text)",
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readText(cmd, args)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		engine, err := openEngine(ctx)
		if err != nil {
			return err
		}
		defer engine.Close()

		date := time.Now()
		if s, _ := cmd.Flags().GetString("date"); s != "" {
			d, err := time.ParseInLocation("2006-01-02", s, time.Local)
			if err != nil {
				return fmt.Errorf("invalid --date %q: %w", s, err)
			}
			date = d.Add(12 * time.Hour)
		}

		e, tasks, err := engine.SubmitAt(ctx, text, date)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Saved entry %s\n", e.ID)
		fmt.Fprintf(out, "  Mood: %s (%+.2f)\n", e.Mood, e.Polarity)
		fmt.Fprintf(out, "  Productivity: %.3f\n", e.Productivity)
		for _, t := range tasks {
			fmt.Fprintf(out, "  Task #%d: %s\n", t.ID, t.Text)
		}
		return nil
	},
}

var scoreCmd = &cobra.Command{
	Use:   "score [text|-]",
	Short: "Analyze text without saving it",
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readText(cmd, args)
		if err != nil {
			return err
		}
		comp, err := (&config.Loader{Config: cfg}).Load()
		if err != nil {
			return err
		}
		engine := jotlens.New(jotlens.Options{
			Tokenizer:    comp.Tokenizer,
			Classifier:   comp.Lexicon,
			Productivity: comp.Productivity,
			Tasks:        comp.Tasks,
		})

		a := engine.Analyze(cmd.Context(), text)
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Mood: %s (%+.2f)\n", a.Mood, a.Polarity)
		fmt.Fprintf(out, "Productivity: %.3f\n", a.Productivity)
		for _, t := range a.Tasks {
			fmt.Fprintf(out, "Task: %s\n", t)
		}
		return nil
	},
}

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Show recurring topics for a period",
	RunE: func(cmd *cobra.Command, args []string) error {
		period, err := periodFlag(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		engine, err := openEngine(ctx)
		if err != nil {
			return err
		}
		defer engine.Close()

		insights, err := engine.Insights(ctx, period)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(insights) == 0 {
			fmt.Fprintln(out, "No recurring topics yet. Keep writing!")
			return nil
		}
		for i, in := range insights {
			fmt.Fprintf(out, "%2d. %-24s mentions=%d mood=%+.2f productivity=%.2f\n",
				i+1, in.Topic, in.MentionCount, in.AvgMood, in.AvgProductivity)
		}
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print a Markdown insight report",
	RunE: func(cmd *cobra.Command, args []string) error {
		period, err := periodFlag(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		engine, err := openEngine(ctx)
		if err != nil {
			return err
		}
		defer engine.Close()

		rep, err := engine.Report(ctx, period)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), rep.Markdown())
		return nil
	},
}

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Suggest something to write about",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		engine, err := openEngine(ctx)
		if err != nil {
			return err
		}
		defer engine.Close()

		if daily, _ := cmd.Flags().GetBool("daily"); daily {
			p, err := engine.DailyPrompt(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), p.Text)
			return nil
		}

		text, err := engine.Prompt(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	},
}

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List pending tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		engine, err := openEngine(ctx)
		if err != nil {
			return err
		}
		defer engine.Close()

		status := entry.TaskPending
		if all, _ := cmd.Flags().GetBool("all"); all {
			status = ""
		}
		tasks, err := engine.Tasks(ctx, status)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(tasks) == 0 {
			fmt.Fprintln(out, "No tasks.")
			return nil
		}
		for _, t := range tasks {
			mark := " "
			if t.Status == entry.TaskDone {
				mark = "x"
			}
			fmt.Fprintf(out, "[%s] #%d %s\n", mark, t.ID, t.Text)
		}
		return nil
	},
}

var doneCmd = &cobra.Command{
	Use:   "done <task-id>",
	Short: "Mark a task as done",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid task id %q", args[0])
		}
		ctx := cmd.Context()
		engine, err := openEngine(ctx)
		if err != nil {
			return err
		}
		defer engine.Close()

		if err := engine.CompleteTask(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Task #%d done\n", id)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <entry-id>",
	Short: "Delete an entry and its tasks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		engine, err := openEngine(ctx)
		if err != nil {
			return err
		}
		defer engine.Close()

		if err := engine.Delete(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted entry %s\n", args[0])
		return nil
	},
}

type dump struct {
	Entries []entry.Entry `json:"entries" yaml:"entries"`
	Tasks   []entry.Task  `json:"tasks" yaml:"tasks"`
}

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print every stored entry and task",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		engine, err := openEngine(ctx)
		if err != nil {
			return err
		}
		defer engine.Close()

		var d dump
		if d.Entries, err = engine.Entries(ctx, entry.All); err != nil {
			return err
		}
		if d.Tasks, err = engine.Tasks(ctx, ""); err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("format")
		return writeDump(cmd.OutOrStdout(), d, format)
	},
}

func writeDump(w io.Writer, d dump, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	case "jsonl":
		return jsonl.Write(w, d.Entries)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(d)
	default:
		return fmt.Errorf("unknown format %q (want json, jsonl or yaml)", format)
	}
}

var importCmd = &cobra.Command{
	Use:   "import <file.jsonl>",
	Short: "Import entries from a JSONL file (one {\"date\",\"text\"} per line)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := jsonl.LoadFile(args[0])
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		engine, err := openEngine(ctx)
		if err != nil {
			return err
		}
		defer engine.Close()

		var imported, tasks int
		for _, rec := range records {
			date := rec.Date
			if date.IsZero() {
				date = time.Now()
			}
			_, created, err := engine.SubmitAt(ctx, rec.Text, date)
			if err != nil {
				return fmt.Errorf("import entry %d: %w", imported+1, err)
			}
			imported++
			tasks += len(created)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entries (%d tasks)\n", imported, tasks)
		return nil
	},
}

var stopwordsCmd = &cobra.Command{
	Use:   "stopwords",
	Short: "Suggest stop words that crowd out topics",
	RunE: func(cmd *cobra.Command, args []string) error {
		period, err := periodFlag(cmd)
		if err != nil {
			return err
		}
		pct, _ := cmd.Flags().GetFloat64("min-df-percent")
		minDF, _ := cmd.Flags().GetInt("min-df")

		ctx := cmd.Context()
		engine, err := openEngine(ctx)
		if err != nil {
			return err
		}
		defer engine.Close()

		cands, err := engine.SuggestStopwords(ctx, period, stoplist.Thresholds{DFPercent: pct, MinDF: minDF})
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(cands) == 0 {
			fmt.Fprintln(out, "No stop word candidates.")
			return nil
		}
		fmt.Fprintln(out, "# Add to the stopwords list in your config:")
		for _, c := range cands {
			fmt.Fprintf(out, "- %s  # in %d entries (%.0f%%)\n", c.Token, c.DF, c.DFPercent)
		}
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API and run the daily prompt schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		engine, err := openEngine(ctx)
		if err != nil {
			return err
		}
		defer engine.Close()

		if cfg.Schedule.DailyPrompt != "" {
			loc, err := cfg.Location()
			if err != nil {
				return err
			}
			sched := scheduler.New(loc)
			if err := sched.AddDailyPromptJob(cfg.Schedule.DailyPrompt, engine); err != nil {
				return err
			}
			sched.Start()
			defer func() { <-sched.Stop().Done() }()
		}

		return server.Serve(ctx, engine, cfg.Server.Addr)
	},
}
