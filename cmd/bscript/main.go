package main

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/fatih/color"
	buildscript "github.com/roboslone/go-buildscript"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "bscript",
	Short: "Run build-script tasks with build-tool friendly logging",
	Long: `bscript runs tasks from a YAML file in dependency order.

Warnings and errors are emitted on stdout as single cargo::warning=
directives; everything else goes to stderr and only shows up in verbose
builds.`,
}

var runCmd = &cobra.Command{
	Use:          "run [tasks...]",
	Short:        "Run the given tasks and everything they depend on",
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := ParseConfig(configPath)
		if err != nil {
			return fmt.Errorf("reading config: %w", err)
		}

		logger := buildscript.NewLogger()
		zap.ReplaceGlobals(logger)
		defer logger.Sync()

		script := buildscript.NewScript("bscript", cfg.Tasks())

		var state any
		return script.Run(cmd.Context(), &state, args...)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := ParseConfig(configPath)
		if err != nil {
			return fmt.Errorf("reading config: %w", err)
		}

		result := strings.Builder{}
		result.WriteString("Available tasks:\n")

		names := make([]string, 0, len(cfg.TaskConfigs))
		for name := range cfg.TaskConfigs {
			names = append(names, name)
		}
		slices.Sort(names)

		for _, name := range names {
			task := cfg.TaskConfigs[name]
			result.WriteString(fmt.Sprintf("\t%s\n", name))

			if len(task.Command) > 0 {
				result.WriteString(color.BlackString("\t\t$ %s\n", strings.Join(task.Command, " ")))
			}

			if task.Dir != "" {
				result.WriteString(color.BlackString("\t\t@%s\n", task.Dir))
			}

			if len(task.DependsOn) > 0 {
				result.WriteString(color.BlackString("\t\tdepends on %s\n", strings.Join(task.DependsOn, ", ")))
			}
		}

		fmt.Println(result.String())
		return nil
	},
}

type Config struct {
	TaskConfigs map[string]TaskConfig `yaml:"tasks"`
}

type TaskConfig struct {
	Command   []string `yaml:"command"`
	Dir       string   `yaml:"dir"`
	Env       []string `yaml:"env"`
	DependsOn []string `yaml:"depends_on"`
	Pty       bool     `yaml:"pty"`
}

func (cfg *Config) Tasks() buildscript.Tasks[any] {
	tasks := buildscript.Tasks[any]{}

	for name, tc := range cfg.TaskConfigs {
		if len(tc.Command) == 0 {
			tasks[name] = &buildscript.NoopTask[any]{DependsOn: tc.DependsOn}
			continue
		}

		tasks[name] = &buildscript.CommandTask[any]{
			Command:   tc.Command,
			Dir:       tc.Dir,
			Env:       tc.Env,
			DependsOn: tc.DependsOn,
			Pty:       tc.Pty,
		}
	}

	return tasks
}

func ParseConfig(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	cfg := &Config{}
	if err = yaml.Unmarshal(content, cfg); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	return cfg, nil
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".bscript.yaml", "path to task file")
	rootCmd.AddCommand(runCmd, listCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
