package buildscript_test

import (
	"context"
	"testing"

	buildscript "github.com/roboslone/go-buildscript"
	"github.com/stretchr/testify/require"
)

func TestCommandTask(t *testing.T) {
	run := func(t *testing.T, task *buildscript.CommandTask[TestState]) error {
		t.Helper()

		script := buildscript.NewScript(t.Name(), buildscript.Tasks[TestState]{
			"cmd": task,
		})
		return script.Run(context.Background(), &TestState{}, "cmd")
	}

	t.Run("success", func(t *testing.T) {
		require.NoError(t, run(t, &buildscript.CommandTask[TestState]{
			Command: []string{"echo", "hello"},
		}))
	})

	t.Run("failure", func(t *testing.T) {
		require.Error(t, run(t, &buildscript.CommandTask[TestState]{
			Command: []string{"false"},
		}))
	})

	t.Run("env expansion", func(t *testing.T) {
		t.Setenv("BUILDSCRIPT_TEST_VALUE", "42")

		require.NoError(t, run(t, &buildscript.CommandTask[TestState]{
			Command: []string{"test", "$BUILDSCRIPT_TEST_VALUE", "=", "42"},
		}))
	})

	t.Run("pty", func(t *testing.T) {
		// stdout is a terminal only under the pty
		require.NoError(t, run(t, &buildscript.CommandTask[TestState]{
			Command: []string{"sh", "-c", "test -t 1"},
			Pty:     true,
		}))

		require.Error(t, run(t, &buildscript.CommandTask[TestState]{
			Command: []string{"sh", "-c", "test -t 1"},
		}))
	})

	t.Run("dependencies", func(t *testing.T) {
		task := &buildscript.CommandTask[TestState]{
			Command:   []string{"true"},
			DependsOn: []string{"other"},
		}
		require.EqualValues(t, []string{"other"}, task.Dependencies(context.Background()))
	})
}
