package buildscript

import "context"

type ContextKey string

const (
	contextScriptName ContextKey = "buildscript.script"
	contextTaskName   ContextKey = "buildscript.task"
)

func scriptContext(ctx context.Context, scriptName string) context.Context {
	return context.WithValue(ctx, contextScriptName, scriptName)
}

func taskContext(ctx context.Context, taskName string) context.Context {
	return context.WithValue(ctx, contextTaskName, taskName)
}

// GetScriptName returns the running script's name, or "" outside Run.
func GetScriptName(ctx context.Context) string {
	name, _ := ctx.Value(contextScriptName).(string)
	return name
}

// GetTaskName returns the current task's name, or "" outside a task.
func GetTaskName(ctx context.Context) string {
	name, _ := ctx.Value(contextTaskName).(string)
	return name
}
