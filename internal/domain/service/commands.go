package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/jonny/helpdesk-bot/internal/domain/model"
	"github.com/jonny/helpdesk-bot/internal/domain/port/outbound"
)

// CommandFunc is the entry point of a command. It must acknowledge the
// interaction through resp unless it returns an error.
type CommandFunc func(ctx context.Context, env model.Envelope, resp outbound.Responder) error

type Command struct {
	Name        string
	Description string
	Usage       string
	Run         CommandFunc
}

// CommandTable maps command names to entry points. It is built once at
// startup and read-only afterwards.
type CommandTable struct {
	commands map[string]Command
}

func NewCommandTable() *CommandTable {
	return &CommandTable{commands: make(map[string]Command)}
}

func (t *CommandTable) Register(cmd Command) error {
	if cmd.Name == "" || cmd.Run == nil {
		return fmt.Errorf("command %q: name and run func are required", cmd.Name)
	}
	if _, dup := t.commands[cmd.Name]; dup {
		return fmt.Errorf("command %q already registered", cmd.Name)
	}
	t.commands[cmd.Name] = cmd
	return nil
}

func (t *CommandTable) Lookup(name string) (Command, bool) {
	cmd, ok := t.commands[name]
	return cmd, ok
}

// List returns commands sorted by name.
func (t *CommandTable) List() []Command {
	out := make([]Command, 0, len(t.commands))
	for _, c := range t.commands {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// HelpPages renders the table as help pages of pageSize commands each.
func (t *CommandTable) HelpPages(pageSize int) []model.Page {
	cmds := t.List()
	fields := make([]model.PageField, 0, len(cmds))
	for _, c := range cmds {
		value := c.Description
		if c.Usage != "" {
			value += "\nUsage: `" + c.Usage + "`"
		}
		fields = append(fields, model.PageField{Name: "/" + c.Name, Value: value})
	}
	return Paginate("Commands", fields, pageSize)
}
