// Package menu builds the tray menu as data so any front end can render it.
package menu

import (
	"context"
	"fmt"
	"io"
	"strings"

	"git.srvlab.io/whiskey/attach-nas/pkg/config"
	"git.srvlab.io/whiskey/attach-nas/pkg/orchestrator"
)

// PathSeparator separates submenu labels in Find paths: "NAS>Mount media"
const PathSeparator = ">"

// Fixed labels
const (
	LabelUnmountEverything = "Unmount All [PC]"
	LabelUnmountConfigured = "Unmount All [config]"
	LabelMountAll          = "Mount All"
	LabelUnmountAll        = "Unmount All"
	LabelOther             = "Other"
	LabelEditConfig        = "Edit config file"
	LabelExit              = "Exit"
)

// Actions are the orchestrator operations a menu can trigger
type Actions interface {
	Mount(ctx context.Context, section string, shareIndex int) orchestrator.Result
	MountAll(ctx context.Context, section string) orchestrator.Result
	UnmountAllForHost(ctx context.Context, host string) orchestrator.Result
	UnmountAllConfigured(ctx context.Context) orchestrator.Result
	UnmountEverything(ctx context.Context) orchestrator.Result
}

// Hooks are front-end actions. A nil hook leaves its item disabled.
type Hooks struct {
	// EditConfig opens the config file and returns a notification
	EditConfig func(ctx context.Context) string

	// Exit closes the front end
	Exit func(ctx context.Context) string
}

// Item is one menu entry: an action, a submenu or a separator
type Item struct {
	Label    string
	Enabled  bool
	Children []*Item

	separator bool
	action    func(ctx context.Context) string
}

// Separator returns a separator item
func Separator() *Item {
	return &Item{separator: true}
}

// IsSeparator reports whether the item is a separator
func (i *Item) IsSeparator() bool {
	return i.separator
}

// IsSubmenu reports whether the item opens a submenu
func (i *Item) IsSubmenu() bool {
	return len(i.Children) > 0
}

// Invoke runs the item's action and returns the notification text
func (i *Item) Invoke(ctx context.Context) (string, error) {
	switch {
	case i.separator:
		return "", fmt.Errorf("separator cannot be invoked")
	case i.IsSubmenu():
		return "", fmt.Errorf("%q is a submenu", i.Label)
	case !i.Enabled || i.action == nil:
		return "", fmt.Errorf("%q is disabled", i.Label)
	}
	return i.action(ctx), nil
}

// Menu is the root of the tray menu
type Menu struct {
	Items []*Item
}

// Build creates the tray menu for cfg.
//
// Section items are enabled when their section is mount-ready; the two global
// unmount items are enabled when any section is.
func Build(cfg *config.File, actions Actions, hooks Hooks) *Menu {
	anyReady := cfg.AnyReady()

	items := []*Item{
		{
			Label:   LabelUnmountEverything,
			Enabled: anyReady,
			action:  func(ctx context.Context) string { return actions.UnmountEverything(ctx).Message },
		},
		{
			Label:   LabelUnmountConfigured,
			Enabled: anyReady,
			action:  func(ctx context.Context) string { return actions.UnmountAllConfigured(ctx).Message },
		},
		Separator(),
	}

	for _, section := range cfg.Sections() {
		items = append(items, sectionItem(section, actions))
	}

	items = append(items,
		Separator(),
		&Item{
			Label:    LabelOther,
			Enabled:  true,
			Children: []*Item{hookItem(LabelEditConfig, hooks.EditConfig)},
		},
		Separator(),
		hookItem(LabelExit, hooks.Exit),
	)

	return &Menu{Items: items}
}

func sectionItem(section config.Section, actions Actions) *Item {
	ready := section.IsMountReady()
	name := section.Name
	host := section.IP

	children := []*Item{
		{
			Label:   LabelMountAll,
			Enabled: ready,
			action:  func(ctx context.Context) string { return actions.MountAll(ctx, name).Message },
		},
		Separator(),
	}
	for i, share := range section.Shares {
		index := i
		children = append(children, &Item{
			Label:   "Mount " + share,
			Enabled: ready,
			action:  func(ctx context.Context) string { return actions.Mount(ctx, name, index).Message },
		})
	}
	children = append(children,
		Separator(),
		&Item{
			Label:   LabelUnmountAll,
			Enabled: ready,
			action:  func(ctx context.Context) string { return actions.UnmountAllForHost(ctx, host).Message },
		},
	)

	return &Item{Label: name, Enabled: ready, Children: children}
}

func hookItem(label string, hook func(ctx context.Context) string) *Item {
	return &Item{Label: label, Enabled: hook != nil, action: hook}
}

// Find resolves a path of labels such as "NAS>Mount media". Separators are
// never matched.
func (m *Menu) Find(path string) (*Item, error) {
	items := m.Items
	var found *Item

	for _, label := range strings.Split(path, PathSeparator) {
		label = strings.TrimSpace(label)
		found = nil
		for _, item := range items {
			if !item.separator && item.Label == label {
				found = item
				break
			}
		}
		if found == nil {
			return nil, fmt.Errorf("menu item %q not found", path)
		}
		items = found.Children
	}

	return found, nil
}

// Render writes the menu as an indented tree. Disabled items are marked.
func (m *Menu) Render(w io.Writer) error {
	return render(w, m.Items, 0)
}

func render(w io.Writer, items []*Item, depth int) error {
	indent := strings.Repeat("  ", depth)
	for _, item := range items {
		var line string
		switch {
		case item.separator:
			line = indent + "----"
		case item.IsSubmenu():
			line = indent + item.Label + " >"
		default:
			line = indent + item.Label
		}
		if !item.separator && !item.Enabled {
			line += " (disabled)"
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
		if item.IsSubmenu() {
			if err := render(w, item.Children, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}
