package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// PickerItem is one choice in PickItem. Value is what the caller gets back.
type PickerItem struct {
	Label    string
	SubLabel string
	Value    string
}

type pickerModel struct {
	title    string
	items    []PickerItem
	cursor   int
	selected *PickerItem
	quitting bool
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) choose(i int) (tea.Model, tea.Cmd) {
	item := m.items[i]
	m.cursor = i
	m.selected = &item
	return m, tea.Quit
}

// Update moves the cursor without wrapping. Digits 1-9 pick an item directly.
func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	last := len(m.items) - 1
	switch s := key.String(); s {
	case "ctrl+c", "esc", "q":
		m.quitting = true
		return m, tea.Quit
	case "up", "k":
		m.cursor = max(m.cursor-1, 0)
	case "down", "j":
		m.cursor = min(m.cursor+1, max(last, 0))
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = max(last, 0)
	case "enter", " ":
		if last >= 0 {
			return m.choose(m.cursor)
		}
	default:
		if n, err := strconv.Atoi(s); err == nil && n >= 1 && n-1 <= last {
			return m.choose(n - 1)
		}
	}
	return m, nil
}

func (m pickerModel) View() string {
	if m.quitting {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(StyleTitle.Render(m.title) + "\n")
	for i, item := range m.items {
		marker := "  "
		if i == m.cursor {
			marker = "▸ "
		}
		line := fmt.Sprintf("%s%d. %s", marker, i+1, item.Label)
		if i == m.cursor {
			line = StyleSelected.Render(line)
		} else {
			line = StyleValue.Render(line)
		}
		if item.SubLabel != "" {
			line += "  " + StyleMeta.Render(item.SubLabel)
		}
		sb.WriteString(line + "\n")
	}
	sb.WriteString(StyleMeta.Render("↑/↓ move · 1-9 or enter select · esc cancel") + "\n")
	return sb.String()
}

// PickItem shows items inline and returns the chosen Value, or "" when the
// user cancels.
func PickItem(title string, items []PickerItem) (string, error) {
	if len(items) == 0 {
		return "", errors.New("nothing to pick from")
	}
	final, err := tea.NewProgram(pickerModel{title: title, items: items}).Run()
	if err != nil {
		return "", fmt.Errorf("picker: %w", err)
	}
	fm, ok := final.(pickerModel)
	if !ok || fm.quitting || fm.selected == nil {
		return "", nil
	}
	return fm.selected.Value, nil
}
