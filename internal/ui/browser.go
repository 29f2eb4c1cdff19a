// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pdiddy/citation-engine/internal/render"
	"github.com/pdiddy/citation-engine/pkg/types"
)

var (
	styleTitle = lipgloss.NewStyle().Bold(true).Foreground(ColorHeader)
	styleHelp  = lipgloss.NewStyle().Foreground(ColorDim)
	stylePane  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorAccent).
			Padding(0, 1)
)

// citationItem adapts a citation to the list delegate.
type citationItem struct {
	c      types.Citation
	domain string
}

func (i citationItem) Title() string { return i.c.Title }

func (i citationItem) Description() string {
	parts := []string{i.c.AuthorsDisplay()}
	if i.c.Year != nil && *i.c.Year != 0 {
		parts = append(parts, strconv.Itoa(*i.c.Year))
	}
	if i.domain != "" {
		parts = append(parts, i.domain)
	}
	return strings.Join(parts, " · ")
}

func (i citationItem) FilterValue() string {
	return i.c.Title + " " + strings.Join(i.c.Authors, " ") + " " + strings.Join(i.c.Tags, " ")
}

// Browser is an interactive citation list with a detail pane. Tab cycles
// the citation style shown in the pane.
type Browser struct {
	list     list.Model
	style    int
	detail   bool
	width    int
	height   int
	quitting bool
}

// NewBrowser builds a browser over cs in the given order.
func NewBrowser(title string, cs []types.Citation, domainName DomainNamer) Browser {
	items := make([]list.Item, len(cs))
	for i, c := range cs {
		item := citationItem{c: c}
		if domainName != nil {
			item.domain, _ = domainName(c)
		}
		items[i] = item
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)
	l.Styles.Title = styleTitle

	return Browser{list: l}
}

// Style reports the style currently shown in the detail pane.
func (b Browser) Style() render.Style { return render.Styles[b.style] }

// Detail reports whether the detail pane has focus.
func (b Browser) Detail() bool { return b.detail }

// Selected returns the highlighted citation.
func (b Browser) Selected() (types.Citation, bool) {
	item, ok := b.list.SelectedItem().(citationItem)
	if !ok {
		return types.Citation{}, false
	}
	return item.c, true
}

func (b Browser) Init() tea.Cmd { return nil }

func (b Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width, b.height = msg.Width, msg.Height
		b.list.SetSize(b.listWidth(), max(msg.Height-2, 1))
		return b, nil

	case tea.KeyMsg:
		if b.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "ctrl+c", "q":
			b.quitting = true
			return b, tea.Quit
		case "tab":
			b.style = (b.style + 1) % len(render.Styles)
			return b, nil
		case "shift+tab":
			b.style = (b.style + len(render.Styles) - 1) % len(render.Styles)
			return b, nil
		case "enter":
			if _, ok := b.Selected(); ok {
				b.detail = true
			}
			return b, nil
		case "esc":
			if b.detail {
				b.detail = false
				return b, nil
			}
		}
		if b.detail {
			return b, nil
		}
	}

	var cmd tea.Cmd
	b.list, cmd = b.list.Update(msg)
	return b, cmd
}

func (b Browser) listWidth() int {
	if b.width == 0 {
		return 0
	}
	return b.width * 2 / 5
}

func (b Browser) View() string {
	if b.quitting {
		return ""
	}
	help := styleHelp.Render("enter: details  tab: style  /: filter  esc: back  q: quit")
	if b.detail {
		return b.detailView(max(b.width-4, 20)) + "\n" + help
	}
	pane := b.detailView(max(b.width-b.listWidth()-6, 20))
	return lipgloss.JoinHorizontal(lipgloss.Top, b.list.View(), " ", pane) + "\n" + help
}

func (b Browser) detailView(width int) string {
	c, ok := b.Selected()
	if !ok {
		return stylePane.Width(width).Render("No citations.")
	}

	var year, month string
	if c.Year != nil && *c.Year != 0 {
		year = strconv.Itoa(*c.Year)
	}
	month = types.Value(c.Month)

	var body strings.Builder
	body.WriteString(StyleBold.Render(c.Title) + "\n\n")
	body.WriteString(KeyValues([][2]string{
		{"Authors", c.AuthorsDisplay()},
		{"Type", c.Type.DisplayName()},
		{"Year", strings.TrimSpace(month + " " + year)},
		{"Venue", types.Value(c.JournalOrConference)},
		{"Publisher", types.Value(c.Publisher)},
		{"DOI", types.Value(c.DOI)},
		{"URL", types.Value(c.URL)},
		{"Tags", strings.Join(c.Tags, ", ")},
		{"ID", c.ID},
	}, false))
	if abstract := types.Value(c.Abstract); abstract != "" {
		body.WriteString("\n" + abstract + "\n")
	}
	style := b.Style()
	fmt.Fprintf(&body, "\n%s\n%s", StyleAccent.Render(strings.ToUpper(string(style))), render.Format(style, c))

	return stylePane.Width(width).Render(body.String())
}

// Browse runs the browser full screen until the user quits.
func Browse(title string, cs []types.Citation, domainName DomainNamer) error {
	p := tea.NewProgram(NewBrowser(title, cs, domainName), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running browser: %w", err)
	}
	return nil
}
