package cli

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/genposter/pkg/errors"
	"github.com/matzehuels/genposter/pkg/export"
	"github.com/matzehuels/genposter/pkg/pipeline"
	"github.com/matzehuels/genposter/pkg/poster"
)

const defaultStudioOutput = "studio.png"

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listLabelStyle    = lipgloss.NewStyle().Width(20)
)

// studioCommand creates the interactive studio command.
func (c *CLI) studioCommand() *cobra.Command {
	var (
		preset  string
		output  string
		noCache bool
	)
	var params []*paramFlag

	cmd := &cobra.Command{
		Use:   "studio",
		Short: "Tweak poster parameters interactively",
		Long: `Tweak poster parameters interactively in the terminal.

Every change is rendered to the output file, so keep it open in an image
viewer that reloads on change. The seed stays fixed while you adjust
parameters; press s to draw a new one.

Keys:
  ↑/↓ or k/j          select a parameter
  ←/→ or h/l          adjust it (shift for ten steps)
  enter               toggle or cycle the selected option
  r                   render again
  s                   new seed
  q                   quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, _, err := resolveOptions(renderOpts{preset: preset}, params)
			if err != nil {
				return err
			}
			return c.runStudio(cmd.Context(), opts.Params, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&preset, "preset", "p", "", "preset name or TOML file to start from")
	cmd.Flags().StringVarP(&output, "output", "o", defaultStudioOutput, "PNG file rewritten after each render")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	params = paramFlags(cmd)
	cmd.RegisterFlagCompletionFunc("preset", completePresets)

	return cmd
}

func (c *CLI) runStudio(ctx context.Context, params poster.Params, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache, "")
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	// Keep the studio quiet; log lines would tear the terminal UI.
	level := c.Logger.GetLevel()
	c.Logger.SetLevel(log.FatalLevel)
	defer c.Logger.SetLevel(level)

	m := newStudioModel(ctx, runner, params, output)
	final, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}
	if sm, ok := final.(StudioModel); ok && sm.Last != nil {
		printSuccess("Last poster: seed %d", sm.Last.Seed)
		printFile(output)
		printNextStep("Render it again", fmt.Sprintf("genposter render --seed %d", sm.Last.Seed))
	}
	return nil
}

// =============================================================================
// StudioModel - Interactive parameter editing
// =============================================================================

// renderDoneMsg reports a finished studio render.
type renderDoneMsg struct {
	gen    int
	result *pipeline.Result
	err    error
}

// StudioModel is the bubbletea model for the studio.
type StudioModel struct {
	Params poster.Params
	Fields []poster.Field
	Cursor int
	Height int
	Offset int
	Output string

	Rendering bool
	Last      *pipeline.Result
	Err       error

	ctx    context.Context
	runner *pipeline.Runner
	gen    int
}

func newStudioModel(ctx context.Context, runner *pipeline.Runner, params poster.Params, output string) StudioModel {
	// Fix the seed so every tweak re-renders the same composition.
	if !params.Seeded() {
		params = params.WithSeed(newSeed())
	}
	return StudioModel{
		Params:    params,
		Fields:    poster.Fields(),
		Height:    15,
		Output:    output,
		Rendering: true,
		ctx:       ctx,
		runner:    runner,
		gen:       1,
	}
}

func newSeed() int64 {
	return rand.Int64N(1<<31-1) + 1
}

func (m StudioModel) Init() tea.Cmd {
	return m.renderCmd()
}

func (m StudioModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Fields)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "left", "h":
			return m.adjust(-1)
		case "right", "l":
			return m.adjust(1)
		case "shift+left", "H":
			return m.adjust(-10)
		case "shift+right", "L":
			return m.adjust(10)
		case "enter", " ":
			if f := m.Fields[m.Cursor]; f.Kind == poster.FieldBool || f.Kind == poster.FieldChoice {
				return m.adjust(1)
			}
		case "r":
			cmd := m.render()
			return m, cmd
		case "s":
			m.Params = m.Params.WithSeed(newSeed())
			cmd := m.render()
			return m, cmd
		}
	case renderDoneMsg:
		// Drop results of renders that were superseded by a later change.
		if msg.gen != m.gen {
			return m, nil
		}
		m.Rendering = false
		m.Err = msg.err
		if msg.err == nil {
			// Only the latest render reaches the file.
			m.Err = export.WriteFile(m.Output, msg.result.Artifacts[export.FormatPNG])
			m.Last = msg.result
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

// adjust nudges the selected field and re-renders when the value changed.
func (m StudioModel) adjust(steps int) (tea.Model, tea.Cmd) {
	f := m.Fields[m.Cursor]
	if f.Kind == poster.FieldSeed {
		if m.Params.Seed != nil {
			m.Params = m.Params.WithSeed(max(1, *m.Params.Seed+int64(steps)))
		}
		cmd := m.render()
		return m, cmd
	}
	before := f.Get(&m.Params)
	if err := f.Nudge(&m.Params, steps); err != nil {
		m.Err = err
		return m, nil
	}
	if f.Get(&m.Params) == before {
		return m, nil
	}
	cmd := m.render()
	return m, cmd
}

// render supersedes any running render and starts a new one.
func (m *StudioModel) render() tea.Cmd {
	m.gen++
	m.Rendering = true
	return m.renderCmd()
}

// renderCmd renders the current parameters in the background.
func (m StudioModel) renderCmd() tea.Cmd {
	gen, params := m.gen, m.Params
	ctx, runner := m.ctx, m.runner
	return func() tea.Msg {
		res, err := runner.Execute(ctx, pipeline.Options{
			Params:  params,
			Formats: []string{export.FormatPNG},
		})
		return renderDoneMsg{gen: gen, result: res, err: err}
	}
}

func (m StudioModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("genposter studio"))
	b.WriteString("  ")
	b.WriteString(listDimStyle.Render(describeParams(m.Params)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ select  ←/→ adjust  r render  s new seed  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Fields))
	for i := m.Offset; i < end; i++ {
		f := m.Fields[i]
		cursor := "  "
		style := listNormalStyle
		if i == m.Cursor {
			cursor = "▸ "
			style = listSelectedStyle
		}
		value := f.Get(&m.Params)
		if value == "" {
			value = "—"
		}
		hint := ""
		if !f.Numeric() && f.Kind != poster.FieldChoice && f.Kind != poster.FieldBool && f.Kind != poster.FieldSeed {
			hint = listDimStyle.Render("  (set with --" + strings.ReplaceAll(f.Name, "_", "-") + ")")
		}
		b.WriteString(cursor + listLabelStyle.Render(style.Render(f.Label)) + StyleValue.Render(value) + hint + "\n")
	}
	if len(m.Fields) > m.Height {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("\n  %d/%d", m.Cursor+1, len(m.Fields))))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.status())
	b.WriteString("\n")
	return b.String()
}

func (m StudioModel) status() string {
	switch {
	case m.Rendering:
		return styleIconSpinner.Render("⠿") + " " + StyleDim.Render("rendering...")
	case m.Err != nil:
		return styleIconError.Render(iconError) + " " + errors.UserMessage(m.Err)
	case m.Last != nil:
		took := m.Last.Stats.RenderTime.Round(time.Millisecond)
		line := fmt.Sprintf("seed %d → %s", m.Last.Seed, m.Output)
		if m.Last.CacheInfo.Hit {
			line += " (" + iconCached + ")"
		} else {
			line += fmt.Sprintf(" (%s)", took)
		}
		return styleIconSuccess.Render(iconSuccess) + " " + line
	}
	return ""
}
