// Package tui runs a fold session in the terminal.
package tui

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"jianzhi/internal/models"
	"jianzhi/internal/raster"
	"jianzhi/pkg/session"
	"jianzhi/pkg/visualization"
)

// previewCells is the side of the silhouette and artwork previews in
// terminal cells; every cell is printed two characters wide.
const previewCells = 24

var foldKeys = map[string]models.Direction{
	"k": models.Up, "up": models.Up,
	"j": models.Down, "down": models.Down,
	"h": models.Left, "left": models.Left,
	"l": models.Right, "right": models.Right,
	"y": models.TopLeft,
	"u": models.TopRight,
	"b": models.BottomLeft,
	"n": models.BottomRight,
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	statusStyle = lipgloss.NewStyle().Faint(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#B91C1C"))
	creaseStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	frameStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// Model is the bubbletea model of an interactive session.
type Model struct {
	sess     *session.Session
	exporter *visualization.Exporter

	// cut is applied by the "x" key; nil disables cutting
	cut image.Image

	status   string
	failed   bool
	last     []string
	width    int
	height   int
	quitting bool

	now  func() time.Time
	copy func(string) error
}

// New creates a model driving sess. cut is the mask applied on "x" and may
// be nil.
func New(sess *session.Session, exporter *visualization.Exporter, cut image.Image) Model {
	return Model{
		sess:     sess,
		exporter: exporter,
		cut:      cut,
		status:   "fold with hjkl / yubn",
		now:      time.Now,
		copy:     clipboard.WriteAll,
	}
}

// Run starts the terminal program and blocks until the user quits.
func Run(m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		key := msg.String()
		if dir, ok := foldKeys[key]; ok {
			m.fold(dir)
			return m, nil
		}
		switch key {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "r":
			m.report(m.sess.Reset(), "sheet reset")
		case "m":
			next := models.Preset
			if m.sess.Mode() == models.Preset {
				next = models.Custom
			}
			m.report(m.sess.SetMode(next), "mode: "+next.String())
		case "3", "4", "5", "6", "7", "8":
			n := int(key[0] - '0')
			err := m.sess.SetPreset(n)
			if err == nil && m.sess.Mode() != models.Preset {
				err = m.sess.SetMode(models.Preset)
			}
			m.report(err, fmt.Sprintf("%d-fold preset", n))
		case "x":
			if m.cut == nil {
				m.report(errors.New("no cut pattern loaded"), "")
				break
			}
			res := m.sess.Cut(m.cut)
			note := "cut applied"
			if res.Changed() {
				note = fmt.Sprintf("cut applied, %d loose pixels dropped", res.Removed)
			}
			m.report(nil, note)
		case "z":
			m.report(m.sess.Undo(), "undone")
		case "Z":
			m.report(m.sess.Redo(), "redone")
		case "e":
			m.export()
		case "c":
			text := m.sess.Name()
			if len(m.last) > 0 {
				text = strings.Join(m.last, "\n")
			}
			m.report(m.copy(text), "copied to clipboard")
		}
	}
	return m, nil
}

func (m *Model) fold(dir models.Direction) {
	if err := m.sess.Fold(dir); err != nil {
		m.report(err, "")
		return
	}
	m.report(nil, "folded "+dir.String())
}

func (m *Model) export() {
	if m.exporter == nil {
		m.report(errors.New("export disabled"), "")
		return
	}
	art, creases := m.sess.Result()
	paths, err := m.exporter.Export(visualization.Artwork{
		Name:    m.sess.Name(),
		Result:  art,
		Creases: creases,
		Pattern: m.sess.Surface(),
	}, m.now())
	if err != nil {
		m.report(err, "")
		return
	}
	m.last = paths
	m.report(nil, fmt.Sprintf("exported %d files", len(paths)))
}

func (m *Model) report(err error, ok string) {
	if err != nil {
		m.status = err.Error()
		m.failed = true
		return
	}
	m.status = ok
	m.failed = false
}

// Status returns the last status line
func (m Model) Status() string { return m.status }

// Session returns the driven session
func (m Model) Session() *session.Session { return m.sess }

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	paper := m.sess.Paper()

	folded := image.NewNRGBA(image.Rect(0, 0, previewCells, previewCells))
	m.sess.Engine().RenderFoldedState(folded, paper)

	art, creases := m.sess.Result()
	unfolded := visualization.Preview(art, previewCells)
	lines := visualization.Preview(creases, previewCells)

	left := frameStyle.Render(titleStyle.Render("folded") + "\n" + cells(folded, nil, paper))
	right := frameStyle.Render(titleStyle.Render("unfolded") + "\n" + cells(unfolded, lines, paper))

	seq := make([]string, 0, len(m.sess.FoldSequence()))
	for _, d := range m.sess.FoldSequence() {
		seq = append(seq, d.String())
	}
	info := fmt.Sprintf("%s  mode %s  folds [%s]", titleStyle.Render(m.sess.Name()), m.sess.Mode(), strings.Join(seq, " "))

	status := statusStyle.Render(m.status)
	if m.failed {
		status = errorStyle.Render(m.status)
	}
	help := statusStyle.Render("hjkl/arrows edge  yubn corner  x cut  z/Z undo/redo  m mode  3-8 preset  r reset  e export  c copy  q quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, left, right),
		info, status, help)
}

// cells prints img as a block of two-character cells, paper where alpha is
// set and creases (when given) drawn over it.
func cells(img, creases *image.NRGBA, paper color.NRGBA) string {
	paperStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(hex(paper)))
	var sb strings.Builder
	b := img.Bounds()
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			a, _ := raster.AlphaAt(img, x, y)
			switch {
			case a == 0:
				sb.WriteString("  ")
			case creases != nil && crease(creases, x, y):
				sb.WriteString(creaseStyle.Render("▒▒"))
			default:
				sb.WriteString(paperStyle.Render("██"))
			}
		}
		if y < b.Dy()-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func crease(img *image.NRGBA, x, y int) bool {
	a, ok := raster.AlphaAt(img, x, y)
	return ok && a > 0
}

func hex(c color.NRGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}
