package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/prabalesh/healthtop/internal/models"
)

type snapshotMsg models.DeviceHealthState

type updatesClosedMsg struct{}

// App renders the latest device snapshot. It never writes back to the
// monitor; quitting only calls stop.
type App struct {
	updates <-chan models.DeviceHealthState
	stop    func()
	state   models.DeviceHealthState

	width  int
	height int
	// Vertical scrolling state
	verticalScrollOffset int
	contentHeight        int

	bar progress.Model
	now func() time.Time
}

// NewApp shows initial until the first update arrives on updates. stop is
// called once when the user quits.
func NewApp(initial models.DeviceHealthState, updates <-chan models.DeviceHealthState, stop func()) *App {
	if stop == nil {
		stop = func() {}
	}
	return &App{
		updates: updates,
		stop:    stop,
		state:   initial,
		bar:     progress.New(progress.WithSolidFill(colorGreen), progress.WithoutPercentage()),
		now:     time.Now,
	}
}

func (a *App) Init() tea.Cmd {
	return a.waitForSnapshot()
}

func (a *App) waitForSnapshot() tea.Cmd {
	updates := a.updates
	return func() tea.Msg {
		s, ok := <-updates
		if !ok {
			return updatesClosedMsg{}
		}
		return snapshotMsg(s)
	}
}

// Get the height available for content (excluding title and help)
func (a *App) getContentAreaHeight() int {
	reservedHeight := 5
	return max(1, a.height-reservedHeight)
}

func (a *App) getMaxScrollOffset() int {
	availableHeight := a.getContentAreaHeight()
	if a.contentHeight <= availableHeight {
		return 0
	}
	return a.contentHeight - availableHeight
}

func (a *App) clampVerticalScroll() {
	maxOffset := a.getMaxScrollOffset()
	a.verticalScrollOffset = max(0, min(a.verticalScrollOffset, maxOffset))
}

// Apply vertical scrolling to content by truncating lines
func (a *App) applyVerticalScroll(content string) string {
	lines := strings.Split(content, "\n")
	a.contentHeight = len(lines)

	a.clampVerticalScroll()

	availableHeight := a.getContentAreaHeight()
	if len(lines) <= availableHeight {
		return content
	}

	startLine := a.verticalScrollOffset
	endLine := min(startLine+availableHeight, len(lines))
	result := strings.Join(lines[startLine:endLine], "\n")

	if a.verticalScrollOffset > 0 {
		result = ScrollHintStyle.Render("▲ More above") + "\n" + result
	}
	if a.verticalScrollOffset < a.getMaxScrollOffset() {
		result = result + "\n" + ScrollHintStyle.Render("▼ More below")
	}
	return result
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.bar.Width = max(10, min(60, a.width-12))
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			a.stop()
			return a, tea.Quit
		case "up", "k":
			if a.verticalScrollOffset > 0 {
				a.verticalScrollOffset--
			}
		case "down", "j":
			a.verticalScrollOffset++
			a.clampVerticalScroll()
		case "pgup", "ctrl+u":
			scrollAmount := max(1, a.getContentAreaHeight()/2)
			a.verticalScrollOffset = max(0, a.verticalScrollOffset-scrollAmount)
		case "pgdown", "ctrl+d":
			scrollAmount := max(1, a.getContentAreaHeight()/2)
			a.verticalScrollOffset += scrollAmount
			a.clampVerticalScroll()
		case "home":
			a.verticalScrollOffset = 0
		case "end":
			a.verticalScrollOffset = a.getMaxScrollOffset()
		}

	case snapshotMsg:
		a.state = models.DeviceHealthState(msg)
		return a, a.waitForSnapshot()

	case updatesClosedMsg:
		return a, tea.Quit
	}

	return a, nil
}

func (a *App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	title := TitleStyle.Width(a.width).Render("Device Health Dashboard")
	content := a.applyVerticalScroll(a.renderCards())
	help := HelpStyle.Render(a.freshness() + " • ↑/↓ k/j: scroll • PgUp/PgDn: page • q: quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		content,
		"",
		help,
	)
}

func (a *App) renderCards() string {
	s := a.state
	ramRatio := s.RAMRatio()
	storageRatio := s.StorageRatio()

	cards := []string{
		a.renderCard("Battery",
			fmt.Sprintf("%d%%", int(math.Round(s.BatteryPct))),
			fmt.Sprintf("%s | %s", chargingLabel(s.IsCharging), s.BatteryHealth),
			s.BatteryPct/100, batteryColor(s.BatteryPct)),
		a.renderCard("Temperature",
			fmt.Sprintf("%.1f°C", s.BatteryTemp),
			s.ThermalState.String(),
			s.BatteryTemp/50, temperatureColor(s.BatteryTemp)),
		a.renderCard("Memory (RAM)",
			fmt.Sprintf("%s / %s", FormatBytes(s.UsedRAM), FormatBytes(s.TotalRAM)),
			fmt.Sprintf("Used | CPU: %d%%", int(math.Round(s.CPUUsage))),
			ramRatio, usageColor(ramRatio, 0.65, 0.85)),
		a.renderCard("Storage",
			fmt.Sprintf("%s / %s", FormatBytes(s.UsedStorage), FormatBytes(s.TotalStorage)),
			"Full",
			storageRatio, usageColor(storageRatio, 0.75, 0.90)),
		a.renderCard("Device Uptime",
			s.Uptime,
			"Health Score: "+scoreStyle(s.HealthScore).Render(fmt.Sprintf("%d/100", s.HealthScore)),
			-1, ""),
		a.renderRecommendations(),
	}
	return lipgloss.JoinVertical(lipgloss.Left, cards...)
}

// renderCard draws one metric card. A negative ratio hides the bar.
func (a *App) renderCard(title, value, secondary string, ratio float64, color string) string {
	lines := []string{
		HeaderStyle.Render(title),
		ValueStyle.Render(value),
		SecondaryStyle.Render(secondary),
	}
	if ratio >= 0 {
		bar := a.bar
		bar.FullColor = color
		lines = append(lines, bar.ViewAs(clampRatio(ratio)))
	}
	return CardStyle.Width(a.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (a *App) renderRecommendations() string {
	lines := []string{HeaderStyle.Render("Recommendations")}
	for _, rec := range a.state.Recommendations {
		lines = append(lines, BulletStyle.Render("• "+rec))
	}
	return CardStyle.Width(a.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (a *App) cardWidth() int {
	return max(20, a.width-4)
}

func (a *App) freshness() string {
	if a.state.SampledAt.IsZero() {
		return "waiting for first sample"
	}
	return "updated " + humanize.RelTime(a.state.SampledAt, a.now(), "ago", "from now")
}

func chargingLabel(charging bool) string {
	if charging {
		return "Charging"
	}
	return "Not charging"
}
