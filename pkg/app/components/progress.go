package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"

	"github.com/freeradical16/comfyui-runpod-cuda-runtime/pkg/app/styles"
	"github.com/freeradical16/comfyui-runpod-cuda-runtime/pkg/fetch"
	"github.com/freeradical16/comfyui-runpod-cuda-runtime/pkg/utils"
)

// ProgressTracker keeps the latest event per file and renders them as a
// stack of progress bars.
type ProgressTracker struct {
	order []string
	files map[string]fetch.ProgressEvent
	bar   progress.Model
	width int
}

func NewProgressTracker(width int) *ProgressTracker {
	if width < 20 {
		width = 20
	}
	bar := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(width-10),
		progress.WithoutPercentage(),
	)
	return &ProgressTracker{
		files: make(map[string]fetch.ProgressEvent),
		bar:   bar,
		width: width,
	}
}

func (p *ProgressTracker) Update(ev fetch.ProgressEvent) {
	if _, seen := p.files[ev.Filename]; !seen {
		p.order = append(p.order, ev.Filename)
	}
	p.files[ev.Filename] = ev
}

func (p *ProgressTracker) Clear() {
	p.order = nil
	p.files = make(map[string]fetch.ProgressEvent)
}

// Active reports whether any tracked file is still in flight.
func (p *ProgressTracker) Active() bool {
	for _, ev := range p.files {
		if ev.Phase != fetch.PhaseDone && ev.Phase != fetch.PhaseSkip {
			return true
		}
	}
	return false
}

func (p *ProgressTracker) View() string {
	if len(p.order) == 0 {
		return ""
	}

	var b strings.Builder
	for _, name := range p.order {
		ev := p.files[name]

		b.WriteString(styles.TextStyle.Render(name))
		b.WriteString("\n")

		status := statusLine(ev)
		if ev.Phase == fetch.PhaseDownloading && ev.Total > 0 {
			ratio := float64(ev.Bytes) / float64(ev.Total)
			if ratio > 1 {
				ratio = 1
			}
			b.WriteString(p.bar.ViewAs(ratio))
			b.WriteString("\n")
		}

		b.WriteString(styles.StatusStyle(string(ev.Phase)).Render(status))
		b.WriteString("\n\n")
	}

	return b.String()
}

func statusLine(ev fetch.ProgressEvent) string {
	switch ev.Phase {
	case fetch.PhaseSkip:
		return fmt.Sprintf("skipped, already have %s", utils.FormatBytes(ev.Bytes))
	case fetch.PhaseStart:
		if ev.Bytes > 0 {
			return fmt.Sprintf("resuming at %s", utils.FormatBytes(ev.Bytes))
		}
		return "starting"
	case fetch.PhaseRestart:
		return "server ignored resume, restarting"
	case fetch.PhaseDownloading:
		if ev.Total > 0 {
			percent := float64(ev.Bytes) / float64(ev.Total) * 100
			return fmt.Sprintf("%s / %s (%.0f%%)", utils.FormatBytes(ev.Bytes), utils.FormatBytes(ev.Total), percent)
		}
		return utils.FormatBytes(ev.Bytes)
	case fetch.PhaseDone:
		return fmt.Sprintf("done, %s", utils.FormatBytes(ev.Bytes))
	default:
		return string(ev.Phase)
	}
}
