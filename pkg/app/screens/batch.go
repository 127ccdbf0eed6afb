package screens

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/freeradical16/comfyui-runpod-cuda-runtime/pkg/app/components"
	"github.com/freeradical16/comfyui-runpod-cuda-runtime/pkg/app/styles"
	"github.com/freeradical16/comfyui-runpod-cuda-runtime/pkg/fetch"
)

type batchDoneMsg struct {
	result fetch.BatchResult
}

// BatchScreen drives a batch download and renders per-file progress.
type BatchScreen struct {
	fetcher       *fetch.Fetcher
	items         []fetch.BatchItem
	defaultFolder string
	overwrite     bool
	policy        fetch.RetryPolicy

	tracker *components.ProgressTracker
	events  chan fetch.ProgressEvent
	cancel  context.CancelFunc
	ctx     context.Context

	result fetch.BatchResult
	done   bool
	width  int
}

func NewBatchScreen(fetcher *fetch.Fetcher, items []fetch.BatchItem, defaultFolder string, overwrite bool, policy fetch.RetryPolicy) *BatchScreen {
	ctx, cancel := context.WithCancel(context.Background())
	return &BatchScreen{
		fetcher:       fetcher,
		items:         items,
		defaultFolder: defaultFolder,
		overwrite:     overwrite,
		policy:        policy,
		tracker:       components.NewProgressTracker(80),
		events:        make(chan fetch.ProgressEvent, 64),
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Result returns the batch outcome once the program has finished.
func (s *BatchScreen) Result() fetch.BatchResult {
	return s.result
}

func (s *BatchScreen) Init() tea.Cmd {
	return tea.Batch(s.runBatch, s.listenForProgress)
}

func (s *BatchScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			// Downloads stop between chunks; partial files stay for resume.
			s.cancel()
		}

	case fetch.ProgressEvent:
		s.tracker.Update(msg)
		return s, s.listenForProgress

	case batchDoneMsg:
		s.result = msg.result
		s.done = true
		return s, tea.Quit
	}

	return s, nil
}

func (s *BatchScreen) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render(fmt.Sprintf("📥 Downloading %d model(s)", len(s.items))))
	b.WriteString("\n\n")
	b.WriteString(s.tracker.View())

	if s.done {
		b.WriteString(styles.StatusCompleted.Render(fmt.Sprintf("Done: %d succeeded, %d failed", s.result.Succeeded, len(s.result.Failures))))
		b.WriteString("\n")
	} else {
		b.WriteString(styles.HelpStyle.Render("q: stop (partial files are kept and resumed next run)"))
		b.WriteString("\n")
	}

	return b.String()
}

func (s *BatchScreen) runBatch() tea.Msg {
	result := s.fetcher.RunBatch(s.ctx, s.items, s.defaultFolder, s.overwrite, s.policy,
		func(fetch.BatchItem) fetch.ProgressFunc {
			return func(ev fetch.ProgressEvent) {
				s.events <- ev
			}
		})
	close(s.events)
	return batchDoneMsg{result: result}
}

func (s *BatchScreen) listenForProgress() tea.Msg {
	ev, ok := <-s.events
	if !ok {
		return nil
	}
	return ev
}
