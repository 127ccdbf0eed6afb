package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/freeradical16/comfyui-runpod-cuda-runtime/pkg/app/screens"
	"github.com/freeradical16/comfyui-runpod-cuda-runtime/pkg/fetch"
)

// App runs a batch download behind a terminal UI.
type App struct {
	fetcher       *fetch.Fetcher
	items         []fetch.BatchItem
	defaultFolder string
	overwrite     bool
	policy        fetch.RetryPolicy
}

func NewApp(fetcher *fetch.Fetcher, items []fetch.BatchItem, defaultFolder string, overwrite bool, policy fetch.RetryPolicy) *App {
	return &App{
		fetcher:       fetcher,
		items:         items,
		defaultFolder: defaultFolder,
		overwrite:     overwrite,
		policy:        policy,
	}
}

// Run blocks until the batch finishes or the user quits.
func (a *App) Run() (fetch.BatchResult, error) {
	model := screens.NewBatchScreen(a.fetcher, a.items, a.defaultFolder, a.overwrite, a.policy)
	p := tea.NewProgram(model)
	m, err := p.Run()
	if err != nil {
		return fetch.BatchResult{}, err
	}
	return m.(*screens.BatchScreen).Result(), nil
}
