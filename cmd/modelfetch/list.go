package cmd

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/freeradical16/comfyui-runpod-cuda-runtime/pkg/data"
	"github.com/freeradical16/comfyui-runpod-cuda-runtime/pkg/utils"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List downloaded models",
	Long:  "Display the download history in a formatted table",
	Run: func(cmd *cobra.Command, args []string) {
		db, err := data.InitDuckDB(viper.GetString("history"))
		if err != nil {
			cobra.CheckErr(err)
		}
		defer db.Close()

		downloads, err := data.NewRepository(db).ListDownloads()
		if err != nil {
			cobra.CheckErr(err)
		}

		if len(downloads) == 0 {
			fmt.Println("📦 No downloads recorded yet. Use 'modelfetch get' to fetch a model.")
			return
		}

		columns := []table.Column{
			{Title: "Filename", Width: 40},
			{Title: "Folder", Width: 16},
			{Title: "Size", Width: 10},
			{Title: "Downloaded", Width: 16},
		}

		rows := []table.Row{}
		for _, d := range downloads {
			rows = append(rows, table.Row{
				truncateString(d.Filename, 38),
				d.Folder,
				utils.FormatBytes(d.Size),
				d.DownloadedAt.Format("2006-01-02 15:04"),
			})
		}

		t := table.New(
			table.WithColumns(columns),
			table.WithRows(rows),
			table.WithFocused(false),
			table.WithHeight(len(rows)),
		)

		s := table.DefaultStyles()
		s.Header = s.Header.
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			BorderBottom(true).
			Bold(true)
		s.Selected = s.Selected.
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Bold(false)
		t.SetStyles(s)

		fmt.Printf("\n📦 Downloads (%d)\n\n", len(downloads))
		fmt.Println(t.View())
	},
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-1] + "…"
}
