package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/freeradical16/comfyui-runpod-cuda-runtime/pkg/fetch"
	"github.com/freeradical16/comfyui-runpod-cuda-runtime/pkg/utils"
)

var getCmd = &cobra.Command{
	Use:   "get [url]",
	Short: "Download a single model file",
	Long:  "Download one URL into the chosen models folder, resuming a previous partial download if one exists",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		url := args[0]
		folder, _ := cmd.Flags().GetString("folder")
		name, _ := cmd.Flags().GetString("name")
		overwrite, _ := cmd.Flags().GetBool("overwrite")

		fetcher := newFetcher()
		req := fetch.Request{URL: url, Folder: folder, Filename: name, Overwrite: overwrite}

		fmt.Printf("📥 (%s) %s\n", folder, url)
		path, err := fetcher.Fetch(cmd.Context(), req, printProgress())
		if err != nil {
			cobra.CheckErr(fmt.Errorf("download failed: %w", err))
		}

		recordDownload(url, folder, path)
		fmt.Printf("✅ Saved: %s\n", path)
	},
}

func init() {
	getCmd.Flags().StringP("folder", "f", "checkpoints", "Target folder key (e.g. loras, vae)")
	getCmd.Flags().StringP("name", "n", "", "Filename override")
	getCmd.Flags().BoolP("overwrite", "o", false, "Overwrite an existing file")
}

// printProgress writes one line per progress event, rewriting the current
// line while bytes stream in.
func printProgress() fetch.ProgressFunc {
	return func(ev fetch.ProgressEvent) {
		switch ev.Phase {
		case fetch.PhaseSkip:
			fmt.Printf("  ⏭  %s already exists (%s)\n", ev.Filename, utils.FormatBytes(ev.Bytes))
		case fetch.PhaseStart:
			if ev.Bytes > 0 {
				fmt.Printf("  %s: resuming at %s\n", ev.Filename, utils.FormatBytes(ev.Bytes))
			}
		case fetch.PhaseRestart:
			fmt.Printf("  %s: server ignored resume, restarting\n", ev.Filename)
		case fetch.PhaseDownloading:
			if ev.Total > 0 {
				percent := float64(ev.Bytes) / float64(ev.Total) * 100
				fmt.Printf("\r  %s: %s / %s (%.0f%%)   ", ev.Filename, utils.FormatBytes(ev.Bytes), utils.FormatBytes(ev.Total), percent)
			} else {
				fmt.Printf("\r  %s: %s   ", ev.Filename, utils.FormatBytes(ev.Bytes))
			}
		case fetch.PhaseDone:
			fmt.Printf("\r  %s: %s ✔      \n", ev.Filename, utils.FormatBytes(ev.Bytes))
		}
	}
}
