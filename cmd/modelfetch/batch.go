package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/freeradical16/comfyui-runpod-cuda-runtime/pkg/app"
	"github.com/freeradical16/comfyui-runpod-cuda-runtime/pkg/fetch"
)

var batchCmd = &cobra.Command{
	Use:   "batch [file]",
	Short: "Download a list of model files",
	Long: "Read URLs from a file (use - for stdin), one per line. A line may start with a " +
		"folder key to override the default:\n\n  loras https://...\n  checkpoints https://...\n\n" +
		"Blank lines and lines starting with # are skipped. Failed items are retried " +
		"a couple of times; the batch always runs to the end and reports failures",
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		defaultFolder, _ := cmd.Flags().GetString("folder")
		overwrite, _ := cmd.Flags().GetBool("overwrite")
		tui, _ := cmd.Flags().GetBool("tui")

		text, err := readBatchInput(args[0])
		if err != nil {
			cobra.CheckErr(err)
		}

		fetcher := newFetcher()
		items := fetch.ParseBatch(text, fetcher.Folders().Has)
		if len(items) == 0 {
			fmt.Println("Nothing to download.")
			return
		}

		var result fetch.BatchResult
		if tui {
			result, err = app.NewApp(fetcher, items, defaultFolder, overwrite, fetch.DefaultRetryPolicy()).Run()
			if err != nil {
				cobra.CheckErr(err)
			}
		} else {
			result = runBatchPlain(cmd, fetcher, items, defaultFolder, overwrite)
		}

		fmt.Printf("\nDone. %d succeeded, %d failed.\n", result.Succeeded, len(result.Failures))
		for _, f := range result.Failures {
			fmt.Printf("  ❌ (%s) %s: %v\n", f.Folder, f.URL, f.Err)
		}
	},
}

func init() {
	batchCmd.Flags().StringP("folder", "f", "checkpoints", "Default folder key for lines without an override")
	batchCmd.Flags().BoolP("overwrite", "o", false, "Overwrite existing files")
	batchCmd.Flags().Bool("tui", false, "Show a live progress UI")
}

func readBatchInput(arg string) (string, error) {
	if arg == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(b), nil
	}

	b, err := os.ReadFile(arg)
	if err != nil {
		return "", fmt.Errorf("failed to read batch file: %w", err)
	}
	return string(b), nil
}

func runBatchPlain(cmd *cobra.Command, fetcher *fetch.Fetcher, items []fetch.BatchItem, defaultFolder string, overwrite bool) fetch.BatchResult {
	index := 0
	root := viper.GetString("root")

	return fetcher.RunBatch(cmd.Context(), items, defaultFolder, overwrite, fetch.DefaultRetryPolicy(),
		func(item fetch.BatchItem) fetch.ProgressFunc {
			index++
			folder := item.Folder
			if folder == "" {
				folder = defaultFolder
			}
			fmt.Printf("[%d/%d] (%s) %s\n", index, len(items), folder, item.URL)

			print := printProgress()
			return func(ev fetch.ProgressEvent) {
				print(ev)
				if ev.Phase == fetch.PhaseDone {
					recordDownload(item.URL, folder, filepath.Join(root, folder, ev.Filename))
				}
			}
		})
}
