package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/freeradical16/comfyui-runpod-cuda-runtime/pkg/data"
	"github.com/freeradical16/comfyui-runpod-cuda-runtime/pkg/fetch"
	"github.com/freeradical16/comfyui-runpod-cuda-runtime/pkg/models"
)

var rootCmd = &cobra.Command{
	Use:   "modelfetch",
	Short: "Fetch model files into a ComfyUI models tree",
	Long: "Download checkpoints, LoRAs, VAEs and friends from direct URLs into " +
		"the right ComfyUI models folder, with resume support and batch mode",
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("root", models.DefaultRoot, "Models directory root")
	rootCmd.PersistentFlags().String("history", "modelfetch.db", "Download history database")

	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(foldersCmd)
	rootCmd.AddCommand(listCmd)
}

func initConfig() {
	// .env is optional; real env vars win
	godotenv.Load()

	viper.BindPFlag("root", rootCmd.PersistentFlags().Lookup("root"))
	viper.BindPFlag("history", rootCmd.PersistentFlags().Lookup("history"))
	viper.BindEnv("root", "MODELFETCH_ROOT")
	viper.BindEnv("civitai_token", "CIVITAI_TOKEN")
	viper.BindEnv("hf_token", "HF_TOKEN")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newFetcher() *fetch.Fetcher {
	folders := models.NewFolderMap(viper.GetString("root"))
	tokens := fetch.Tokens{
		Civitai:     viper.GetString("civitai_token"),
		HuggingFace: viper.GetString("hf_token"),
	}
	return fetch.NewFetcher(folders, tokens)
}

// recordDownload stores a completed download in the history database.
// History is a convenience, so failures only warn.
func recordDownload(url, folder, path string) {
	db, err := data.InitDuckDB(viper.GetString("history"))
	if err != nil {
		fmt.Printf("⚠️  history unavailable: %v\n", err)
		return
	}
	defer db.Close()

	var size int64
	if info, err := os.Stat(path); err == nil {
		size = info.Size()
	}

	repo := data.NewRepository(db)
	err = repo.SaveDownload(&data.Download{
		URL:          url,
		Folder:       folder,
		Filename:     filepath.Base(path),
		Path:         path,
		Size:         size,
		DownloadedAt: time.Now(),
	})
	if err != nil {
		fmt.Printf("⚠️  failed to record download: %v\n", err)
	}
}
