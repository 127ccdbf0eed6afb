package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/freeradical16/comfyui-runpod-cuda-runtime/pkg/models"
)

var foldersCmd = &cobra.Command{
	Use:   "folders",
	Short: "Show the folder map and token status",
	Run: func(cmd *cobra.Command, args []string) {
		root := viper.GetString("root")
		folders := models.NewFolderMap(root)

		fmt.Printf("📂 Models root: %s\n", root)
		fmt.Printf("CIVITAI_TOKEN set? %t\n", viper.GetString("civitai_token") != "")
		fmt.Printf("HF_TOKEN set?      %t\n", viper.GetString("hf_token") != "")

		fmt.Println("\nFolders:")
		for _, key := range folders.Keys() {
			fmt.Printf("  %-16s -> %s\n", key, folders.Dir(key))
		}
	},
}
