package main

import (
	"os"

	"GridVision/cmd/cli/commands"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gridvision",
	Short: "Locate objects in images with a vision model and a numbered grid",
	Long: `gridvision localizes described objects in an image.

The image is overlaid with a numbered grid, a vision model picks the cells
holding the object and the image is cropped to them until the region is
small enough. The final box is drawn onto a copy of the image.

Examples:
  gridvision detect photo.jpg "red coffee mug"
  gridvision detect photo.jpg --multi "red mug" "laptop" "plant"
  gridvision detect photo.jpg "cat" --provider gemini --verbose
  gridvision token --sub mobile-app`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(commands.NewDetectCmd())
	rootCmd.AddCommand(commands.NewTokenCmd())
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
