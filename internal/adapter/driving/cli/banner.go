package cli

import (
	"fmt"

	"github.com/costlens/costlens-go/pkg/version"
	"github.com/fatih/color"
)

// displayWelcomeBanner prints the welcome banner with version info.
func displayWelcomeBanner(versionStr string) {
	banner := `
          /$$$$$$                        /$$     /$$                                    
         /$$__  $$                      | $$    | $$                                    
        | $$  \__/  /$$$$$$   /$$$$$$$ /$$$$$$  | $$        /$$$$$$  /$$$$$$$   /$$$$$$$
        | $$       /$$__  $$ /$$_____/|_  $$_/  | $$       /$$__  $$| $$__  $$ /$$_____/
        | $$      | $$  \ $$|  $$$$$$   | $$    | $$      | $$$$$$$$| $$  \ $$|  $$$$$$ 
        | $$    $$| $$  | $$ \____  $$  | $$ /$$| $$      | $$_____/| $$  | $$ \____  $$
        |  $$$$$$/|  $$$$$$/ /$$$$$$$/  |  $$$$/| $$$$$$$$|  $$$$$$$| $$  | $$ /$$$$$$$/
         \______/  \______/ |_______/    \___/  |________/ \_______/|__/  |__/|_______/ 
        `
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	blue := color.New(color.FgBlue, color.Bold).SprintFunc()

	fmt.Println(red(banner))

	formattedVersion := version.FormatVersion()
	fmt.Println(blue(fmt.Sprintf("CostLens CLI (v%s)", formattedVersion)))
}
