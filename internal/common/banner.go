package common

import (
	"github.com/ternarybob/banner"
)

// PrintBanner displays the application startup banner
func PrintBanner(version string) {
	b := banner.New().
		SetBorderColor(banner.ColorCyan).
		SetBold(true)

	b.PrintTopLine()
	b.PrintCenteredText("HERROLD")
	b.PrintCenteredText("Browser Test Runner")
	b.PrintSeparatorLine()
	b.PrintKeyValue("Version", version, 10)
	b.PrintBottomLine()
}
