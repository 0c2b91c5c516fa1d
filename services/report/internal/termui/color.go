package termui

import "github.com/fatih/color"

var (
	colorRed    = color.New(color.FgRed)
	colorYellow = color.New(color.FgYellow)
	colorGreen  = color.New(color.FgGreen)
	colorBold   = color.New(color.Bold)
)

// SectionTitle renders a bold section title.
func SectionTitle(title string) string {
	return colorBold.Sprint(title)
}

// ColorDirection colours trend direction labels.
func ColorDirection(val string) string {
	switch val {
	case "improving":
		return colorGreen.Sprint(val)
	case "degrading":
		return colorRed.Sprint(val)
	case "unknown":
		return colorYellow.Sprint(val)
	default:
		return val
	}
}

// ColorStatus colours a load status.
func ColorStatus(val string) string {
	switch val {
	case "ok":
		return colorGreen.Sprint(val)
	case "empty":
		return colorYellow.Sprint(val)
	case "fetch_failed":
		return colorRed.Sprint(val)
	default:
		return val
	}
}
