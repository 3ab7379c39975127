package ui

import (
	"image"
	"os"
	"strings"

	"github.com/qeesung/image2ascii/convert"
)

// TerminalCapabilities represents what the terminal can draw.
type TerminalCapabilities struct {
	Color bool
}

// DetectTerminalCapabilities inspects the environment.
func DetectTerminalCapabilities() TerminalCapabilities {
	if os.Getenv("NO_COLOR") != "" {
		return TerminalCapabilities{}
	}
	term := os.Getenv("TERM")
	return TerminalCapabilities{
		Color: term != "" && !strings.HasPrefix(term, "dumb"),
	}
}

// PhotoRenderer returns a function turning point photos into ASCII art for caps.
func PhotoRenderer(caps TerminalCapabilities) func(img image.Image, width, height int) string {
	return func(img image.Image, width, height int) string {
		return convertToASCII(img, width, height, caps.Color)
	}
}

// convertToASCII converts an image to ASCII art.
func convertToASCII(img image.Image, targetWidth, targetHeight int, colored bool) string {
	converter := convert.NewImageConverter()

	opts := convert.DefaultOptions
	opts.FixedWidth = targetWidth
	opts.FixedHeight = targetHeight
	opts.Colored = colored
	opts.Ratio = 0.5 // terminal cells are about twice as tall as wide

	return converter.Image2ASCIIString(img, &opts)
}
