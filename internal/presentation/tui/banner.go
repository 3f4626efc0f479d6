package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []string{
	`       _                   _    _                     _    `,
	`  __ _(_)_ _____   __ _ (_)  | |__ _ _ ___ __ _| |__`,
	` / _' | \ V / -_) / _' || |  | '_ \ '_/ -_) _' | / /`,
	` \__, |_|\_/\___| \__,_||_|  |_.__/_| \___\__,_|_\_\`,
	` |___/                                                 `,
}

var bannerColors = []string{"#fde047", "#facc15", "#eab308", "#ca8a04", "#a16207"}

// PrintBanner writes the game banner to w, shaded for the detected color profile.
func PrintBanner(w io.Writer) {
	p := termenv.EnvColorProfile()
	fmt.Fprintln(w)
	for i, line := range bannerLines {
		fmt.Fprintln(w, termenv.String(line).Foreground(p.Color(bannerColors[i%len(bannerColors)])))
	}
	fmt.Fprintln(w)
}
