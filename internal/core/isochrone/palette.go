package isochrone

import (
	"fmt"
	"math"
	"sort"
)

// AutumnColors samples the sequential red→yellow "autumn" colormap at n
// evenly spaced stops in [0, 1] and returns hex colors.
func AutumnColors(n int) []string {
	colors := make([]string, n)
	for i := range colors {
		x := 0.0
		if n > 1 {
			x = float64(i) / float64(n-1)
		}
		colors[i] = fmt.Sprintf("#ff%02x00", int(math.Round(x*255)))
	}
	return colors
}

var tab10 = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

var tab20 = []string{
	"#1f77b4", "#aec7e8", "#ff7f0e", "#ffbb78", "#2ca02c",
	"#98df8a", "#d62728", "#ff9896", "#9467bd", "#c5b0d5",
	"#8c564b", "#c49c94", "#e377c2", "#f7b6d2", "#7f7f7f",
	"#c7c7c7", "#bcbd22", "#dbdb8d", "#17becf", "#9edae5",
}

// CategoryColors assigns a categorical color to each distinct category in
// sorted order. tab10 is used up to ten categories, tab20 (cycled) beyond.
func CategoryColors(categories []string) map[string]string {
	seen := make(map[string]struct{}, len(categories))
	uniq := make([]string, 0, len(categories))
	for _, c := range categories {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		uniq = append(uniq, c)
	}
	sort.Strings(uniq)

	palette := tab10
	if len(uniq) > len(tab10) {
		palette = tab20
	}
	out := make(map[string]string, len(uniq))
	for i, c := range uniq {
		out[c] = palette[i%len(palette)]
	}
	return out
}
