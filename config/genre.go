package config

import (
	"strings"

	"github.com/RyanBlaney/sonido-pulido/mastering"
)

// GenreSettings are the per-genre defaults.
type GenreSettings struct {
	Style mastering.Style `json:"style"`
	Tempo float64         `json:"tempo"`
}

// ForGenre maps a genre name to its mastering style and default tempo.
// Matching ignores case and surrounding space; unknown genres get a
// balanced master at 120 BPM.
func ForGenre(genre string) GenreSettings {
	g := strings.ToLower(strings.TrimSpace(genre))
	return GenreSettings{Style: genreStyle(g), Tempo: genreTempo(g)}
}

func genreStyle(genre string) mastering.Style {
	switch genre {
	case "lofi", "relax", "ambient", "jazz":
		return mastering.StyleWarm
	case "electro", "techno", "synthwave", "trap", "dnb":
		return mastering.StyleAggressive
	case "funk", "disco", "house", "pop":
		return mastering.StyleBright
	default:
		return mastering.StyleBalanced
	}
}

func genreTempo(genre string) float64 {
	switch genre {
	case "lofi":
		return 80
	case "relax":
		return 70
	case "ambient":
		return 75
	case "funk":
		return 110
	case "house":
		return 125
	case "techno", "electro":
		return 130
	default:
		return 120
	}
}
