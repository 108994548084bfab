package beaconsim

import (
	"math/rand/v2"
	"time"
)

// Site topology the simulated shopper walks through.
var journeyPaths = []string{
	"/home",
	"/products",
	"/products/featured",
	"/cart",
	"/checkout",
}

var connectionClasses = []string{"4g", "4g", "4g", "3g", "2g"}

// session is one synthetic visitor.
type session struct {
	URL        string
	Connection string
	Viewport   viewport
	Journey    []string
	Slow       bool
}

type viewport struct {
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	PixelRatio float64 `json:"pixel_ratio"`
}

// sample mirrors the collector's beacon sample shape.
type sample struct {
	Kind    string            `json:"kind"`
	Name    string            `json:"name,omitempty"`
	Value   float64           `json:"value"`
	Path    string            `json:"path,omitempty"`
	EpochMS int64             `json:"timestamp,omitempty"`
	Attrs   map[string]string `json:"attrs,omitempty"`
}

// newSession rolls a visitor profile. A slow session produces vitals past
// their budgets so the run exercises the violation path end to end.
func newSession(cfg *Config) session {
	widths := []int{390, 768, 1440}
	w := widths[rand.IntN(len(widths))]

	journey := make([]string, 0, len(journeyPaths))
	for _, p := range journeyPaths {
		journey = append(journey, p)
		if rand.Float64() < 0.2 {
			break
		}
	}

	return session{
		URL:        "https://shop.example" + journey[0],
		Connection: connectionClasses[rand.IntN(len(connectionClasses))],
		Viewport:   viewport{Width: w, Height: w * 2, PixelRatio: 2},
		Journey:    journey,
		Slow:       rand.Float64() < cfg.SlowShare,
	}
}

// makeSamples produces one beacon batch for a session page view.
func makeSamples(s session, n int) []sample {
	now := time.Now().UnixMilli()
	out := make([]sample, 0, n)

	vital := func(name string, good, bad float64) sample {
		v := good * (0.6 + rand.Float64()*0.8)
		if s.Slow {
			v = bad * (1.0 + rand.Float64())
		}
		return sample{Kind: "vitals", Name: name, Value: v, EpochMS: now}
	}

	out = append(out,
		vital("lcp", 1800, 2500),
		vital("ttfb", 500, 800),
		vital("cls", 0.05, 0.1),
	)

	for len(out) < n {
		switch rand.IntN(3) {
		case 0:
			out = append(out, sample{
				Kind:    "resource",
				Value:   50 + rand.Float64()*1500,
				Path:    "/assets/img-" + journeyPaths[rand.IntN(len(journeyPaths))],
				EpochMS: now,
				Attrs:   map[string]string{"initiator": "img"},
			})
		case 1:
			out = append(out, sample{
				Kind:    "long_task",
				Value:   30 + rand.Float64()*200,
				EpochMS: now,
			})
		default:
			out = append(out, sample{
				Kind:    "interaction",
				Name:    "funnel:view_product",
				Value:   1,
				EpochMS: now,
			})
		}
	}
	return out[:n]
}
