package httpadapter

import (
	"cmp"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/couchcryptid/quake-alert-service/internal/domain"
	"github.com/jonboulle/clockwork"
)

// Record is one earthquake in the Kandilli wire format.
type Record struct {
	EarthquakeID string  `json:"earthquake_id"`
	Provider     string  `json:"provider"`
	Title        string  `json:"title"`
	Mag          float64 `json:"mag"`
	Depth        float64 `json:"depth"`
	DateTime     string  `json:"date_time"`
	GeoJSON      GeoJSON `json:"geojson"`
}

// GeoJSON is a point geometry; coordinates are [lon, lat].
type GeoJSON struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

var places = []string{
	"MARMARA DENIZI",
	"SINDIRGI (BALIKESIR)",
	"SILIVRI ACIKLARI-ISTANBUL",
	"GEMLIK KORFEZI (BURSA)",
	"AYVACIK (CANAKKALE)",
	"DUZCE MERKEZ",
	"SIMAV (KUTAHYA)",
	"BODRUM ACIKLARI-MUGLA",
}

// Generator produces a synthetic live list scattered around a centre point.
// Records are stamped relative to the clock on every call, so the list always
// looks current.
type Generator struct {
	center   domain.Geo
	count    int
	spreadDg float64
	clock    clockwork.Clock
	loc      *time.Location

	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator creates a Generator producing count records within spreadDeg
// degrees of center. The same seed yields the same relative layout.
func NewGenerator(center domain.Geo, count int, spreadDeg float64, seed uint64, clock clockwork.Clock, loc *time.Location) *Generator {
	return &Generator{
		center:   center,
		count:    count,
		spreadDg: spreadDeg,
		clock:    clock,
		loc:      loc,
		rng:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Records returns the current list, newest first.
func (g *Generator) Records() []Record {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock.Now().In(g.loc)
	out := make([]Record, g.count)
	for i := range out {
		// Ages cluster toward the present so a run usually sees recent events.
		age := time.Duration(math.Pow(g.rng.Float64(), 2) * float64(30*time.Hour)).Truncate(time.Second)
		// Gutenberg-Richter-like tail: most quakes are small.
		mag := math.Min(7.5, 1.0+g.rng.ExpFloat64()*0.9)

		lat := clamp(g.center.Lat+(g.rng.Float64()*2-1)*g.spreadDg, -90, 90)
		lon := clamp(g.center.Lon+(g.rng.Float64()*2-1)*g.spreadDg, -180, 180)

		out[i] = Record{
			EarthquakeID: fmt.Sprintf("mock-%d-%d", now.Unix(), i),
			Provider:     "kandilli",
			Title:        places[g.rng.IntN(len(places))],
			Mag:          math.Round(mag*10) / 10,
			Depth:        math.Round((1+g.rng.Float64()*30)*10) / 10,
			DateTime:     now.Add(-age).Format(domain.FeedTimeLayout),
			GeoJSON: GeoJSON{
				Type:        "Point",
				Coordinates: []float64{round4(lon), round4(lat)},
			},
		}
	}

	// The layout sorts lexically in time order.
	slices.SortStableFunc(out, func(a, b Record) int {
		return cmp.Compare(b.DateTime, a.DateTime)
	})
	return out
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
