package services

import (
	"math"
	"strconv"
	"strings"

	"github.com/mbenhaddou/optimisation-service/internal/domain"
)

// Drawable primitives produced by the route-map compute layer. The compute
// layer never touches a map library; a rendering layer draws these with
// whatever graphics stack the caller chose.

// Fixed route palette, cycled over route index.
var routeColors = [...]string{"#f97316", "#0ea5e9", "#14b8a6", "#a855f7"}

func routeColor(index int) string {
	return routeColors[index%len(routeColors)]
}

// A sequentially numbered stop glyph.
type StopMarker struct {
	Point domain.Coordinates `json:"point"`
	Seq   int                `json:"seq"`
	Color string             `json:"color"`
}

type Polyline struct {
	Points  []domain.Coordinates `json:"points"`
	Color   string               `json:"color"`
	Weight  float64              `json:"weight"`
	Opacity float64              `json:"opacity"`
	Dashed  bool                 `json:"dashed,omitempty"`
}

// A directional indicator oriented by the bearing between two consecutive
// geometry points.
type Arrow struct {
	Point      domain.Coordinates `json:"point"`
	BearingDeg float64            `json:"bearingDeg"`
}

type Bounds struct {
	MinLat float64 `json:"minLat"`
	MinLng float64 `json:"minLng"`
	MaxLat float64 `json:"maxLat"`
	MaxLng float64 `json:"maxLng"`
}

// Road-accurate metrics for one vehicle's rendered route.
type RoadMetrics struct {
	DistanceKm  float64 `json:"distanceKm"`
	DurationMin float64 `json:"durationMin"`
}

type RouteMapView struct {
	Markers   []StopMarker           `json:"markers"`
	Polylines []Polyline             `json:"polylines"`
	Arrows    []Arrow                `json:"arrows,omitempty"`
	Bounds    *Bounds                `json:"bounds,omitempty"`
	Metrics   map[string]RoadMetrics `json:"metrics,omitempty"`
	Fallback  bool                   `json:"fallback,omitempty"`
	Preview   bool                   `json:"preview,omitempty"`
}

// routeStopPoints extracts the drawable coordinates of a route, skipping
// stops whose location is absent or not finite.
func routeStopPoints(route domain.SolutionRoute) []domain.Coordinates {
	points := make([]domain.Coordinates, 0, len(route.Stops))
	for _, stop := range route.Stops {
		if stop.Location == nil {
			continue
		}
		if !isFinite(stop.Location.Lat) || !isFinite(stop.Location.Lng) {
			continue
		}
		points = append(points, domain.Coordinates{Lat: stop.Location.Lat, Lng: stop.Location.Lng})
	}
	return points
}

// stopMarkers numbers a route's stops sequentially. Numbering follows the
// stop's position in the route, so a skipped (non-finite) stop leaves a gap
// rather than renumbering its successors.
func stopMarkers(route domain.SolutionRoute, color string) []StopMarker {
	markers := make([]StopMarker, 0, len(route.Stops))
	for i, stop := range route.Stops {
		if stop.Location == nil {
			continue
		}
		if !isFinite(stop.Location.Lat) || !isFinite(stop.Location.Lng) {
			continue
		}
		markers = append(markers, StopMarker{
			Point: domain.Coordinates{Lat: stop.Location.Lat, Lng: stop.Location.Lng},
			Seq:   i + 1,
			Color: color,
		})
	}
	return markers
}

// directionArrows places indicators along road geometry at a stride of
// max(8, floor(n/8)) points.
func directionArrows(geometry []domain.Coordinates) []Arrow {
	if len(geometry) < 2 {
		return nil
	}
	stride := len(geometry) / 8
	if stride < 8 {
		stride = 8
	}
	arrows := make([]Arrow, 0, len(geometry)/stride+1)
	for i := stride; i < len(geometry); i += stride {
		prev := geometry[i-1]
		curr := geometry[i]
		bearing := math.Atan2(curr.Lat-prev.Lat, curr.Lng-prev.Lng) * 180 / math.Pi
		arrows = append(arrows, Arrow{Point: curr, BearingDeg: bearing})
	}
	return arrows
}

// viewBounds fits all drawn geometry, padded by ratio of the span on every
// side so the outermost points do not sit on the view edge.
func viewBounds(view RouteMapView, padRatio float64) *Bounds {
	var b *Bounds
	extend := func(p domain.Coordinates) {
		if b == nil {
			b = &Bounds{MinLat: p.Lat, MinLng: p.Lng, MaxLat: p.Lat, MaxLng: p.Lng}
			return
		}
		b.MinLat = math.Min(b.MinLat, p.Lat)
		b.MinLng = math.Min(b.MinLng, p.Lng)
		b.MaxLat = math.Max(b.MaxLat, p.Lat)
		b.MaxLng = math.Max(b.MaxLng, p.Lng)
	}

	for _, m := range view.Markers {
		extend(m.Point)
	}
	for _, line := range view.Polylines {
		for _, p := range line.Points {
			extend(p)
		}
	}
	if b == nil {
		return nil
	}

	padLat := (b.MaxLat - b.MinLat) * padRatio
	padLng := (b.MaxLng - b.MinLng) * padRatio
	b.MinLat -= padLat
	b.MaxLat += padLat
	b.MinLng -= padLng
	b.MaxLng += padLng
	return b
}

// previewView plots vehicle start points and task points connected by a
// dashed guide line. No routing backend is consulted.
func previewView(scenario domain.ScenarioData) RouteMapView {
	view := RouteMapView{
		Markers:   []StopMarker{},
		Polylines: []Polyline{},
		Preview:   true,
	}

	guide := make([]domain.Coordinates, 0, len(scenario.Vehicles)+len(scenario.Tasks))
	seq := 0
	for _, v := range scenario.Vehicles {
		if p, ok := parsePoint(v.StartLat, v.StartLng); ok {
			guide = append(guide, p)
			seq++
			view.Markers = append(view.Markers, StopMarker{Point: p, Seq: seq, Color: "#0f172a"})
		}
	}
	for _, t := range scenario.Tasks {
		if p, ok := parsePoint(t.Lat, t.Lng); ok {
			guide = append(guide, p)
			seq++
			view.Markers = append(view.Markers, StopMarker{Point: p, Seq: seq, Color: "#f97316"})
		}
	}
	if len(guide) > 1 {
		view.Polylines = append(view.Polylines, Polyline{
			Points:  guide,
			Color:   "#94a3b8",
			Weight:  2,
			Opacity: 0.8,
			Dashed:  true,
		})
	}

	view.Bounds = viewBounds(view, boundsPadRatio)
	return view
}

func parsePoint(lat, lng string) (domain.Coordinates, bool) {
	latV, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil || !isFinite(latV) {
		return domain.Coordinates{}, false
	}
	lngV, err := strconv.ParseFloat(strings.TrimSpace(lng), 64)
	if err != nil || !isFinite(lngV) {
		return domain.Coordinates{}, false
	}
	return domain.Coordinates{Lat: latV, Lng: lngV}, true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
