package geo

import (
	"sort"

	"github.com/twpayne/go-geom"
	gjson "github.com/twpayne/go-geom/encoding/geojson"

	"pwa_mapview/internal/models"
)

// RoutePath encodes the walkable path through a route's meters as a
// GeoJSON LineString for the map hand-off: coordinates ordered by
// sequence number (nil sequences last, store id breaking ties), records
// without a coordinate pair dropped. Returns "" when fewer than two
// meters carry coordinates, since a single point is not a path.
func RoutePath(records []models.RouteRecord) (string, error) {
	located := make([]models.RouteRecord, 0, len(records))
	for _, r := range records {
		if r.Latitude != nil && r.Longitude != nil {
			located = append(located, r)
		}
	}
	if len(located) < 2 {
		return "", nil
	}

	sort.SliceStable(located, func(i, j int) bool {
		si, sj := located[i].Mtrseq, located[j].Mtrseq
		if si == nil || sj == nil {
			return sj == nil && si != nil
		}
		if *si != *sj {
			return *si < *sj
		}
		return located[i].ID < located[j].ID
	})

	coords := make([]geom.Coord, len(located))
	for i, r := range located {
		coords[i] = geom.Coord{*r.Longitude, *r.Latitude}
	}

	line := geom.NewLineString(geom.XY).MustSetCoords(coords)
	b, err := gjson.Marshal(line)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
