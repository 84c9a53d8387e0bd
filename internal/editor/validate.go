package editor

import (
	"fmt"
	"strings"

	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/models"
)

// Validity is the derived "polygon is savable" state, recomputed on every
// point store change. Save stays blocked while Valid is false or the zone
// name is blank; no further structural checks (self-intersection, minimum
// area, convexity) are performed.
type Validity struct {
	Valid      bool   `json:"valid"`
	PointCount int    `json:"pointCount"`
	Status     string `json:"status"`
}

// Validate derives the validity state from a point count.
func Validate(pointCount int) Validity {
	v := Validity{PointCount: pointCount}
	if pointCount >= models.MinZonePoints {
		v.Valid = true
		v.Status = fmt.Sprintf("valid polygon with %d points", pointCount)
		return v
	}
	missing := models.MinZonePoints - pointCount
	if missing == 1 {
		v.Status = "need 1 more point"
	} else {
		v.Status = fmt.Sprintf("need %d more points", missing)
	}
	return v
}

// Savable reports whether the draft may be saved: a valid polygon plus a
// non-blank name.
func Savable(v Validity, name string) bool {
	return v.Valid && strings.TrimSpace(name) != ""
}
