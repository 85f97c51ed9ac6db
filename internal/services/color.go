package services

import (
	"hash/fnv"

	"github.com/google/uuid"
)

// courseColorPalette matches the color names the web client knows how to
// render; changing entries or their order reshuffles every course's color.
var courseColorPalette = []string{
	"red", "green", "blue", "purple", "orange", "pink", "brown", "yellow",
}

// CourseColor derives a stable display color from the course id. Colors are
// not stored; the same course hashes to the same color on every node.
func CourseColor(courseID uuid.UUID) string {
	h := fnv.New32a()
	_, _ = h.Write(courseID[:])
	return courseColorPalette[h.Sum32()%uint32(len(courseColorPalette))]
}
