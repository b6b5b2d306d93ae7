package render

import (
	"fmt"

	"github.com/rclancey/earcut"

	"github.com/irfansharif/neonglow/internal/geom"
)

// earClip triangulates a polygon using the earcut algorithm. It takes in a list
// of polygon vertices and returns a slice of triangles, each represented as a
// [3]geom.Point.
func earClip(polygonPoints []geom.Point) ([][3]geom.Point, error) {
	if len(polygonPoints) < 3 {
		return nil, fmt.Errorf("degenerate polygon (%d vertices < 3)", len(polygonPoints))
	}

	// Convert polygon points to flat coordinate array required by earcut.
	// Format: [x0, y0, x1, y1, ..., xn, yn]
	vertexCoords := make([]float64, len(polygonPoints)*2)
	for i, point := range polygonPoints {
		vertexCoords[i*2] = point.X
		vertexCoords[i*2+1] = point.Y
	}

	triangleIndices, err := earcut.Earcut(vertexCoords, nil /* holeIndices */, 2 /* dim */)
	if err != nil {
		return nil, fmt.Errorf("triangulation failed for %d-vertex polygon: %w", len(polygonPoints), err)
	}
	if len(triangleIndices) == 0 || len(triangleIndices)%3 != 0 {
		return nil, fmt.Errorf("invalid triangle index count %d", len(triangleIndices))
	}

	// Each vertex index maps to an (x,y) pair in vertexCoords.
	at := func(idx int) geom.Point {
		return geom.Point{X: vertexCoords[idx*2], Y: vertexCoords[idx*2+1]}
	}
	triangles := make([][3]geom.Point, len(triangleIndices)/3)
	for t := range triangles {
		base := t * 3
		triangles[t] = [3]geom.Point{
			at(triangleIndices[base]),
			at(triangleIndices[base+1]),
			at(triangleIndices[base+2]),
		}
	}
	return triangles, nil
}

// quadVertices returns the clip-space full-screen quad as a flat triangle
// list (x, y per vertex), ready for a VBO.
func quadVertices() ([]float32, error) {
	clip := geom.MakeBox(-1, -1, 2, 2)
	triangles, err := earClip(clip.Polygon())
	if err != nil {
		return nil, err
	}
	vertices := make([]float32, 0, len(triangles)*6)
	for _, tri := range triangles {
		for _, v := range tri {
			vertices = append(vertices, float32(v.X), float32(v.Y))
		}
	}
	return vertices, nil
}
