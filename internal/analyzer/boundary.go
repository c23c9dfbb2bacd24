package analyzer

import (
	"github.com/tomomini0815/ainance-v2-sub004/pkg/models"
)

// ReceiptBoundaryDetector decides whether the edge map outlines a
// portrait receipt
type ReceiptBoundaryDetector struct {
	minEdgeCount   int
	minAspectRatio float64
	maxAspectRatio float64
}

// NewReceiptBoundaryDetector creates a detector accepting more than
// minEdgeCount edge pixels whose box height/width lies strictly inside
// (minAspectRatio, maxAspectRatio)
func NewReceiptBoundaryDetector(minEdgeCount int, minAspectRatio, maxAspectRatio float64) *ReceiptBoundaryDetector {
	return &ReceiptBoundaryDetector{
		minEdgeCount:   minEdgeCount,
		minAspectRatio: minAspectRatio,
		maxAspectRatio: maxAspectRatio,
	}
}

// Detect computes the tight box around all edge pixels and applies the
// edge-density and aspect-ratio heuristics
func (d *ReceiptBoundaryDetector) Detect(edges *EdgeMap) BoundaryResult {
	minX, minY := edges.Width, edges.Height
	maxX, maxY := -1, -1
	count := 0

	for y := 0; y < edges.Height; y++ {
		row := edges.Edges[y*edges.Width : (y+1)*edges.Width]
		for x, isEdge := range row {
			if !isEdge {
				continue
			}
			count++
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}

	result := BoundaryResult{EdgeCount: count}
	if count == 0 || count <= d.minEdgeCount {
		return result
	}

	box := models.Bounds{
		X:      minX,
		Y:      minY,
		Width:  maxX - minX + 1,
		Height: maxY - minY + 1,
	}
	aspectRatio := float64(box.Height) / float64(box.Width)
	if aspectRatio <= d.minAspectRatio || aspectRatio >= d.maxAspectRatio {
		return result
	}

	result.Found = true
	result.Bounds = &box
	return result
}
