// Package grid partitions an image into a numbered rows×cols grid and maps
// selected cell ids back to pixel rectangles.
package grid

import (
	"errors"
	"fmt"
	"image"
	"strconv"

	"GridVision/pkg/render"
)

var (
	ErrEmptyImage  = errors.New("grid: image has zero width or height")
	ErrInvalidGrid = errors.New("grid: rows and cols must be at least 1")
)

const (
	outlineWidth = 2
	labelOffset  = 5
)

// Cell is one rectangle of the grid in the frame of the image it was computed
// from.
type Cell struct {
	ID     int
	X      int
	Y      int
	Width  int
	Height int
}

func (c Cell) Rect() image.Rectangle {
	return image.Rect(c.X, c.Y, c.X+c.Width, c.Y+c.Height)
}

// CellMap holds cells 1..rows*cols in row-major order.
type CellMap struct {
	Rows  int
	Cols  int
	cells []Cell
}

// NewCellMap computes the cell rectangles for a width×height image. Cells use
// floor division; remainder pixels on the right and bottom edges are left
// uncovered.
func NewCellMap(width, height, rows, cols int) (CellMap, error) {
	if rows < 1 || cols < 1 {
		return CellMap{}, fmt.Errorf("%w: got %dx%d", ErrInvalidGrid, rows, cols)
	}
	if width <= 0 || height <= 0 {
		return CellMap{}, ErrEmptyImage
	}

	cellWidth := width / cols
	cellHeight := height / rows

	cells := make([]Cell, 0, rows*cols)
	id := 1
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			cells = append(cells, Cell{
				ID:     id,
				X:      col * cellWidth,
				Y:      row * cellHeight,
				Width:  cellWidth,
				Height: cellHeight,
			})
			id++
		}
	}

	return CellMap{Rows: rows, Cols: cols, cells: cells}, nil
}

func (m CellMap) Len() int {
	return len(m.cells)
}

// Cells returns a copy of the cells in id order.
func (m CellMap) Cells() []Cell {
	out := make([]Cell, len(m.cells))
	copy(out, m.cells)
	return out
}

func (m CellMap) Lookup(id int) (Cell, bool) {
	if id < 1 || id > len(m.cells) {
		return Cell{}, false
	}
	return m.cells[id-1], true
}

// BoundingBox returns the smallest box covering every referenced cell. Ids
// missing from the map are skipped; no known id yields the zero box.
func (m CellMap) BoundingBox(ids []int) BoundingBox {
	var box BoundingBox
	found := false

	for _, id := range ids {
		cell, ok := m.Lookup(id)
		if !ok {
			continue
		}

		if !found {
			box = BoundingBox{Left: cell.X, Top: cell.Y, Right: cell.X + cell.Width, Bottom: cell.Y + cell.Height}
			found = true
			continue
		}

		box.Left = min(box.Left, cell.X)
		box.Top = min(box.Top, cell.Y)
		box.Right = max(box.Right, cell.X+cell.Width)
		box.Bottom = max(box.Bottom, cell.Y+cell.Height)
	}

	return box
}

// Overlay draws the numbered grid onto a copy of img and returns it with the
// cell map. img is never modified.
func Overlay(img image.Image, rows, cols int) (*image.RGBA, CellMap, error) {
	if img == nil {
		return nil, CellMap{}, ErrEmptyImage
	}

	b := img.Bounds()
	cellMap, err := NewCellMap(b.Dx(), b.Dy(), rows, cols)
	if err != nil {
		return nil, CellMap{}, err
	}

	annotated := render.Clone(img)

	first := cellMap.cells[0]
	face := render.Face(float64(min(first.Width, first.Height)) / 8)

	for _, cell := range cellMap.cells {
		render.Rectangle(annotated, cell.Rect(), render.Red, outlineWidth)
	}
	// labels go on after every outline so neighbouring borders cannot cover them
	for _, cell := range cellMap.cells {
		pt := image.Pt(cell.X+labelOffset, cell.Y+labelOffset)
		render.Label(annotated, face, pt, strconv.Itoa(cell.ID), render.Red, render.White, 2)
	}

	return annotated, cellMap, nil
}
