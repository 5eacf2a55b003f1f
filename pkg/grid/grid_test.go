package grid

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 10, G: 20, B: 30, A: 255})
		}
	}
	return img
}

func TestNewCellMap_RowMajorTiling(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		rows, cols    int
	}{
		{"default 4x3 on 1024x768", 1024, 768, 4, 3},
		{"single cell", 50, 40, 1, 1},
		{"remainder pixels", 101, 53, 4, 3},
		{"wide grid", 640, 480, 2, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewCellMap(tt.width, tt.height, tt.rows, tt.cols)
			require.NoError(t, err)
			require.Equal(t, tt.rows*tt.cols, m.Len())

			bounds := image.Rect(0, 0, tt.width, tt.height)
			totalArea := 0
			for i, cell := range m.Cells() {
				assert.Equal(t, i+1, cell.ID, "ids must be contiguous from 1")
				assert.Equal(t, (i%tt.cols)*(tt.width/tt.cols), cell.X)
				assert.Equal(t, (i/tt.cols)*(tt.height/tt.rows), cell.Y)
				assert.True(t, cell.Rect().In(bounds), "cell %d outside image", cell.ID)
				totalArea += cell.Width * cell.Height
			}
			assert.LessOrEqual(t, totalArea, tt.width*tt.height)
		})
	}
}

func TestNewCellMap_Rejects(t *testing.T) {
	_, err := NewCellMap(0, 10, 4, 3)
	assert.ErrorIs(t, err, ErrEmptyImage)

	_, err = NewCellMap(10, 0, 4, 3)
	assert.ErrorIs(t, err, ErrEmptyImage)

	_, err = NewCellMap(10, 10, 0, 3)
	assert.ErrorIs(t, err, ErrInvalidGrid)

	_, err = NewCellMap(10, 10, 4, -1)
	assert.ErrorIs(t, err, ErrInvalidGrid)
}

func TestBoundingBox(t *testing.T) {
	m, err := NewCellMap(1024, 768, 4, 3)
	require.NoError(t, err)

	t.Run("empty input is the zero box", func(t *testing.T) {
		assert.Equal(t, BoundingBox{}, m.BoundingBox(nil))
		assert.True(t, m.BoundingBox([]int{}).IsZero())
	})

	t.Run("single cell equals its rectangle", func(t *testing.T) {
		for _, cell := range m.Cells() {
			box := m.BoundingBox([]int{cell.ID})
			assert.Equal(t, cell.Rect(), box.Rect())
		}
	})

	t.Run("union of cells", func(t *testing.T) {
		box := m.BoundingBox([]int{5, 8})
		assert.Equal(t, BoundingBox{Left: 341, Top: 192, Right: 682, Bottom: 576}, box)

		box = m.BoundingBox([]int{5, 9})
		assert.Equal(t, BoundingBox{Left: 341, Top: 192, Right: 1023, Bottom: 576}, box)

		box = m.BoundingBox([]int{1, 12})
		assert.Equal(t, BoundingBox{Left: 0, Top: 0, Right: 1023, Bottom: 768}, box)
	})

	t.Run("order independent", func(t *testing.T) {
		want := m.BoundingBox([]int{2, 4, 11})
		perms := [][]int{{4, 2, 11}, {11, 4, 2}, {2, 11, 4}, {11, 2, 4}, {4, 11, 2}}
		for _, p := range perms {
			assert.Equal(t, want, m.BoundingBox(p))
		}
	})

	t.Run("unknown ids are skipped", func(t *testing.T) {
		assert.Equal(t, m.BoundingBox([]int{5}), m.BoundingBox([]int{0, 5, 13, 99}))
		assert.True(t, m.BoundingBox([]int{-1, 13}).IsZero())
	})
}

func TestOverlay(t *testing.T) {
	src := solidImage(300, 200)

	annotated, m, err := Overlay(src, 4, 3)
	require.NoError(t, err)

	assert.Equal(t, 12, m.Len())
	assert.Equal(t, src.Bounds(), annotated.Bounds())
	assert.NotSame(t, src, annotated)

	for y := 0; y < 200; y++ {
		for x := 0; x < 300; x++ {
			require.Equal(t, color.RGBA{R: 10, G: 20, B: 30, A: 255}, src.RGBAAt(x, y), "input mutated at %d,%d", x, y)
		}
	}

	// cell 5 starts at (100, 50); its top border must be drawn
	assert.NotEqual(t, src.RGBAAt(150, 50), annotated.RGBAAt(150, 50))
}

func TestOverlay_NonZeroOrigin(t *testing.T) {
	src := solidImage(400, 400).SubImage(image.Rect(100, 100, 400, 300))

	annotated, m, err := Overlay(src, 4, 3)
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, 300, 200), annotated.Bounds())
	cell, ok := m.Lookup(1)
	require.True(t, ok)
	assert.Equal(t, image.Rect(0, 0, 100, 50), cell.Rect())
}

func TestOverlay_EmptyImage(t *testing.T) {
	_, _, err := Overlay(image.NewRGBA(image.Rect(0, 0, 0, 10)), 4, 3)
	assert.ErrorIs(t, err, ErrEmptyImage)

	_, _, err = Overlay(nil, 4, 3)
	assert.ErrorIs(t, err, ErrEmptyImage)
}

func TestBoundingBoxHelpers(t *testing.T) {
	b := BoundingBox{Left: 10, Top: 20, Right: 40, Bottom: 60}

	assert.Equal(t, 30, b.Width())
	assert.Equal(t, 40, b.Height())
	assert.Equal(t, 1200, b.Area())
	assert.Equal(t, BoundingBox{Left: 15, Top: 27, Right: 45, Bottom: 67}, b.Offset(image.Pt(5, 7)))
	assert.Equal(t, []int{10, 20, 40, 60}, b.Slice())
	assert.Equal(t, "(10, 20, 40, 60)", b.String())
	assert.Equal(t, 0, BoundingBox{}.Area())
}
