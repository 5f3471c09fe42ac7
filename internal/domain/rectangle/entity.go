package rectangle

import (
	"fmt"
	"io"
	"math/bits"
	"os"
	"time"
)

// Rectangle represents a rectangle by its two unsigned dimensions.
// It is a plain value type: two rectangles with the same width and height are equal.
type Rectangle struct {
	Width  uint32 // Width of the rectangle
	Height uint32 // Height of the rectangle
}

// New creates a Rectangle holding the given width and height unchanged.
func New(width, height uint32) Rectangle {
	return Rectangle{Width: width, Height: height}
}

// Area returns Width × Height. The product wraps modulo 2^32 when it does not fit.
func (r Rectangle) Area() uint32 {
	return r.Width * r.Height
}

// AreaChecked returns the same value as Area and reports whether the product fit in 32 bits.
func (r Rectangle) AreaChecked() (uint32, bool) {
	hi, lo := bits.Mul32(r.Width, r.Height)
	return lo, hi == 0
}

// String returns the two display lines, each terminated by a newline.
func (r Rectangle) String() string {
	return fmt.Sprintf("Rectangle width: %d, height: %d\nArea of rectangle: %d\n", r.Width, r.Height, r.Area())
}

// Display writes the rectangle's dimensions and area to w.
func Display(w io.Writer, r Rectangle) error {
	_, err := io.WriteString(w, r.String())
	return err
}

// Print writes the display lines to standard output.
func Print(r Rectangle) {
	_ = Display(os.Stdout, r)
}

// Record is a rectangle saved in the catalogue.
type Record struct {
	ID        int64     // ID is the unique identifier of the record
	Label     string    // Label is an optional free-form name
	Rectangle Rectangle // Rectangle holds the saved dimensions
	CreatedAt time.Time // CreatedAt is set by the store on insert
}
