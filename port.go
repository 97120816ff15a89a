package lowered

import (
	"fmt"
	"strings"

	"github.com/gomlx/lowered/types/layout"
	"github.com/gomlx/lowered/types/shapes"
	"github.com/pkg/errors"
)

// ExprID is a stable handle to an Expression in the arena of its LinearIR.
//
// Handles survive relocation of the expression (Move, InsertAt), and are never reused within one LinearIR.
type ExprID int

// NoExpr is the ExprID used when no expression applies.
const NoExpr ExprID = -1

// String implements fmt.Stringer.
func (id ExprID) String() string {
	if id == NoExpr {
		return "%none"
	}
	return fmt.Sprintf("%%%d", int(id))
}

// PortRef addresses one input or output port of an expression.
// Whether it is an input or an output is given by context.
type PortRef struct {
	Expr ExprID
	Port int
}

// String implements fmt.Stringer.
func (r PortRef) String() string {
	return fmt.Sprintf("%s:%d", r.Expr, r.Port)
}

// PortDescriptor is the per-tensor metadata attached to one input or output port of one Expression.
//
// The Layout is always a valid permutation of the Shape's axes: use SetLayout to change it.
type PortDescriptor struct {
	// Shape in logical axis order. Passes must not change it.
	Shape shapes.Shape

	// Layout is the physical order of the axes.
	Layout layout.Layout

	// TileSize is the subtensor tile size, or 0 if none was decided.
	TileSize int
}

// NewPortDescriptor creates a port descriptor for the given shape and layout.
// A nil layout means the planar (identity) layout.
func NewPortDescriptor(shape shapes.Shape, l layout.Layout) (*PortDescriptor, error) {
	if !shape.Ok() {
		return nil, errors.Errorf("invalid shape %s for port descriptor", shape)
	}
	if l == nil {
		l = layout.Identity(shape.Rank())
	}
	if err := l.Validate(shape.Rank()); err != nil {
		return nil, errors.WithMessagef(err, "invalid layout for port descriptor of shape %s", shape)
	}
	return &PortDescriptor{Shape: shape.Clone(), Layout: l.Clone()}, nil
}

// SetLayout changes the layout of the port, after checking it is a permutation of the shape's axes.
func (pd *PortDescriptor) SetLayout(l layout.Layout) error {
	if err := l.Validate(pd.Shape.Rank()); err != nil {
		return errors.WithMessagef(err, "cannot set layout of port %s", pd)
	}
	pd.Layout = l.Clone()
	return nil
}

// SetTileSize sets the subtensor tile size; 0 means none.
func (pd *PortDescriptor) SetTileSize(tileSize int) error {
	if tileSize < 0 {
		return errors.Errorf("invalid tile size %d for port %s", tileSize, pd)
	}
	pd.TileSize = tileSize
	return nil
}

// Clone returns a deep copy of the descriptor.
func (pd *PortDescriptor) Clone() *PortDescriptor {
	return &PortDescriptor{
		Shape:    pd.Shape.Clone(),
		Layout:   pd.Layout.Clone(),
		TileSize: pd.TileSize,
	}
}

// Equal compares shape, layout and tile size.
func (pd *PortDescriptor) Equal(other *PortDescriptor) bool {
	if pd == nil || other == nil {
		return pd == other
	}
	return pd.Shape.Equal(other.Shape) && pd.Layout.Equal(other.Layout) && pd.TileSize == other.TileSize
}

// String returns the compact form used in the IR dump, e.g. "f32[1,8,4,4]{0,2,3,1}".
func (pd *PortDescriptor) String() string {
	var sb strings.Builder
	sb.WriteString(pd.Shape.TypeString())
	sb.WriteString(pd.Layout.String())
	if pd.TileSize > 0 {
		_, _ = fmt.Fprintf(&sb, "/tile=%d", pd.TileSize)
	}
	return sb.String()
}
