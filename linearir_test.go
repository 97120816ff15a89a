package lowered

import (
	"fmt"
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/lowered/internal/optypes"
	"github.com/gomlx/lowered/types/layout"
	"github.com/gomlx/lowered/types/shapes"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
)

var nchw = shapes.Make(dtypes.Float32, 1, 8, 4, 4)

// buildReluKernel builds Parameter -> Relu -> Result.
func buildReluKernel(t *testing.T) (ir *LinearIR, param, relu, result *Expression) {
	t.Helper()
	ir = New("relu_kernel")
	param = must.M1(ir.NamedParameter("x", nchw))
	relu = must.M1(ir.Relu(param))
	result = must.M1(ir.Result(relu))
	return
}

func TestBuilder(t *testing.T) {
	t.Run("relu", func(t *testing.T) {
		ir, _, _, _ := buildReluKernel(t)
		t.Logf("%s:\n%s", t.Name(), ir)
		assert.Equal(t, `kernel @relu_kernel {
  %0 = parameter() {name = "x"} : () -> f32[1,8,4,4]{0,1,2,3}  // 512 B
  %1 = relu(%0:0) : (f32[1,8,4,4]{0,1,2,3}) -> f32[1,8,4,4]{0,1,2,3}
  result(%1:0) : (f32[1,8,4,4]{0,1,2,3}) -> ()  // 512 B
}
`, ir.String())
		require.NoError(t, ir.Verify())
		assert.Equal(t, 3, ir.Len())
		assert.Len(t, ir.Parameters(), 1)
		assert.Len(t, ir.Results(), 1)
	})

	t.Run("binary with scalar", func(t *testing.T) {
		ir := New("scale")
		x := must.M1(ir.Parameter(nchw))
		c := must.M1(ir.ScalarAs(dtypes.Float32, 2))
		y := must.M1(ir.Mul(x, c))
		must.M1(ir.Result(y))
		assert.True(t, nchw.Equal(y.Outputs[0].Shape))
		assert.Contains(t, ir.String(), `%1 = scalar() {value = 2.0} : () -> f32[]{}`)
		require.NoError(t, ir.Verify())
	})

	t.Run("float16 scalar", func(t *testing.T) {
		ir := New("half")
		c := must.M1(ir.ScalarAs(dtypes.Float16, 0.5))
		assert.Equal(t, float16.Fromfloat32(0.5), c.Attributes["value"])
		assert.True(t, shapes.Make(dtypes.Float16).Equal(c.Outputs[0].Shape))
		assert.Contains(t, ir.String(), `value = 0.5 : f16`)
	})

	t.Run("errors", func(t *testing.T) {
		ir := New("errors")
		x := must.M1(ir.Parameter(shapes.Make(dtypes.Int32, 2)))
		_, err := ir.Exp(x)
		require.Error(t, err, "Exp requires floats")

		other := New("other")
		y := must.M1(other.Parameter(shapes.Make(dtypes.Int32, 2)))
		_, err = ir.Add(x, y)
		require.Error(t, err, "operands from another kernel must be rejected")

		_, err = ir.Scalar(struct{}{})
		require.Error(t, err)

		_, err = ir.Op(optypes.Parameter, []shapes.Shape{nchw})
		require.Error(t, err)

		_, err = ir.Parameter(shapes.Invalid())
		require.Error(t, err)
	})
}

func TestConnectionQueries(t *testing.T) {
	ir, param, relu, result := buildReluKernel(t)

	consumers := must.M1(ir.Consumers(param.Output(0)))
	assert.Equal(t, []PortRef{relu.Input(0)}, consumers)

	producer := must.M1(ir.Producer(result.Input(0)))
	assert.Equal(t, relu.Output(0), producer)

	preds := must.M1(ir.Predecessors(relu.ID()))
	require.Len(t, preds, 1)
	assert.Equal(t, param, preds[0])
	succs := must.M1(ir.Successors(relu.ID()))
	require.Len(t, succs, 1)
	assert.Equal(t, result, succs[0])

	// Results have no outputs: asking for consumers is an invalid query.
	_, err := ir.Consumers(result.Output(0))
	require.Error(t, err)
	assert.True(t, IsKind(err, InvalidQuery))
	assert.Equal(t, result.ID(), ExprOf(err))

	// Parameters have no inputs.
	_, err = ir.Producer(param.Input(0))
	assert.True(t, IsKind(err, InvalidQuery))

	// Non-existing expressions.
	_, err = ir.Expression(ExprID(17))
	assert.True(t, IsKind(err, InvalidQuery))
	_, err = ir.Successors(ExprID(-3))
	assert.True(t, IsKind(err, InvalidQuery))

	_, err = ir.InputDescriptor(relu.Input(1))
	assert.True(t, IsKind(err, InvalidQuery))
	pd := must.M1(ir.OutputDescriptor(relu.Output(0)))
	assert.True(t, nchw.Equal(pd.Shape))
}

func TestMutations(t *testing.T) {
	t.Run("insert", func(t *testing.T) {
		ir, param, relu, _ := buildReluKernel(t)
		neg := must.M1(ir.InsertAt(1, optypes.Negate, []shapes.Shape{nchw}, param.Output(0)))
		assert.Equal(t, 1, ir.Position(neg.ID()))
		assert.Equal(t, 2, ir.Position(relu.ID()))
		require.NoError(t, ir.ReplaceSource(relu.Input(0), neg.Output(0)))
		require.NoError(t, ir.Verify())
		assert.Equal(t, []PortRef{neg.Input(0)}, must.M1(ir.Consumers(param.Output(0))))

		_, err := ir.InsertAt(10, optypes.Negate, []shapes.Shape{nchw}, param.Output(0))
		require.Error(t, err)
	})

	t.Run("move", func(t *testing.T) {
		ir, param, relu, _ := buildReluKernel(t)
		require.NoError(t, ir.Move(param.ID(), 1))
		assert.Equal(t, 0, ir.Position(relu.ID()))
		err := ir.CheckTopologicalOrder()
		require.Error(t, err)
		assert.Equal(t, relu.ID(), ExprOf(err))
		require.NoError(t, ir.Move(param.ID(), 0))
		require.NoError(t, ir.CheckTopologicalOrder())
	})

	t.Run("remove", func(t *testing.T) {
		ir, param, relu, result := buildReluKernel(t)
		err := ir.Remove(relu.ID())
		require.Error(t, err, "relu is still consumed by the result")
		assert.True(t, IsKind(err, InvalidQuery))

		require.NoError(t, ir.ReplaceSource(result.Input(0), param.Output(0)))
		require.NoError(t, ir.Remove(relu.ID()))
		assert.Equal(t, 2, ir.Len())
		assert.Equal(t, -1, ir.Position(relu.ID()))
		assert.Equal(t, 1, ir.Position(result.ID()))
		require.NoError(t, ir.Verify())
		_, err = ir.Expression(relu.ID())
		assert.True(t, IsKind(err, InvalidQuery))
	})

	t.Run("replace with mismatched shape", func(t *testing.T) {
		ir, _, relu, _ := buildReluKernel(t)
		other := must.M1(ir.Parameter(shapes.Make(dtypes.Float32, 3)))
		require.Error(t, ir.ReplaceSource(relu.Input(0), other.Output(0)))
	})
}

func TestRange(t *testing.T) {
	ir, param, relu, result := buildReluKernel(t)
	var visited []ExprID
	for pos, e := range ir.Range(Range{Begin: 1, End: 3}) {
		assert.Equal(t, pos, ir.Position(e.ID()))
		visited = append(visited, e.ID())
	}
	assert.Equal(t, []ExprID{relu.ID(), result.ID()}, visited)

	// Inserting while iterating doesn't visit the new expression.
	visited = visited[:0]
	for _, e := range ir.Range(ir.All()) {
		visited = append(visited, e.ID())
		if e == param {
			must.M1(ir.InsertAt(1, optypes.Abs, []shapes.Shape{nchw}, param.Output(0)))
		}
	}
	assert.Equal(t, []ExprID{param.ID(), relu.ID(), result.ID()}, visited)
	assert.Equal(t, 4, ir.Len())

	require.NoError(t, ir.CheckRange(Range{Begin: 0, End: 4}))
	require.Error(t, ir.CheckRange(Range{Begin: 2, End: 1}))
	require.Error(t, ir.CheckRange(Range{Begin: 0, End: 5}))
	assert.Equal(t, 3, Range{Begin: 1, End: 4}.Len())
	assert.True(t, Range{Begin: 1, End: 4}.Contains(3))
	assert.False(t, Range{Begin: 1, End: 4}.Contains(4))
}

func TestCloneAndEqual(t *testing.T) {
	ir, param, _, _ := buildReluKernel(t)
	clone := ir.Clone()
	assert.True(t, ir.Equal(clone))
	assert.Equal(t, ir.String(), clone.String())

	// Slice attributes are not shared.
	param.Attributes = map[string]any{"offsets": []int{512, 4}}
	clone = ir.Clone()
	param.Attributes["offsets"].([]int)[0] = 0
	assert.Equal(t, []int{512, 4}, clone.Parameters()[0].Attributes["offsets"])
	assert.False(t, ir.Equal(clone))
	clone = ir.Clone()

	// Changing the clone must not affect the original.
	require.NoError(t, clone.Parameters()[0].Outputs[0].SetLayout(layout.Make(0, 2, 3, 1)))
	assert.False(t, ir.Equal(clone))
	assert.True(t, param.Outputs[0].Layout.IsIdentity())
}

func TestAcquire(t *testing.T) {
	ir := New("busy")
	require.NoError(t, ir.Acquire("pipeline A"))
	err := ir.Acquire("pipeline B")
	require.Error(t, err)
	assert.True(t, IsKind(err, PassFailure))
	assert.Contains(t, err.Error(), "pipeline A")
	ir.Release()
	require.NoError(t, ir.Acquire("pipeline B"))
	ir.Release()
}

func TestLoops(t *testing.T) {
	ir := New("loops")
	x := must.M1(ir.Parameter(nchw))
	outer := must.M1(ir.LoopBegin(8, 1))
	inner := must.M1(ir.LoopBegin(16, 4))
	y := must.M1(ir.Exp(x))
	must.M1(ir.LoopEnd(inner))
	z := must.M1(ir.Relu(y))
	must.M1(ir.LoopEnd(outer))
	must.M1(ir.Result(z))
	require.NoError(t, ir.Verify())

	bodies := must.M1(ir.LoopBodies())
	assert.Equal(t, []Range{{Begin: 2, End: 6}, {Begin: 3, End: 4}}, bodies)
	assert.Equal(t, []*Expression{outer, inner}, ir.Loops())
	t.Logf("%s:\n%s", t.Name(), ir)
	assert.Contains(t, ir.String(), "\n      %3 = exp(%0:0)")

	_, err := ir.LoopEnd(inner)
	require.Error(t, err, "loop already closed")

	t.Run("unbalanced", func(t *testing.T) {
		ir := New("unbalanced")
		must.M1(ir.LoopBegin(4, 1))
		_, err := ir.LoopBodies()
		require.Error(t, err)
		require.Error(t, ir.Verify())
	})

	t.Run("crossed", func(t *testing.T) {
		ir := New("crossed")
		a := must.M1(ir.LoopBegin(4, 1))
		b := must.M1(ir.LoopBegin(4, 1))
		must.M1(ir.LoopEnd(a))
		must.M1(ir.LoopEnd(b))
		require.Error(t, ir.Verify())
	})

	_, err = New("bad").LoopBegin(4, 0)
	require.Error(t, err)
}

func TestVerify(t *testing.T) {
	t.Run("invalid layout", func(t *testing.T) {
		ir, _, relu, _ := buildReluKernel(t)
		relu.Inputs[0].Layout = layout.Layout{0, 0, 1, 2}
		err := ir.Verify()
		require.Error(t, err)
		assert.Equal(t, relu.ID(), ExprOf(err))
	})

	t.Run("shape mismatch", func(t *testing.T) {
		ir, _, relu, _ := buildReluKernel(t)
		relu.Inputs[0].Shape = shapes.Make(dtypes.Float32, 128)
		relu.Inputs[0].Layout = layout.Identity(1)
		require.Error(t, ir.Verify())
	})

	t.Run("range", func(t *testing.T) {
		ir, _, _, _ := buildReluKernel(t)
		require.NoError(t, ir.VerifyRange(Range{Begin: 1, End: 2}))
		require.Error(t, ir.VerifyRange(Range{Begin: 1, End: 7}))
	})
}

func TestPortDescriptor(t *testing.T) {
	pd := must.M1(NewPortDescriptor(nchw, nil))
	assert.True(t, pd.Layout.IsIdentity())
	require.Error(t, pd.SetLayout(layout.Layout{0, 1, 2}))
	require.NoError(t, pd.SetLayout(layout.Make(0, 2, 3, 1)))
	require.NoError(t, pd.SetTileSize(16))
	require.Error(t, pd.SetTileSize(-1))
	assert.Equal(t, "f32[1,8,4,4]{0,2,3,1}/tile=16", pd.String())

	clone := pd.Clone()
	assert.True(t, pd.Equal(clone))
	clone.Layout[1] = 1
	assert.Equal(t, 2, pd.Layout[1], "Clone must not share the layout")

	_, err := NewPortDescriptor(nchw, layout.Layout{1, 0})
	require.Error(t, err)
}

func TestErrors(t *testing.T) {
	err := Errorf(Topology, ExprID(3), "parameter has %d consumers", 2)
	assert.Equal(t, "Topology: expression %3: parameter has 2 consumers", err.Error())
	assert.Equal(t, Topology, KindOf(err))
	assert.Equal(t, ExprID(3), ExprOf(err))

	err = Errorf(InvalidQuery, NoExpr, "nothing there")
	assert.Equal(t, "InvalidQuery: nothing there", err.Error())

	plain := fmt.Errorf("something else")
	assert.Equal(t, PassFailure, KindOf(plain))
	assert.Equal(t, NoExpr, ExprOf(plain))
	assert.False(t, IsKind(plain, PassFailure))
}
