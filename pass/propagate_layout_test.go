package pass

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/lowered"
	"github.com/gomlx/lowered/types/layout"
	"github.com/gomlx/lowered/types/shapes"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	nchw = shapes.Make(dtypes.Float32, 1, 8, 4, 4)

	// blocked is the channel-last order of an NCHW shape.
	blocked = layout.Make(0, 2, 3, 1)
)

// buildKernel builds Parameter -> Relu -> Result.
func buildKernel(t *testing.T) (ir *lowered.LinearIR, param, op, result *lowered.Expression) {
	t.Helper()
	ir = lowered.New("kernel")
	param = must.M1(ir.NamedParameter("x", nchw))
	op = must.M1(ir.Relu(param))
	result = must.M1(ir.Result(op))
	return
}

// buildBroadcastKernel builds a kernel where the Parameter bad feeds two operations. The Parameter good comes
// first, and its consumer has a blocked layout.
func buildBroadcastKernel(t *testing.T) (ir *lowered.LinearIR, good, bad *lowered.Expression) {
	t.Helper()
	ir = lowered.New("broadcast")
	good = must.M1(ir.Parameter(nchw))
	bad = must.M1(ir.Parameter(nchw))
	abs := must.M1(ir.Abs(good))
	require.NoError(t, abs.Inputs[0].SetLayout(blocked))
	relu := must.M1(ir.Relu(bad))
	require.NoError(t, relu.Inputs[0].SetLayout(blocked))
	exp := must.M1(ir.Exp(bad))
	sum := must.M1(ir.Add(abs, relu))
	must.M1(ir.Result(sum))
	must.M1(ir.Result(exp))
	return
}

func TestPropagateLayout(t *testing.T) {
	t.Run("parameter takes consumer layout", func(t *testing.T) {
		ir, param, op, _ := buildKernel(t)
		require.NoError(t, op.Inputs[0].SetLayout(blocked))
		require.NoError(t, PropagateLayout{}.Run(ir, ir.All()))
		assert.Equal(t, blocked, param.Outputs[0].Layout)
		assert.True(t, nchw.Equal(param.Outputs[0].Shape), "shape must be preserved, got %s", param.Outputs[0].Shape)
		require.NoError(t, ir.Verify())
	})

	t.Run("identity producer leaves result unchanged", func(t *testing.T) {
		ir, _, op, result := buildKernel(t)
		require.NoError(t, op.Inputs[0].SetLayout(blocked))
		require.NoError(t, PropagateLayout{}.Run(ir, ir.All()))
		assert.True(t, result.Inputs[0].Layout.IsIdentity())
		assert.True(t, nchw.Equal(result.Inputs[0].Shape))
	})

	t.Run("result takes producer layout", func(t *testing.T) {
		ir, _, op, result := buildKernel(t)
		require.NoError(t, op.Outputs[0].SetLayout(blocked))
		require.NoError(t, PropagateLayout{}.Run(ir, ir.All()))
		assert.Equal(t, blocked, result.Inputs[0].Layout)
		assert.True(t, nchw.Equal(result.Inputs[0].Shape))
	})

	t.Run("idempotence", func(t *testing.T) {
		ir, param, op, result := buildKernel(t)
		require.NoError(t, op.Inputs[0].SetLayout(blocked))
		require.NoError(t, op.Outputs[0].SetLayout(blocked))
		require.NoError(t, PropagateLayout{}.Run(ir, ir.All()))
		once := ir.Clone()
		require.NoError(t, PropagateLayout{}.Run(ir, ir.All()))
		assert.True(t, ir.Equal(once), "second run changed the IR:\n%s\nvs\n%s", ir, once)
		assert.Equal(t, blocked, param.Outputs[0].Layout)
		assert.Equal(t, blocked, result.Inputs[0].Layout)
	})

	t.Run("identity no-op", func(t *testing.T) {
		ir, _, _, _ := buildKernel(t)
		before := ir.Clone()
		require.NoError(t, PropagateLayout{}.Run(ir, ir.All()))
		assert.True(t, ir.Equal(before))
		assert.Equal(t, before.String(), ir.String())
	})

	t.Run("directionality", func(t *testing.T) {
		// Boundary ports with a layout of their own don't push it to their neighbors.
		ir, param, op, result := buildKernel(t)
		require.NoError(t, param.Outputs[0].SetLayout(blocked))
		require.NoError(t, result.Inputs[0].SetLayout(blocked))
		require.NoError(t, PropagateLayout{}.Run(ir, ir.All()))
		assert.True(t, op.Inputs[0].Layout.IsIdentity())
		assert.True(t, op.Outputs[0].Layout.IsIdentity())
		assert.Equal(t, blocked, param.Outputs[0].Layout)
		assert.Equal(t, blocked, result.Inputs[0].Layout)
	})

	t.Run("broadcast parameter", func(t *testing.T) {
		ir, good, bad := buildBroadcastKernel(t)
		before := ir.Clone()
		err := PropagateLayout{}.Run(ir, ir.All())
		require.Error(t, err)
		assert.True(t, lowered.IsKind(err, lowered.Topology), "expected Topology, got %v", err)
		assert.Equal(t, bad.ID(), lowered.ExprOf(err))
		assert.True(t, ir.Equal(before), "IR was modified by a failed pass")
		assert.True(t, good.Outputs[0].Layout.IsIdentity(), "partial update applied")
	})

	t.Run("parameter without consumers", func(t *testing.T) {
		ir := lowered.New("unused")
		unused := must.M1(ir.Parameter(nchw))
		x := must.M1(ir.Parameter(nchw))
		must.M1(ir.Result(x))
		err := PropagateLayout{}.Run(ir, ir.All())
		require.Error(t, err)
		assert.Equal(t, lowered.Topology, lowered.KindOf(err))
		assert.Equal(t, unused.ID(), lowered.ExprOf(err))
	})

	t.Run("rank mismatch", func(t *testing.T) {
		ir, param, op, _ := buildKernel(t)
		op.Inputs[0].Layout = layout.Make(1, 0)
		before := ir.Clone()
		err := PropagateLayout{}.Run(ir, ir.All())
		require.Error(t, err)
		assert.Equal(t, lowered.PassFailure, lowered.KindOf(err))
		assert.Equal(t, param.ID(), lowered.ExprOf(err))
		assert.True(t, ir.Equal(before))
	})

	t.Run("sub-range", func(t *testing.T) {
		ir, param, op, result := buildKernel(t)
		require.NoError(t, op.Inputs[0].SetLayout(blocked))
		require.NoError(t, op.Outputs[0].SetLayout(blocked))
		require.NoError(t, PropagateLayout{}.Run(ir, lowered.Range{Begin: 1, End: 3}))
		assert.True(t, param.Outputs[0].Layout.IsIdentity(), "Parameter out of the range must not be touched")
		assert.Equal(t, blocked, result.Inputs[0].Layout)

		err := PropagateLayout{}.Run(ir, lowered.Range{Begin: 2, End: 4})
		require.Error(t, err)
	})
}
