package models

import (
	"fmt"

	"github.com/inference-sim/devsim/sim"
)

// IndexedPort returns the name of the i-th port in a numbered family,
// e.g. IndexedPort("out", 2) == "out_2".
func IndexedPort(base string, i int) string {
	return fmt.Sprintf("%s_%d", base, i)
}

// Cloner copies every value received on "in" to each of its N outputs
// "out_0" .. "out_{N-1}", in index order.
type Cloner[T any] struct {
	outs []sim.Output[T]
}

// NewCloner creates a cloner with n outputs.
func NewCloner[T any](n int) *Cloner[T] {
	c := &Cloner[T]{outs: make([]sim.Output[T], n)}
	for i := range c.outs {
		c.outs[i] = sim.NewOutput[T](IndexedPort(PortOut, i))
	}
	return c
}

func (m *Cloner[T]) Ports() sim.Ports {
	outputs := make([]sim.OutputPort, len(m.outs))
	for i, o := range m.outs {
		outputs[i] = o.Port()
	}
	return sim.Ports{
		Inputs: []sim.InputPort{sim.Input(PortIn, func(ctx *sim.ModelCtx, v T) error {
			for _, o := range m.outs {
				if err := o.Emit(ctx, v); err != nil {
					return err
				}
			}
			return nil
		})},
		Outputs: outputs,
	}
}

// Merge forwards values from N inputs "in_0" .. "in_{N-1}" to the single
// output "out", in arrival order. It is how several producers feed one input.
type Merge[T any] struct {
	n   int
	out sim.Output[T]
}

// NewMerge creates a merge with n inputs.
func NewMerge[T any](n int) *Merge[T] {
	return &Merge[T]{n: n, out: sim.NewOutput[T](PortOut)}
}

func (m *Merge[T]) Ports() sim.Ports {
	forward := func(ctx *sim.ModelCtx, v T) error { return m.out.Emit(ctx, v) }
	inputs := make([]sim.InputPort, m.n)
	for i := range inputs {
		inputs[i] = sim.Input(IndexedPort(PortIn, i), forward)
	}
	return sim.Ports{Inputs: inputs, Outputs: []sim.OutputPort{m.out.Port()}}
}
