package ir

// Function is an ordered group of invocations contributed by one sub render
// state. Functions of a program execute in ascending Order; functions with
// equal Order keep the sequence in which they were added.
type Function struct {
	Name        string
	Order       int
	Invocations []*Invocation

	seq int
}

// NewFunction returns an empty function with the given name and execution order.
func NewFunction(name string, order int) *Function {
	return &Function{Name: name, Order: order}
}

// Add appends invocations to f.
func (f *Function) Add(invs ...*Invocation) {
	f.Invocations = append(f.Invocations, invs...)
}

// AddInvocation builds and appends an invocation of name over operands.
func (f *Function) AddInvocation(name string, operands ...Operand) {
	f.Invocations = append(f.Invocations, NewInvocation(name, operands...))
}

// Empty reports whether f has no invocations.
func (f *Function) Empty() bool { return len(f.Invocations) == 0 }
