package vm

import (
	"github.com/yukr-lang/yukr/bytecode"
	"github.com/yukr-lang/yukr/object"
)

// Run the given container in a new Virtual Machine and return the result.
// The result is the final top-of-stack value, or nil when the stack is
// empty, which is distinct from a program leaving object.Nil on top. The
// machine is closed before Run returns.
func Run(file *bytecode.File, options ...Option) (object.Value, error) {
	machine, err := New(file, options...)
	if err != nil {
		return nil, err
	}
	defer machine.Close()
	if err := machine.Run(); err != nil {
		return nil, err
	}
	result, _ := machine.TOS()
	return result, nil
}
