package vm

import (
	"io"

	"github.com/rs/zerolog"
	"github.com/yukr-lang/yukr/object"
)

// Option is a configuration function for a Virtual Machine.
type Option func(*VirtualMachine)

// WithOutput sets the writer that Print writes to. The default is
// os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(vm *VirtualMachine) {
		vm.out = w
	}
}

// WithLogger sets the logger used for diagnostics such as skipped
// constants and instruction pointer desync.
func WithLogger(logger zerolog.Logger) Option {
	return func(vm *VirtualMachine) {
		vm.logger = logger
	}
}

// WithHeap makes the VM allocate objects on heap. The caller keeps
// ownership: Close does not release a heap supplied this way.
func WithHeap(heap *object.Heap) Option {
	return func(vm *VirtualMachine) {
		vm.heap = heap
		vm.ownsHeap = false
	}
}

// WithMaxStack limits the operand stack depth. Pushing past the limit is
// a runtime error. The default is MaxStackDepth.
func WithMaxStack(depth int) Option {
	return func(vm *VirtualMachine) {
		vm.maxStack = depth
	}
}
