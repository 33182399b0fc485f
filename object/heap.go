package object

// ObjTag identifies the payload kind of a heap object.
type ObjTag uint8

const (
	ObjTagString ObjTag = iota + 1
	ObjTagArray
)

func (t ObjTag) String() string {
	switch t {
	case ObjTagString:
		return "string"
	case ObjTagArray:
		return "array"
	default:
		return "unknown"
	}
}

// Handle identifies an object on a Heap. The zero Handle refers to nothing
// and terminates the object list.
type Handle uint32

// Payload is the body of a heap object.
type Payload interface {
	Tag() ObjTag
}

// ObjString is a heap-allocated string.
type ObjString struct {
	Text string
}

func (*ObjString) Tag() ObjTag { return ObjTagString }

// ObjArray is a heap-allocated array of values.
type ObjArray struct {
	Elements []Value
}

func (*ObjArray) Tag() ObjTag { return ObjTagArray }

// Len returns the number of elements.
func (a *ObjArray) Len() int { return len(a.Elements) }

// Obj is a heap object: a header followed by its payload. Next links the
// object to the one allocated before it.
type Obj struct {
	Tag     ObjTag
	Next    Handle
	Payload Payload
}

// Heap is an arena of objects. Objects are never freed individually; the
// whole heap is dropped at once by Release, after which no handle issued
// before the release resolves.
//
// A Heap is not safe for concurrent use.
type Heap struct {
	objs []Obj
	head Handle
	// base is added to arena indexes to form handles. Release advances it
	// past every issued handle.
	base Handle
}

// NewHeap returns an empty heap.
func NewHeap() *Heap {
	return &Heap{}
}

// Allocate stores payload on the heap and returns its handle. The new
// object becomes the head of the object list.
func (h *Heap) Allocate(payload Payload) Handle {
	h.objs = append(h.objs, Obj{
		Tag:     payload.Tag(),
		Next:    h.head,
		Payload: payload,
	})
	h.head = h.base + Handle(len(h.objs))
	return h.head
}

// NewString allocates a string object and returns a Ref to it.
func (h *Heap) NewString(text string) Ref {
	return Ref{Handle: h.Allocate(&ObjString{Text: text})}
}

// NewArray allocates an array object and returns a Ref to it.
func (h *Heap) NewArray(elements ...Value) Ref {
	elems := make([]Value, len(elements))
	copy(elems, elements)
	return Ref{Handle: h.Allocate(&ObjArray{Elements: elems})}
}

// Get returns the object for a handle.
func (h *Heap) Get(handle Handle) (*Obj, bool) {
	if handle <= h.base || int(handle-h.base) > len(h.objs) {
		return nil, false
	}
	return &h.objs[handle-h.base-1], true
}

// AsString returns the string payload of handle, or false if the handle is
// dangling or refers to another kind of object.
func (h *Heap) AsString(handle Handle) (*ObjString, bool) {
	obj, ok := h.Get(handle)
	if !ok || obj.Tag != ObjTagString {
		return nil, false
	}
	s, ok := obj.Payload.(*ObjString)
	return s, ok
}

// AsArray returns the array payload of handle, or false if the handle is
// dangling or refers to another kind of object.
func (h *Heap) AsArray(handle Handle) (*ObjArray, bool) {
	obj, ok := h.Get(handle)
	if !ok || obj.Tag != ObjTagArray {
		return nil, false
	}
	a, ok := obj.Payload.(*ObjArray)
	return a, ok
}

// Head returns the most recently allocated object's handle.
func (h *Heap) Head() Handle {
	return h.head
}

// Len returns the number of live objects.
func (h *Heap) Len() int {
	return len(h.objs)
}

// Walk calls fn for each object from the head of the list, following the
// Next links. It stops early when fn returns false.
func (h *Heap) Walk(fn func(Handle, *Obj) bool) {
	for handle := h.head; handle != 0; {
		obj, ok := h.Get(handle)
		if !ok {
			return
		}
		if !fn(handle, obj) {
			return
		}
		handle = obj.Next
	}
}

// Release frees every object by walking the list once and returns the
// number of objects freed. Handles issued before the release no longer
// resolve. The heap stays usable; later allocations get fresh handles.
func (h *Heap) Release() int {
	freed := 0
	h.Walk(func(_ Handle, obj *Obj) bool {
		obj.Payload = nil
		freed++
		return true
	})
	h.base += Handle(len(h.objs))
	h.objs = nil
	h.head = 0
	return freed
}
