package ir

// FunctionLoader loads function bodies on demand. Loading is best
// effort: a loader may leave the function empty without reporting an
// error.
type FunctionLoader interface {
	LoadBody(f *Function) error
}

// DeletionObserver is notified synchronously whenever an instruction
// is erased from the module. Components holding references into the
// IR across deletions performed elsewhere must register an observer
// and evict stale references before dereferencing them.
type DeletionObserver interface {
	InstructionDeleted(inst *Instruction)
}

// Module is a compilation unit: an enumerable, mutable collection of
// functions plus the method tables used for devirtualization.
type Module struct {
	Name   string
	Loader FunctionLoader

	functions []*Function
	observers []DeletionObserver
	methods   map[string]map[string]*Function
}

// NewModule creates an empty module.
func NewModule(name string) *Module {
	return &Module{Name: name}
}

// Functions returns the module's functions in order. The returned
// slice is the live backing slice; callers iterating while removing
// functions should copy it first.
func (m *Module) Functions() []*Function { return m.functions }

// NewFunction creates a function and appends it to the module.
func (m *Module) NewFunction(name string, typ FuncType) *Function {
	f := &Function{module: m, Name: name, Type: typ, Linkage: LinkageHidden, Rep: typ.Rep}
	m.functions = append(m.functions, f)
	return f
}

// FindFunction returns the function with the given name, or nil.
func (m *Module) FindFunction(name string) *Function {
	for _, f := range m.functions {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// RemoveFunction erases a function from the module. The function must
// have no remaining references.
func (m *Module) RemoveFunction(f *Function) {
	if f.refs != 0 {
		panic("ir: removing function with remaining references: " + f.Name)
	}
	for i, fn := range m.functions {
		if fn == f {
			m.functions = append(m.functions[:i], m.functions[i+1:]...)
			f.module = nil
			return
		}
	}
}

// RegisterDeletionObserver subscribes o to instruction deletions.
func (m *Module) RegisterDeletionObserver(o DeletionObserver) {
	m.observers = append(m.observers, o)
}

// UnregisterDeletionObserver removes a previously registered observer.
func (m *Module) UnregisterDeletionObserver(o DeletionObserver) {
	for i, obs := range m.observers {
		if obs == o {
			m.observers = append(m.observers[:i], m.observers[i+1:]...)
			return
		}
	}
}

func (m *Module) notifyInstructionDeleted(inst *Instruction) {
	for _, o := range m.observers {
		o.InstructionDeleted(inst)
	}
}

// SetMethod records the implementation of class.method in the module's
// method tables.
func (m *Module) SetMethod(class, method string, impl *Function) {
	if m.methods == nil {
		m.methods = make(map[string]map[string]*Function)
	}
	if m.methods[class] == nil {
		m.methods[class] = make(map[string]*Function)
	}
	m.methods[class][method] = impl
}

// LookupMethod resolves class.method through the method tables.
func (m *Module) LookupMethod(class, method string) *Function {
	return m.methods[class][method]
}

// ReferencedFromMethodTables reports whether any method table entry
// names f. Such functions stay reachable through dynamic dispatch even
// with no direct references left.
func (m *Module) ReferencedFromMethodTables(f *Function) bool {
	for _, table := range m.methods {
		for _, impl := range table {
			if impl == f {
				return true
			}
		}
	}
	return false
}

// LoadFunction asks the module's loader for the function's body.
// Best effort: absence of a loader or a loader failure leaves the
// function empty.
func (m *Module) LoadFunction(f *Function) {
	if m.Loader == nil || !f.Empty() {
		return
	}
	_ = m.Loader.LoadBody(f)
}
