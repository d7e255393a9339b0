package ecs

// System is one stage of a scheduler pass. Systems get their collaborators
// through their constructors and keep any cross-frame state in their own
// fields.
type System interface {
	Execute(frame *UpdateFrame)
}

// SystemFunc adapts a plain function to the System interface.
type SystemFunc func(frame *UpdateFrame)

func (f SystemFunc) Execute(frame *UpdateFrame) {
	f(frame)
}
