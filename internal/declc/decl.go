package declc

// TypeDecl is the compiled declaration for one receiver type.
type TypeDecl struct {
	// Name is the receiver type name.
	Name string `json:"name"`

	// Ops lists the type's operations in declaration order.
	Ops []OpDecl `json:"ops"`
}

// OpDecl is the compiled declaration for one operation.
type OpDecl struct {
	// Name is the operation name, unique within the type.
	Name string `json:"name"`

	// Tracked lists argument positions whose dependencies flow into the
	// result. Omitted positions are untracked.
	Tracked []int `json:"tracked,omitempty"`

	// Transition is "preserve", "consume", or "any".
	Transition string `json:"transition"`

	// Result is the registry type name of the operation's result.
	Result string `json:"result"`
}
