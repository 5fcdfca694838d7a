package canvas

// LabelEditor holds the inline label edit session. The value starts as the
// full label with everything selected; the first edit replaces it.
type LabelEditor struct {
	active   bool
	nodeID   string
	original string
	value    string
	selected bool
}

func (e *LabelEditor) begin(id, label string) {
	e.active = true
	e.nodeID = id
	e.original = label
	e.value = label
	e.selected = true
}

func (e *LabelEditor) reset() {
	*e = LabelEditor{}
}

// Active reports whether a session is open.
func (e *LabelEditor) Active() bool { return e.active }

// NodeID is the node being edited.
func (e *LabelEditor) NodeID() string { return e.nodeID }

// Value is the in-progress label.
func (e *LabelEditor) Value() string { return e.value }

// Selected reports whether the whole value is selected.
func (e *LabelEditor) Selected() bool { return e.selected }

// Original is the label the session started with.
func (e *LabelEditor) Original() string { return e.original }

// SetValue replaces the in-progress label.
func (e *LabelEditor) SetValue(v string) {
	if !e.active {
		return
	}
	e.value = v
	e.selected = false
}

// Insert types s at the end of the value, replacing it when selected.
func (e *LabelEditor) Insert(s string) {
	if !e.active {
		return
	}
	if e.selected {
		e.value = ""
		e.selected = false
	}
	e.value += s
}

// Backspace deletes the last rune, or everything when selected.
func (e *LabelEditor) Backspace() {
	if !e.active {
		return
	}
	if e.selected {
		e.value = ""
		e.selected = false
		return
	}
	r := []rune(e.value)
	if len(r) > 0 {
		e.value = string(r[:len(r)-1])
	}
}

// commit closes the session. ok is false when no session was open, so a
// session is reported at most once.
func (e *LabelEditor) commit() (id, value string, ok bool) {
	if !e.active {
		return "", "", false
	}
	id, value = e.nodeID, e.value
	e.reset()
	return id, value, true
}

func (e *LabelEditor) cancel() {
	e.reset()
}
