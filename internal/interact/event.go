package interact

import "fmt"

// EventKind is the kind of outcome a gesture produced.
type EventKind int

const (
	None EventKind = iota
	NodeClick
	NodeDoubleClick
	NodeDrag
	CanvasClick
	Deselect
	ConnectionRequest
	ConnectionDelete
)

var kindNames = map[EventKind]string{
	None:              "none",
	NodeClick:         "node-click",
	NodeDoubleClick:   "node-double-click",
	NodeDrag:          "node-drag",
	CanvasClick:       "canvas-click",
	Deselect:          "deselect",
	ConnectionRequest: "connection-request",
	ConnectionDelete:  "connection-delete",
}

func (k EventKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// Event is one host visible outcome. ID is the node or connection; for a
// connection request ID is the source and Target the clicked node. X and Y
// are canvas coordinates for drags and canvas clicks.
type Event struct {
	Kind   EventKind
	ID     string
	Target string
	X, Y   float64
}
