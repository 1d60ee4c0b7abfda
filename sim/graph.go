package sim

import (
	"fmt"
	"strings"
)

// ModelID uniquely identifies a model instance within one simulation.
// Hierarchical ids use "/" as separator (see Child).
type ModelID string

// Child returns the id of a sub-model nested under id.
func (id ModelID) Child(name string) ModelID {
	if id == "" {
		return ModelID(name)
	}
	return ModelID(string(id) + "/" + name)
}

// Endpoint addresses one port of one model.
type Endpoint struct {
	Model ModelID
	Port  string
}

func (e Endpoint) String() string { return string(e.Model) + "." + e.Port }

// ParseEndpoint splits "model.port" at the last dot.
func ParseEndpoint(s string) (Endpoint, error) {
	i := strings.LastIndex(s, ".")
	if i <= 0 || i == len(s)-1 {
		return Endpoint{}, fmt.Errorf("endpoint %q: want <model>.<port>", s)
	}
	return Endpoint{Model: ModelID(s[:i]), Port: s[i+1:]}, nil
}

// Connection is a directed edge from an output port to an input port of
// identical type.
type Connection struct {
	From Endpoint
	To   Endpoint
}

func (c Connection) String() string { return c.From.String() + " -> " + c.To.String() }

// modelEntry is the arena slot of one model.
type modelEntry struct {
	id      ModelID
	model   Model
	updater Updater // nil when the model has no update handler
	inputs  map[string]InputPort
	outputs map[string]OutputPort
}

// graph holds the models and their connections. It is mutable during the
// build phase only; routing at run time is a pure lookup.
type graph struct {
	models      map[ModelID]*modelEntry
	order       []ModelID
	routes      map[Endpoint][]Endpoint // output -> inputs, declaration order
	feeds       map[Endpoint]Endpoint   // input -> its single producer
	connections []Connection
}

func newGraph() *graph {
	return &graph{
		models: make(map[ModelID]*modelEntry),
		routes: make(map[Endpoint][]Endpoint),
		feeds:  make(map[Endpoint]Endpoint),
	}
}

func (g *graph) addModel(id ModelID, m Model) error {
	if id == "" {
		return &Error{Kind: KindInvalidModel, Detail: "empty model id"}
	}
	if m == nil {
		return &Error{Kind: KindInvalidModel, Model: id, Detail: "nil model"}
	}
	if _, exists := g.models[id]; exists {
		return &Error{Kind: KindDuplicateModel, Model: id}
	}

	ports := m.Ports()
	entry := &modelEntry{
		id:      id,
		model:   m,
		inputs:  make(map[string]InputPort, len(ports.Inputs)),
		outputs: make(map[string]OutputPort, len(ports.Outputs)),
	}
	if u, ok := m.(Updater); ok {
		entry.updater = u
	}
	for _, p := range ports.Inputs {
		if p.name == "" || p.handle == nil {
			return &Error{Kind: KindInvalidModel, Model: id, Detail: "input port without name or handler"}
		}
		if _, dup := entry.inputs[p.name]; dup {
			return &Error{Kind: KindDuplicatePort, Model: id, Port: p.name, Detail: "input declared twice"}
		}
		entry.inputs[p.name] = p
	}
	for _, p := range ports.Outputs {
		if p.name == "" || p.typ == nil {
			return &Error{Kind: KindInvalidModel, Model: id, Detail: "output port without name or type"}
		}
		if _, dup := entry.outputs[p.name]; dup {
			return &Error{Kind: KindDuplicatePort, Model: id, Port: p.name, Detail: "output declared twice"}
		}
		entry.outputs[p.name] = p
	}

	g.models[id] = entry
	g.order = append(g.order, id)
	return nil
}

// connect validates and records from -> to. A rejected connection leaves the
// graph unchanged.
func (g *graph) connect(from, to Endpoint) error {
	src, ok := g.models[from.Model]
	if !ok {
		return &Error{Kind: KindUnknownModel, Model: from.Model}
	}
	dst, ok := g.models[to.Model]
	if !ok {
		return &Error{Kind: KindUnknownModel, Model: to.Model}
	}
	out, ok := src.outputs[from.Port]
	if !ok {
		return &Error{Kind: KindUnknownPort, Model: from.Model, Port: from.Port, Detail: "no such output"}
	}
	in, ok := dst.inputs[to.Port]
	if !ok {
		return &Error{Kind: KindUnknownPort, Model: to.Model, Port: to.Port, Detail: "no such input"}
	}
	if out.typ != in.typ {
		return &Error{Kind: KindPortTypeMismatch, Model: to.Model, Port: to.Port,
			Detail: fmt.Sprintf("%s emits %s, %s accepts %s", from, describeType(out.typ), to, describeType(in.typ))}
	}
	if producer, taken := g.feeds[to]; taken {
		return &Error{Kind: KindInputAlreadyConnected, Model: to.Model, Port: to.Port,
			Detail: fmt.Sprintf("already fed by %s; use a merge model", producer)}
	}

	g.routes[from] = append(g.routes[from], to)
	g.feeds[to] = from
	g.connections = append(g.connections, Connection{From: from, To: to})
	return nil
}

// destinations returns the inputs fed by the output, in declaration order.
func (g *graph) destinations(from Endpoint) []Endpoint {
	return g.routes[from]
}

func (g *graph) model(id ModelID) (*modelEntry, error) {
	entry, ok := g.models[id]
	if !ok {
		return nil, &Error{Kind: KindUnknownModel, Model: id}
	}
	return entry, nil
}
