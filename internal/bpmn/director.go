package bpmn

import "log/slog"

// ProcessInput is the normalized JSON description of a BPMN diagram. Any key
// may be absent except process.
type ProcessInput struct {
	Collaboration *CollaborationInput `json:"collaboration,omitempty"`
	Process       *ProcessDef         `json:"process,omitempty"`
	Flow          *FlowInput          `json:"flow,omitempty"`
	Layout        *LayoutInput        `json:"layout,omitempty"`
}

// CollaborationInput describes the optional collaboration container.
type CollaborationInput struct {
	ID           string             `json:"id"`
	Participants []ParticipantInput `json:"participants,omitempty"`
}

// ParticipantInput describes one collaboration participant.
type ParticipantInput struct {
	ID         string `json:"id"`
	Name       string `json:"name,omitempty"`
	ProcessRef string `json:"processRef"`
}

// ProcessDef describes the process and its typed nodes.
type ProcessDef struct {
	ID    string      `json:"id"`
	Name  string      `json:"name,omitempty"`
	Nodes []NodeInput `json:"nodes,omitempty"`
}

// NodeInput describes one typed process element (startEvent, userTask, ...).
type NodeInput struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// FlowInput wraps the directed sequence-flow edges.
type FlowInput struct {
	Flows []FlowEdge `json:"flows,omitempty"`
}

// FlowEdge describes one directed edge between two node ids.
type FlowEdge struct {
	ID        string `json:"id"`
	SourceRef string `json:"sourceRef"`
	TargetRef string `json:"targetRef"`
	Name      string `json:"name,omitempty"`
}

// LayoutInput wraps the element positions of the diagram plane.
type LayoutInput struct {
	Positions []PositionInput `json:"positions,omitempty"`
}

// PositionInput maps an element id to its rectangular bounds.
type PositionInput struct {
	ElementID string `json:"elementId"`
	Bounds    Bounds `json:"bounds"`
}

// Bounds is a positioned rectangle on the diagram plane.
type Bounds struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Director translates normalized process input into the fixed builder call
// sequence: definitions, collaboration, process with nodes then flows,
// diagram layout. The BPMN schema and common renderers expect exactly this
// element order regardless of input key order.
type Director struct {
	builder *Builder
}

// NewDirector creates a Director over the given builder. A nil builder gets
// a fresh one.
func NewDirector(builder *Builder) *Director {
	if builder == nil {
		builder = NewBuilder()
	}
	return &Director{builder: builder}
}

// ConstructFromJSON runs the full construction sequence. Missing process data
// is fatal for the request; no partial document is produced.
func (d *Director) ConstructFromJSON(input ProcessInput) error {
	if input.Process == nil {
		slog.Error("Director.ConstructFromJSON: process data missing")
		return ErrMissingProcessData
	}

	d.builder.CreateDefinitions("Definitions_1")
	d.handleCollaboration(input.Collaboration)
	d.handleProcess(input.Process, input.Flow)
	d.handleLayout(input.Layout, input.Process.ID)

	if err := d.builder.Err(); err != nil {
		slog.Error("Director.ConstructFromJSON: builder reported contract violation", "error", err)
		return err
	}
	slog.Debug("Director.ConstructFromJSON: document constructed", "processID", input.Process.ID)
	return nil
}

// String renders the constructed document.
func (d *Director) String() (string, error) {
	return d.builder.Serialize()
}

func (d *Director) handleCollaboration(collab *CollaborationInput) {
	if collab == nil {
		return
	}
	handle := d.builder.AddCollaboration(collab.ID)
	for _, p := range collab.Participants {
		d.builder.AddParticipant(handle, p.ID, p.Name, p.ProcessRef)
	}
}

func (d *Director) handleProcess(proc *ProcessDef, flow *FlowInput) {
	d.builder.StartProcess(proc.ID, proc.Name)
	for _, n := range proc.Nodes {
		d.builder.AddNode(n.Type, n.ID, n.Name)
	}
	if flow == nil {
		return
	}
	for _, f := range flow.Flows {
		d.builder.AddFlow(f.ID, f.SourceRef, f.TargetRef, f.Name)
	}
}

func (d *Director) handleLayout(layout *LayoutInput, processID string) {
	if layout == nil {
		return
	}
	d.builder.InitDiagram(processID)
	for _, pos := range layout.Positions {
		d.builder.AddShape(pos.ElementID, pos.Bounds.X, pos.Bounds.Y, pos.Bounds.Width, pos.Bounds.Height)
	}
}
