// Package bpmn assembles BPMN 2.0 XML documents from structured input.
//
// Builder is a cursor-based incremental constructor enforcing required step
// ordering; Director translates a normalized JSON process description into
// the ordered sequence of builder calls. Neither checks referential
// integrity between flows and nodes; that is left to the downstream
// validator and the consuming renderer.
//
// Document structure:
//
//	<bpmn:definitions>
//	    <bpmn:collaboration>          [optional]
//	        <bpmn:participant />
//	    </bpmn:collaboration>
//	    <bpmn:process id="...">
//	        <bpmn:startEvent /> ... <bpmn:sequenceFlow />
//	    </bpmn:process>
//	    <bpmndi:BPMNDiagram>          [optional]
//	        <bpmndi:BPMNPlane>
//	            <bpmndi:BPMNShape> <dc:Bounds /> </bpmndi:BPMNShape>
//	        </bpmndi:BPMNPlane>
//	    </bpmndi:BPMNDiagram>
//	</bpmn:definitions>
package bpmn

import (
	"errors"
	"strconv"

	"github.com/beevik/etree"
)

// BPMN namespace URIs bound to fixed prefixes on the definitions root.
const (
	nsBPMN   = "http://www.omg.org/spec/BPMN/20100524/MODEL"
	nsBPMNDI = "http://www.omg.org/spec/BPMN/20100524/DI"
	nsDC     = "http://www.omg.org/spec/DD/20100524/DC"
	nsDI     = "http://www.omg.org/spec/DD/20100524/DI"
	nsXSI    = "http://www.w3.org/2001/XMLSchema-instance"
)

// Contract violation and missing-data errors. Contract violations indicate
// caller misuse of the builder ordering, not bad external data.
var (
	ErrNoDefinitions      = errors.New("create definitions before adding elements")
	ErrNoProcess          = errors.New("start a process before adding nodes or flows")
	ErrNoDiagram          = errors.New("init diagram before adding shapes")
	ErrMissingProcessData = errors.New("process data missing")
)

// Builder incrementally assembles a namespaced BPMN document. Calls chain;
// the first contract violation sticks and suppresses all later mutations, so
// construction failures stay typed and testable via Err.
type Builder struct {
	doc     *etree.Document
	root    *etree.Element
	process *etree.Element // current open process context
	plane   *etree.Element // current open diagram plane context
	err     error
}

// NewBuilder creates an empty builder. CreateDefinitions must be called
// before any other operation.
func NewBuilder() *Builder {
	return &Builder{}
}

// Err returns the first contract violation recorded by the builder, if any.
func (b *Builder) Err() error {
	return b.err
}

// CreateDefinitions initializes the root definitions element and its
// namespace table. Must be called first.
func (b *Builder) CreateDefinitions(id string) *Builder {
	if b.err != nil {
		return b
	}
	b.doc = etree.NewDocument()
	b.doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	b.root = b.doc.CreateElement("bpmn:definitions")
	b.root.CreateAttr("xmlns:bpmn", nsBPMN)
	b.root.CreateAttr("xmlns:bpmndi", nsBPMNDI)
	b.root.CreateAttr("xmlns:dc", nsDC)
	b.root.CreateAttr("xmlns:di", nsDI)
	b.root.CreateAttr("xmlns:xsi", nsXSI)
	b.root.CreateAttr("id", id)
	b.root.CreateAttr("targetNamespace", "http://bpmn.io/schema/bpmn")
	b.root.CreateAttr("exporter", "UnifiedBPMNAssembler")
	return b
}

// AddCollaboration creates the optional collaboration container under the
// root and returns its handle for attaching participants.
func (b *Builder) AddCollaboration(id string) *etree.Element {
	if b.err != nil {
		return nil
	}
	if b.root == nil {
		b.err = ErrNoDefinitions
		return nil
	}
	collab := b.root.CreateElement("bpmn:collaboration")
	collab.CreateAttr("id", id)
	return collab
}

// AddParticipant attaches a participant referencing a process by id.
func (b *Builder) AddParticipant(collab *etree.Element, id, name, processRef string) *Builder {
	if b.err != nil {
		return b
	}
	if collab == nil {
		b.err = ErrNoDefinitions
		return b
	}
	p := collab.CreateElement("bpmn:participant")
	p.CreateAttr("id", id)
	if name != "" {
		p.CreateAttr("name", name)
	}
	p.CreateAttr("processRef", processRef)
	return b
}

// StartProcess opens a process context. Required before adding nodes or
// flows; only one process context is open at a time.
func (b *Builder) StartProcess(id, name string) *Builder {
	if b.err != nil {
		return b
	}
	if b.root == nil {
		b.err = ErrNoDefinitions
		return b
	}
	b.process = b.root.CreateElement("bpmn:process")
	b.process.CreateAttr("id", id)
	if name != "" {
		b.process.CreateAttr("name", name)
	}
	b.process.CreateAttr("isExecutable", "false")
	return b
}

// AddNode appends a typed element under the current process context. The
// node type is caller-supplied and not validated against the BPMN element
// catalogue.
func (b *Builder) AddNode(nodeType, id, name string) *Builder {
	if b.err != nil {
		return b
	}
	if b.process == nil {
		b.err = ErrNoProcess
		return b
	}
	n := b.process.CreateElement("bpmn:" + nodeType)
	n.CreateAttr("id", id)
	if name != "" {
		n.CreateAttr("name", name)
	}
	return b
}

// AddFlow appends a directed sequence flow under the current process context.
func (b *Builder) AddFlow(id, sourceRef, targetRef, name string) *Builder {
	if b.err != nil {
		return b
	}
	if b.process == nil {
		b.err = ErrNoProcess
		return b
	}
	f := b.process.CreateElement("bpmn:sequenceFlow")
	f.CreateAttr("id", id)
	if name != "" {
		f.CreateAttr("name", name)
	}
	f.CreateAttr("sourceRef", sourceRef)
	f.CreateAttr("targetRef", targetRef)
	return b
}

// InitDiagram opens a diagram plane context scoped to one process reference.
// Required before adding shapes.
func (b *Builder) InitDiagram(processRef string) *Builder {
	if b.err != nil {
		return b
	}
	if b.root == nil {
		b.err = ErrNoDefinitions
		return b
	}
	diagram := b.root.CreateElement("bpmndi:BPMNDiagram")
	diagram.CreateAttr("id", "BPMNDiagram_1")
	b.plane = diagram.CreateElement("bpmndi:BPMNPlane")
	b.plane.CreateAttr("id", "BPMNPlane_1")
	b.plane.CreateAttr("bpmnElement", processRef)
	return b
}

// AddShape appends a positioned shape referencing a model element under the
// current diagram plane.
func (b *Builder) AddShape(elementID string, x, y, width, height float64) *Builder {
	if b.err != nil {
		return b
	}
	if b.plane == nil {
		b.err = ErrNoDiagram
		return b
	}
	shape := b.plane.CreateElement("bpmndi:BPMNShape")
	shape.CreateAttr("id", elementID+"_di")
	shape.CreateAttr("bpmnElement", elementID)

	bounds := shape.CreateElement("dc:Bounds")
	bounds.CreateAttr("x", formatCoord(x))
	bounds.CreateAttr("y", formatCoord(y))
	bounds.CreateAttr("width", formatCoord(width))
	bounds.CreateAttr("height", formatCoord(height))
	return b
}

// Serialize renders the current tree as a declaration-prefixed,
// pretty-printed document. It returns an empty string when nothing has been
// created yet, and the recorded contract violation if one occurred.
func (b *Builder) Serialize() (string, error) {
	if b.err != nil {
		return "", b.err
	}
	if b.doc == nil {
		return "", nil
	}
	b.doc.Indent(2)
	return b.doc.WriteToString()
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
