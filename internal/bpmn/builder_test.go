package bpmn

import (
	"errors"
	"strings"
	"testing"

	"github.com/beevik/etree"
)

func TestBuilder_RoundTrip(t *testing.T) {
	b := NewBuilder()
	b.CreateDefinitions("Definitions_1").
		StartProcess("Process_1", "Test Process").
		AddNode("userTask", "Task_1", "Review order")

	out, err := b.Serialize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out, "<?xml") {
		t.Errorf("serialized document must start with an XML declaration; got %q", out[:20])
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromString(out); err != nil {
		t.Fatalf("serialized output did not parse: %v", err)
	}
	proc := doc.FindElement("//bpmn:process")
	if proc == nil {
		t.Fatal("process element missing")
	}
	children := proc.ChildElements()
	if len(children) != 1 {
		t.Fatalf("expected exactly one process child, got %d", len(children))
	}
	if got := children[0].SelectAttrValue("id", ""); got != "Task_1" {
		t.Errorf("node id = %q, want Task_1", got)
	}
	if got := children[0].SelectAttrValue("name", ""); got != "Review order" {
		t.Errorf("node name = %q, want Review order", got)
	}
}

func TestBuilder_NamespaceTable(t *testing.T) {
	b := NewBuilder()
	b.CreateDefinitions("Definitions_1")
	out, err := b.Serialize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, ns := range []string{"xmlns:bpmn=", "xmlns:bpmndi=", "xmlns:dc=", "xmlns:di=", "xmlns:xsi="} {
		if !strings.Contains(out, ns) {
			t.Errorf("missing namespace declaration %s", ns)
		}
	}
	if !strings.Contains(out, `targetNamespace="http://bpmn.io/schema/bpmn"`) {
		t.Error("missing targetNamespace attribute")
	}
}

func TestBuilder_NodeBeforeProcessIsContractViolation(t *testing.T) {
	b := NewBuilder()
	b.CreateDefinitions("Definitions_1").AddNode("userTask", "Task_1", "Too early")

	if !errors.Is(b.Err(), ErrNoProcess) {
		t.Fatalf("expected ErrNoProcess, got %v", b.Err())
	}
	if _, err := b.Serialize(); !errors.Is(err, ErrNoProcess) {
		t.Errorf("serialize must surface the contract violation, got %v", err)
	}
}

func TestBuilder_FlowBeforeProcessIsContractViolation(t *testing.T) {
	b := NewBuilder()
	b.CreateDefinitions("Definitions_1").AddFlow("Flow_1", "A", "B", "")
	if !errors.Is(b.Err(), ErrNoProcess) {
		t.Fatalf("expected ErrNoProcess, got %v", b.Err())
	}
}

func TestBuilder_ShapeBeforeDiagramIsContractViolation(t *testing.T) {
	b := NewBuilder()
	b.CreateDefinitions("Definitions_1").
		StartProcess("Process_1", "").
		AddShape("Task_1", 0, 0, 100, 80)
	if !errors.Is(b.Err(), ErrNoDiagram) {
		t.Fatalf("expected ErrNoDiagram, got %v", b.Err())
	}
}

func TestBuilder_ViolationSticksAndSuppressesLaterCalls(t *testing.T) {
	b := NewBuilder()
	b.AddNode("task", "Task_1", "no definitions yet")
	first := b.Err()
	if first == nil {
		t.Fatal("expected a contract violation")
	}
	// Later valid calls must not clear or replace the first error.
	b.CreateDefinitions("Definitions_1").StartProcess("Process_1", "").AddNode("task", "Task_2", "")
	if !errors.Is(b.Err(), first) {
		t.Errorf("first violation should stick, got %v", b.Err())
	}
}

func TestBuilder_SerializeEmpty(t *testing.T) {
	b := NewBuilder()
	out, err := b.Serialize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "" {
		t.Errorf("expected empty string for empty builder, got %q", out)
	}
}

func TestBuilder_CollaborationAndShapes(t *testing.T) {
	b := NewBuilder()
	b.CreateDefinitions("Definitions_1")
	collab := b.AddCollaboration("Collaboration_1")
	b.AddParticipant(collab, "Participant_1", "Sales", "Process_1").
		StartProcess("Process_1", "Sales Process").
		AddNode("startEvent", "Start_1", "Begin").
		InitDiagram("Process_1").
		AddShape("Start_1", 152, 102, 36, 36)

	out, err := b.Serialize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `<bpmn:participant id="Participant_1" name="Sales" processRef="Process_1"/>`) {
		t.Errorf("participant not rendered as expected:\n%s", out)
	}
	if !strings.Contains(out, `<bpmndi:BPMNShape id="Start_1_di" bpmnElement="Start_1">`) {
		t.Errorf("shape not rendered as expected:\n%s", out)
	}
	if !strings.Contains(out, `<dc:Bounds x="152" y="102" width="36" height="36"/>`) {
		t.Errorf("bounds not rendered as expected:\n%s", out)
	}
}
