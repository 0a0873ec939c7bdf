package tree

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/jcb91/doorstop/internal/document"
	"github.com/jcb91/doorstop/internal/item"
)

// newTestDoc creates a real document directory under root.
func newTestDoc(t *testing.T, root, prefix, parent string) *document.Document {
	t.Helper()
	doc, err := document.New(filepath.Join(root, strings.ToLower(prefix)), root, prefix, parent, 0)
	if err != nil {
		t.Fatalf("unexpected error creating document %s: %v", prefix, err)
	}
	return doc
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// recordingHandler captures log records so tests can assert on emitted
// events without a concrete backend.
type recordingHandler struct {
	mu       sync.Mutex
	messages []string
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, r.Message)
	return nil
}
func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler      { return h }

func (h *recordingHandler) contains(msg string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, m := range h.messages {
		if m == msg {
			return true
		}
	}
	return false
}

func TestAssemble_ChildBeforeParent(t *testing.T) {
	root := t.TempDir()
	hlt := newTestDoc(t, root, "HLT", "REQ")
	req := newTestDoc(t, root, "REQ", "")

	tr, err := Assemble([]*document.Document{hlt, req}, quietLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := tr.String(); got != "REQ <- [ HLT ]" {
		t.Errorf("expected tree %q, got %q", "REQ <- [ HLT ]", got)
	}
	if tr.Len() != 2 {
		t.Errorf("expected 2 documents, got %d", tr.Len())
	}

	// Lookup is case-insensitive.
	if doc := tr.FindDocument("hlt"); doc == nil || doc.Prefix() != "HLT" {
		t.Errorf("expected to find HLT via lowercase prefix, got %v", doc)
	}
}

func TestAssemble_NoRoot(t *testing.T) {
	root := t.TempDir()
	a := newTestDoc(t, root, "A", "B")
	b := newTestDoc(t, root, "B", "A")

	_, err := Assemble([]*document.Document{a, b}, quietLogger())
	if !errors.Is(err, ErrNoRoot) {
		t.Errorf("expected ErrNoRoot, got %v", err)
	}
}

func TestAssemble_EmptyInput(t *testing.T) {
	_, err := Assemble(nil, quietLogger())
	if !errors.Is(err, ErrNoRoot) {
		t.Errorf("expected ErrNoRoot, got %v", err)
	}
}

func TestAssemble_UnplaceableDocument(t *testing.T) {
	root := t.TempDir()
	a := newTestDoc(t, root, "A", "")
	b := newTestDoc(t, root, "B", "A")
	c := newTestDoc(t, root, "C", "Z")

	_, err := Assemble([]*document.Document{a, b, c}, quietLogger())
	if !errors.Is(err, ErrUnplaced) {
		t.Fatalf("expected ErrUnplaced, got %v", err)
	}
	if !strings.Contains(err.Error(), "C") {
		t.Errorf("expected error to name document C, got %q", err)
	}
}

func TestAssemble_DuplicatePrefix(t *testing.T) {
	root := t.TempDir()
	req := newTestDoc(t, root, "REQ", "")
	dup, err := document.New(filepath.Join(root, "other"), root, "req", "REQ", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = Assemble([]*document.Document{req, dup}, quietLogger())
	if !errors.Is(err, ErrDuplicatePrefix) {
		t.Errorf("expected ErrDuplicatePrefix, got %v", err)
	}
}

func TestAssemble_DeepNesting(t *testing.T) {
	root := t.TempDir()
	// Chain D -> C -> B -> A supplied leaf first, forcing multiple passes.
	docs := []*document.Document{
		newTestDoc(t, root, "D", "C"),
		newTestDoc(t, root, "C", "B"),
		newTestDoc(t, root, "B", "A"),
		newTestDoc(t, root, "A", ""),
	}

	tr, err := Assemble(docs, quietLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := tr.String(); got != "A <- [ B <- [ C <- [ D ] ] ]" {
		t.Errorf("unexpected tree: %q", got)
	}
}

func TestAssemble_OrderIndependent(t *testing.T) {
	root := t.TempDir()
	docs := []*document.Document{
		newTestDoc(t, root, "REQ", ""),
		newTestDoc(t, root, "HLT", "REQ"),
		newTestDoc(t, root, "LLT", "HLT"),
		newTestDoc(t, root, "SYS", "REQ"),
	}

	want := map[string]string{"HLT": "REQ", "LLT": "HLT", "SYS": "REQ"}
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 10; trial++ {
		shuffled := make([]*document.Document, len(docs))
		copy(shuffled, docs)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		tr, err := Assemble(shuffled, quietLogger())
		if err != nil {
			t.Fatalf("trial %d: unexpected error: %v", trial, err)
		}
		if tr.Len() != len(docs) {
			t.Fatalf("trial %d: expected %d documents, got %d", trial, len(docs), tr.Len())
		}

		// Same parent/child prefix relationships regardless of input order.
		tr.Root().walk(func(n *Node) {
			if n.Parent() == nil {
				if n.Document.Prefix() != "REQ" {
					t.Errorf("trial %d: expected root REQ, got %s", trial, n.Document.Prefix())
				}
				return
			}
			if got := n.Parent().Document.Prefix(); got != want[n.Document.Prefix()] {
				t.Errorf("trial %d: %s placed under %s, expected %s",
					trial, n.Document.Prefix(), got, want[n.Document.Prefix()])
			}
		})
	}
}

func TestAssemble_VisitsEachDocumentOnce(t *testing.T) {
	root := t.TempDir()
	docs := []*document.Document{
		newTestDoc(t, root, "SYS", "REQ"),
		newTestDoc(t, root, "REQ", ""),
		newTestDoc(t, root, "HLT", "REQ"),
	}
	tr, err := Assemble(docs, quietLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen := map[string]int{}
	for _, doc := range tr.Documents() {
		seen[doc.Prefix()]++
	}
	if len(seen) != 3 {
		t.Fatalf("expected 3 distinct documents, got %v", seen)
	}
	for prefix, count := range seen {
		if count != 1 {
			t.Errorf("document %s visited %d times", prefix, count)
		}
	}
}

func TestAssemble_LogsPlacementEvents(t *testing.T) {
	root := t.TempDir()
	hlt := newTestDoc(t, root, "HLT", "REQ")
	req := newTestDoc(t, root, "REQ", "")

	rec := &recordingHandler{}
	if _, err := Assemble([]*document.Document{hlt, req}, slog.New(rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rec.contains("root of tree") {
		t.Error("expected a 'root of tree' event")
	}
	if !rec.contains("document placed") {
		t.Error("expected a 'document placed' event")
	}
}

func TestNode_ParentBackReference(t *testing.T) {
	root := t.TempDir()
	req := newTestDoc(t, root, "REQ", "")
	hlt := newTestDoc(t, root, "HLT", "REQ")

	tr, err := Assemble([]*document.Document{req, hlt}, quietLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rootNode := tr.Root()
	if rootNode.Parent() != nil {
		t.Error("expected root to have no parent")
	}
	children := rootNode.Children()
	if len(children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(children))
	}
	if children[0].Parent() != rootNode {
		t.Error("expected child's parent back-reference to be the root node")
	}
}

func TestValidate_OK(t *testing.T) {
	root := t.TempDir()
	req := newTestDoc(t, root, "REQ", "")
	tr, err := Assemble([]*document.Document{req}, quietLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := tr.AddItem("REQ"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tr.Validate(); err != nil {
		t.Errorf("expected valid tree, got %v", err)
	}
}

func TestValidate_FailsOnBrokenDocument(t *testing.T) {
	root := t.TempDir()
	req := newTestDoc(t, root, "REQ", "")
	hlt := newTestDoc(t, root, "HLT", "REQ")
	tr, err := Assemble([]*document.Document{req, hlt}, quietLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Corrupt an item file in the child document.
	bad := filepath.Join(hlt.Path(), "HLT001.yml")
	if err := os.WriteFile(bad, []byte("text: [unclosed"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tr.Validate(); err == nil {
		t.Error("expected validation error")
	}
}

func TestCreateDocument_PlacesInTree(t *testing.T) {
	root := t.TempDir()
	req := newTestDoc(t, root, "REQ", "")
	tr, err := Assemble([]*document.Document{req}, quietLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	doc, err := tr.CreateDocument(filepath.Join(root, "hlt"), "HLT", "REQ", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Prefix() != "HLT" {
		t.Errorf("expected prefix %q, got %q", "HLT", doc.Prefix())
	}
	if tr.Len() != 2 {
		t.Errorf("expected 2 documents after create, got %d", tr.Len())
	}
	if tr.FindDocument("HLT") == nil {
		t.Error("expected HLT to be findable after create")
	}
}

func TestCreateDocument_RejectsDuplicatePrefix(t *testing.T) {
	root := t.TempDir()
	req := newTestDoc(t, root, "REQ", "")
	tr, err := Assemble([]*document.Document{req}, quietLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	path := filepath.Join(root, "req2")
	_, err = tr.CreateDocument(path, "req", "REQ", 0)
	if !errors.Is(err, ErrDuplicatePrefix) {
		t.Fatalf("expected ErrDuplicatePrefix, got %v", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Errorf("expected no directory for rejected document, stat returned %v", statErr)
	}
}

func TestCreateDocument_RollbackOnBadParent(t *testing.T) {
	root := t.TempDir()
	req := newTestDoc(t, root, "REQ", "")
	tr, err := Assemble([]*document.Document{req}, quietLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	path := filepath.Join(root, "orphan")
	_, err = tr.CreateDocument(path, "ORPHAN", "NOPE", 0)
	if !errors.Is(err, ErrNoParent) {
		t.Fatalf("expected ErrNoParent, got %v", err)
	}

	// The created directory was rolled back and the tree is unchanged.
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Errorf("expected %s to be removed, stat returned %v", path, statErr)
	}
	if tr.Len() != 1 {
		t.Errorf("expected tree unchanged, got %d documents", tr.Len())
	}
}

func TestCreateDocument_RollbackFailureKeepsPlacementError(t *testing.T) {
	root := t.TempDir()
	req := newTestDoc(t, root, "REQ", "")
	tr, err := Assemble([]*document.Document{req}, quietLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tr.removeAll = func(string) error { return errors.New("disk on fire") }
	_, err = tr.CreateDocument(filepath.Join(root, "orphan"), "ORPHAN", "NOPE", 0)
	if !errors.Is(err, ErrNoParent) {
		t.Errorf("expected placement error to win over rollback failure, got %v", err)
	}
}

func TestFindDocument_Missing(t *testing.T) {
	root := t.TempDir()
	req := newTestDoc(t, root, "REQ", "")
	tr, err := Assemble([]*document.Document{req}, quietLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc := tr.FindDocument("NOPE"); doc != nil {
		t.Errorf("expected nil for missing prefix, got %v", doc)
	}
}

func TestAddItem_UnknownPrefix(t *testing.T) {
	root := t.TempDir()
	req := newTestDoc(t, root, "REQ", "")
	tr, err := Assemble([]*document.Document{req}, quietLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = tr.AddItem("NOPE")
	if !errors.Is(err, ErrNoMatchingDocument) {
		t.Errorf("expected ErrNoMatchingDocument, got %v", err)
	}
}

func TestResolveItem_RoundTrip(t *testing.T) {
	root := t.TempDir()
	req := newTestDoc(t, root, "REQ", "")
	tr, err := Assemble([]*document.Document{req}, quietLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	added, err := tr.AddItem("REQ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Exact, unpadded, and lowercase forms all resolve.
	for _, id := range []string{added.ID(), "REQ1", "req001"} {
		it, err := tr.ResolveItem(id)
		if err != nil {
			t.Fatalf("ResolveItem(%q): unexpected error: %v", id, err)
		}
		if it == nil || it.ID() != added.ID() {
			t.Errorf("ResolveItem(%q): expected %s, got %v", id, added.ID(), it)
		}
	}
}

func TestResolveItem_AbsentReturnsNil(t *testing.T) {
	root := t.TempDir()
	req := newTestDoc(t, root, "REQ", "")
	tr, err := Assemble([]*document.Document{req}, quietLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Unknown number and unknown prefix are both not-found, not errors.
	for _, id := range []string{"REQ999", "NOPE001"} {
		it, err := tr.ResolveItem(id)
		if err != nil {
			t.Errorf("ResolveItem(%q): unexpected error: %v", id, err)
		}
		if it != nil {
			t.Errorf("ResolveItem(%q): expected nil, got %v", id, it)
		}
	}
}

func TestResolveItem_MalformedID(t *testing.T) {
	root := t.TempDir()
	req := newTestDoc(t, root, "REQ", "")
	tr, err := Assemble([]*document.Document{req}, quietLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = tr.ResolveItem("???")
	if !errors.Is(err, item.ErrMalformedID) {
		t.Errorf("expected ErrMalformedID, got %v", err)
	}
}

func TestLink_Success(t *testing.T) {
	root := t.TempDir()
	req := newTestDoc(t, root, "REQ", "")
	hlt := newTestDoc(t, root, "HLT", "REQ")
	tr, err := Assemble([]*document.Document{req, hlt}, quietLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := tr.AddItem("REQ"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := tr.AddItem("HLT"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	child, parent, err := tr.Link("HLT001", "REQ001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if child.ID() != "HLT001" || parent.ID() != "REQ001" {
		t.Errorf("expected (HLT001, REQ001), got (%s, %s)", child.ID(), parent.ID())
	}

	links := child.Links()
	if len(links) != 1 || links[0] != "REQ001" {
		t.Errorf("expected child links [REQ001], got %v", links)
	}
}

func TestLink_MissingParent(t *testing.T) {
	root := t.TempDir()
	req := newTestDoc(t, root, "REQ", "")
	tr, err := Assemble([]*document.Document{req}, quietLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := tr.AddItem("REQ"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, _, err = tr.Link("REQ001", "HLT001")
	if !errors.Is(err, ErrNoMatchingParent) {
		t.Fatalf("expected ErrNoMatchingParent, got %v", err)
	}

	// The child's link set is untouched.
	it, err := tr.ResolveItem("REQ001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if links := it.Links(); len(links) != 0 {
		t.Errorf("expected no links after failed link, got %v", links)
	}
}

func TestLink_MissingChild(t *testing.T) {
	root := t.TempDir()
	req := newTestDoc(t, root, "REQ", "")
	tr, err := Assemble([]*document.Document{req}, quietLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := tr.AddItem("REQ"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, _, err = tr.Link("HLT001", "REQ001")
	if !errors.Is(err, ErrNoMatchingChild) {
		t.Errorf("expected ErrNoMatchingChild, got %v", err)
	}
}

func TestEdit_LaunchesEditor(t *testing.T) {
	root := t.TempDir()
	req := newTestDoc(t, root, "REQ", "")
	tr, err := Assemble([]*document.Document{req}, quietLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	added, err := tr.AddItem("REQ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var launched string
	tr.launch = func(path string) error {
		launched = path
		return nil
	}

	it, err := tr.Edit("REQ001", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if launched != added.Path() {
		t.Errorf("expected editor launched with %q, got %q", added.Path(), launched)
	}
	if it.ID() != "REQ001" {
		t.Errorf("expected item REQ001, got %s", it.ID())
	}
}

func TestEdit_NoLaunch(t *testing.T) {
	root := t.TempDir()
	req := newTestDoc(t, root, "REQ", "")
	tr, err := Assemble([]*document.Document{req}, quietLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := tr.AddItem("REQ"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tr.launch = func(string) error {
		t.Error("editor should not launch when launch is false")
		return nil
	}
	if _, err := tr.Edit("REQ001", false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEdit_MissingItem(t *testing.T) {
	root := t.TempDir()
	req := newTestDoc(t, root, "REQ", "")
	tr, err := Assemble([]*document.Document{req}, quietLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = tr.Edit("REQ999", true)
	if !errors.Is(err, ErrNoMatchingItem) {
		t.Errorf("expected ErrNoMatchingItem, got %v", err)
	}
}
