package argtree

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// scopeOnlyBuilder implements Builder without TableQualifier.
type scopeOnlyBuilder struct{ scopes []string }

func (b *scopeOnlyBuilder) InvokeScope(name string, args map[string]any) (Builder, error) {
	b.scopes = append(b.scopes, name)
	return b, nil
}

func TestEnhanceBuilder_DispatchOrder(t *testing.T) {
	nested := New()
	nested.Add("inner", arg(2, recordDirective{name: "p4"}))

	tr := New()
	tr.Add("a", arg(1, recordDirective{name: "p1"}, recordDirective{name: "p2"}))
	tr.Add("f", arg(nested, recordDirective{name: "p3"}))
	tr.Add("b", arg(3, recordDirective{name: "p5"}))

	b := NewMockBuilder("b1", "")
	got, err := tr.EnhanceBuilder(b, nil, nil)
	if err != nil {
		t.Fatalf("EnhanceBuilder error: %v", err)
	}
	if got != Builder(b) {
		t.Fatalf("EnhanceBuilder returned %v, want the input builder", got)
	}

	wantCalls := []BuilderCall{
		{Op: CallOpMutate, Name: "p1", Value: 1},
		{Op: CallOpMutate, Name: "p2", Value: 1},
		{Op: CallOpMutate, Name: "p3", Value: map[string]any{"inner": 2}},
		{Op: CallOpMutate, Name: "p4", Value: 2},
		{Op: CallOpMutate, Name: "p5", Value: 3},
	}
	if diff := cmp.Diff(wantCalls, b.GetCalls()); diff != "" {
		t.Fatalf("Builder calls mismatch (-want +got):\n%s", diff)
	}
}

func TestEnhanceBuilder_RecursesIntoListElements(t *testing.T) {
	el1 := New()
	el1.Add("x", arg(1, recordDirective{name: "e1"}))
	el2 := New()
	el2.Add("y", arg(2, recordDirective{name: "e2"}))

	tr := New()
	tr.Add("items", arg([]any{el1, "skip", el2}))

	b := NewMockBuilder("b1", "")
	if _, err := tr.EnhanceBuilder(b, nil, nil); err != nil {
		t.Fatalf("EnhanceBuilder error: %v", err)
	}

	wantCalls := []BuilderCall{
		{Op: CallOpMutate, Name: "e1", Value: 1},
		{Op: CallOpMutate, Name: "e2", Value: 2},
	}
	if diff := cmp.Diff(wantCalls, b.GetCalls()); diff != "" {
		t.Fatalf("Builder calls mismatch (-want +got):\n%s", diff)
	}
}

func TestEnhanceBuilder_FilterLimitsDispatchNotRecursion(t *testing.T) {
	nested := New()
	nested.Add("deep", arg(2, recordDirective{name: "keep"}))

	tr := New()
	tr.Add("top", arg(1, recordDirective{name: "drop"}))
	tr.Add("f", arg(nested, recordDirective{name: "drop"}))

	filter := func(m BuilderMutator) bool { return m.Name() == "keep" }

	b := NewMockBuilder("b1", "")
	if _, err := tr.EnhanceBuilder(b, nil, filter); err != nil {
		t.Fatalf("EnhanceBuilder error: %v", err)
	}

	wantCalls := []BuilderCall{
		{Op: CallOpMutate, Name: "keep", Value: 2},
	}
	if diff := cmp.Diff(wantCalls, b.GetCalls()); diff != "" {
		t.Fatalf("Builder calls mismatch (-want +got):\n%s", diff)
	}
}

func TestEnhanceBuilder_OtherCapabilitiesNotDispatched(t *testing.T) {
	tr := New()
	tr.Add("a", arg(1, spreadableDirective{}, renameDirective{to: "x"}, inertDirective{}))

	b := NewMockBuilder("b1", "")
	if _, err := tr.EnhanceBuilder(b, nil, nil); err != nil {
		t.Fatalf("EnhanceBuilder error: %v", err)
	}
	if calls := b.GetCalls(); len(calls) != 0 {
		t.Fatalf("unexpected calls: %v", calls)
	}
}

func TestEnhanceBuilder_ReplacementSeenBySameLevel(t *testing.T) {
	b1 := NewMockBuilder("b1", "")
	b2 := NewMockBuilder("b2", "")

	tr := New()
	tr.Add("swap", arg(1, swapDirective{name: "swap", next: b2}))
	tr.Add("after", arg(2, recordDirective{name: "after"}))

	got, err := tr.EnhanceBuilder(b1, nil, nil)
	if err != nil {
		t.Fatalf("EnhanceBuilder error: %v", err)
	}
	if got != Builder(b2) {
		t.Fatal("EnhanceBuilder did not return the replacement builder")
	}

	wantB1 := []BuilderCall{{Op: CallOpMutate, Name: "swap", Value: 1}}
	if diff := cmp.Diff(wantB1, b1.GetCalls()); diff != "" {
		t.Fatalf("original builder calls mismatch (-want +got):\n%s", diff)
	}
	wantB2 := []BuilderCall{{Op: CallOpMutate, Name: "after", Value: 2}}
	if diff := cmp.Diff(wantB2, b2.GetCalls()); diff != "" {
		t.Fatalf("replacement builder calls mismatch (-want +got):\n%s", diff)
	}
}

func TestEnhanceBuilder_ReplacementSeenByAncestor(t *testing.T) {
	b1 := NewMockBuilder("b1", "")
	b2 := NewMockBuilder("b2", "")

	nested := New()
	nested.Add("swap", arg(1, swapDirective{name: "swap", next: b2}))

	tr := New()
	tr.Add("outer", arg(nested))
	tr.Add("after", arg(2, recordDirective{name: "after"}))

	got, err := tr.EnhanceBuilder(b1, nil, nil)
	if err != nil {
		t.Fatalf("EnhanceBuilder error: %v", err)
	}
	if got != Builder(b2) {
		t.Fatal("EnhanceBuilder did not return the replacement builder")
	}

	wantB2 := []BuilderCall{{Op: CallOpMutate, Name: "after", Value: 2}}
	if diff := cmp.Diff(wantB2, b2.GetCalls()); diff != "" {
		t.Fatalf("replacement builder calls mismatch (-want +got):\n%s", diff)
	}
}

func TestEnhanceBuilder_QualificationAndScopesUseFinalBuilder(t *testing.T) {
	b1 := NewMockBuilder("b1", "users")
	b2 := NewMockBuilder("b2", "posts")

	nested := New()
	nested.Add("swap", arg(1, swapDirective{name: "swap", next: b2}))

	tr := New()
	tr.Add("filter", arg(nested))

	got, err := tr.EnhanceBuilder(b1, []string{"recent"}, nil)
	if err != nil {
		t.Fatalf("EnhanceBuilder error: %v", err)
	}
	if got != Builder(b2) {
		t.Fatal("EnhanceBuilder did not return the replacement builder")
	}

	wantB1 := []BuilderCall{{Op: CallOpMutate, Name: "swap", Value: 1}}
	if diff := cmp.Diff(wantB1, b1.GetCalls()); diff != "" {
		t.Fatalf("original builder calls mismatch (-want +got):\n%s", diff)
	}
	wantB2 := []BuilderCall{
		{Op: CallOpRestrict, Name: "posts"},
		{Op: CallOpScope, Name: "recent", Args: map[string]any{"filter": map[string]any{"swap": 1}}},
	}
	if diff := cmp.Diff(wantB2, b2.GetCalls()); diff != "" {
		t.Fatalf("replacement builder calls mismatch (-want +got):\n%s", diff)
	}
}

func TestEnhanceBuilder_NoQualifyingTableSkipsRestriction(t *testing.T) {
	tr := New()
	tr.Add("n", arg(1))

	b := NewMockBuilder("b1", "")
	if _, err := tr.EnhanceBuilder(b, []string{"s"}, nil); err != nil {
		t.Fatalf("EnhanceBuilder error: %v", err)
	}

	wantCalls := []BuilderCall{
		{Op: CallOpScope, Name: "s", Args: map[string]any{"n": 1}},
	}
	if diff := cmp.Diff(wantCalls, b.GetCalls()); diff != "" {
		t.Fatalf("Builder calls mismatch (-want +got):\n%s", diff)
	}
}

func TestEnhanceBuilder_NonQualifierBuilder(t *testing.T) {
	tr := New()
	tr.Add("n", arg(1))

	b := &scopeOnlyBuilder{}
	got, err := tr.EnhanceBuilder(b, []string{"s"}, nil)
	if err != nil {
		t.Fatalf("EnhanceBuilder error: %v", err)
	}
	if got != Builder(b) {
		t.Fatal("EnhanceBuilder returned a different builder")
	}
	if diff := cmp.Diff([]string{"s"}, b.scopes); diff != "" {
		t.Fatalf("scopes mismatch (-want +got):\n%s", diff)
	}
}

func TestEnhanceBuilder_ScopePayloadFreshPerInvocation(t *testing.T) {
	b := NewMockBuilder("b1", "")
	b.ScopeFunc = func(name string, args map[string]any) (Builder, error) {
		args["tainted"] = true
		return b, nil
	}

	tr := New()
	tr.Add("n", arg(1))

	if _, err := tr.EnhanceBuilder(b, []string{"s1", "s2"}, nil); err != nil {
		t.Fatalf("EnhanceBuilder error: %v", err)
	}

	calls := b.GetCalls()
	if len(calls) != 2 || calls[0].Name != "s1" || calls[1].Name != "s2" {
		t.Fatalf("unexpected scope calls: %v", calls)
	}
	if _, ok := calls[1].Args["tainted"]; ok {
		t.Fatal("second scope received the first scope's payload")
	}
	if calls[1].Args["n"] != 1 {
		t.Fatalf("second scope payload = %v, want full plain form", calls[1].Args)
	}
}

func TestEnhanceBuilder_ScopeReplacementThreaded(t *testing.T) {
	b2 := NewMockBuilder("b2", "")
	b1 := NewMockBuilder("b1", "")
	b1.ScopeFunc = func(name string, args map[string]any) (Builder, error) {
		return b2, nil
	}

	tr := New()
	tr.Add("n", arg(1))

	got, err := tr.EnhanceBuilder(b1, []string{"s1", "s2"}, nil)
	if err != nil {
		t.Fatalf("EnhanceBuilder error: %v", err)
	}
	if got != Builder(b2) {
		t.Fatal("EnhanceBuilder did not return the scope's replacement builder")
	}

	if calls := b1.GetCalls(); len(calls) != 1 || calls[0].Name != "s1" {
		t.Fatalf("original builder calls: %v, want only s1", calls)
	}
	if calls := b2.GetCalls(); len(calls) != 1 || calls[0].Name != "s2" {
		t.Fatalf("replacement builder calls: %v, want only s2", calls)
	}
}

func TestEnhanceBuilder_MutatorErrorAborts(t *testing.T) {
	errBoom := errors.New("boom")

	tr := New()
	tr.Add("bad", arg(1, failDirective{err: errBoom}))
	tr.Add("after", arg(2, recordDirective{name: "after"}))

	b := NewMockBuilder("b1", "")
	got, err := tr.EnhanceBuilder(b, nil, nil)
	if got != nil {
		t.Fatalf("EnhanceBuilder returned builder %v after error", got)
	}
	if !errors.Is(err, errBoom) {
		t.Fatalf("error = %v, want wrapped boom", err)
	}
	if !strings.Contains(err.Error(), `argument "bad": directive @failing`) {
		t.Fatalf("error message = %q, want argument and directive context", err)
	}
	if calls := b.GetCalls(); len(calls) != 0 {
		t.Fatalf("dispatch continued after error: %v", calls)
	}
}

func TestEnhanceBuilder_ScopeErrorAborts(t *testing.T) {
	errBoom := errors.New("boom")

	b := NewMockBuilder("b1", "")
	b.ScopeFunc = func(name string, args map[string]any) (Builder, error) {
		return nil, errBoom
	}

	tr := New()
	tr.Add("n", arg(1))

	got, err := tr.EnhanceBuilder(b, []string{"recent"}, nil)
	if got != nil {
		t.Fatalf("EnhanceBuilder returned builder %v after error", got)
	}
	if !errors.Is(err, errBoom) {
		t.Fatalf("error = %v, want wrapped boom", err)
	}
	if !strings.Contains(err.Error(), `scope "recent"`) {
		t.Fatalf("error message = %q, want scope context", err)
	}
}
