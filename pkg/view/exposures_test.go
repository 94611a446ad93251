package view_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-view/pkg/testsupport"
	"github.com/goliatone/go-view/pkg/view"
)

func TestExposures_ResolvesDependenciesOnce(t *testing.T) {
	calls := 0
	exposures := view.NewExposures()
	exposures.Add("greeting", func(_ context.Context, in *view.Input) (any, error) {
		name, err := in.Get("name")
		if err != nil {
			return nil, err
		}
		return "Hello " + name.(string), nil
	})
	exposures.Add("name", func(_ context.Context, in *view.Input) (any, error) {
		calls++
		raw, _ := in.Raw("name")
		return raw.(string) + "!", nil
	})

	locals, err := exposures.Locals(testsupport.Context(), map[string]any{"name": "Jane"})
	if err != nil {
		t.Fatalf("locals: %v", err)
	}
	want := map[string]any{"greeting": "Hello Jane!", "name": "Jane!"}
	if diff := cmp.Diff(want, locals); diff != "" {
		t.Fatalf("locals mismatch (-want +got):\n%s", diff)
	}
	if calls != 1 {
		t.Fatalf("expected name to be computed once, got %d", calls)
	}
	if diff := cmp.Diff([]string{"greeting", "name"}, exposures.Names()); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestExposures_PassThroughAndDefaults(t *testing.T) {
	exposures := view.NewExposures()
	exposures.Add("page", nil, view.DefaultValue(1))
	exposures.Add("query", nil)

	locals, err := exposures.Locals(testsupport.Context(), map[string]any{"query": "go"})
	if err != nil {
		t.Fatalf("locals: %v", err)
	}
	want := map[string]any{"page": 1, "query": "go"}
	if diff := cmp.Diff(want, locals); diff != "" {
		t.Fatalf("locals mismatch (-want +got):\n%s", diff)
	}
}

func TestExposures_DetectsCycles(t *testing.T) {
	exposures := view.NewExposures()
	exposures.Add("a", func(_ context.Context, in *view.Input) (any, error) { return in.Get("b") })
	exposures.Add("b", func(_ context.Context, in *view.Input) (any, error) { return in.Get("a") })

	if _, err := exposures.Locals(testsupport.Context(), nil); !errors.Is(err, view.ErrExposureCycle) {
		t.Fatalf("expected ErrExposureCycle, got %v", err)
	}
}

func TestExposures_InputCarriesContext(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "request-42")

	exposures := view.NewExposures()
	exposures.Add("request", func(ctx context.Context, in *view.Input) (any, error) {
		if ctx != in.Context() {
			return nil, errors.New("context mismatch")
		}
		return ctx.Value(key{}), nil
	})

	locals, err := exposures.Locals(ctx, nil)
	if err != nil {
		t.Fatalf("locals: %v", err)
	}
	if locals["request"] != "request-42" {
		t.Fatalf("unexpected locals %v", locals)
	}
}

func TestExposures_CloneIsIndependent(t *testing.T) {
	exposures := view.NewExposures()
	exposures.Add("a", nil, view.Private())
	clone := exposures.Clone()
	clone.Add("b", nil)

	if exposures.Has("b") || exposures.Len() != 1 {
		t.Fatalf("clone changes leaked into the source")
	}
	a, ok := clone.Get("a")
	if !ok || !a.Private() || a.Name() != "a" {
		t.Fatalf("expected cloned private exposure, got %+v", a)
	}
}
