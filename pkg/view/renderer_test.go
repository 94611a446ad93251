package view_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-view/pkg/render"
	"github.com/goliatone/go-view/pkg/testsupport"
	"github.com/goliatone/go-view/pkg/view"
)

func lookupRenderer(t *testing.T) *view.Renderer {
	t.Helper()
	primary := testsupport.TemplatesFS(map[string]string{
		"users/_row.html.tpl":       "primary row",
		"shared/_nav.html.tpl":      "primary nav",
		"users/show.html.tpl":       "show {{ id }}",
		"users/show.txt.tpl":        "show text",
		"users/edit/_form.html.tpl": "form",
	})
	secondary := testsupport.TemplatesFS(map[string]string{
		"users/_row.html.tpl": "secondary row",
		"_footer.html.tpl":    "secondary footer",
		"users/list.html.tpl": "list",
	})
	renderer, err := view.NewRenderer([]view.Path{view.FSPath(primary), view.FSPath(secondary)}, "html", nil)
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	return renderer
}

func TestRenderer_Lookup(t *testing.T) {
	renderer := lookupRenderer(t)

	cases := []struct {
		renderer *view.Renderer
		name     string
		want     string
		found    bool
	}{
		{renderer, "users/show", "users/show.html.tpl", true},
		{renderer, "users/list", "users/list.html.tpl", true},
		{renderer, "users/_row", "users/_row.html.tpl", true},
		{renderer.Chdir("users"), "_row", "users/_row.html.tpl", true},
		{renderer.Chdir("users/edit"), "_row", "users/_row.html.tpl", true},
		{renderer.Chdir("users/edit"), "_nav", "shared/_nav.html.tpl", true},
		{renderer.Chdir("users"), "_footer", "_footer.html.tpl", true},
		{renderer, "users/missing", "", false},
	}
	for _, tc := range cases {
		got, ok := tc.renderer.Lookup(tc.name)
		if ok != tc.found || got != tc.want {
			t.Fatalf("Lookup(%q) = %q, %v; want %q, %v", tc.name, got, ok, tc.want, tc.found)
		}
	}
}

func TestRenderer_LookupStaysInsideRoot(t *testing.T) {
	renderer := lookupRenderer(t)

	cases := []struct {
		renderer *view.Renderer
		name     string
	}{
		{renderer.Chdir("../users"), "_row"},
		{renderer.Chdir("users/../../x"), "_nav"},
		{renderer.Chdir(".."), "_footer"},
		{renderer, "../users/show"},
		{renderer.Chdir("users"), "../../_footer"},
	}
	for _, tc := range cases {
		done := make(chan bool, 1)
		go func() {
			_, ok := tc.renderer.Lookup(tc.name)
			done <- ok
		}()
		select {
		case ok := <-done:
			if ok {
				t.Fatalf("Lookup(%q) from %v resolved outside the root", tc.name, tc.renderer.Paths()[0].Dir())
			}
		case <-time.After(time.Second):
			t.Fatalf("Lookup(%q) from %v did not return", tc.name, tc.renderer.Paths()[0].Dir())
		}
	}

	_, err := renderer.Chdir("../users").Partial("row", view.NewScope(nil, view.DefaultContext()), nil)
	if !errors.Is(err, view.ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
}

func TestRenderer_EarlierRootsWin(t *testing.T) {
	renderer := lookupRenderer(t).Chdir("users")

	out, err := renderer.Partial("row", view.NewScope(nil, view.DefaultContext()), nil)
	if err != nil {
		t.Fatalf("partial: %v", err)
	}
	if out != "primary row" {
		t.Fatalf("expected the first root to win, got %q", out)
	}
}

func TestRenderer_TemplateAndFormat(t *testing.T) {
	renderer := lookupRenderer(t)

	out, err := renderer.Template("users/show", view.NewScope(map[string]any{"id": 7}, view.DefaultContext()), nil)
	if err != nil || out != "show 7" {
		t.Fatalf("template: %q (%v)", out, err)
	}

	txt, err := view.NewRenderer(renderer.Paths(), "txt", nil)
	if err != nil {
		t.Fatalf("txt renderer: %v", err)
	}
	if _, ok := txt.Lookup("users/list"); ok {
		t.Fatalf("expected txt lookup to ignore html templates")
	}
	if file, _ := txt.Lookup("users/show"); file != "users/show.txt.tpl" {
		t.Fatalf("unexpected txt template %q", file)
	}
}

func TestRenderer_NotFoundListsRoots(t *testing.T) {
	renderer, err := view.NewRenderer([]view.Path{view.DirPath("testdata/templates")}, "html", nil)
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}

	_, err = renderer.Chdir("users").Partial("missing", view.NewScope(nil, view.DefaultContext()), nil)
	var notFound *view.TemplateNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected TemplateNotFoundError, got %v", err)
	}
	if notFound.Name != "_missing" {
		t.Fatalf("unexpected name %q", notFound.Name)
	}
	if diff := cmp.Diff([]string{"testdata/templates/users"}, notFound.Roots); diff != "" {
		t.Fatalf("roots mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(err.Error(), `"html"`) {
		t.Fatalf("expected the format in the message, got %q", err)
	}
}

func TestRenderer_Equal(t *testing.T) {
	renderer := lookupRenderer(t)

	if !renderer.Equal(renderer.Chdir("")) {
		t.Fatalf("expected a no-op chdir to be equal")
	}
	if renderer.Equal(renderer.Chdir("users")) {
		t.Fatalf("expected a different directory to differ")
	}
	if !renderer.Chdir("users").Equal(renderer.Chdir("users")) {
		t.Fatalf("expected the same chdir to be equal")
	}
	rebuilt, _ := view.NewRenderer(renderer.Paths(), "html", nil)
	if renderer.Equal(rebuilt) {
		t.Fatalf("expected separately built renderers to differ")
	}
}

func TestRenderer_RequiresFormatAndEngines(t *testing.T) {
	paths := []view.Path{view.DirPath("testdata/templates")}
	if _, err := view.NewRenderer(paths, "", nil); err == nil {
		t.Fatalf("expected empty format to fail")
	}
	if _, err := view.NewRenderer(paths, "html", render.NewRegistry()); err == nil {
		t.Fatalf("expected empty registry to fail")
	}
	if _, err := view.NewRenderer([]view.Path{{}}, "html", nil); err == nil {
		t.Fatalf("expected a path without filesystem to fail")
	}
}

func TestRenderer_CustomEngineExtension(t *testing.T) {
	registry := render.NewRegistry()
	registry.MustRegister("j2", render.PongoFactory("j2"))

	fsys := testsupport.TemplatesFS(map[string]string{
		"hello.html.j2":  "j2 {{ name }}",
		"hello.html.tpl": "tpl {{ name }}",
	})
	renderer, err := view.NewRenderer([]view.Path{view.FSPath(fsys)}, "html", registry)
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	out, err := renderer.Template("hello", view.NewScope(map[string]any{"name": "Jane"}, view.DefaultContext()), nil)
	if err != nil || out != "j2 Jane" {
		t.Fatalf("template: %q (%v)", out, err)
	}
}
