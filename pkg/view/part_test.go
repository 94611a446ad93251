package view_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-view/pkg/testsupport"
	"github.com/goliatone/go-view/pkg/view"
)

type author struct {
	FirstName string
	Email     string
	Posts     []post
	Manager   *author
}

func (a author) Greeting(prefix string) string {
	return prefix + " " + a.FirstName
}

func (a author) Fail() (string, error) {
	return "", errors.New("fail")
}

type post struct {
	Title string
}

func countingDecorator(calls map[string]int) view.Decorator {
	return view.DecoratorFunc(func(name string, value any, ctx *view.Context, opts view.DecorateOptions) (any, error) {
		calls[name]++
		return view.DefaultDecorator().Decorate(name, value, ctx, opts)
	})
}

func renderContext(t *testing.T, decorator view.Decorator, files map[string]string) *view.Context {
	t.Helper()
	renderer, err := view.NewRenderer([]view.Path{view.FSPath(testsupport.TemplatesFS(files))}, "html", nil)
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	return view.DefaultContext().ForRendering(renderer, decorator)
}

func TestPart_ForwardsMembers(t *testing.T) {
	ctx := view.DefaultContext().ForRendering(nil, view.DefaultDecorator())
	part := view.NewPart("author", author{FirstName: "Jane", Email: "jane@doe.org"}, ctx)

	cases := []struct {
		member string
		args   []any
		want   any
	}{
		{member: "FirstName", want: "Jane"},
		{member: "first_name", want: "Jane"},
		{member: "email", want: "jane@doe.org"},
		{member: "Greeting", args: []any{"Hello"}, want: "Hello Jane"},
		{member: "greeting", args: []any{"Hi"}, want: "Hi Jane"},
	}
	for _, tc := range cases {
		got, err := part.Get(tc.member, tc.args...)
		if err != nil {
			t.Fatalf("get %s: %v", tc.member, err)
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Fatalf("get %s mismatch (-want +got):\n%s", tc.member, diff)
		}
	}

	if _, err := part.Get("fail"); err == nil || err.Error() != "fail" {
		t.Fatalf("expected method error to surface, got %v", err)
	}
	if _, err := part.Get("greeting"); err == nil {
		t.Fatalf("expected arity error")
	}
}

func TestPart_ForwardsMapKeys(t *testing.T) {
	part := view.NewPart("user", map[string]any{"name": "Jane"}, view.DefaultContext())

	got, err := part.Get("name")
	if err != nil || got != "Jane" {
		t.Fatalf("expected map key, got %v (%v)", got, err)
	}
}

func TestPart_UnsupportedMember(t *testing.T) {
	part := view.NewPart("user", map[string]any{"name": "Jane"}, view.DefaultContext())

	_, err := part.Get("age")
	if !errors.Is(err, view.ErrUnsupportedMember) {
		t.Fatalf("expected ErrUnsupportedMember, got %v", err)
	}
	var unsupported *view.UnsupportedMemberError
	if !errors.As(err, &unsupported) || unsupported.Member != "age" || unsupported.Part != "user" {
		t.Fatalf("unexpected error %#v", err)
	}
}

func TestPart_ConvenienceMembers(t *testing.T) {
	ctx := view.DefaultContext()
	value := map[string]any{"name": "Jane"}
	part := view.NewPart("user", value, ctx)

	if got, _ := part.Get("context"); got != ctx {
		t.Fatalf("expected context member to return the part context")
	}
	if got, _ := part.Get("value"); !cmp.Equal(got, value) {
		t.Fatalf("expected value member to return the wrapped value")
	}
	if part.String() != "map[name:Jane]" {
		t.Fatalf("unexpected string %q", part.String())
	}
	if view.NewPart("empty", nil, ctx).String() != "" {
		t.Fatalf("expected nil value to stringify empty")
	}
}

func TestPart_ClassMethodsTakePrecedence(t *testing.T) {
	class := view.NewPartClass("author_part").
		Method("email", func(p *view.Part, _ ...any) (any, error) {
			return "hidden", nil
		}).
		Method("shout", func(p *view.Part, args ...any) (any, error) {
			name, err := p.Get("first_name")
			if err != nil {
				return nil, err
			}
			suffix := "!"
			if len(args) > 0 {
				suffix = args[0].(string)
			}
			return strings.ToUpper(name.(string)) + suffix, nil
		})

	part := class.New("author", author{FirstName: "Jane", Email: "jane@doe.org"}, view.DefaultContext())

	if got, _ := part.Get("email"); got != "hidden" {
		t.Fatalf("expected class method to win, got %v", got)
	}
	if got, _ := part.Get("shout", "?"); got != "JANE?" {
		t.Fatalf("unexpected shout %v", got)
	}
}

func TestPart_DecoratedAttributesAreMemoised(t *testing.T) {
	calls := map[string]int{}
	ctx := renderContext(t, countingDecorator(calls), nil)

	class := view.NewPartClass("author_part").Decorate("manager", "posts")
	part := class.New("author", author{
		FirstName: "Jane",
		Manager:   &author{FirstName: "Ann"},
		Posts:     []post{{Title: "one"}, {Title: "two"}},
	}, ctx)

	first, err := part.Get("manager")
	if err != nil {
		t.Fatalf("get manager: %v", err)
	}
	second, _ := part.Get("manager")
	if first != second {
		t.Fatalf("expected the same decorated part on every access")
	}
	if calls["manager"] != 1 {
		t.Fatalf("expected one decorator call, got %d", calls["manager"])
	}

	manager := first.(*view.Part)
	if name, _ := manager.Get("first_name"); name != "Ann" {
		t.Fatalf("unexpected manager name %v", name)
	}

	posts, err := part.Get("posts")
	if err != nil {
		t.Fatalf("get posts: %v", err)
	}
	items := posts.(*view.Part).Value().([]any)
	if len(items) != 2 {
		t.Fatalf("expected two posts, got %d", len(items))
	}
	elem := items[1].(*view.Part)
	if elem.Name() != "post" {
		t.Fatalf("expected singular element name, got %q", elem.Name())
	}
	if title, _ := elem.Get("title"); title != "two" {
		t.Fatalf("unexpected title %v", title)
	}
}

func TestPart_FalsyDecoratedAttributeIsRaw(t *testing.T) {
	calls := map[string]int{}
	ctx := renderContext(t, countingDecorator(calls), nil)

	part := view.NewPartClass("author_part").Decorate("manager").
		New("author", author{FirstName: "Jane"}, ctx)

	got, err := part.Get("manager")
	if err != nil {
		t.Fatalf("get manager: %v", err)
	}
	if manager, ok := got.(*author); !ok || manager != nil {
		t.Fatalf("expected the raw nil manager, got %#v", got)
	}
	if calls["manager"] != 0 {
		t.Fatalf("falsy values must not be decorated")
	}
}

func TestPart_DecorationNeedsDecorator(t *testing.T) {
	part := view.NewPartClass("author_part").Decorate("manager").
		New("author", author{Manager: &author{}}, view.DefaultContext())

	if _, err := part.Get("manager"); !errors.Is(err, view.ErrMissingDecorator) {
		t.Fatalf("expected ErrMissingDecorator, got %v", err)
	}
}

func TestPart_DecoratedAttributeMustExist(t *testing.T) {
	ctx := renderContext(t, view.DefaultDecorator(), nil)
	part := view.NewPartClass("author_part").Decorate("missing").New("author", author{}, ctx)

	if _, err := part.Get("missing"); !errors.Is(err, view.ErrUnsupportedMember) {
		t.Fatalf("expected ErrUnsupportedMember, got %v", err)
	}
}

func TestPart_RendersPartials(t *testing.T) {
	ctx := renderContext(t, view.DefaultDecorator(), map[string]string{
		"_card.html.tpl":   `<b>{{ user.Get("name") }}</b>{{ note }}`,
		"_alias.html.tpl":  `<i>{{ person.Get("name") }}</i>`,
		"_framed.html.tpl": `[{{ yield()|safe }}]`,
	})
	part := view.NewPart("user", map[string]any{"name": "Jane"}, ctx)

	got, err := part.Render("card", "note", "!")
	if err != nil || got != "<b>Jane</b>!" {
		t.Fatalf("render card: %q (%v)", got, err)
	}
	got, err = part.Render("alias", "as", "person")
	if err != nil || got != "<i>Jane</i>" {
		t.Fatalf("render alias: %q (%v)", got, err)
	}
	got, err = part.Render("alias", view.As("person"))
	if err != nil || got != "<i>Jane</i>" {
		t.Fatalf("render alias option: %q (%v)", got, err)
	}
	got, err = part.Render("framed", view.WithBlock(func() (string, error) { return "inner", nil }))
	if err != nil || got != "[inner]" {
		t.Fatalf("render framed: %q (%v)", got, err)
	}
	viaGet, err := part.Get("render", "card", "note", "?")
	if err != nil || viaGet != "<b>Jane</b>?" {
		t.Fatalf("render through Get: %v (%v)", viaGet, err)
	}

	if _, err := part.Render("missing"); !errors.Is(err, view.ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
	if _, err := part.Render("card", "dangling"); err == nil {
		t.Fatalf("expected an error for a key without value")
	}
}

func TestPart_RenderNeedsRenderer(t *testing.T) {
	part := view.NewPart("user", map[string]any{}, view.DefaultContext())

	if _, err := part.Render("card"); !errors.Is(err, view.ErrMissingRenderer) {
		t.Fatalf("expected ErrMissingRenderer, got %v", err)
	}
}

func TestPart_Equality(t *testing.T) {
	ctx := view.NewContext(map[string]any{"title": "x"})
	other := view.NewContext(map[string]any{"title": "x"})

	a := view.NewPart("user", map[string]any{"name": "Jane"}, ctx)
	b := view.NewPartClass("special").New("user", map[string]any{"name": "Jane"}, ctx)

	if !a.Equal(b) {
		t.Fatalf("parts with the same name, value and context must be equal regardless of class")
	}
	if a.Equal(view.NewPart("member", map[string]any{"name": "Jane"}, ctx)) {
		t.Fatalf("different names must not be equal")
	}
	if a.Equal(view.NewPart("user", map[string]any{"name": "Joe"}, ctx)) {
		t.Fatalf("different values must not be equal")
	}
	if a.Equal(view.NewPart("user", map[string]any{"name": "Jane"}, other)) {
		t.Fatalf("different contexts must not be equal")
	}
	if !a.Equal(view.NewPart("user", map[string]any{"name": "Jane"}, ctx.ForRendering(nil, nil))) {
		t.Fatalf("a rendering clone of the same prototype must be equal")
	}
}

func TestPart_EqualityIgnoresDecorationCache(t *testing.T) {
	userClass := view.NewPartClass("user").Decorate("manager")
	decorator := view.NewDecorator(view.WithPartClassFor("user", userClass))
	ctx := view.DefaultContext().ForRendering(nil, decorator)
	users := []author{
		{FirstName: "Jane", Manager: &author{FirstName: "Ann"}},
		{FirstName: "Joe"},
	}

	decorate := func() *view.Part {
		t.Helper()
		decorated, err := decorator.Decorate("users", users, ctx, view.DecorateOptions{})
		if err != nil {
			t.Fatalf("decorate: %v", err)
		}
		return decorated.(*view.Part)
	}
	a, b := decorate(), decorate()
	if !a.Equal(b) {
		t.Fatalf("collections decorated from the same input must be equal")
	}

	first := a.Value().([]any)[0].(*view.Part)
	manager, err := first.Get("manager")
	if err != nil {
		t.Fatalf("get manager: %v", err)
	}
	if _, ok := manager.(*view.Part); !ok {
		t.Fatalf("expected decorated manager, got %T", manager)
	}

	if !first.Equal(b.Value().([]any)[0].(*view.Part)) {
		t.Fatalf("element equality must ignore the decoration cache")
	}
	if !a.Equal(b) {
		t.Fatalf("collection equality must ignore element decoration caches")
	}
	if a.Equal(view.NewPart("users", []any{first}, ctx)) {
		t.Fatalf("collections of different length must not be equal")
	}
}

func TestPart_NewRewraps(t *testing.T) {
	ctx := view.DefaultContext()
	class := view.NewPartClass("special")
	part := view.NewPart("user", "Jane", ctx, view.WithPartOption("size", "lg"))

	same := part.New()
	if !same.Equal(part) {
		t.Fatalf("expected rewrapped part to equal the original")
	}
	if size, ok := same.Option("size"); !ok || size != "lg" {
		t.Fatalf("expected options to carry over, got %v", size)
	}

	changed := part.New(view.WithPartClass(class), view.WithPartName("member"), view.WithPartValue("Joe"))
	if changed.Class() != class || changed.Name() != "member" || changed.Value() != "Joe" || changed.Context() != ctx {
		t.Fatalf("unexpected rewrapped part %+v", changed)
	}
}

func TestPartClass_ExtendSnapshots(t *testing.T) {
	base := view.NewPartClass("base").Decorate("manager").
		Method("hello", func(*view.Part, ...any) (any, error) { return "hi", nil })
	sub := base.Extend("sub").Decorate("posts")
	base.Decorate("late")

	if diff := cmp.Diff([]string{"manager", "posts"}, sub.DecoratedAttributes()); diff != "" {
		t.Fatalf("sub attributes mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"late", "manager"}, base.DecoratedAttributes()); diff != "" {
		t.Fatalf("base attributes mismatch (-want +got):\n%s", diff)
	}
	got, err := sub.New("x", nil, view.DefaultContext()).Get("hello")
	if err != nil || got != "hi" {
		t.Fatalf("expected inherited method, got %v (%v)", got, err)
	}
}

func TestPart_TemplateFilters(t *testing.T) {
	fsys := testsupport.TemplatesFS(map[string]string{
		"list.html.tpl": `{% for user in users.Value() %}{{ user|render:"row"|safe }}{% endfor %}`,
		"_row.html.tpl": `<li>{{ user|attr:"name" }}</li>`,
	})
	typ := view.NewControllerType("list",
		view.WithPaths(view.FSPath(fsys)),
		view.WithTemplate("list"),
	)

	out, err := typ.New().Call(testsupport.Context(), view.WithLocals(map[string]any{
		"users": []map[string]any{{"name": "Ada"}, {"name": "Grace"}},
	}))
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if out != "<li>Ada</li><li>Grace</li>" {
		t.Fatalf("unexpected output %q", out)
	}
}
