package path

import "testing"

func TestPath_String(t *testing.T) {
	tests := []struct {
		name string
		path Path
		want string
	}{
		{name: "root", path: Path{{Kind: Root}}, want: "$"},
		{name: "empty", path: nil, want: "$"},
		{name: "key", path: Path{{Kind: Root}, KeyOf("store")}, want: "$.store"},
		{name: "index", path: Path{{Kind: Root}, KeyOf("a"), IndexOf(3)}, want: "$.a[3]"},
		{name: "quoted", path: Path{{Kind: Root}, KeyOf("b c")}, want: "$['b c']"},
		{name: "quote_escape", path: Path{{Kind: Root}, KeyOf(`it's\`)}, want: `$['it\'s\\']`},
		{name: "empty_key", path: Path{{Kind: Root}, KeyOf("")}, want: "$['']"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.path.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPath_Pointer(t *testing.T) {
	p := Path{{Kind: Root}, KeyOf("a/b"), IndexOf(0), KeyOf("m~n")}
	if got, want := p.Pointer(), "/a~1b/0/m~0n"; got != want {
		t.Errorf("Pointer() = %q, want %q", got, want)
	}
	if got := (Path{{Kind: Root}}).Pointer(); got != "" {
		t.Errorf("root Pointer() = %q, want empty", got)
	}
}

func TestBuilder(t *testing.T) {
	b := NewBuilder()
	if got := b.Path().String(); got != "$" {
		t.Fatalf("initial Path() = %q, want $", got)
	}

	b.Push(KeyOf("a"))
	b.Push(IndexOf(0))
	snapshot := b.Path()
	if len(snapshot) != 3 {
		t.Errorf("len(Path()) = %d, want 3", len(snapshot))
	}

	b.Pop()
	b.Push(IndexOf(1))

	if got := snapshot.String(); got != "$.a[0]" {
		t.Errorf("snapshot changed to %q, want $.a[0]", got)
	}
	if got := b.Path().String(); got != "$.a[1]" {
		t.Errorf("Path() = %q, want $.a[1]", got)
	}

	b.Pop()
	b.Pop()
	b.Pop()
	if got := b.Path().String(); got != "$" {
		t.Errorf("Path() after popping past root = %q, want $", got)
	}
}
