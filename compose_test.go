package st8

import (
	"fmt"
	"testing"
)

func TestComposeZeroIsIdentity(t *testing.T) {
	id := Compose[int]()

	for _, x := range []int{0, 1, -7, 42} {
		if got := id(x); got != x {
			t.Fatalf("Compose()(%d) = %d, want %d", x, got, x)
		}
	}
}

func TestComposeSingleReturnsFunction(t *testing.T) {
	calls := 0
	double := func(x int) int {
		calls++
		return x * 2
	}

	got := Compose(double)(21)
	if got != 42 {
		t.Fatalf("Compose(double)(21) = %d, want 42", got)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestComposeAppliesRightToLeft(t *testing.T) {
	var order []string

	named := func(name string, f func(int) int) func(int) int {
		return func(x int) int {
			order = append(order, name)
			return f(x)
		}
	}

	inc := named("inc", func(x int) int { return x + 1 })
	double := named("double", func(x int) int { return x * 2 })
	square := named("square", func(x int) int { return x * x })

	// inc(double(square(3))) = inc(double(9)) = inc(18) = 19
	got := Compose(inc, double, square)(3)
	if got != 19 {
		t.Fatalf("Compose(inc, double, square)(3) = %d, want 19", got)
	}

	want := []string{"square", "double", "inc"}
	if !equalStrings(order, want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
}

func TestComposeIgnoresLaterSliceChanges(t *testing.T) {
	fns := []func(string) string{
		func(s string) string { return s + "a" },
		func(s string) string { return s + "b" },
	}

	composed := Compose(fns...)
	fns[0] = func(s string) string { return s + "z" }

	if got := composed(""); got != "ba" {
		t.Fatalf("composed(\"\") = %q, want %q", got, "ba")
	}
}

func ExampleCompose() {
	exclaim := func(s string) string { return s + "!" }
	greet := func(s string) string { return "hello " + s }

	fmt.Println(Compose(exclaim, greet)("gopher"))
	// Output:
	// hello gopher!
}
