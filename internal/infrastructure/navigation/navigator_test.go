package navigation

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"
)

func TestNavigator(t *testing.T) {
	n := New("/", zerolog.Nop())
	n.Navigate("/cart")
	n.Navigate("/cart")
	n.Navigate("/login")

	if n.Current() != "/login" {
		t.Fatalf("current = %q, want /login", n.Current())
	}
	if h := n.History(); len(h) != 2 || h[0] != "/cart" || h[1] != "/login" {
		t.Fatalf("unexpected history %v", h)
	}
}

func TestNavigator_HistoryIsBounded(t *testing.T) {
	n := New("/", zerolog.Nop())
	for i := 0; i < maxHistory+10; i++ {
		n.Navigate(fmt.Sprintf("/p/%d", i))
	}
	h := n.History()
	if len(h) != maxHistory || h[len(h)-1] != fmt.Sprintf("/p/%d", maxHistory+9) {
		t.Fatalf("unexpected history length %d", len(h))
	}
}
