package deck

import (
	"testing"

	"github.com/deftgray/clashproxy/internal/cards"
)

func TestAverageElixirRoundsHalfUp(t *testing.T) {
	tests := []struct {
		name  string
		costs []int
		want  float64
	}{
		{"whole number", []int{3, 3, 3, 3, 3, 3, 3, 3}, 3.0},
		{"exact tenth", []int{1, 2, 3, 4, 5, 3, 4, 2}, 3.0},
		{"half rounds up", []int{1, 2, 3, 4, 5, 3, 4, 4}, 3.3}, // 3.25 -> 3.3
		{"rounds down", []int{2, 2, 2, 2, 2, 2, 2, 3}, 2.1},    // 2.125 -> 2.1
		{"empty deck", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deck := make([]cards.Card, 0, len(tt.costs))
			for _, cost := range tt.costs {
				deck = append(deck, cards.Card{ElixirCost: cost})
			}
			if got := averageElixir(deck); got != tt.want {
				t.Errorf("averageElixir = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShareLink(t *testing.T) {
	deck := []cards.Card{
		{ID: 26000000}, {ID: 26000001}, {ID: 26000002}, {ID: 26000003},
		{ID: 28000000}, {ID: 28000001}, {ID: 27000000}, {ID: 26000072},
	}

	want := "https://link.clashroyale.com/en/?clashroyale://copyDeck?deck=" +
		"26000000;26000001;26000002;26000003;28000000;28000001;27000000;26000072&l=Royals"

	if got := shareLink(deck); got != want {
		t.Errorf("shareLink =\n%s\nwant\n%s", got, want)
	}
}
