package royale

import "fmt"

// cardList is the envelope the Clash Royale API wraps every card listing in.
type cardList struct {
	Items []apiCard `json:"items"`
}

// apiCard is the wire shape of a card in both the player-collection and the
// full-catalog endpoints. Fields absent upstream decode to their zero value.
type apiCard struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	Type              string `json:"type"`
	ElixirCost        int    `json:"elixirCost"`
	Level             int    `json:"level"`
	MaxLevel          int    `json:"maxLevel"`
	Rarity            string `json:"rarity"`
	EvolutionLevel    int    `json:"evolutionLevel"`
	MaxEvolutionLevel int    `json:"maxEvolutionLevel"`
}

// NotFoundError indicates the requested resource does not exist upstream.
type NotFoundError struct {
	URL string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("resource not found: %s", e.URL)
}

// APIError is an error payload returned by the Clash Royale API.
type APIError struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("clash royale api error (%d): %s: %s", e.Status, e.Reason, e.Message)
	}
	return fmt.Sprintf("clash royale api error (%d): %s", e.Status, e.Reason)
}
