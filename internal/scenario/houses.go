package scenario

import (
	"fmt"

	"github.com/rtsgo/threatgrid/internal/config"
	"github.com/rtsgo/threatgrid/internal/world"
)

// Houses builds the alliance table from cfg and returns it with the houses
// that take part, in config order.
func Houses(cfg config.ScenarioConfig) (*world.Houses, []world.House, error) {
	if len(cfg.Houses) == 0 {
		return nil, nil, fmt.Errorf("scenario: no houses configured")
	}
	table := world.NewHouses()
	seen := make(map[world.House]bool, len(cfg.Houses))
	players := make([]world.House, 0, len(cfg.Houses))
	for _, name := range cfg.Houses {
		h, err := world.ParseHouse(name)
		if err != nil {
			return nil, nil, fmt.Errorf("scenario houses: %w", err)
		}
		if seen[h] {
			return nil, nil, fmt.Errorf("scenario houses: %s listed twice", h)
		}
		seen[h] = true
		players = append(players, h)
	}

	for _, name := range cfg.Human {
		h, err := world.ParseHouse(name)
		if err != nil {
			return nil, nil, fmt.Errorf("scenario human: %w", err)
		}
		if !seen[h] {
			return nil, nil, fmt.Errorf("scenario human: %s is not playing", h)
		}
		table.SetHuman(h, true)
	}

	for i, group := range cfg.Alliances {
		members := make([]world.House, 0, len(group))
		for _, name := range group {
			h, err := world.ParseHouse(name)
			if err != nil {
				return nil, nil, fmt.Errorf("scenario alliance %d: %w", i, err)
			}
			members = append(members, h)
		}
		for a := range members {
			for b := a + 1; b < len(members); b++ {
				table.Ally(members[a], members[b])
			}
		}
	}
	return table, players, nil
}
