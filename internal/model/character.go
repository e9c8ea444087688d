package model

// Character is the flattened representation returned by /challengeapi.
type Character struct {
	ID           int      `json:"id"`
	Name         string   `json:"name"`
	Status       string   `json:"status"`
	Species      string   `json:"species"`
	Type         string   `json:"type"`
	Gender       string   `json:"gender"`
	Origin       string   `json:"origin"`
	Location     string   `json:"location"`
	Image        string   `json:"image"`
	EpisodeCount int      `json:"episode_count"`
	Episodes     []string `json:"episodes"`
}

// NewCharacter flattens an upstream entry. The episode list is copied so the
// result does not alias the decoded page.
func NewCharacter(raw RawCharacter) Character {
	episodes := make([]string, len(raw.Episode))
	copy(episodes, raw.Episode)
	return Character{
		ID:           raw.ID,
		Name:         raw.Name,
		Status:       raw.Status,
		Species:      raw.Species,
		Type:         raw.Type,
		Gender:       raw.Gender,
		Origin:       raw.Origin.Name,
		Location:     raw.Location.Name,
		Image:        raw.Image,
		EpisodeCount: len(raw.Episode),
		Episodes:     episodes,
	}
}
