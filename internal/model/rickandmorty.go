package model

// CharacterPage is one page of the upstream /api/character collection.
// Info and Results are pointers so a payload missing either can be told
// apart from an empty one.
type CharacterPage struct {
	Info    *PageInfo       `json:"info"`
	Results *[]RawCharacter `json:"results"`
}

type PageInfo struct {
	Count int     `json:"count"`
	Pages int     `json:"pages"`
	Next  *string `json:"next"`
	Prev  *string `json:"prev"`
}

// NextURL returns the cursor of the following page, or "" on the last page.
func (p *CharacterPage) NextURL() string {
	if p == nil || p.Info == nil || p.Info.Next == nil {
		return ""
	}
	return *p.Info.Next
}

// Characters returns the raw entries of the page, nil-safe.
func (p *CharacterPage) Characters() []RawCharacter {
	if p == nil || p.Results == nil {
		return nil
	}
	return *p.Results
}

type NamedResource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type RawCharacter struct {
	ID       int           `json:"id"`
	Name     string        `json:"name"`
	Status   string        `json:"status"`
	Species  string        `json:"species"`
	Type     string        `json:"type"`
	Gender   string        `json:"gender"`
	Origin   NamedResource `json:"origin"`
	Location NamedResource `json:"location"`
	Image    string        `json:"image"`
	Episode  []string      `json:"episode"`
	URL      string        `json:"url"`
	Created  string        `json:"created"`
}
