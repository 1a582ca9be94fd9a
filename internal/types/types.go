package types

// Shoutout is the featured person of the day
type Shoutout struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Image       *string `json:"image"`
}

// Thumbnail is the lead image of an encyclopedia page
type Thumbnail struct {
	Source string `json:"source"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Page is a candidate article fetched from the encyclopedia
type Page struct {
	Title      string
	Extract    string
	Thumbnail  *Thumbnail // nil when the page has no image
	WikidataID string     // empty when the page is not linked to the knowledge base
}

// Entity is the subset of a knowledge-base item the selector looks at
type Entity struct {
	ID         string
	InstanceOf []string // item ids of the P31 claims, e.g. "Q5"
}

// Announcement records a shoutout posted to a chat
type Announcement struct {
	ID        int64  `json:"id"`
	Date      string `json:"date"`
	ChatID    int64  `json:"chat_id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}
