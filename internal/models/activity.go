package models

// Activity is one swipeable card served by the quiz API.
type Activity struct {
	ID            int64    `json:"id" yaml:"id"`
	Title         string   `json:"title" yaml:"title"`
	Description   string   `json:"description" yaml:"description"`
	VideoURI      string   `json:"video_uri" yaml:"video_uri"`
	ImageURI      string   `json:"image_uri" yaml:"image_uri"`
	ActivityURI   string   `json:"activity_uri" yaml:"activity_uri"`
	StartTime     string   `json:"start_time" yaml:"start_time"`
	EndTime       string   `json:"end_time" yaml:"end_time"`
	DominantColor string   `json:"dominant_color" yaml:"dominant_color"`
	DarkColor     string   `json:"dark_color" yaml:"dark_color"`
	PastelColor   string   `json:"pastel_color" yaml:"pastel_color"`
	Tags          []string `json:"tags" yaml:"tags"`
}

// ActivityID extracts the card identity used by the swipe deck.
func ActivityID(a Activity) int64 { return a.ID }

type Recap struct {
	ID         int64   `json:"id"`
	Title      string  `json:"title"`
	Percentage float64 `json:"percentage"`
	Frase      string  `json:"frase"`
}

// SwipeDecision is the wire form of one judged card.
type SwipeDecision struct {
	ID         int64 `json:"id"`
	SwipeRight bool  `json:"swipe_right"`
}
